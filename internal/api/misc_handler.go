package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/captcha"
	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/redact"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
)

// ChallengeIssuer creates captcha challenges.
type ChallengeIssuer interface {
	New() (*captcha.Challenge, error)
}

var miscTable = contract.MustTable(
	contract.Endpoint("generateCaptcha", contract.Public),
	contract.Endpoint("contactUs", contract.Public,
		contract.F("username", "min-3", "max-20"),
		contract.F("email", "valid-email"),
		contract.F("message", "required"),
		contract.F("captcha", "matches-captcha"),
	),
	contract.Endpoint("getErrorCodes", contract.Public),
)

// MiscHandler serves the misc controller: captcha images, the contact form
// and the error code catalogue.
type MiscHandler struct {
	challenges     ChallengeIssuer
	mailer         mail.Mailer
	contactAddress string
	logger         *slog.Logger
}

// NewMiscHandler creates a new MiscHandler. Contact form messages are sent to
// contactAddress.
func NewMiscHandler(
	challenges ChallengeIssuer,
	mailer mail.Mailer,
	contactAddress string,
	logger *slog.Logger,
) *MiscHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MiscHandler")
	}
	return &MiscHandler{
		challenges:     challenges,
		mailer:         mailer,
		contactAddress: contactAddress,
		logger:         logger.With(slog.String("component", "misc_handler")),
	}
}

func (h *MiscHandler) name() string          { return "misc" }
func (h *MiscHandler) table() *contract.Table { return miscTable }

func (h *MiscHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"generateCaptcha": h.GenerateCaptcha,
		"contactUs":       h.ContactUs,
		"getErrorCodes":   h.ErrorCodes,
	}
}

// GenerateCaptcha issues a new challenge, keeps its answer in the session and
// returns the image.
func (h *MiscHandler) GenerateCaptcha(ctx context.Context, _ *contract.Call) (any, error) {
	sess, err := currentSession(ctx)
	if err != nil {
		return nil, err
	}
	challenge, err := h.challenges.New()
	if err != nil {
		return nil, fmt.Errorf("generate captcha: %w", err)
	}
	sess.SetCaptcha(challenge.Answer)
	return &RawContent{ContentType: "image/svg+xml", Body: challenge.SVG}, nil
}

// ContactUs forwards the contact form to the site team.
func (h *MiscHandler) ContactUs(ctx context.Context, call *contract.Call) (any, error) {
	if err := clearCaptcha(ctx); err != nil {
		return nil, err
	}
	p := call.Params

	msg := mail.ContactMessage(h.contactAddress, p.Get("username"), p.Get("email"), p.Get("message"))
	if err := h.mailer.Send(ctx, msg); err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Error("failed to send contact message",
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("%w: %v", service.ErrMailFailed, err)
	}
	return success, nil
}

// ErrorCodes returns the error code catalogue.
func (h *MiscHandler) ErrorCodes(_ context.Context, _ *contract.Call) (any, error) {
	return ErrorCodes, nil
}
