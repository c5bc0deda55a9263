package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/config"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
)

// ErrSendFailed wraps every delivery failure.
var ErrSendFailed = errors.New("failed to send mail")

// Message is a plain text e-mail.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a LogMailer when no host is configured.
func New(cfg config.MailConfig, log *slog.Logger) Mailer {
	if cfg.Host == "" {
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg, log)
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends mail through an SMTP relay. STARTTLS is used when the
// server offers it.
type SMTPMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	send   sendFunc
	logger *slog.Logger
	now    func() time.Time
}

// NewSMTPMailer creates an SMTPMailer for cfg.
func NewSMTPMailer(cfg config.MailConfig, log *slog.Logger) *SMTPMailer {
	if log == nil {
		log = slog.Default()
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPMailer{
		addr:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:   cfg.From,
		auth:   auth,
		send:   smtp.SendMail,
		logger: log.With(slog.String("component", "smtp_mailer")),
		now:    time.Now,
	}
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.ReplyTo, "\r\n") {
		return fmt.Errorf("%w: invalid address", ErrSendFailed)
	}

	raw := m.compose(msg)
	if err := m.send(m.addr, m.auth, m.from, []string{msg.To}, raw); err != nil {
		log.Error("smtp delivery failed",
			slog.String("error", err.Error()),
			slog.String("subject", msg.Subject))
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	log.Info("mail sent", slog.String("subject", msg.Subject))
	return nil
}

func (m *SMTPMailer) compose(msg Message) []byte {
	var b bytes.Buffer

	header := func(key, value string) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	header("From", m.from)
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))

	return b.Bytes()
}

// LogMailer writes messages to the log instead of sending them. It is used
// in development when no SMTP host is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. If log is nil, a default logger will be used.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{logger: log.With(slog.String("component", "log_mailer"))}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logger.FromContextOrDefault(ctx, m.logger).Info("mail not sent, no smtp host configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body))
	return nil
}
