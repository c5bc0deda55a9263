package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gryp17/Tablaturi-bg-API/internal/api/shared"
	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/session"
)

// unknownEndpoint labels metrics of requests that named no known endpoint.
const unknownEndpoint = "unknown"

// Recorder receives request metrics.
type Recorder interface {
	ObserveRequest(controller, endpoint string, status int, elapsed time.Duration)
	Reject(controller, reason string)
}

// Sessions loads and persists the session of a request.
type Sessions interface {
	Load(ctx context.Context, r *http.Request) (*session.Session, error)
	Commit(ctx context.Context, w http.ResponseWriter, s *session.Session) error
}

// FileDownload is a handler result streamed as an attachment.
type FileDownload struct {
	Name        string
	ContentType string
	Content     io.ReadCloser
	// Size is the content length, or -1 when unknown.
	Size int64
}

// RawContent is a handler result written verbatim.
type RawContent struct {
	ContentType string
	Body        []byte
}

// Server adapts HTTP requests to the controller dispatchers. Every controller
// is served under /{controller}/*, where the wildcard path names the endpoint.
type Server struct {
	controllers map[string]*contract.Dispatcher
	sessions    Sessions
	recorder    Recorder
	logger      *slog.Logger
}

// NewServer creates a Server. recorder may be nil.
func NewServer(
	sessions Sessions,
	recorder Recorder,
	logger *slog.Logger,
	controllers ...*contract.Dispatcher,
) (*Server, error) {
	if sessions == nil {
		return nil, errors.New("sessions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		controllers: make(map[string]*contract.Dispatcher, len(controllers)),
		sessions:    sessions,
		recorder:    recorder,
		logger:      logger.With(slog.String("component", "api_server")),
	}
	for _, d := range controllers {
		if d == nil {
			return nil, errors.New("nil controller")
		}
		if _, dup := s.controllers[d.Name()]; dup {
			return nil, fmt.Errorf("controller %q registered twice", d.Name())
		}
		s.controllers[d.Name()] = d
	}
	return s, nil
}

// Routes mounts the controllers on r.
func (s *Server) Routes(r chi.Router) {
	r.HandleFunc("/{controller}", s.serveController)
	r.HandleFunc("/{controller}/*", s.serveController)
}

func (s *Server) serveController(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "controller")
	rest := strings.Trim(chi.URLParam(r, "*"), "/")

	d, ok := s.controllers[name]
	if !ok {
		s.reject(name, "unknown_controller")
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, CodeNotFound,
			fmt.Errorf("%w: controller %q", contract.ErrNotFound, name))
		return
	}

	endpoint := unknownEndpoint
	if _, known := d.Table().Lookup(path.Base(rest)); known && rest != "" {
		endpoint = path.Base(rest)
	}

	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveRequest(name, endpoint, ww.Status(), time.Since(start))
		}
	}()

	ctx := logger.WithLogger(r.Context(),
		logger.FromContextOrDefault(r.Context(), s.logger).With(slog.String("controller", name)))
	r = r.WithContext(ctx)

	form, err := shared.ReadForm(r)
	if err != nil {
		s.reject(name, "malformed_body")
		shared.RespondWithErrorAndLog(ww, r, http.StatusBadRequest, CodeInvalidRequest, err)
		return
	}
	defer form.Close()

	dropRouteField(form.Body)
	dropRouteField(form.Query)
	if rest != "" {
		form.Query.Set(contract.RouteField, name+"/"+rest)
	}

	sess, err := s.sessions.Load(ctx, r)
	if err != nil {
		shared.RespondWithErrorAndLog(ww, r, http.StatusInternalServerError, CodeDBError, err)
		return
	}
	ctx = shared.WithSession(ctx, sess)
	r = r.WithContext(ctx)

	result, dispatchErr := d.Dispatch(ctx, form.Request(sess, sess))

	if err := s.sessions.Commit(ctx, ww, sess); err != nil {
		closeResult(result)
		shared.RespondWithErrorAndLog(ww, r, http.StatusInternalServerError, CodeDBError, err)
		return
	}

	if dispatchErr != nil {
		s.reject(name, rejectReason(dispatchErr))
		status := MapErrorToStatusCode(dispatchErr)
		shared.RespondWithErrorAndLog(ww, r, status, errorPayload(dispatchErr), dispatchErr)
		return
	}

	s.write(ww, r, result)
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, result any) {
	switch res := result.(type) {
	case *FileDownload:
		defer res.Content.Close()
		w.Header().Set("Content-Type", res.ContentType)
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
		if res.Size >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(res.Size, 10))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, res.Content); err != nil {
			logger.FromContext(r.Context()).Warn("file download interrupted",
				slog.String("file", res.Name),
				slog.String("error", err.Error()))
		}
	case *RawContent:
		w.Header().Set("Content-Type", res.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Body)
	default:
		shared.RespondWithJSON(w, r, http.StatusOK, result)
	}
}

func (s *Server) reject(controller, reason string) {
	if s.recorder != nil {
		s.recorder.Reject(controller, reason)
	}
}

func closeResult(result any) {
	if download, ok := result.(*FileDownload); ok {
		_ = download.Content.Close()
	}
}

func rejectReason(err error) string {
	if _, ok := contract.AsValidationError(err); ok {
		return "validation"
	}
	switch {
	case errors.Is(err, contract.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, contract.ErrNotFound):
		return "unknown_endpoint"
	case errors.Is(err, contract.ErrAccessDenied):
		return "access_denied"
	default:
		return "handler_error"
	}
}

// dropRouteField removes every key that names the routing field once
// trimmed, so the route can only come from the request path.
func dropRouteField(values url.Values) {
	for key := range values {
		if strings.TrimSpace(key) == contract.RouteField {
			delete(values, key)
		}
	}
}
