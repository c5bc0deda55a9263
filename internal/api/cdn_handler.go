package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
)

var cdnTable = contract.MustTable(
	contract.Endpoint("file", contract.Public,
		contract.F("type", "in[downloads,avatars,articles]"),
		contract.F("file", "required"),
	),
)

// CDNHandler serves the cdn controller: downloads of stored content files.
type CDNHandler struct {
	files  storage.FileStore
	logger *slog.Logger
}

// NewCDNHandler creates a new CDNHandler
func NewCDNHandler(files storage.FileStore, logger *slog.Logger) *CDNHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CDNHandler")
	}
	return &CDNHandler{
		files:  files,
		logger: logger.With(slog.String("component", "cdn_handler")),
	}
}

func (h *CDNHandler) name() string          { return "cdn" }
func (h *CDNHandler) table() *contract.Table { return cdnTable }

func (h *CDNHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"file": h.File,
	}
}

// File streams a content file as an attachment. Its content type is sniffed
// from the leading bytes.
func (h *CDNHandler) File(ctx context.Context, call *contract.Call) (any, error) {
	area := storage.Area(call.Params.Get("type"))
	name := call.Params.Get("file")

	f, size, err := h.files.Open(ctx, area, name)
	if err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Debug("content file unavailable",
			slog.String("area", string(area)),
			slog.String("file", name),
			slog.String("error", err.Error()))
		return nil, err
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sniff content type of %q: %w", name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rewind %q: %w", name, err)
	}

	return &FileDownload{
		Name:        name,
		ContentType: mtype.String(),
		Content:     f,
		Size:        size,
	}, nil
}
