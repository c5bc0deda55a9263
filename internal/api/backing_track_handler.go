package api

import (
	"context"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
)

var backingTrackTable = contract.MustTable(
	contract.Endpoint("search", contract.Public,
		contract.F("band", "required[band,song]"),
		contract.F("song", "required[band,song]"),
	),
	contract.Endpoint("getMP3", contract.Public,
		contract.F("link", "valid-url"),
	),
)

// BackingTrackHandler serves the backingTrack controller.
type BackingTrackHandler struct {
	tracks service.BackingTrackService
	logger *slog.Logger
}

// NewBackingTrackHandler creates a new BackingTrackHandler
func NewBackingTrackHandler(tracks service.BackingTrackService, logger *slog.Logger) *BackingTrackHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BackingTrackHandler")
	}
	return &BackingTrackHandler{
		tracks: tracks,
		logger: logger.With(slog.String("component", "backing_track_handler")),
	}
}

func (h *BackingTrackHandler) name() string          { return "backingTrack" }
func (h *BackingTrackHandler) table() *contract.Table { return backingTrackTable }

func (h *BackingTrackHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"search": h.Search,
		"getMP3": h.MP3,
	}
}

// Search lists the tracks matching band and/or song.
func (h *BackingTrackHandler) Search(ctx context.Context, call *contract.Call) (any, error) {
	return h.tracks.Search(ctx, call.Params.Get("band"), call.Params.Get("song"))
}

// MP3 returns the audio address of a track page.
func (h *BackingTrackHandler) MP3(ctx context.Context, call *contract.Call) (any, error) {
	return h.tracks.MP3(ctx, call.Params.Get("link"))
}
