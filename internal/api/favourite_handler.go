package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

var favouriteTable = contract.MustTable(
	contract.Endpoint("getUserFavourites", contract.User,
		contract.F("user_id", "int"),
		contract.F("limit", "int"),
		contract.F("offset", "int"),
	),
	contract.Endpoint("addFavouriteTab", contract.User, contract.F("tab_id", "int")),
	contract.Endpoint("deleteFavouriteTab", contract.User, contract.F("tab_id", "int")),
	contract.Endpoint("isFavouriteTab", contract.User, contract.F("tab_id", "int")),
)

// FavouriteHandler serves the userFavourite controller.
type FavouriteHandler struct {
	favourites store.FavouriteStore
	logger     *slog.Logger
}

// NewFavouriteHandler creates a new FavouriteHandler
func NewFavouriteHandler(favourites store.FavouriteStore, logger *slog.Logger) *FavouriteHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FavouriteHandler")
	}
	return &FavouriteHandler{
		favourites: favourites,
		logger:     logger.With(slog.String("component", "favourite_handler")),
	}
}

func (h *FavouriteHandler) name() string          { return "userFavourite" }
func (h *FavouriteHandler) table() *contract.Table { return favouriteTable }

func (h *FavouriteHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"getUserFavourites":  h.List,
		"addFavouriteTab":    h.Add,
		"deleteFavouriteTab": h.Delete,
		"isFavouriteTab":     h.Exists,
	}
}

// List returns a page of the favourite tabs of user_id.
func (h *FavouriteHandler) List(ctx context.Context, call *contract.Call) (any, error) {
	limit, offset := page(call.Params)
	tabs, total, err := h.favourites.List(ctx, call.Params.Int("user_id", 0), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	if tabs == nil {
		tabs = []domain.Tab{}
	}
	return ListResponse{Results: tabs, Total: total}, nil
}

// Add stores the tab as a favourite of the session member. It returns false
// when the tab already was one.
func (h *FavouriteHandler) Add(ctx context.Context, call *contract.Call) (any, error) {
	tabID := call.Params.Int("tab_id", 0)
	added, err := h.favourites.Add(ctx, call.Caller.UserID, tabID)
	if err != nil {
		return nil, fmt.Errorf("add favourite: %w", err)
	}
	if added {
		logger.FromContextOrDefault(ctx, h.logger).Debug("favourite added",
			slog.Int64("user_id", call.Caller.UserID),
			slog.Int64("tab_id", tabID))
	}
	return added, nil
}

// Delete removes the tab from the favourites of the session member.
func (h *FavouriteHandler) Delete(ctx context.Context, call *contract.Call) (any, error) {
	if err := h.favourites.Delete(ctx, call.Caller.UserID, call.Params.Int("tab_id", 0)); err != nil {
		return nil, fmt.Errorf("delete favourite: %w", err)
	}
	return success, nil
}

// Exists reports whether the tab is a favourite of the session member.
func (h *FavouriteHandler) Exists(ctx context.Context, call *contract.Call) (any, error) {
	exists, err := h.favourites.Exists(ctx, call.Caller.UserID, call.Params.Int("tab_id", 0))
	if err != nil {
		return nil, fmt.Errorf("check favourite: %w", err)
	}
	return exists, nil
}
