package api

import (
	"context"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
)

// RatingResponse answers tab/rateTab with the new average.
type RatingResponse struct {
	Rating float64 `json:"rating"`
}

var tabTable = contract.MustTable(
	contract.Endpoint("getTabsCount", contract.Public),
	contract.Endpoint("getMost", contract.Public,
		contract.F("type", "in[popular,liked,latest,commented]"),
		contract.F("limit", "int"),
	),
	contract.Endpoint("autocomplete", contract.Public,
		contract.F("type", "in[band,song]"),
		contract.F("term", "required"),
		contract.F("band", "optional", "max-100"),
	),
	contract.Endpoint("search", contract.Public,
		contract.F("type", "optional", "in[all,gp,text]"),
		contract.F("band", "required[band,song]"),
		contract.F("song", "required[band,song]"),
		contract.F("limit", "int"),
		contract.F("offset", "int"),
	),
	contract.Endpoint("getTab", contract.Public,
		contract.F("id", "required", "int"),
	),
	contract.Endpoint("rateTab", contract.User,
		contract.F("tab_id", "required", "int"),
		contract.F("rating", "in[1,2,3,4,5]"),
	),
)

// TabHandler serves the tab controller.
type TabHandler struct {
	tabs   service.TabService
	logger *slog.Logger
}

// NewTabHandler creates a new TabHandler
func NewTabHandler(tabs service.TabService, logger *slog.Logger) *TabHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TabHandler")
	}
	return &TabHandler{
		tabs:   tabs,
		logger: logger.With(slog.String("component", "tab_handler")),
	}
}

func (h *TabHandler) name() string          { return "tab" }
func (h *TabHandler) table() *contract.Table { return tabTable }

func (h *TabHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"getTabsCount": h.Count,
		"getMost":      h.Most,
		"autocomplete": h.Autocomplete,
		"search":       h.Search,
		"getTab":       h.Get,
		"rateTab":      h.Rate,
	}
}

// Count returns the catalogue size by tab type.
func (h *TabHandler) Count(ctx context.Context, _ *contract.Call) (any, error) {
	return h.tabs.Count(ctx)
}

// Most returns a top tabs list.
func (h *TabHandler) Most(ctx context.Context, call *contract.Call) (any, error) {
	limit, _ := page(call.Params)
	tabs, err := h.tabs.Most(ctx, domain.Ranking(call.Params.Get("type")), limit)
	if err != nil {
		return nil, err
	}
	if tabs == nil {
		tabs = []domain.RankedTab{}
	}
	return tabs, nil
}

// Autocomplete suggests band or song names.
func (h *TabHandler) Autocomplete(ctx context.Context, call *contract.Call) (any, error) {
	p := call.Params
	suggestions, err := h.tabs.Autocomplete(ctx, p.Get("type"), p.Get("term"), p.Get("band"))
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return suggestions, nil
}

// Search returns a page of tabs matching band and/or song.
func (h *TabHandler) Search(ctx context.Context, call *contract.Call) (any, error) {
	p := call.Params
	limit, offset := page(p)
	tabs, total, err := h.tabs.Search(ctx, domain.TabSearch{
		Type:   p.Get("type"),
		Band:   p.Get("band"),
		Song:   p.Get("song"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	if tabs == nil {
		tabs = []domain.Tab{}
	}
	return ListResponse{Results: tabs, Total: total}, nil
}

// Get returns a tab and counts the view.
func (h *TabHandler) Get(ctx context.Context, call *contract.Call) (any, error) {
	return h.tabs.View(ctx, call.Params.Int("id", 0))
}

// Rate records the vote of the session member.
func (h *TabHandler) Rate(ctx context.Context, call *contract.Call) (any, error) {
	rating, err := h.tabs.Rate(ctx,
		call.Params.Int("tab_id", 0),
		call.Caller.UserID,
		int(call.Params.Int("rating", 0)))
	if err != nil {
		return nil, err
	}
	return RatingResponse{Rating: rating}, nil
}
