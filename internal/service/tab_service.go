package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// TabService serves the tab catalogue.
type TabService interface {
	Count(ctx context.Context) (domain.TabsCount, error)
	Most(ctx context.Context, ranking domain.Ranking, limit int) ([]domain.RankedTab, error)

	// Autocomplete suggests band names, or song names optionally narrowed to
	// band, that contain term.
	Autocomplete(ctx context.Context, field, term, band string) ([]domain.Suggestion, error)

	Search(ctx context.Context, search domain.TabSearch) ([]domain.Tab, int, error)

	// View returns a tab and counts the view.
	View(ctx context.Context, id int64) (*domain.Tab, error)

	// Rate records the vote of userID, replacing an earlier one, and returns
	// the new average rating.
	Rate(ctx context.Context, tabID, userID int64, rating int) (float64, error)
}

// TabServiceImpl implements TabService.
type TabServiceImpl struct {
	tabs   store.TabStore
	logger *slog.Logger
}

// NewTabService creates a TabService.
func NewTabService(tabs store.TabStore, logger *slog.Logger) (*TabServiceImpl, error) {
	if tabs == nil {
		return nil, fmt.Errorf("tabs cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TabServiceImpl{
		tabs:   tabs,
		logger: logger.With(slog.String("component", "tab_service")),
	}, nil
}

// Count splits the catalogue size by tab type.
func (s *TabServiceImpl) Count(ctx context.Context) (domain.TabsCount, error) {
	count, err := s.tabs.Count(ctx)
	if err != nil {
		return domain.TabsCount{}, fmt.Errorf("failed to count tabs: %w", err)
	}
	return count, nil
}

// Most returns a top list.
func (s *TabServiceImpl) Most(ctx context.Context, ranking domain.Ranking, limit int) ([]domain.RankedTab, error) {
	tabs, err := s.tabs.Most(ctx, ranking, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s tabs: %w", ranking, err)
	}
	return tabs, nil
}

// Autocomplete returns at most ten suggestions.
func (s *TabServiceImpl) Autocomplete(ctx context.Context, field, term, band string) ([]domain.Suggestion, error) {
	suggestions, err := s.tabs.Autocomplete(ctx, field, term, band)
	if err != nil {
		return nil, fmt.Errorf("failed to autocomplete %s: %w", field, err)
	}
	return suggestions, nil
}

// Search returns a page of matching tabs and the total count.
func (s *TabServiceImpl) Search(ctx context.Context, search domain.TabSearch) ([]domain.Tab, int, error) {
	tabs, total, err := s.tabs.Search(ctx, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search tabs: %w", err)
	}
	return tabs, total, nil
}

// View counts the view before loading so the response includes it.
func (s *TabServiceImpl) View(ctx context.Context, id int64) (*domain.Tab, error) {
	if err := s.tabs.AddView(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to count tab view: %w", err)
	}
	tab, err := s.tabs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tab: %w", err)
	}
	return tab, nil
}

// Rate validates the scale before touching the store.
func (s *TabServiceImpl) Rate(ctx context.Context, tabID, userID int64, rating int) (float64, error) {
	if !domain.ValidRating(rating) {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidRating)
	}

	average, err := s.tabs.Rate(ctx, tabID, userID, rating)
	if err != nil {
		return 0, fmt.Errorf("failed to rate tab: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("tab rated",
		slog.Int64("tab_id", tabID),
		slog.Int64("user_id", userID),
		slog.Int("rating", rating))
	return average, nil
}
