package postgres

import (
	"context"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// PostgresFavouriteStore implements store.FavouriteStore on PostgreSQL.
type PostgresFavouriteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFavouriteStore creates a new PostgreSQL implementation of the FavouriteStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresFavouriteStore(db store.DBTX, logger *slog.Logger) *PostgresFavouriteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFavouriteStore{
		db:     db,
		logger: logger.With(slog.String("component", "favourite_store")),
	}
}

var _ store.FavouriteStore = (*PostgresFavouriteStore)(nil)

// List implements store.FavouriteStore.List
func (s *PostgresFavouriteStore) List(
	ctx context.Context,
	userID int64,
	limit, offset int,
) ([]domain.Tab, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(tab_id) FROM user_favourites WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		log.Error("failed to count favourites", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tabColumns+`
		FROM user_favourites f
		JOIN tabs t ON t.id = f.tab_id
		JOIN users u ON u.id = t.uploader_id
		WHERE f.user_id = $1
		ORDER BY f.added_date DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		log.Error("failed to list favourites", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tabs := []domain.Tab{}
	for rows.Next() {
		tab, err := scanTab(rows)
		if err != nil {
			return nil, 0, MapError(err)
		}
		tabs = append(tabs, *tab)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return tabs, total, nil
}

// Add implements store.FavouriteStore.Add
func (s *PostgresFavouriteStore) Add(ctx context.Context, userID, tabID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO user_favourites (user_id, tab_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, tab_id) DO NOTHING`, userID, tabID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add favourite",
			slog.String("error", err.Error()),
			slog.Int64("tab_id", tabID))
		return false, MapError(err)
	}

	added, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

// Delete implements store.FavouriteStore.Delete
func (s *PostgresFavouriteStore) Delete(ctx context.Context, userID, tabID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_favourites WHERE user_id = $1 AND tab_id = $2`, userID, tabID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete favourite",
			slog.String("error", err.Error()),
			slog.Int64("tab_id", tabID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotFound)
}

// Exists implements store.FavouriteStore.Exists
func (s *PostgresFavouriteStore) Exists(ctx context.Context, userID, tabID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_favourites WHERE user_id = $1 AND tab_id = $2)`,
		userID, tabID,
	).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}
