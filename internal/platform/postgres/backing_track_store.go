package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// PostgresBackingTrackStore implements store.BackingTrackStore on PostgreSQL.
type PostgresBackingTrackStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBackingTrackStore creates a new PostgreSQL implementation of the
// BackingTrackStore interface. If logger is nil, a default logger will be used.
func NewPostgresBackingTrackStore(db store.DBTX, logger *slog.Logger) *PostgresBackingTrackStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBackingTrackStore{
		db:     db,
		logger: logger.With(slog.String("component", "backing_track_store")),
	}
}

var _ store.BackingTrackStore = (*PostgresBackingTrackStore)(nil)

// ByBand implements store.BackingTrackStore.ByBand
func (s *PostgresBackingTrackStore) ByBand(ctx context.Context, band string) ([]domain.BackingTrack, error) {
	return s.list(ctx, `
		SELECT id, band, song, link, mp3 FROM backing_tracks
		WHERE LOWER(band) = LOWER($1)
		ORDER BY song`, band)
}

// BySong implements store.BackingTrackStore.BySong
func (s *PostgresBackingTrackStore) BySong(ctx context.Context, song string) ([]domain.BackingTrack, error) {
	return s.list(ctx, `
		SELECT id, band, song, link, mp3 FROM backing_tracks
		WHERE song ILIKE $1
		ORDER BY band, song`, "%"+escapeLike(song)+"%")
}

// GetByLink implements store.BackingTrackStore.GetByLink
func (s *PostgresBackingTrackStore) GetByLink(ctx context.Context, link string) (*domain.BackingTrack, error) {
	var t domain.BackingTrack
	err := s.db.QueryRowContext(ctx,
		`SELECT id, band, song, link, mp3 FROM backing_tracks WHERE link = $1`, link,
	).Scan(&t.ID, &t.Band, &t.Song, &t.Link, &t.MP3)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBackingTrackNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get backing track",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	if t.MP3 == "" {
		return nil, store.ErrBackingTrackNotFound
	}
	return &t, nil
}

func (s *PostgresBackingTrackStore) list(ctx context.Context, query string, arg any) ([]domain.BackingTrack, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list backing tracks",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tracks := []domain.BackingTrack{}
	for rows.Next() {
		var t domain.BackingTrack
		if err := rows.Scan(&t.ID, &t.Band, &t.Song, &t.Link, &t.MP3); err != nil {
			return nil, MapError(err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tracks, nil
}
