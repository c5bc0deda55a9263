package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// BackingTrackService finds play-along recordings.
type BackingTrackService interface {
	// Search lists the tracks of band, narrowed to songs containing song when
	// both are given, or the tracks whose song matches song when band is empty.
	Search(ctx context.Context, band, song string) ([]domain.BackingTrack, error)

	// MP3 returns the audio file address behind a track page link.
	MP3(ctx context.Context, link string) (string, error)
}

// BackingTrackServiceImpl implements BackingTrackService.
type BackingTrackServiceImpl struct {
	tracks store.BackingTrackStore
	logger *slog.Logger
}

// NewBackingTrackService creates a BackingTrackService.
func NewBackingTrackService(tracks store.BackingTrackStore, logger *slog.Logger) (*BackingTrackServiceImpl, error) {
	if tracks == nil {
		return nil, fmt.Errorf("tracks cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackingTrackServiceImpl{
		tracks: tracks,
		logger: logger.With(slog.String("component", "backing_track_service")),
	}, nil
}

// Search returns an empty list when neither band nor song is given.
func (s *BackingTrackServiceImpl) Search(ctx context.Context, band, song string) ([]domain.BackingTrack, error) {
	switch {
	case band != "":
		tracks, err := s.tracks.ByBand(ctx, band)
		if err != nil {
			return nil, fmt.Errorf("failed to list band tracks: %w", err)
		}
		if song != "" {
			tracks = domain.FilterBySong(tracks, song)
		}
		return tracks, nil
	case song != "":
		tracks, err := s.tracks.BySong(ctx, song)
		if err != nil {
			return nil, fmt.Errorf("failed to list song tracks: %w", err)
		}
		return tracks, nil
	default:
		return []domain.BackingTrack{}, nil
	}
}

// MP3 resolves link to its audio file.
func (s *BackingTrackServiceImpl) MP3(ctx context.Context, link string) (string, error) {
	track, err := s.tracks.GetByLink(ctx, link)
	if err != nil {
		return "", fmt.Errorf("failed to resolve backing track: %w", err)
	}
	return track.MP3, nil
}
