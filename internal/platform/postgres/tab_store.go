package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// autocompleteLimit caps the number of autocomplete suggestions.
const autocompleteLimit = 10

const tabColumns = `t.id, t.type, t.band, t.song, t.tab_type, t.content, t.path, t.rating,
	t.votes, t.downloads, t.views, t.upload_date, t.modified_date, t.uploader_id,
	u.username, t.tunning, t.difficulty`

// mostQueries holds one query per ranking. Each selects id, band, song,
// score and upload date.
var mostQueries = map[domain.Ranking]string{
	domain.RankingPopular: `
		SELECT id, band, song, downloads, NULL::timestamptz
		FROM tabs ORDER BY downloads DESC, id DESC LIMIT $1`,
	domain.RankingLiked: `
		SELECT id, band, song, rating, NULL::timestamptz
		FROM tabs ORDER BY rating DESC, band ASC LIMIT $1`,
	domain.RankingLatest: `
		SELECT id, band, song, 0, upload_date
		FROM tabs ORDER BY upload_date DESC, id DESC LIMIT $1`,
	domain.RankingCommented: `
		SELECT t.id, t.band, t.song, COUNT(c.id) AS comments, NULL::timestamptz
		FROM tabs t
		JOIN tab_comments c ON c.tab_id = t.id
		GROUP BY t.id
		ORDER BY comments DESC, t.id DESC
		LIMIT $1`,
}

// PostgresTabStore implements store.TabStore on PostgreSQL.
type PostgresTabStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTabStore creates a new PostgreSQL implementation of the TabStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTabStore(db store.DBTX, logger *slog.Logger) *PostgresTabStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTabStore{
		db:     db,
		logger: logger.With(slog.String("component", "tab_store")),
	}
}

var _ store.TabStore = (*PostgresTabStore)(nil)

// Count implements store.TabStore.Count
func (s *PostgresTabStore) Count(ctx context.Context) (domain.TabsCount, error) {
	var count domain.TabsCount

	rows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(id) FROM tabs GROUP BY type`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count tabs",
			slog.String("error", err.Error()))
		return count, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			tabType string
			n       int
		)
		if err := rows.Scan(&tabType, &n); err != nil {
			return count, MapError(err)
		}
		switch domain.TabType(tabType) {
		case domain.TabTypeGuitarPro:
			count.GuitarPro = n
		case domain.TabTypeText:
			count.Text = n
		}
	}
	return count, MapError(rows.Err())
}

// Most implements store.TabStore.Most
func (s *PostgresTabStore) Most(ctx context.Context, ranking domain.Ranking, limit int) ([]domain.RankedTab, error) {
	query, ok := mostQueries[ranking]
	if !ok {
		return nil, fmt.Errorf("%w: unknown ranking %q", store.ErrInvalidEntity, ranking)
	}

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to rank tabs",
			slog.String("error", err.Error()),
			slog.String("ranking", string(ranking)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tabs := []domain.RankedTab{}
	for rows.Next() {
		var (
			tab      domain.RankedTab
			uploaded sql.NullTime
		)
		if err := rows.Scan(&tab.ID, &tab.Band, &tab.Song, &tab.Score, &uploaded); err != nil {
			return nil, MapError(err)
		}
		if uploaded.Valid {
			tab.UploadDate = &uploaded.Time
		}
		tabs = append(tabs, tab)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tabs, nil
}

// Autocomplete implements store.TabStore.Autocomplete
func (s *PostgresTabStore) Autocomplete(ctx context.Context, field, term, band string) ([]domain.Suggestion, error) {
	pattern := "%" + escapeLike(term) + "%"

	var (
		query string
		args  []any
	)
	switch {
	case field == "band":
		query = `SELECT DISTINCT band FROM tabs WHERE band ILIKE $1 ORDER BY band LIMIT $2`
		args = []any{pattern, autocompleteLimit}
	case field == "song" && band != "":
		query = `SELECT DISTINCT song FROM tabs WHERE band = $1 AND song ILIKE $2 ORDER BY song LIMIT $3`
		args = []any{band, pattern, autocompleteLimit}
	case field == "song":
		query = `SELECT DISTINCT song FROM tabs WHERE song ILIKE $1 ORDER BY song LIMIT $2`
		args = []any{pattern, autocompleteLimit}
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownField, field)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("autocomplete query failed",
			slog.String("error", err.Error()),
			slog.String("field", field))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, MapError(err)
		}
		suggestions = append(suggestions, domain.Suggestion{ID: value, Label: value, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return suggestions, nil
}

// Search implements store.TabStore.Search
func (s *PostgresTabStore) Search(ctx context.Context, search domain.TabSearch) ([]domain.Tab, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	where, args := searchFilter(search)

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(t.id) FROM tabs t WHERE `+where, args...).Scan(&total)
	if err != nil {
		log.Error("failed to count search results", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	n := len(args)
	args = append(args, search.Limit, search.Offset)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT `+tabColumns+`
		FROM tabs t
		JOIN users u ON u.id = t.uploader_id
		WHERE %s
		ORDER BY t.band, t.song, t.rating DESC, t.type, t.downloads DESC
		LIMIT $%d OFFSET $%d`, where, n+1, n+2), args...)
	if err != nil {
		log.Error("failed to search tabs", slog.String("error", err.Error()))
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

// searchFilter builds the WHERE clause shared by the search and count queries.
func searchFilter(search domain.TabSearch) (string, []any) {
	conditions := []string{"TRUE"}
	args := []any{}

	if search.Type != "" && search.Type != "all" {
		args = append(args, search.Type)
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", len(args)))
	}
	if search.Band != "" {
		args = append(args, "%"+escapeLike(search.Band)+"%")
		conditions = append(conditions, fmt.Sprintf("t.band ILIKE $%d", len(args)))
	}
	if search.Song != "" {
		args = append(args, "%"+escapeLike(search.Song)+"%")
		conditions = append(conditions, fmt.Sprintf("t.song ILIKE $%d", len(args)))
	}
	return strings.Join(conditions, " AND "), args
}

// Get implements store.TabStore.Get
func (s *PostgresTabStore) Get(ctx context.Context, id int64) (*domain.Tab, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tabColumns+`
		FROM tabs t
		JOIN users u ON u.id = t.uploader_id
		WHERE t.id = $1`, id)

	tab, err := scanTab(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTabNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get tab",
			slog.String("error", err.Error()),
			slog.Int64("tab_id", id))
		return nil, MapError(err)
	}
	return tab, nil
}

// AddView implements store.TabStore.AddView
func (s *PostgresTabStore) AddView(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tabs SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add tab view",
			slog.String("error", err.Error()),
			slog.Int64("tab_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTabNotFound)
}

// Rate implements store.TabStore.Rate
// The vote and the recomputed average are written by one statement.
func (s *PostgresTabStore) Rate(ctx context.Context, tabID, userID int64, rating int) (float64, error) {
	if !domain.ValidRating(rating) {
		return 0, fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidRating)
	}

	var average float64
	err := s.db.QueryRowContext(ctx, `
		WITH vote AS (
			INSERT INTO tab_ratings (tab_id, user_id, rating)
			VALUES ($1, $2, $3)
			ON CONFLICT (tab_id, user_id) DO UPDATE SET rating = EXCLUDED.rating
			RETURNING tab_id, user_id, rating
		), votes AS (
			SELECT rating FROM tab_ratings WHERE tab_id = $1 AND user_id <> $2
			UNION ALL
			SELECT rating FROM vote
		)
		UPDATE tabs
		SET rating = (SELECT AVG(rating) FROM votes),
			votes = (SELECT COUNT(*) FROM votes)
		WHERE id = $1
		RETURNING rating`,
		tabID, userID, rating,
	).Scan(&average)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrTabNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to rate tab",
			slog.String("error", err.Error()),
			slog.Int64("tab_id", tabID))
		return 0, MapError(err)
	}
	return average, nil
}

func scanTab(row rowScanner) (*domain.Tab, error) {
	var (
		tab     domain.Tab
		tabType string
	)
	err := row.Scan(
		&tab.ID,
		&tabType,
		&tab.Band,
		&tab.Song,
		&tab.TabType,
		&tab.Content,
		&tab.Path,
		&tab.Rating,
		&tab.Votes,
		&tab.Downloads,
		&tab.Views,
		&tab.UploadDate,
		&tab.ModifiedDate,
		&tab.UploaderID,
		&tab.Uploader,
		&tab.Tunning,
		&tab.Difficulty,
	)
	if err != nil {
		return nil, err
	}
	tab.Type = domain.TabType(tabType)
	return &tab, nil
}
