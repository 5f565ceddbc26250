package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liamwears/marquee/internal/models"
)

const catalogColumns = `id, "externalId", title, year, rated, released, runtime, genre,
	director, writer, actors, plot, language, country, awards, "posterUrl",
	metascore, "imdbRating", "imdbVotes", kind, "totalSeasons", "isFeatured", "importedAt"`

// CatalogService handles reads and import writes for films and series
type CatalogService struct {
	db *pgxpool.Pool
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(db *pgxpool.Pool) *CatalogService {
	return &CatalogService{db: db}
}

// tableFor returns the table holding records of the given kind
func tableFor(kind models.Kind) (string, error) {
	switch kind {
	case models.KindMovie:
		return `"Movie"`, nil
	case models.KindSeries:
		return `"Series"`, nil
	default:
		return "", fmt.Errorf("unsupported kind %q", kind)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogItem(row rowScanner) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := row.Scan(
		&item.ID,
		&item.ExternalID,
		&item.Title,
		&item.Year,
		&item.Rated,
		&item.Released,
		&item.Runtime,
		&item.Genre,
		&item.Director,
		&item.Writer,
		&item.Actors,
		&item.Plot,
		&item.Language,
		&item.Country,
		&item.Awards,
		&item.PosterURL,
		&item.Metascore,
		&item.ImdbRating,
		&item.ImdbVotes,
		&item.Kind,
		&item.TotalSeasons,
		&item.IsFeatured,
		&item.ImportedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func collectCatalogItems(rows pgx.Rows) ([]models.CatalogItem, error) {
	defer rows.Close()

	items := []models.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog items: %w", err)
	}

	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List retrieves records of one kind, newest import first
func (s *CatalogService) List(ctx context.Context, kind models.Kind, input models.ListCatalogInput) ([]models.CatalogItem, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + catalogColumns + ` FROM ` + table + ` WHERE TRUE`
	args := []interface{}{}
	argCount := 0

	if input.Query != "" {
		argCount++
		query += fmt.Sprintf(" AND title ILIKE $%d", argCount)
		args = append(args, "%"+escapeLike(input.Query)+"%")
	}

	if input.Genre != "" {
		argCount++
		query += fmt.Sprintf(" AND genre ILIKE $%d", argCount)
		args = append(args, "%"+escapeLike(input.Genre)+"%")
	}

	if input.Featured {
		query += ` AND "isFeatured"`
	}

	query += ` ORDER BY "importedAt" DESC`

	if input.Limit > 0 {
		argCount++
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, input.Limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind, err)
	}

	return collectCatalogItems(rows)
}

// Recent retrieves the n most recently imported records of one kind
func (s *CatalogService) Recent(ctx context.Context, kind models.Kind, n int) ([]models.CatalogItem, error) {
	if n < 1 {
		n = 5
	}
	return s.List(ctx, kind, models.ListCatalogInput{Limit: n})
}

// Featured retrieves editorially flagged films and series, newest first
func (s *CatalogService) Featured(ctx context.Context) ([]models.CatalogItem, error) {
	query := `
		SELECT * FROM (
			SELECT ` + catalogColumns + ` FROM "Movie" WHERE "isFeatured"
			UNION ALL
			SELECT ` + catalogColumns + ` FROM "Series" WHERE "isFeatured"
		) AS featured
		ORDER BY "importedAt" DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured items: %w", err)
	}

	return collectCatalogItems(rows)
}

// Get retrieves a record of one kind by external ID
func (s *CatalogService) Get(ctx context.Context, kind models.Kind, externalID string) (*models.CatalogItem, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + catalogColumns + ` FROM ` + table + ` WHERE "externalId" = $1`

	item, err := scanCatalogItem(s.db.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s %s: %w", kind, externalID, err)
	}

	return item, nil
}

// Detail looks the external ID up in films first, then series
func (s *CatalogService) Detail(ctx context.Context, externalID string) (*models.CatalogItem, error) {
	for _, kind := range []models.Kind{models.KindMovie, models.KindSeries} {
		item, err := s.Get(ctx, kind, externalID)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

// Genres returns the distinct genre tokens across films and series
func (s *CatalogService) Genres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.db.Query(ctx, `SELECT genre FROM "Movie" UNION ALL SELECT genre FROM "Series"`)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		fields = append(fields, genre)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating genres: %w", err)
	}

	return DistinctGenres(fields), nil
}

// DistinctGenres splits comma-joined genre fields and de-duplicates the
// tokens case-insensitively, sorted by name.
func DistinctGenres(fields []string) []models.Genre {
	seen := make(map[string]bool)
	genres := []models.Genre{}

	for _, field := range fields {
		item := models.CatalogItem{Genre: field}
		for _, token := range item.GenreTokens() {
			id := strings.ReplaceAll(strings.ToLower(token), " ", "-")
			if seen[id] {
				continue
			}
			seen[id] = true
			genres = append(genres, models.Genre{ID: id, Name: token})
		}
	}

	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	return genres
}

// InsertIfAbsent stores a new record. An existing record with the same
// external ID is never modified; ErrItemExists is returned instead.
func (s *CatalogService) InsertIfAbsent(ctx context.Context, item *models.CatalogItem) error {
	table, err := tableFor(item.Kind)
	if err != nil {
		return err
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query := `
		INSERT INTO ` + table + ` (id, "externalId", title, year, rated, released, runtime, genre,
			director, writer, actors, plot, language, country, awards, "posterUrl",
			metascore, "imdbRating", "imdbVotes", kind, "totalSeasons", "isFeatured")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT ("externalId") DO NOTHING
		RETURNING "importedAt"
	`

	err = s.db.QueryRow(ctx, query,
		item.ID,
		item.ExternalID,
		item.Title,
		item.Year,
		item.Rated,
		item.Released,
		item.Runtime,
		item.Genre,
		item.Director,
		item.Writer,
		item.Actors,
		item.Plot,
		item.Language,
		item.Country,
		item.Awards,
		item.PosterURL,
		item.Metascore,
		item.ImdbRating,
		item.ImdbVotes,
		item.Kind,
		item.TotalSeasons,
		item.IsFeatured,
	).Scan(&item.ImportedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemExists
		}
		return fmt.Errorf("failed to insert %s %s: %w", item.Kind, item.ExternalID, err)
	}

	return nil
}
