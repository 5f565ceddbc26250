package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/marquee/internal/models"
	"github.com/liamwears/marquee/internal/services"
)

// memoryCatalog keeps records per kind in import order
type memoryCatalog struct {
	items map[models.Kind][]models.CatalogItem
	err   error
}

func newMemoryCatalog(items ...models.CatalogItem) *memoryCatalog {
	c := &memoryCatalog{items: make(map[models.Kind][]models.CatalogItem)}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, item := range items {
		item.ImportedAt = base.Add(time.Duration(i) * time.Minute)
		c.items[item.Kind] = append(c.items[item.Kind], item)
	}
	return c
}

func newestFirst(items []models.CatalogItem) []models.CatalogItem {
	out := append([]models.CatalogItem{}, items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ImportedAt.After(out[j].ImportedAt) })
	return out
}

func (c *memoryCatalog) List(_ context.Context, kind models.Kind, input models.ListCatalogInput) ([]models.CatalogItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := []models.CatalogItem{}
	for _, item := range newestFirst(c.items[kind]) {
		if input.Query != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(input.Query)) {
			continue
		}
		if input.Genre != "" && !strings.Contains(item.Genre, input.Genre) {
			continue
		}
		out = append(out, item)
		if input.Limit > 0 && len(out) == input.Limit {
			break
		}
	}
	return out, nil
}

func (c *memoryCatalog) Recent(ctx context.Context, kind models.Kind, n int) ([]models.CatalogItem, error) {
	return c.List(ctx, kind, models.ListCatalogInput{Limit: n})
}

func (c *memoryCatalog) Featured(_ context.Context) ([]models.CatalogItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := []models.CatalogItem{}
	for _, kind := range []models.Kind{models.KindMovie, models.KindSeries} {
		for _, item := range c.items[kind] {
			if item.IsFeatured {
				out = append(out, item)
			}
		}
	}
	return newestFirst(out), nil
}

func (c *memoryCatalog) Get(_ context.Context, kind models.Kind, externalID string) (*models.CatalogItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, item := range c.items[kind] {
		if item.ExternalID == externalID {
			found := item
			return &found, nil
		}
	}
	return nil, services.ErrNotFound
}

func (c *memoryCatalog) Detail(ctx context.Context, externalID string) (*models.CatalogItem, error) {
	for _, kind := range []models.Kind{models.KindMovie, models.KindSeries} {
		item, err := c.Get(ctx, kind, externalID)
		if !errors.Is(err, services.ErrNotFound) {
			return item, err
		}
	}
	return nil, services.ErrNotFound
}

func (c *memoryCatalog) Genres(_ context.Context) ([]models.Genre, error) {
	if c.err != nil {
		return nil, c.err
	}
	var fields []string
	for _, items := range c.items {
		for _, item := range items {
			fields = append(fields, item.Genre)
		}
	}
	return services.DistinctGenres(fields), nil
}

func newCatalogMux(store catalogStore) *http.ServeMux {
	h := NewCatalogHandler(store, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/movies", h.Movies)
	mux.HandleFunc("GET /api/series", h.Series)
	mux.HandleFunc("GET /api/trending-movies", h.Trending)
	mux.HandleFunc("GET /api/featured", h.Featured)
	mux.HandleFunc("GET /api/detail/{externalId}", h.Detail)
	mux.HandleFunc("GET /api/genres", h.Genres)
	return mux
}

func decodeCatalog(t *testing.T, body []byte) []models.CatalogItem {
	t.Helper()
	var items []models.CatalogItem
	require.NoError(t, json.Unmarshal(body, &items))
	return items
}

func externalIDs(items []models.CatalogItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ExternalID)
	}
	return ids
}

func sampleCatalog() *memoryCatalog {
	return newMemoryCatalog(
		models.CatalogItem{ExternalID: "m1", Title: "Heat", Kind: models.KindMovie, Genre: "Crime, Drama"},
		models.CatalogItem{ExternalID: "m2", Title: "Alien", Kind: models.KindMovie, Genre: "Horror, Sci-Fi", IsFeatured: true},
		models.CatalogItem{ExternalID: "s1", Title: "Dark", Kind: models.KindSeries, Genre: "Drama, Sci-Fi", IsFeatured: true},
		models.CatalogItem{ExternalID: "m3", Title: "Aliens", Kind: models.KindMovie, Genre: "Action, Sci-Fi"},
		models.CatalogItem{ExternalID: "m4", Title: "Up", Kind: models.KindMovie, Genre: "Animation"},
		models.CatalogItem{ExternalID: "m5", Title: "Jaws", Kind: models.KindMovie, Genre: "Thriller"},
		models.CatalogItem{ExternalID: "m6", Title: "Rocky", Kind: models.KindMovie, Genre: "Drama, Sport"},
	)
}

func TestCatalog_ListsNewestFirst(t *testing.T) {
	mux := newCatalogMux(sampleCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/movies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"m6", "m5", "m4", "m3", "m2", "m1"}, externalIDs(decodeCatalog(t, rec.Body.Bytes())))

	rec = doRequest(t, mux, http.MethodGet, "/api/series", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"s1"}, externalIDs(decodeCatalog(t, rec.Body.Bytes())))
}

func TestCatalog_ListFilters(t *testing.T) {
	mux := newCatalogMux(sampleCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/movies?query=alien", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"m3", "m2"}, externalIDs(decodeCatalog(t, rec.Body.Bytes())))

	rec = doRequest(t, mux, http.MethodGet, "/api/movies?genre=Drama&limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"m6"}, externalIDs(decodeCatalog(t, rec.Body.Bytes())))
}

func TestCatalog_EmptyListIsArray(t *testing.T) {
	mux := newCatalogMux(newMemoryCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/series", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCatalog_TrendingReturnsFiveNewestFilms(t *testing.T) {
	mux := newCatalogMux(sampleCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/trending-movies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"m6", "m5", "m4", "m3", "m2"}, externalIDs(decodeCatalog(t, rec.Body.Bytes())))
}

func TestCatalog_Featured(t *testing.T) {
	mux := newCatalogMux(sampleCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/featured", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"s1", "m2"}, externalIDs(decodeCatalog(t, rec.Body.Bytes())))
}

func TestCatalog_DetailFallsBackToSeries(t *testing.T) {
	mux := newCatalogMux(sampleCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/detail/m1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var film models.CatalogItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &film))
	assert.Equal(t, models.KindMovie, film.Kind)

	rec = doRequest(t, mux, http.MethodGet, "/api/detail/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var show models.CatalogItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &show))
	assert.Equal(t, "Dark", show.Title)
	assert.Equal(t, models.KindSeries, show.Kind)

	rec = doRequest(t, mux, http.MethodGet, "/api/detail/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Content not found.", decodeMessage(t, rec))
}

func TestCatalog_Genres(t *testing.T) {
	mux := newCatalogMux(sampleCatalog())

	rec := doRequest(t, mux, http.MethodGet, "/api/genres", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var genres []models.Genre
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &genres))
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Action", "Animation", "Crime", "Drama", "Horror", "Sci-Fi", "Sport", "Thriller"}, names)
	assert.Contains(t, genres, models.Genre{ID: "sci-fi", Name: "Sci-Fi"})
}

func TestCatalog_StoreFailures(t *testing.T) {
	store := sampleCatalog()
	store.err = errors.New("pool closed")
	mux := newCatalogMux(store)

	for _, path := range []string{"/api/movies", "/api/series", "/api/trending-movies", "/api/featured", "/api/detail/m1", "/api/genres"} {
		rec := doRequest(t, mux, http.MethodGet, path, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		msg := decodeMessage(t, rec)
		assert.NotEmpty(t, msg, path)
		assert.NotContains(t, msg, "pool closed", path)
	}
}
