package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/marquee/internal/models"
	"github.com/liamwears/marquee/internal/services"
)

type fakeFetcher struct {
	records map[string]models.CatalogItem
	errs    map[string]error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, externalID string) (*models.CatalogItem, error) {
	f.calls = append(f.calls, externalID)
	if err, ok := f.errs[externalID]; ok {
		return nil, err
	}
	rec, ok := f.records[externalID]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &rec, nil
}

type memoryCatalog struct {
	mu      sync.Mutex
	byKind  map[models.Kind]map[string]models.CatalogItem
	failIDs map[string]bool
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{byKind: map[models.Kind]map[string]models.CatalogItem{
		models.KindMovie:  {},
		models.KindSeries: {},
	}}
}

func (m *memoryCatalog) InsertIfAbsent(_ context.Context, item *models.CatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIDs[item.ExternalID] {
		return fmt.Errorf("failed to insert: connection reset")
	}
	table := m.byKind[item.Kind]
	if _, ok := table[item.ExternalID]; ok {
		return services.ErrItemExists
	}
	item.ImportedAt = time.Now()
	table[item.ExternalID] = *item
	return nil
}

func (m *memoryCatalog) count(kind models.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKind[kind])
}

func newJob(f Fetcher, c CatalogWriter) *Job {
	return NewJob(f, c, 0, zerolog.Nop())
}

func TestJob_RunTwiceIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]models.CatalogItem{
		"ttAAA": {ExternalID: "ttAAA", Title: "Alpha", Kind: models.KindMovie},
	}}
	catalog := newMemoryCatalog()
	titles := []Title{{ExternalID: "ttAAA", Kind: models.KindMovie}}
	job := newJob(fetcher, catalog)

	first, err := job.Run(context.Background(), titles)
	require.NoError(t, err)
	assert.Equal(t, Summary{Imported: 1}, first)

	second, err := job.Run(context.Background(), titles)
	require.NoError(t, err)
	assert.Equal(t, Summary{Existing: 1}, second)

	assert.Equal(t, 1, catalog.count(models.KindMovie))
	assert.Equal(t, 0, catalog.count(models.KindSeries))
}

func TestJob_KindComesFromProvider(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]models.CatalogItem{
		"tt0903747": {ExternalID: "tt0903747", Title: "Breaking Bad", Kind: models.KindSeries, TotalSeasons: "5"},
	}}
	catalog := newMemoryCatalog()
	job := newJob(fetcher, catalog)

	summary, err := job.Run(context.Background(), []Title{
		{ExternalID: "tt0903747", Kind: models.KindMovie, Featured: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	stored := catalog.byKind[models.KindSeries]["tt0903747"]
	assert.Equal(t, "Breaking Bad", stored.Title)
	assert.True(t, stored.IsFeatured)
	assert.Equal(t, 0, catalog.count(models.KindMovie))
}

func TestJob_SkipsUnexpectedKind(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]models.CatalogItem{
		"ttGAME": {ExternalID: "ttGAME", Title: "A Game", Kind: models.Kind("game")},
	}}
	catalog := newMemoryCatalog()

	summary, err := newJob(fetcher, catalog).Run(context.Background(), []Title{{ExternalID: "ttGAME", Kind: models.KindMovie}})
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 1}, summary)
	assert.Equal(t, 0, catalog.count(models.KindMovie))
}

func TestJob_PerItemFailuresDoNotAbort(t *testing.T) {
	fetcher := &fakeFetcher{
		records: map[string]models.CatalogItem{
			"tt1": {ExternalID: "tt1", Title: "One", Kind: models.KindMovie},
			"tt4": {ExternalID: "tt4", Title: "Four", Kind: models.KindMovie},
			"tt5": {ExternalID: "tt5", Title: "Five", Kind: models.KindSeries},
		},
		errs: map[string]error{
			"tt2": fmt.Errorf("%w: status 503", services.ErrProviderUnavailable),
		},
	}
	catalog := newMemoryCatalog()
	catalog.failIDs = map[string]bool{"tt4": true}

	titles := []Title{
		{ExternalID: "tt1"}, // imported
		{ExternalID: "tt2"}, // provider failure
		{ExternalID: "tt3"}, // not found
		{ExternalID: "tt4"}, // store failure
		{ExternalID: "tt5"}, // imported
	}

	summary, err := newJob(fetcher, catalog).Run(context.Background(), titles)
	require.NoError(t, err)
	assert.Equal(t, Summary{Imported: 2, Skipped: 1, Failed: 2}, summary)
	assert.Equal(t, 5, summary.Total())
	assert.Equal(t, []string{"tt1", "tt2", "tt3", "tt4", "tt5"}, fetcher.calls)
	assert.Equal(t, 1, catalog.count(models.KindMovie))
	assert.Equal(t, 1, catalog.count(models.KindSeries))
}

func TestJob_FillsMissingExternalID(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]models.CatalogItem{
		"tt7": {Title: "Seven", Kind: models.KindMovie},
	}}
	catalog := newMemoryCatalog()

	_, err := newJob(fetcher, catalog).Run(context.Background(), []Title{{ExternalID: "tt7"}})
	require.NoError(t, err)
	assert.Contains(t, catalog.byKind[models.KindMovie], "tt7")
}

func TestJob_PacesProviderCalls(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]models.CatalogItem{}}
	job := NewJob(fetcher, newMemoryCatalog(), 20*time.Millisecond, zerolog.Nop())

	start := time.Now()
	_, err := job.Run(context.Background(), []Title{{ExternalID: "a"}, {ExternalID: "b"}, {ExternalID: "c"}})
	require.NoError(t, err)

	// First call is immediate, the next two wait one interval each.
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestJob_StopsOnCancel(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string]models.CatalogItem{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newJob(fetcher, newMemoryCatalog()).Run(ctx, []Title{{ExternalID: "a"}, {ExternalID: "b"}})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, summary.Total())
	assert.Empty(t, fetcher.calls)
}
