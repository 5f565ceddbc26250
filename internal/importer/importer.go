// Package importer populates the catalog from the metadata provider.
package importer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/liamwears/marquee/internal/models"
	"github.com/liamwears/marquee/internal/services"
)

// Fetcher retrieves a normalised record from the metadata provider
type Fetcher interface {
	Fetch(ctx context.Context, externalID string) (*models.CatalogItem, error)
}

// CatalogWriter stores a record unless one with the same external ID exists
type CatalogWriter interface {
	InsertIfAbsent(ctx context.Context, item *models.CatalogItem) error
}

var (
	_ Fetcher       = (*services.OMDBService)(nil)
	_ CatalogWriter = (*services.CatalogService)(nil)
)

// Outcome is the result of importing one title
type Outcome string

const (
	OutcomeImported Outcome = "imported"
	OutcomeExisting Outcome = "existing"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// Summary counts the per-title outcomes of a run
type Summary struct {
	Imported int
	Existing int
	Skipped  int
	Failed   int
}

// Total returns the number of titles processed
func (s Summary) Total() int {
	return s.Imported + s.Existing + s.Skipped + s.Failed
}

func (s *Summary) record(o Outcome) {
	switch o {
	case OutcomeImported:
		s.Imported++
	case OutcomeExisting:
		s.Existing++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Job imports titles one at a time, pacing provider calls
type Job struct {
	fetcher Fetcher
	store   CatalogWriter
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewJob creates an import job. delay is the minimum gap between provider calls.
func NewJob(fetcher Fetcher, store CatalogWriter, delay time.Duration, logger zerolog.Logger) *Job {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Job{
		fetcher: fetcher,
		store:   store,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "importer").Logger(),
	}
}

// Run imports every title in order. Per-title failures are logged and the run
// continues; only context cancellation stops it early.
func (j *Job) Run(ctx context.Context, titles []Title) (Summary, error) {
	var summary Summary

	for _, t := range titles {
		if err := j.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		outcome := j.importOne(ctx, t)
		summary.record(outcome)

		if err := ctx.Err(); err != nil {
			return summary, err
		}
	}

	j.logger.Info().
		Int("imported", summary.Imported).
		Int("existing", summary.Existing).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Data import process completed")

	return summary, nil
}

func (j *Job) importOne(ctx context.Context, t Title) Outcome {
	log := j.logger.With().
		Str("externalId", t.ExternalID).
		Str("title", t.Label()).
		Str("kind", t.Kind.String()).
		Logger()

	log.Info().Msg("Processing")

	item, err := j.fetcher.Fetch(ctx, t.ExternalID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Warn().Err(err).Msg("Provider has no record, skipping")
			return OutcomeSkipped
		}
		log.Error().Err(err).Msg("Failed to fetch from provider, skipping")
		return OutcomeFailed
	}

	if !item.Kind.IsValid() {
		log.Warn().Str("providerKind", item.Kind.String()).Msg("Skipping unexpected provider type")
		return OutcomeSkipped
	}

	if item.Title == "" {
		log.Warn().Msg("Provider record has no title, skipping")
		return OutcomeSkipped
	}

	if item.ExternalID == "" {
		item.ExternalID = t.ExternalID
	}

	if t.Kind != "" && t.Kind != item.Kind {
		log.Debug().Str("providerKind", item.Kind.String()).Msg("Provider kind differs from list entry, using provider kind")
	}

	item.IsFeatured = t.Featured

	if err := j.store.InsertIfAbsent(ctx, item); err != nil {
		if errors.Is(err, services.ErrItemExists) {
			log.Info().Msg("Skipping, already exists")
			return OutcomeExisting
		}
		log.Error().Err(err).Msg("Failed to store record")
		return OutcomeFailed
	}

	log.Info().Msg("Successfully imported")
	return OutcomeImported
}
