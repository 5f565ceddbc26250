package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/liamwears/marquee/internal/models"
	"github.com/liamwears/marquee/internal/services"
)

type metadataProvider interface {
	Fetch(ctx context.Context, externalID string) (*models.CatalogItem, error)
	SeasonEpisodes(ctx context.Context, externalID string, season int) (*models.Season, error)
}

type catalogLookup interface {
	Get(ctx context.Context, kind models.Kind, externalID string) (*models.CatalogItem, error)
}

var (
	_ metadataProvider = (*services.OMDBService)(nil)
	_ catalogLookup    = (*services.CatalogService)(nil)
)

// EnrichHandler serves live provider lookups merged with local catalog data
type EnrichHandler struct {
	provider metadataProvider
	catalog  catalogLookup
	logger   zerolog.Logger
}

// NewEnrichHandler creates a new enrichment handler
func NewEnrichHandler(provider metadataProvider, catalog catalogLookup, logger zerolog.Logger) *EnrichHandler {
	return &EnrichHandler{
		provider: provider,
		catalog:  catalog,
		logger:   logger.With().Str("component", "enrich-handler").Logger(),
	}
}

// mergeDetail overlays local curation on the provider record
func mergeDetail(base, local *models.CatalogItem) *models.CatalogItem {
	merged := *base
	if local == nil {
		return &merged
	}
	if local.Plot != "" {
		merged.Plot = local.Plot
	}
	if local.Director != "" {
		merged.Director = local.Director
	}
	merged.IsFeatured = local.IsFeatured
	return &merged
}

// Detail handles GET /api/detail/{kind}/{externalId}
func (h *EnrichHandler) Detail(w http.ResponseWriter, r *http.Request) {
	kind := models.ParseKind(r.PathValue("kind"))
	if !kind.IsValid() {
		writeMessage(w, http.StatusBadRequest, `Invalid media type. Must be "movie" or "series".`)
		return
	}
	externalID := r.PathValue("externalId")
	log := h.logger.With().Str("kind", kind.String()).Str("externalId", externalID).Logger()

	base, err := h.provider.Fetch(r.Context(), externalID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch detail from provider")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch detailed content.")
		return
	}

	local, err := h.catalog.Get(r.Context(), kind, externalID)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error().Err(err).Msg("Failed to fetch local record")
			writeMessage(w, http.StatusInternalServerError, "Failed to fetch detailed content.")
			return
		}
		local = nil
	}

	writeJSON(w, http.StatusOK, mergeDetail(base, local))
}

// Episodes handles GET /api/episodes/{externalId}/{season}
func (h *EnrichHandler) Episodes(w http.ResponseWriter, r *http.Request) {
	externalID := r.PathValue("externalId")
	season, err := strconv.Atoi(r.PathValue("season"))
	if err != nil || season < 1 {
		writeMessage(w, http.StatusBadRequest, "Invalid season number.")
		return
	}

	result, err := h.provider.SeasonEpisodes(r.Context(), externalID, season)
	if err != nil {
		h.logger.Error().Err(err).Str("externalId", externalID).Int("season", season).Msg("Failed to fetch episodes")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch episodes.")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
