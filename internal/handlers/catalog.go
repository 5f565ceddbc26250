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

const trendingLimit = 5

type catalogStore interface {
	List(ctx context.Context, kind models.Kind, input models.ListCatalogInput) ([]models.CatalogItem, error)
	Recent(ctx context.Context, kind models.Kind, n int) ([]models.CatalogItem, error)
	Featured(ctx context.Context) ([]models.CatalogItem, error)
	Detail(ctx context.Context, externalID string) (*models.CatalogItem, error)
	Genres(ctx context.Context) ([]models.Genre, error)
}

var _ catalogStore = (*services.CatalogService)(nil)

// CatalogHandler serves the imported catalog
type CatalogHandler struct {
	catalog catalogStore
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog catalogStore, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With().Str("component", "catalog-handler").Logger(),
	}
}

func listInput(r *http.Request) models.ListCatalogInput {
	query := r.URL.Query()

	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 0 || limit > 500 {
		limit = 0
	}

	return models.ListCatalogInput{
		Query:    query.Get("query"),
		Genre:    query.Get("genre"),
		Featured: query.Get("featured") == "true",
		Limit:    limit,
	}
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request, kind models.Kind, failure string) {
	items, err := h.catalog.List(r.Context(), kind, listInput(r))
	if err != nil {
		h.logger.Error().Err(err).Str("kind", kind.String()).Msg("Failed to list catalog")
		writeMessage(w, http.StatusInternalServerError, failure)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Movies handles GET /api/movies
func (h *CatalogHandler) Movies(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.KindMovie, "Failed to fetch movies.")
}

// Series handles GET /api/series
func (h *CatalogHandler) Series(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, models.KindSeries, "Failed to fetch series.")
}

// Trending handles GET /api/trending-movies
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Recent(r.Context(), models.KindMovie, trendingLimit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch trending movies")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch trending movies.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Featured handles GET /api/featured
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.Featured(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch featured items")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch featured content.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Detail handles GET /api/detail/{externalId}
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	externalID := r.PathValue("externalId")

	item, err := h.catalog.Detail(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Content not found.")
			return
		}
		h.logger.Error().Err(err).Str("externalId", externalID).Msg("Failed to fetch detail")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch content details.")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Genres handles GET /api/genres
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.Genres(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch genres")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch genres.")
		return
	}
	writeJSON(w, http.StatusOK, genres)
}
