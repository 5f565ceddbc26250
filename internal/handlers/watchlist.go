package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/liamwears/marquee/internal/models"
	"github.com/liamwears/marquee/internal/services"
)

type watchListStore interface {
	Get(ctx context.Context, userID string) (*models.WatchList, error)
	Add(ctx context.Context, userID string, item models.WatchListItem) (*models.WatchList, error)
	Remove(ctx context.Context, userID, externalID string) (*models.WatchList, error)
}

var _ watchListStore = (*services.WatchListService)(nil)

// WatchListHandler handles "my list" requests
type WatchListHandler struct {
	lists  watchListStore
	logger zerolog.Logger
}

// NewWatchListHandler creates a new watch list handler
func NewWatchListHandler(lists watchListStore, logger zerolog.Logger) *WatchListHandler {
	return &WatchListHandler{
		lists:  lists,
		logger: logger.With().Str("component", "watchlist-handler").Logger(),
	}
}

type itemsResponse struct {
	Message string                 `json:"message,omitempty"`
	Items   []models.WatchListItem `json:"items"`
}

// Get handles GET /api/mylist/{userId}
func (h *WatchListHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	list, err := h.lists.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("userId", userID).Msg("Failed to fetch list")
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch My List.")
		return
	}
	writeJSON(w, http.StatusOK, itemsResponse{Items: list.Items})
}

// Add handles POST /api/mylist/{userId}/{externalId}
func (h *WatchListHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	externalID := r.PathValue("externalId")

	var item models.WatchListItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	item.ExternalID = strings.TrimSpace(item.ExternalID)
	if err := item.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if item.ExternalID != externalID {
		writeMessage(w, http.StatusBadRequest, "externalId in body does not match the path.")
		return
	}

	list, err := h.lists.Add(r.Context(), userID, item)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateItem):
			writeMessage(w, http.StatusConflict, "Item already in My List.")
		case errors.Is(err, models.ErrInvalidItem), errors.Is(err, models.ErrInvalidKind):
			writeMessage(w, http.StatusBadRequest, validationMessage(err))
		default:
			h.logger.Error().Err(err).Str("userId", userID).Str("externalId", externalID).Msg("Failed to add item")
			writeMessage(w, http.StatusInternalServerError, "Failed to add item to My List.")
		}
		return
	}

	writeJSON(w, http.StatusCreated, itemsResponse{Message: "Item added to My List.", Items: list.Items})
}

// Remove handles DELETE /api/mylist/{userId}/{externalId}
func (h *WatchListHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	externalID := r.PathValue("externalId")

	list, err := h.lists.Remove(r.Context(), userID, externalID)
	if err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			writeMessage(w, http.StatusNotFound, "Item not found in My List.")
			return
		}
		h.logger.Error().Err(err).Str("userId", userID).Str("externalId", externalID).Msg("Failed to remove item")
		writeMessage(w, http.StatusInternalServerError, "Failed to remove item from My List.")
		return
	}

	writeJSON(w, http.StatusOK, itemsResponse{Message: "Item removed from My List.", Items: list.Items})
}

func validationMessage(err error) string {
	if errors.Is(err, models.ErrInvalidKind) {
		return `Invalid kind. Must be "movie" or "series".`
	}
	return "externalId and kind are required."
}
