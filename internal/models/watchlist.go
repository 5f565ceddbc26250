package models

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidItem   = errors.New("externalId and kind are required")
	ErrInvalidKind   = errors.New("kind must be movie or series")
	ErrDuplicateItem = errors.New("item already in list")
	ErrItemNotFound  = errors.New("item not found in list")
)

// WatchListItem is a denormalised catalog summary stored inside a list
type WatchListItem struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`
	PosterURL  string `json:"posterUrl,omitempty"`
	Kind       Kind   `json:"kind"`
	Year       string `json:"year,omitempty"`
	Plot       string `json:"plot,omitempty"`
	Genre      string `json:"genre,omitempty"`
	Director   string `json:"director,omitempty"`
	Actors     string `json:"actors,omitempty"`
	ImdbRating string `json:"imdbRating,omitempty"`
	IsFeatured bool   `json:"isFeatured,omitempty"`
}

// Validate checks the fields an add request must carry
func (i *WatchListItem) Validate() error {
	if strings.TrimSpace(i.ExternalID) == "" || strings.TrimSpace(string(i.Kind)) == "" {
		return ErrInvalidItem
	}
	if !ParseKind(string(i.Kind)).IsValid() {
		return ErrInvalidKind
	}
	return nil
}

// WatchList is a user's "my list"
type WatchList struct {
	UserID    string          `db:"userId" json:"userId"`
	Items     []WatchListItem `db:"items" json:"items"`
	CreatedAt time.Time       `db:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `db:"updatedAt" json:"updatedAt"`
}

// Contains reports whether an item with the external ID is in the list
func (l *WatchList) Contains(externalID string) bool {
	for _, item := range l.Items {
		if item.ExternalID == externalID {
			return true
		}
	}
	return false
}

// Add appends the item unless one with the same external ID exists.
// The list is left untouched on error.
func (l *WatchList) Add(item WatchListItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.Kind = ParseKind(string(item.Kind))
	if l.Contains(item.ExternalID) {
		return ErrDuplicateItem
	}
	l.Items = append(l.Items, item)
	return nil
}

// Remove filters out the item with the external ID, keeping order.
func (l *WatchList) Remove(externalID string) error {
	kept := make([]WatchListItem, 0, len(l.Items))
	for _, item := range l.Items {
		if item.ExternalID != externalID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(l.Items) {
		return ErrItemNotFound
	}
	l.Items = kept
	return nil
}
