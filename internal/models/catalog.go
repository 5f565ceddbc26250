package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates films from series
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// NotAvailable is the provider's sentinel for an unknown field value
const NotAvailable = "N/A"

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the kind is one the catalog stores
func (k Kind) IsValid() bool {
	return k == KindMovie || k == KindSeries
}

// ParseKind normalises a caller or provider supplied kind. "film", "tv" and
// "show" are accepted aliases.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "film":
		return KindMovie
	case "series", "tv", "show":
		return KindSeries
	default:
		return Kind(strings.ToLower(strings.TrimSpace(s)))
	}
}

// CatalogItem represents an imported film or series
type CatalogItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ExternalID   string    `db:"externalId" json:"externalId"`
	Title        string    `db:"title" json:"title"`
	Year         string    `db:"year" json:"year,omitempty"`
	Rated        string    `db:"rated" json:"rated,omitempty"`
	Released     string    `db:"released" json:"released,omitempty"`
	Runtime      string    `db:"runtime" json:"runtime,omitempty"`
	Genre        string    `db:"genre" json:"genre,omitempty"`
	Director     string    `db:"director" json:"director,omitempty"`
	Writer       string    `db:"writer" json:"writer,omitempty"`
	Actors       string    `db:"actors" json:"actors,omitempty"`
	Plot         string    `db:"plot" json:"plot,omitempty"`
	Language     string    `db:"language" json:"language,omitempty"`
	Country      string    `db:"country" json:"country,omitempty"`
	Awards       string    `db:"awards" json:"awards,omitempty"`
	PosterURL    string    `db:"posterUrl" json:"posterUrl,omitempty"`
	Metascore    string    `db:"metascore" json:"metascore,omitempty"`
	ImdbRating   string    `db:"imdbRating" json:"imdbRating,omitempty"`
	ImdbVotes    string    `db:"imdbVotes" json:"imdbVotes,omitempty"`
	Kind         Kind      `db:"kind" json:"kind"`
	TotalSeasons string    `db:"totalSeasons" json:"totalSeasons,omitempty"`
	IsFeatured   bool      `db:"isFeatured" json:"isFeatured"`
	ImportedAt   time.Time `db:"importedAt" json:"importedAt"`
}

// GenreTokens splits the comma-joined genre field, dropping blanks and the
// provider's unknown sentinel.
func (c *CatalogItem) GenreTokens() []string {
	var tokens []string
	for _, part := range strings.Split(c.Genre, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == NotAvailable {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// Genre is a distinct genre token exposed by the genres endpoint
type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListCatalogInput represents the filters for listing catalog items
type ListCatalogInput struct {
	Query    string `query:"query"`
	Genre    string `query:"genre"`
	Featured bool   `query:"featured"`
	Limit    int    `query:"limit" validate:"min=0,max=500"`
}

// Episode represents a single episode in a provider season listing
type Episode struct {
	ExternalID string `json:"externalId"`
	Title      string `json:"title"`
	Episode    string `json:"episode"`
	Released   string `json:"released,omitempty"`
	ImdbRating string `json:"imdbRating,omitempty"`
}

// Season is the provider's episode listing for one season of a series
type Season struct {
	SeriesTitle  string    `json:"seriesTitle"`
	Season       string    `json:"season"`
	TotalSeasons string    `json:"totalSeasons,omitempty"`
	Episodes     []Episode `json:"episodes"`
}
