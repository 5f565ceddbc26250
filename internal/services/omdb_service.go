package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/liamwears/marquee/internal/models"
)

// ResponseCache stores raw provider payloads between requests
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// OMDBService handles interactions with the OMDb API
type OMDBService struct {
	client  *http.Client
	apiKey  string
	baseURL string
	cache   ResponseCache
	logger  zerolog.Logger
}

// OMDBConfig holds OMDb service configuration
type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewOMDBService creates a new OMDb service
func NewOMDBService(cfg OMDBConfig, logger zerolog.Logger) *OMDBService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OMDBService{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		logger:  logger.With().Str("component", "omdb").Logger(),
	}
}

// WithCache makes Fetch serve repeated lookups from the cache
func (s *OMDBService) WithCache(cache ResponseCache) *OMDBService {
	s.cache = cache
	return s
}

// omdbTitle is the provider's full-detail payload
type omdbTitle struct {
	ImdbID       string `json:"imdbID"`
	Title        string `json:"Title"`
	Year         string `json:"Year"`
	Rated        string `json:"Rated"`
	Released     string `json:"Released"`
	Runtime      string `json:"Runtime"`
	Genre        string `json:"Genre"`
	Director     string `json:"Director"`
	Writer       string `json:"Writer"`
	Actors       string `json:"Actors"`
	Plot         string `json:"Plot"`
	Language     string `json:"Language"`
	Country      string `json:"Country"`
	Awards       string `json:"Awards"`
	Poster       string `json:"Poster"`
	Metascore    string `json:"Metascore"`
	ImdbRating   string `json:"imdbRating"`
	ImdbVotes    string `json:"imdbVotes"`
	Type         string `json:"Type"`
	TotalSeasons string `json:"totalSeasons"`
	Response     string `json:"Response"`
	Error        string `json:"Error,omitempty"`
}

type omdbSeason struct {
	Title        string `json:"Title"`
	Season       string `json:"Season"`
	TotalSeasons string `json:"totalSeasons"`
	Episodes     []struct {
		Title      string `json:"Title"`
		Released   string `json:"Released"`
		Episode    string `json:"Episode"`
		ImdbRating string `json:"imdbRating"`
		ImdbID     string `json:"imdbID"`
	} `json:"Episodes"`
	Response string `json:"Response"`
	Error    string `json:"Error,omitempty"`
}

// doRequest performs an HTTP request to the OMDb API
func (s *OMDBService) doRequest(ctx context.Context, params map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("apikey", s.apiKey)
	for key, value := range params {
		q.Set(key, value)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrProviderUnavailable, err)
	}

	// OMDb answers unknown IDs with 200 and Response=False, but a 401 for bad keys
	// and quota exhaustion.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	return body, nil
}

// classify maps a Response=False payload to a sentinel error
func classify(message string) error {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "not found") || strings.Contains(lower, "incorrect imdb id") {
		return fmt.Errorf("%w: %s", ErrNotFound, message)
	}
	return fmt.Errorf("%w: %s", ErrProviderUnavailable, message)
}

// Fetch retrieves the full-detail record for an external ID. It returns
// ErrNotFound when the provider does not know the ID and ErrProviderUnavailable
// for transport or quota failures. No retry is attempted.
func (s *OMDBService) Fetch(ctx context.Context, externalID string) (*models.CatalogItem, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, ErrNotFound
	}

	cacheKey := "omdb:title:" + externalID
	if s.cache != nil {
		if body, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
			s.logger.Warn().Err(err).Str("externalId", externalID).Msg("Cache lookup failed")
		} else if ok {
			var cached omdbTitle
			if err := json.Unmarshal(body, &cached); err == nil && cached.Response == "True" {
				return normalize(cached), nil
			}
		}
	}

	body, err := s.doRequest(ctx, map[string]string{
		"i":    externalID,
		"plot": "full",
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("externalId", externalID).Msg("OMDb request failed")
		return nil, err
	}

	var title omdbTitle
	if err := json.Unmarshal(body, &title); err != nil {
		s.logger.Warn().Err(err).Str("externalId", externalID).Msg("OMDb response could not be decoded")
		return nil, fmt.Errorf("%w: failed to unmarshal title: %v", ErrProviderUnavailable, err)
	}

	if title.Response != "True" {
		return nil, classify(title.Error)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, body); err != nil {
			s.logger.Warn().Err(err).Str("externalId", externalID).Msg("Cache store failed")
		}
	}

	return normalize(title), nil
}

// SeasonEpisodes retrieves the episode listing for one season of a series
func (s *OMDBService) SeasonEpisodes(ctx context.Context, externalID string, season int) (*models.Season, error) {
	if strings.TrimSpace(externalID) == "" || season < 1 {
		return nil, ErrNotFound
	}

	body, err := s.doRequest(ctx, map[string]string{
		"i":      externalID,
		"Season": strconv.Itoa(season),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("externalId", externalID).Int("season", season).Msg("OMDb season request failed")
		return nil, err
	}

	var raw omdbSeason
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal season: %v", ErrProviderUnavailable, err)
	}
	if raw.Response != "True" {
		return nil, classify(raw.Error)
	}

	result := &models.Season{
		SeriesTitle:  raw.Title,
		Season:       raw.Season,
		TotalSeasons: raw.TotalSeasons,
		Episodes:     make([]models.Episode, 0, len(raw.Episodes)),
	}
	for _, ep := range raw.Episodes {
		result.Episodes = append(result.Episodes, models.Episode{
			ExternalID: ep.ImdbID,
			Title:      ep.Title,
			Episode:    ep.Episode,
			Released:   ep.Released,
			ImdbRating: ep.ImdbRating,
		})
	}

	return result, nil
}

// normalize converts the provider payload into the catalog record shape.
// The kind is taken from the provider's own Type field; callers reject kinds
// the catalog does not store.
func normalize(t omdbTitle) *models.CatalogItem {
	item := &models.CatalogItem{
		ExternalID: t.ImdbID,
		Title:      t.Title,
		Year:       t.Year,
		Rated:      t.Rated,
		Released:   t.Released,
		Runtime:    t.Runtime,
		Genre:      t.Genre,
		Director:   t.Director,
		Writer:     t.Writer,
		Actors:     t.Actors,
		Plot:       t.Plot,
		Language:   t.Language,
		Country:    t.Country,
		Awards:     t.Awards,
		PosterURL:  t.Poster,
		Metascore:  t.Metascore,
		ImdbRating: t.ImdbRating,
		ImdbVotes:  t.ImdbVotes,
		Kind:       models.ParseKind(t.Type),
	}
	if item.Kind == models.KindSeries {
		item.TotalSeasons = t.TotalSeasons
	}
	return item
}
