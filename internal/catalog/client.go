// Cinemind - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinemind

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinemind/internal/metrics"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// maxErrorBodySize limits how much of an error response is read for diagnostics.
const maxErrorBodySize = 64 * 1024

// castLimit is the number of billed cast members kept per record.
const castLimit = 10

var (
	// ErrNotFound is returned when the API has no movie for the id.
	ErrNotFound = errors.New("catalog: movie not found")

	// ErrNoAPIKey is returned by NewClient when no key is configured.
	ErrNoAPIKey = errors.New("catalog: api key not configured")

	// ErrRateLimited is returned when retries on HTTP 429 are exhausted.
	ErrRateLimited = errors.New("catalog: rate limit exceeded")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Endpoint, e.Code, e.Body)
}

// ClientConfig configures the metadata API client.
type ClientConfig struct {
	APIKey            string        `koanf:"api_key"`
	BaseURL           string        `koanf:"base_url"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxRetries        int           `koanf:"max_retries"` // retries on HTTP 429; 0 disables
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
}

// DefaultClientConfig returns defaults that stay under TMDB's published limits.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           DefaultBaseURL,
		RequestsPerSecond: 4,
		Burst:             4,
		Timeout:           30 * time.Second,
		MaxRetries:        5,
		RetryBaseDelay:    time.Second,
	}
}

// Client fetches movie metadata from a TMDB-compatible API. Calls are paced
// by a token bucket, retried on HTTP 429 and guarded by a circuit breaker.
type Client struct {
	baseURL        string
	apiKey         string
	http           *http.Client
	limiter        *rate.Limiter
	breaker        *breaker
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client. Zero fields in cfg take their defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	def := DefaultClientConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.RequestsPerSecond))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = def.RetryBaseDelay
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		http:           &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:        newBreaker("catalog-api"),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}, nil
}

type namedEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type castMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type crewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// MovieDetails is the details response with credits and keywords appended.
type MovieDetails struct {
	ID          int64        `json:"id"`
	IMDbID      string       `json:"imdb_id"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview"`
	ReleaseDate string       `json:"release_date"`
	PosterPath  string       `json:"poster_path"`
	Genres      []namedEntry `json:"genres"`
	Credits     struct {
		Cast []castMember `json:"cast"`
		Crew []crewMember `json:"crew"`
	} `json:"credits"`
	Keywords struct {
		Keywords []namedEntry `json:"keywords"`
	} `json:"keywords"`
}

// SearchResult is one hit of a title search.
type SearchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// Movie fetches details, credits and keywords in one request.
func (c *Client) Movie(ctx context.Context, tmdbID int64) (*MovieDetails, error) {
	query := url.Values{"append_to_response": {"credits,keywords"}}
	return castResult[MovieDetails](c.breaker.execute(func() (interface{}, error) {
		var details MovieDetails
		err := c.get(ctx, "movie", "/movie/"+strconv.FormatInt(tmdbID, 10), query, &details)
		return &details, err
	}))
}

// Search looks a title up, optionally narrowed to a release year.
func (c *Client) Search(ctx context.Context, title string, year int) ([]SearchResult, error) {
	query := url.Values{"query": {title}, "include_adult": {"false"}}
	if year > 0 {
		query.Set("year", strconv.Itoa(year))
	}

	type searchResponse struct {
		Results []SearchResult `json:"results"`
	}
	resp, err := castResult[searchResponse](c.breaker.execute(func() (interface{}, error) {
		var out searchResponse
		err := c.get(ctx, "search", "/search/movie", query, &out)
		return &out, err
	}))
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// FetchRecord builds the catalog record for a movie.
func (c *Client) FetchRecord(ctx context.Context, movieID string, tmdbID int64) (*Record, error) {
	details, err := c.Movie(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	return details.Record(movieID), nil
}

// Record converts the API response into a catalog record: genre names,
// the first ten billed cast members, the first crew member credited as
// Director and the keyword names.
func (d *MovieDetails) Record(movieID string) *Record {
	rec := &Record{
		MovieID:     movieID,
		TMDbID:      d.ID,
		IMDbID:      d.IMDbID,
		Title:       d.Title,
		Overview:    d.Overview,
		ReleaseYear: parseYear(d.ReleaseDate),
		PosterPath:  d.PosterPath,
		Source:      SourceTMDb,
		FetchedAt:   time.Now().UTC(),
	}
	for _, g := range d.Genres {
		rec.Genres = append(rec.Genres, g.Name)
	}

	cast := append([]castMember(nil), d.Credits.Cast...)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	for i := 0; i < len(cast) && i < castLimit; i++ {
		rec.Cast = append(rec.Cast, cast[i].Name)
	}

	for _, m := range d.Credits.Crew {
		if m.Job == "Director" {
			rec.Director = m.Name
			break
		}
	}
	for _, k := range d.Keywords.Keywords {
		rec.Keywords = append(rec.Keywords, k.Name)
	}
	return rec
}

// get issues a paced GET and decodes a 200 response into out.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) (err error) {
	defer func() { metrics.RecordCatalogRequest(endpoint, err) }()

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit waits for the limiter, then performs the request.
// HTTP 429 responses are retried with exponential backoff (base, 2x base,
// 4x base, ...) or the server's Retry-After seconds when present.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close() // will retry anyway
		if attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("%w after %d retries (HTTP 429)", ErrRateLimited, c.maxRetries)
}

// readBodyForError reads at most maxErrorBodySize bytes of a response body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
