package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	UnknownTitle   = "Unknown movie"

	defaultTimeout   = 10 * time.Second
	defaultCacheTTL  = 24 * time.Hour
	movieCachePrefix = "tmdb:movie:"
)

// Movie is the display data attached to watchlist and review responses.
type Movie struct {
	TMDBID     string  `json:"tmdbId"`
	Title      string  `json:"title"`
	PosterPath *string `json:"posterPath"`
}

// Unknown is the record returned when a lookup fails.
func Unknown(movieID string) Movie {
	return Movie{TMDBID: movieID, Title: UnknownTitle}
}

type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit rate.Limit
	Burst     int
	Redis     *redis.Client
	CacheTTL  time.Duration
	Logger    *logrus.Logger
}

// Client looks movies up in TMDB. Results are cached in redis when a client
// is configured; failures are never cached.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	redis      *redis.Client
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaultCacheTTL
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Inf
	}
	if config.Burst == 0 {
		config.Burst = 1
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(config.RateLimit, config.Burst),
		redis:      config.Redis,
		cacheTTL:   config.CacheTTL,
		logger:     config.Logger,
	}
}

type tmdbMovie struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	PosterPath *string `json:"poster_path"`
}

// GetMovie never fails: any lookup error is logged and the unknown record returned.
func (c *Client) GetMovie(ctx context.Context, movieID string) Movie {
	cacheKey := movieCachePrefix + movieID
	if c.redis != nil {
		cached, err := c.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var movie Movie
			if err := json.Unmarshal([]byte(cached), &movie); err == nil {
				return movie
			}
			c.logger.WithError(err).Warn("Failed to unmarshal cached movie")
		} else if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("Failed to read from Redis")
		}
	}

	movie, err := c.fetchMovie(ctx, movieID)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"movieID": movieID,
			"error":   err,
		}).Warn("Movie lookup failed")
		return Unknown(movieID)
	}

	if c.redis != nil {
		payload, err := json.Marshal(movie)
		if err == nil {
			if err := c.redis.Set(ctx, cacheKey, payload, c.cacheTTL).Err(); err != nil {
				c.logger.WithError(err).Warn("Failed to write movie to cache")
			}
		}
	}
	return movie
}

// GetMovies looks up several movies, preserving order. Repeated ids are fetched once.
func (c *Client) GetMovies(ctx context.Context, movieIDs []string) []Movie {
	seen := make(map[string]Movie, len(movieIDs))
	movies := make([]Movie, 0, len(movieIDs))
	for _, id := range movieIDs {
		movie, ok := seen[id]
		if !ok {
			movie = c.GetMovie(ctx, id)
			seen[id] = movie
		}
		movies = append(movies, movie)
	}
	return movies
}

func (c *Client) fetchMovie(ctx context.Context, movieID string) (Movie, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Movie{}, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := fmt.Sprintf("%s/movie/%s", c.baseURL, url.PathEscape(movieID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Movie{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Movie{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Movie{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body tmdbMovie
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Movie{}, fmt.Errorf("failed to decode response: %w", err)
	}

	return Movie{
		TMDBID:     movieID,
		Title:      body.Title,
		PosterPath: body.PosterPath,
	}, nil
}
