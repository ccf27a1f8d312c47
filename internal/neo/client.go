// Package neo provides a client for the NASA NeoWs feed and lookup endpoints.
package neo

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

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/time/rate"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
)

var log = logging.Logger("neo")

const (
	defaultFeedURL   = "https://api.nasa.gov/neo/rest/v1/feed"
	defaultDetailURL = "https://api.nasa.gov/neo/rest/v1/neo"
)

var (
	// ErrDayMissing is returned when the feed reports objects but none are
	// listed under the requested day.
	ErrDayMissing = errors.New("neo: requested day missing from feed")
	// ErrMissingOrbitalData is returned when a lookup has no orbital_data.
	ErrMissingOrbitalData = errors.New("neo: orbital_data missing from lookup")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status=%d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status=%d body=%s", e.Endpoint, e.StatusCode, e.Body)
}

// Config controls the client.
type Config struct {
	APIKey    string
	FeedURL   string
	DetailURL string

	HTTPTimeout       time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	HTTPClient        *http.Client
}

// Client issues feed and lookup requests, paced by an optional limiter.
type Client struct {
	apiKey     string
	feedURL    string
	detailURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient constructs a Client. It performs no network activity.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("neo: %w", config.ErrMissingAPIKey)
	}
	if cfg.FeedURL == "" {
		cfg.FeedURL = defaultFeedURL
	}
	if cfg.DetailURL == "" {
		cfg.DetailURL = defaultDetailURL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		feedURL:    cfg.FeedURL,
		detailURL:  strings.TrimRight(cfg.DetailURL, "/"),
		httpClient: httpClient,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// Feed returns the objects observed on day, using day as both the start and
// end of the range. An empty feed yields a nil slice and no error.
func (c *Client) Feed(ctx context.Context, day time.Time) ([]NearEarthObject, error) {
	key := day.Format(DayLayout)

	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	params := u.Query()
	params.Set("start_date", key)
	params.Set("end_date", key)
	params.Set("api_key", c.apiKey)
	u.RawQuery = params.Encode()

	var feed FeedResponse
	if err := c.getJSON(ctx, "feed", u.String(), &feed); err != nil {
		return nil, err
	}

	if feed.ElementCount == 0 {
		return nil, nil
	}

	objects, ok := feed.NearEarthObjects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s (element_count=%d)", ErrDayMissing, key, feed.ElementCount)
	}
	return objects, nil
}

// OrbitalData looks up one object and returns its orbital_data verbatim.
func (c *Client) OrbitalData(ctx context.Context, id string) (map[string]any, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("neo: empty object id")
	}

	u, err := url.Parse(c.detailURL + "/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("invalid lookup url: %w", err)
	}
	params := u.Query()
	params.Set("api_key", c.apiKey)
	u.RawQuery = params.Encode()

	var detail DetailResponse
	if err := c.getJSON(ctx, "lookup "+id, u.String(), &detail); err != nil {
		return nil, err
	}

	if detail.ID != "" && detail.ID != id {
		return nil, fmt.Errorf("neo: lookup for %s returned object %s", id, detail.ID)
	}
	if detail.OrbitalData == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingOrbitalData, id)
	}
	return detail.OrbitalData, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s", redact(rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", endpoint, redactErr(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

// redact hides the api_key query value.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// redactErr strips the request URL, which carries the key, from transport
// errors.
func redactErr(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &url.Error{Op: uerr.Op, URL: redact(uerr.URL), Err: uerr.Err}
	}
	return err
}
