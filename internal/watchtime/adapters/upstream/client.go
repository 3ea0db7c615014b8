// Package upstream fetches raw watch-time records from the reporting API.
//
// The API answers inline, without pagination, so the requested range is cut
// into windows of at most WindowDays days and fetched one request per window.
// A failed window is logged and skipped; it never aborts the whole fetch.
// Each Fetch gets its own circuit breaker, so no failure state outlives the
// request that produced it.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"watchtime-report-service/internal/config"
	"watchtime-report-service/internal/logging"
	"watchtime-report-service/internal/watchtime/core/domain"
	"watchtime-report-service/internal/watchtime/core/ports"
)

var (
	ErrUpstreamStatus    = errors.New("upstream returned non-2xx status")
	ErrMissingWatchtimes = errors.New("upstream response has no watchtimes field")
)

// Window results reported to the Observer.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

const (
	queryTimeLayout  = "2006-01-02T15:04:05Z07:00"
	maxErrorBodySize = 64 * 1024
	breakerName      = "watchtime-api"
	defaultTimeout   = 15 * time.Second
)

// Observer receives per-window outcomes and breaker transitions.
type Observer interface {
	ObserveWindow(result string, elapsed time.Duration, records int)
	ObserveBreakerState(name string, state gobreaker.State)
}

type nopObserver struct{}

func (nopObserver) ObserveWindow(string, time.Duration, int) {}
func (nopObserver) ObserveBreakerState(string, gobreaker.State) {}

// Client implements ports.WatchtimeSourcePort over HTTP.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	windowDays  int
	concurrency int
	ignoreStaff bool

	limiter         *rate.Limiter
	maxFailures     uint32
	breakerOpenTime time.Duration
	observer        Observer
}

var _ ports.WatchtimeSourcePort = (*Client)(nil)

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:         cfg.URL,
		httpClient:      &http.Client{},
		timeout:         cfg.Timeout,
		windowDays:      cfg.WindowDays,
		concurrency:     cfg.FetchConcurrency,
		ignoreStaff:     cfg.IgnoreStaff,
		maxFailures:     cfg.BreakerMaxFailures,
		breakerOpenTime: cfg.BreakerOpenTimeout,
		observer:        nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return c
}

// newBreaker builds the breaker guarding the windows of one Fetch. With
// maxFailures 0 it never trips.
func (c *Client) newBreaker(ctx context.Context) *gobreaker.CircuitBreaker[[]domain.RawRecord] {
	maxFailures := c.maxFailures
	cb := gobreaker.NewCircuitBreaker[[]domain.RawRecord](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.breakerOpenTime,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return maxFailures > 0 && counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Ctx(ctx).Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			c.observer.ObserveBreakerState(name, to)
		},
	})
	c.observer.ObserveBreakerState(breakerName, gobreaker.StateClosed)
	return cb
}

// Fetch requests every window of r and concatenates the records in window
// order. It returns ports.ErrNoData when no window produced a record.
func (c *Client) Fetch(ctx context.Context, r domain.Range) ([]domain.RawRecord, error) {
	windows := SplitWindows(r.Start, r.End, c.windowDays)
	results := make([][]domain.RawRecord, len(windows))
	breaker := c.newBreaker(ctx)

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			results[i] = c.fetchWindow(ctx, breaker, w)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, recs := range results {
		total += len(recs)
	}
	if total == 0 {
		logging.Ctx(ctx).Info().Int("windows", len(windows)).Msg("upstream returned no records")
		return nil, ports.ErrNoData
	}

	out := make([]domain.RawRecord, 0, total)
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out, nil
}

// fetchWindow never fails the caller: errors are logged and yield nil.
func (c *Client) fetchWindow(ctx context.Context, breaker *gobreaker.CircuitBreaker[[]domain.RawRecord], w Window) []domain.RawRecord {
	log := logging.Ctx(ctx)
	started := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			log.Warn().Err(err).Time("window_from", w.From).Time("window_to", w.To).Msg("window skipped")
			c.observer.ObserveWindow(ResultFailure, time.Since(started), 0)
			return nil
		}
	}

	records, err := breaker.Execute(func() ([]domain.RawRecord, error) {
		return c.doWindowRequest(ctx, w)
	})
	elapsed := time.Since(started)

	if err != nil {
		result := ResultFailure
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = ResultRejected
		}
		log.Warn().Err(err).Str("result", result).Time("window_from", w.From).Time("window_to", w.To).
			Dur("elapsed", elapsed).Msg("window skipped")
		c.observer.ObserveWindow(result, elapsed, 0)
		return nil
	}

	log.Debug().Time("window_from", w.From).Time("window_to", w.To).Int("records", len(records)).
		Dur("elapsed", elapsed).Msg("window fetched")
	c.observer.ObserveWindow(ResultSuccess, elapsed, len(records))
	return records
}

type watchtimesResponse struct {
	Watchtimes *[]domain.RawRecord `json:"watchtimes"`
}

func (c *Client) doWindowRequest(ctx context.Context, w Window) ([]domain.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.windowURL(w), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make watchtime request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("%w: %d: %s", ErrUpstreamStatus, resp.StatusCode, string(body))
	}

	var body watchtimesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode watchtime response: %w", err)
	}
	if body.Watchtimes == nil {
		return nil, ErrMissingWatchtimes
	}
	return *body.Watchtimes, nil
}

// windowURL bounds both the completed and updated timestamps by w.
func (c *Client) windowURL(w Window) string {
	from := w.From.UTC().Format(queryTimeLayout)
	to := w.To.UTC().Format(queryTimeLayout)

	params := url.Values{}
	if c.ignoreStaff {
		params.Set("ignoreStaff", "true")
	}
	params.Set("fromCompleted", from)
	params.Set("toCompleted", to)
	params.Set("fromUpdated", from)
	params.Set("toUpdated", to)

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + params.Encode()
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
