package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/metrics"
	"github.com/bearanvil/trafficled/internal/speeds"
	"github.com/bearanvil/trafficled/internal/stream"
)

const (
	DefaultAttempts      = 5
	DefaultWindowSize    = 128
	DefaultServerVersion = "V1_0_5"
	DefaultMaxLEDs       = 326
)

// Client downloads speed files from one data server.
type Client struct {
	Server        string
	ServerVersion string
	HTTPClient    *http.Client
	WindowSize    int
	MaxLEDs       int
	Attempts      int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	UserAgent     string
	Metrics       *metrics.Collector
}

// NewClient returns a client for server with default limits.
func NewClient(server string) *Client {
	return &Client{
		Server:        server,
		ServerVersion: DefaultServerVersion,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		WindowSize:    DefaultWindowSize,
		MaxLEDs:       DefaultMaxLEDs,
		Attempts:      DefaultAttempts,
		RetryDelay:    time.Second,
		MaxRetryDelay: 15 * time.Second,
	}
}

// Fetch downloads and decodes one dataset.
func (c *Client) Fetch(ctx context.Context, d Dataset) ([]speeds.Record, error) {
	url := URL(c.Server, c.ServerVersion, d)
	var recs []speeds.Record
	attempt := 0

	op := func() error {
		attempt++
		got, err := c.fetchOnce(ctx, d, url)
		if err == nil {
			recs = got
			return nil
		}
		var fe *Error
		if errors.As(err, &fe) && !fe.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logging.Warn("Speed fetch failed, retrying",
			zap.Stringer("dataset", d),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, c.backOff(ctx), notify); err != nil {
		var fe *Error
		if errors.As(err, &fe) && fe.Type == ErrTypeParse {
			var se *speeds.Error
			if errors.As(fe.Err, &se) {
				c.Metrics.ParseFailed("speeds", se.Type.String())
			}
			logging.LogParseFailure("speeds", url, err)
		}
		return nil, err
	}

	c.Metrics.RecordsParsed(d.String(), len(recs))
	logging.Info("Speed data fetched",
		zap.Stringer("dataset", d),
		zap.Int("records", len(recs)),
		zap.Int("attempts", attempt),
	)
	return recs, nil
}

func (c *Client) fetchOnce(ctx context.Context, d Dataset, url string) ([]speeds.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("invalid data URL: %w", err))
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &Error{Type: ErrTypeNetwork, Dataset: d, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Type: ErrTypeHTTP, Dataset: d, URL: url, StatusCode: resp.StatusCode}
	}

	maxLEDs := c.MaxLEDs
	if maxLEDs <= 0 {
		maxLEDs = DefaultMaxLEDs
	}
	var opts []stream.Option
	if obs := c.Metrics.Stream("speeds"); obs != nil {
		opts = append(opts, stream.WithObserver(obs))
	}

	recs, err := speeds.ReadAll(ctx, stream.NewReaderSource(resp.Body), c.WindowSize, maxLEDs, opts...)
	if err != nil {
		return nil, &Error{Type: ErrTypeParse, Dataset: d, URL: url, Err: err}
	}
	return recs, nil
}

// FetchAll downloads every dataset concurrently.
func (c *Client) FetchAll(ctx context.Context) (Snapshot, error) {
	sets := Datasets()
	tables := make([]speeds.Table, len(sets))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range sets {
		i, d := i, d
		g.Go(func() error {
			recs, err := c.Fetch(gctx, d)
			if err != nil {
				return err
			}
			tables[i] = speeds.TableFrom(recs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(sets))
	for i, d := range sets {
		snap[d] = tables[i]
	}
	return snap, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if c.RetryDelay > 0 {
		exp.InitialInterval = c.RetryDelay
	}
	if c.MaxRetryDelay > 0 {
		exp.MaxInterval = c.MaxRetryDelay
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	attempts := max(c.Attempts, 1)
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
