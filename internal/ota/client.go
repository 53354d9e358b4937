package ota

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/metrics"
	"github.com/bearanvil/trafficled/internal/stream"
)

const (
	// DefaultAttempts is how many times the version document is requested
	// before the check gives up.
	DefaultAttempts = 5
	// DefaultTimeout bounds each request.
	DefaultTimeout = 15 * time.Second
)

// Client checks an update server for new firmware.
type Client struct {
	URL           string
	HTTPClient    *http.Client
	Installed     VersionInfo
	Parser        *Parser
	Attempts      int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	UserAgent     string
	Metrics       *metrics.Collector
}

// NewClient returns a client with default retry settings and parser.
func NewClient(url string, installed VersionInfo) *Client {
	return &Client{
		URL:           url,
		HTTPClient:    &http.Client{Timeout: DefaultTimeout},
		Installed:     installed,
		Parser:        NewParser(DefaultKeys(), DefaultWindowSize),
		Attempts:      DefaultAttempts,
		RetryDelay:    500 * time.Millisecond,
		MaxRetryDelay: 10 * time.Second,
	}
}

// QueryUpdateAvailable fetches the version document and compares it with
// the installed version. Network failures, server errors and truncated
// documents are retried; a document that parses but is invalid is not.
// On error the zero Result is returned, which reports no update.
func (c *Client) QueryUpdateAvailable(ctx context.Context) (Result, error) {
	var server VersionInfo
	attempt := 0

	op := func() error {
		attempt++
		info, err := c.fetchOnce(ctx)
		if err == nil {
			server = info
			return nil
		}
		var oe *Error
		if errors.As(err, &oe) && !oe.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logging.Warn("Version check failed, retrying",
			zap.String("url", c.URL),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, c.backOff(ctx), notify); err != nil {
		var oe *Error
		if errors.As(err, &oe) && oe.Type != ErrTypeNetwork && oe.Type != ErrTypeHTTP {
			c.Metrics.ParseFailed("version", oe.Type.String())
		}
		logging.LogParseFailure("version", c.URL, err)
		return Result{}, err
	}

	res := Check(server, c.Installed)
	logging.Info("Version check complete",
		zap.Stringer("server", res.Server),
		zap.Stringer("installed", res.Installed),
		zap.Stringer("update", res.Update),
	)
	return res, nil
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

	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

func (c *Client) fetchOnce(ctx context.Context) (VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return VersionInfo{}, backoff.Permanent(fmt.Errorf("invalid version URL: %w", err))
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return VersionInfo{}, &Error{Type: ErrTypeNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VersionInfo{}, &Error{Type: ErrTypeHTTP, StatusCode: resp.StatusCode}
	}

	parser := NewParser(DefaultKeys(), DefaultWindowSize)
	if c.Parser != nil {
		copied := *c.Parser
		parser = &copied
	}
	if obs := c.Metrics.Stream("version"); obs != nil {
		parser.Observer = obs
	}
	return parser.Parse(ctx, stream.NewReaderSource(resp.Body))
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
