// Package remote provides the HTTP client for the file API, with retry,
// online tracking and auth.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fruitsalade/drive/internal/logging"
	"github.com/fruitsalade/drive/internal/metrics"
	"github.com/fruitsalade/drive/internal/protocol"
	"github.com/fruitsalade/drive/internal/retry"
)

// ErrOffline is returned when the server cannot be reached.
var ErrOffline = errors.New("server is offline")

// Client talks to the remote file API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no overall timeout. Transfers are bounded by ctx
	// and the transport's header timeout.
	streamClient *http.Client
	retryConfig  retry.Config

	mu        sync.RWMutex
	online    bool
	lastPing  time.Time
	authToken string

	stats singleflight.Group
}

// Config holds client configuration.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RetryConfig retry.Config
	AuthToken   string
}

// New creates a new client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryConfig.MaxAttempts == 0 {
		cfg.RetryConfig = retry.DefaultConfig()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		streamClient: &http.Client{Transport: transport},
		retryConfig:  cfg.RetryConfig,
		online:       true,
		authToken:    cfg.AuthToken,
	}
}

// BaseURL returns the server URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthToken sets the bearer token for requests.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

func (c *Client) applyAuth(req *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

// IsOnline returns true if the last request reached the server.
func (c *Client) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

func (c *Client) setOnline(online bool) {
	c.mu.Lock()
	changed := c.online != online
	c.online = online
	c.lastPing = time.Now()
	c.mu.Unlock()

	if changed {
		if online {
			logging.Info("server is back online", zap.String("server", c.baseURL))
		} else {
			logging.Warn("server is offline", zap.String("server", c.baseURL))
		}
	}
	metrics.SetServerOnline(online)
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setOnline(false)
		return fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	c.setOnline(true)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return nil
}

// FullURL resolves a server-relative href against the base URL.
func (c *Client) FullURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}

// request describes one API call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	length      int64
	header      http.Header
	// expect lists accepted status codes; 200 when empty.
	expect []int
	// stream requests are only bounded by ctx and the header timeout.
	stream bool
}

func (r *request) accepts(status int) bool {
	if len(r.expect) == 0 {
		return status == http.StatusOK
	}
	for _, s := range r.expect {
		if s == status {
			return true
		}
	}
	return false
}

// send performs the request with retries and returns the response with an
// open body. Non-accepted statuses are turned into *Error.
func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	start := time.Now()
	status := 0

	// A body that cannot be rewound is only sent once.
	cfg := c.retryConfig
	seeker, rewindable := r.body.(io.Seeker)
	if r.body != nil && !rewindable {
		cfg.MaxAttempts = 1
	}

	target := c.FullURL(r.path)
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	resp, err := retry.DoWithResult(ctx, cfg, func() (*http.Response, error) {
		if rewindable {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
		if err != nil {
			return nil, err
		}
		for k, vs := range r.header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if r.length > 0 {
			req.ContentLength = r.length
		}
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		req.Header.Set("Accept", "application/vnd.api+json")
		c.applyAuth(req)

		hc := c.httpClient
		if r.stream {
			hc = c.streamClient
		}
		resp, err := hc.Do(req)
		if err != nil {
			c.setOnline(false)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, retry.Retryable(fmt.Errorf("%w: %v", ErrOffline, err))
		}
		c.setOnline(true)
		status = resp.StatusCode

		if r.accepts(resp.StatusCode) {
			return resp, nil
		}

		apiErr := decodeError(resp)
		resp.Body.Close()
		if retry.RetryableStatus(resp.StatusCode) {
			return nil, retry.Retryable(apiErr)
		}
		return nil, apiErr
	})

	metrics.RecordRemoteCall(r.op, status, time.Since(start))
	if err != nil {
		logging.Debug("remote call failed",
			zap.String("op", r.op),
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("status", status),
			zap.Error(err))
		return nil, unwrapRetryable(err)
	}
	return resp, nil
}

// sendJSON marshals in (when non-nil), performs the request and decodes the
// response into out (when non-nil).
func (c *Client) sendJSON(ctx context.Context, r request, in, out interface{}) error {
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", r.op, err)
		}
		r.body = bytes.NewReader(data)
		r.contentType = "application/json"
	}

	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.op, err)
	}
	return nil
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var errResp protocol.ErrorResponse
	if json.Unmarshal(data, &errResp) == nil && len(errResp.Errors) > 0 {
		apiErr.Errors = errResp.Errors
		return apiErr
	}
	apiErr.Body = strings.TrimSpace(string(data))
	return apiErr
}

func unwrapRetryable(err error) error {
	var r retry.RetryableError
	if errors.As(err, &r) {
		return r.Err
	}
	return err
}
