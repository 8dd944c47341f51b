// Package transport is the single egress point for backend calls. Every
// request leaves through the Pipeline, which attaches the stored access
// token and transparently recovers from an expired one with a single
// refresh-and-replay attempt.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hrsphere/go-client/storage"
	"github.com/hrsphere/go-client/token"
)

const defaultTimeout = 30 * time.Second

// Pipeline routes every backend call through one chokepoint. All non-401
// failures are propagated to the caller unchanged; retry policy for those
// belongs to the caller.
type Pipeline struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store
	logger     zerolog.Logger
	onExpired  func()
	nowTime    func() time.Time
}

// Option defines a function type to modify the Pipeline instance.
type Option func(*Pipeline)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.httpClient = client
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithSessionExpiredHandler registers the hook invoked after an
// irrecoverable refresh failure on a foreground request. Applications
// typically drop their in-memory session and navigate to the login entry
// point here. Stored credentials are already cleared when the hook fires.
func WithSessionExpiredHandler(handler func()) Option {
	return func(p *Pipeline) {
		p.onExpired = handler
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Pipeline) {
		p.nowTime = nowFunc
	}
}

// New initializes a Pipeline with required dependencies. Optional
// configuration can be provided via options.
func New(baseURL string, store storage.Store, options ...Option) (*Pipeline, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[transport.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[transport.New] store is required")
	}

	p := &Pipeline{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     zerolog.Nop(),
		nowTime:    time.Now,
	}

	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

// Do issues a backend call. If a stored access token exists it is attached
// as a bearer credential; otherwise the request goes out unauthenticated.
//
// A 401 on the first attempt triggers exactly one refresh exchange and one
// replay of the original request. A 401 on the replay propagates without a
// second refresh. When the exchange itself fails, both stored tokens are
// cleared, the session-expired handler fires (unless the request was marked
// Background or LoginSurface) and the caller receives the refresh failure
// rather than the original 401. With no refresh token stored there is
// nothing to exchange, so the original 401 propagates.
func (p *Pipeline) Do(ctx context.Context, method, path string, body any, options ...RequestOption) (*Envelope, error) {
	req, err := newRequest(method, path, body, options...)
	if err != nil {
		return nil, err
	}

	env, err := p.roundTrip(ctx, req)
	if !IsStatus(err, http.StatusUnauthorized) {
		return env, err
	}

	if _, refreshErr := p.refreshExchange(ctx); refreshErr != nil {
		p.expireSession(ctx, req)
		if errors.Is(refreshErr, ErrNoRefreshToken) {
			// Nothing to exchange: the original 401 is the real story.
			return nil, err
		}
		return nil, refreshErr
	}

	p.logger.Debug().
		Str("request_id", req.ID).
		Str("path", req.Path).
		Msg("access token refreshed, replaying request")

	return p.roundTrip(ctx, req.withAttempt(1))
}

// Get issues a GET request through the pipeline.
func (p *Pipeline) Get(ctx context.Context, path string, options ...RequestOption) (*Envelope, error) {
	return p.Do(ctx, http.MethodGet, path, nil, options...)
}

// Post issues a POST request through the pipeline.
func (p *Pipeline) Post(ctx context.Context, path string, body any, options ...RequestOption) (*Envelope, error) {
	return p.Do(ctx, http.MethodPost, path, body, options...)
}

// Put issues a PUT request through the pipeline.
func (p *Pipeline) Put(ctx context.Context, path string, body any, options ...RequestOption) (*Envelope, error) {
	return p.Do(ctx, http.MethodPut, path, body, options...)
}

// Delete issues a DELETE request through the pipeline.
func (p *Pipeline) Delete(ctx context.Context, path string, options ...RequestOption) (*Envelope, error) {
	return p.Do(ctx, http.MethodDelete, path, nil, options...)
}

func (p *Pipeline) roundTrip(ctx context.Context, req Request) (*Envelope, error) {
	var bodyReader *bytes.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, p.baseURL+req.Path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("[Pipeline.roundTrip] building request: %w", err)
	}
	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	access, err := p.store.Get(ctx, storage.AccessTokenKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("[Pipeline.roundTrip] reading access token: %w", err)
	}
	if access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
		p.logStaleToken(req, access)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("[Pipeline.roundTrip] %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	return decodeResponse(resp)
}

// expireSession is the irrecoverable-failure path: both tokens are removed
// and, for foreground requests, the session-expired handler fires.
func (p *Pipeline) expireSession(ctx context.Context, req Request) {
	if err := storage.ClearPair(ctx, p.store); err != nil {
		p.logger.Warn().Err(err).Msg("clearing credentials after refresh failure")
	}
	if req.suppressExpired || p.onExpired == nil {
		return
	}
	p.logger.Info().
		Str("request_id", req.ID).
		Str("path", req.Path).
		Msg("session expired, invoking expired handler")
	p.onExpired()
}

// logStaleToken flags outgoing requests that carry an already-expired
// access token. Inspection only; the 401 handling is unchanged.
func (p *Pipeline) logStaleToken(req Request, access string) {
	info, err := token.Inspect(access)
	if err != nil {
		return
	}
	if info.Expired(p.nowTime(), 0) {
		p.logger.Debug().
			Str("request_id", req.ID).
			Str("path", req.Path).
			Time("expired_at", info.ExpiresAt).
			Msg("sending request with expired access token")
	}
}
