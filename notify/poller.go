// Package notify polls the backend for notifications on a fixed interval.
// Polls go through the request pipeline as background requests, so an
// expired session during a poll clears credentials but never triggers the
// application's session-expired navigation.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hrsphere/go-client/transport"
)

const notificationsPath = "/notifications"

// Notification mirrors the backend's notification record.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Handler receives each batch of notifications fetched by the poller.
type Handler func([]Notification)

// Poller periodically fetches notifications through the request pipeline.
// Poll failures are logged and swallowed; the next tick tries again.
type Poller struct {
	pipeline *transport.Pipeline
	interval time.Duration
	handler  Handler
	logger   zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option defines a function type to modify the Poller instance.
type Option func(*Poller)

// WithLogger sets the poller logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a poller delivering notification batches to handler
// every interval.
func NewPoller(pipeline *transport.Pipeline, interval time.Duration, handler Handler, options ...Option) (*Poller, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	p := &Poller{
		pipeline: pipeline,
		interval: interval,
		handler:  handler,
		logger:   zerolog.Nop(),
		stop:     make(chan struct{}),
	}

	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

// Start polls once immediately, then on every interval tick until Stop is
// called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		p.poll(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.poll(ctx)
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts polling and waits for any in-flight poll to finish. Safe to
// call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}

func (p *Poller) poll(ctx context.Context) {
	env, err := p.pipeline.Get(ctx, notificationsPath, transport.Background())
	if err != nil {
		p.logger.Warn().Err(err).Msg("notification poll failed")
		return
	}

	var notifications []Notification
	if err := env.DecodeData(&notifications); err != nil {
		p.logger.Warn().Err(err).Msg("decoding notifications")
		return
	}
	p.handler(notifications)
}
