package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrSkip tells the poller there is nothing to fetch this tick. The stored
// result is left as it is.
var ErrSkip = errors.New("poller: skip")

// Logger defines the logging interface used by the poller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// FetchFunc loads the current value. Return ErrSkip when there is nothing
// to load.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is the latest state of a poller.
type Result[T any] struct {
	// Value is the last successfully fetched value.
	Value T

	// FetchedAt is when Value was fetched. Zero until the first success.
	FetchedAt time.Time

	// Err is the error from the most recent attempt, nil if it succeeded.
	Err error
}

// Poller fetches a value immediately and then on every tick, keeping the
// last good value across failures.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]
	logger   Logger
	onUpdate func(T)

	kick chan struct{}

	mu     sync.RWMutex
	result Result[T]
}

// New creates a poller. It does nothing until Run is called.
func New[T any](name string, interval time.Duration, fetch FetchFunc[T]) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   noopLogger{},
		kick:     make(chan struct{}, 1),
	}
}

// SetLogger sets the logger for the poller.
func (p *Poller[T]) SetLogger(logger Logger) {
	p.logger = logger
}

// OnUpdate registers a callback run after every successful fetch.
// Must be called before Run.
func (p *Poller[T]) OnUpdate(fn func(T)) {
	p.onUpdate = fn
}

// Run polls until ctx is cancelled. Always returns nil on cancellation.
func (p *Poller[T]) Run(ctx context.Context) error {
	p.logger.Info("poller started", "poller", p.name, "interval", p.interval)

	_, _ = p.Refresh(ctx) //nolint:errcheck // stored in Result

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped", "poller", p.name)
			return nil
		case <-ticker.C:
			_, _ = p.Refresh(ctx) //nolint:errcheck // stored in Result
		case <-p.kick:
			_, _ = p.Refresh(ctx) //nolint:errcheck // stored in Result
			ticker.Reset(p.interval)
		}
	}
}

// Kick asks a running poller to fetch now rather than wait for the tick.
// Never blocks; kicks while one is pending are merged.
func (p *Poller[T]) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Refresh fetches once, synchronously, and stores the outcome.
//
// On failure the previous value is kept and the error recorded. ErrSkip
// leaves the stored result untouched.
func (p *Poller[T]) Refresh(ctx context.Context) (T, error) {
	v, err := p.fetch(ctx)
	if errors.Is(err, ErrSkip) {
		return v, err
	}

	p.mu.Lock()
	if err != nil {
		p.result.Err = err
		prev := p.result.Value
		p.mu.Unlock()

		if ctx.Err() == nil {
			p.logger.Warn("poll failed", "poller", p.name, "error", err)
		}
		return prev, err
	}
	p.result = Result[T]{Value: v, FetchedAt: time.Now()}
	p.mu.Unlock()

	p.logger.Debug("poll succeeded", "poller", p.name)
	if p.onUpdate != nil {
		p.onUpdate(v)
	}
	return v, nil
}

// Latest returns the last stored result.
func (p *Poller[T]) Latest() Result[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.result
}

// Reset clears the stored result, e.g. when the polled target changes.
func (p *Poller[T]) Reset() {
	p.mu.Lock()
	p.result = Result[T]{}
	p.mu.Unlock()
}

// Runner is anything with a blocking Run loop.
type Runner interface {
	Run(ctx context.Context) error
}

// RunAll runs every runner until ctx is cancelled or one of them fails.
func RunAll(ctx context.Context, runners ...Runner) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error { return r.Run(ctx) })
	}
	return g.Wait()
}
