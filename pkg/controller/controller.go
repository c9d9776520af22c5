// Package controller is the reactive orchestration layer above the rate
// engine: it serializes user edits into resolution requests, debounces rapid
// amount typing, cancels superseded in-flight work, and publishes a
// loading/success/error state machine to subscribers.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/convert"
	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/google/uuid"
)

// DefaultDebounce is the delay applied after the last amount keystroke
// before a resolution fires.
const DefaultDebounce = 500 * time.Millisecond

// Resolver is the slice of the rate engine the controller needs.
type Resolver interface {
	Resolve(ctx context.Context, from, to string) (*domain.ExchangeRate, error)
	Refresh(ctx context.Context, from, to string) (*domain.ExchangeRate, error)
	Cached(from, to string) (*domain.ExchangeRate, bool)
}

// Controller tracks a single current intent (from, to, amount). Starting a
// new resolution supersedes any prior one: the old context is cancelled and a
// late result whose generation no longer matches is dropped, never published.
type Controller struct {
	resolver Resolver
	logger   *slog.Logger
	debounce time.Duration

	mu         sync.Mutex
	from, to   string
	amount     float64
	amountText string
	state      domain.ConversionState
	subs       []chan domain.ConversionState
	gen        uint64
	cancel     context.CancelFunc
	timer      *time.Timer
	loadedOnce bool
	closed     bool
}

// New creates a controller. A non-positive debounce falls back to
// DefaultDebounce.
func New(resolver Resolver, debounce time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{
		resolver: resolver,
		logger:   logger,
		debounce: debounce,
		state:    domain.Idle{},
	}
}

// Subscribe returns a channel receiving every published state. Slow
// subscribers miss intermediate states rather than blocking the controller.
func (c *Controller) Subscribe() <-chan domain.ConversionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan domain.ConversionState, 16)
	c.subs = append(c.subs, ch)
	return ch
}

// State returns the current published state.
func (c *Controller) State() domain.ConversionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Intent returns the current (from, to, amount) tuple.
func (c *Controller) Intent() (from, to string, amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from, c.to, c.amount
}

// SetFrom changes the source currency and re-resolves. A selection equal to
// the current one is a no-op.
func (c *Controller) SetFrom(id string) {
	id = catalog.Normalize(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.from {
		return
	}
	c.from = id
	c.startLocked(false)
}

// SetTo changes the target currency and re-resolves.
func (c *Controller) SetTo(id string) {
	id = catalog.Normalize(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == c.to {
		return
	}
	c.to = id
	c.startLocked(false)
}

// SetAmount records an amount edit. Text that does not parse as a finite
// non-negative decimal is ignored outright; valid edits schedule a resolution
// one debounce window after the last keystroke, replacing any previously
// scheduled one.
func (c *Controller) SetAmount(text string) {
	amount, ok := convert.ParseAmount(text)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.amount = amount
	c.amountText = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.startLocked(false)
	})
}

// Swap exchanges the from/to currencies atomically and re-resolves once; the
// old pair is never transiently resolved.
func (c *Controller) Swap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.from, c.to = c.to, c.from
	c.startLocked(false)
}

// Refresh re-resolves the current pair bypassing the rate cache.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startLocked(true)
}

// Close cancels any in-flight resolution and pending debounce timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// startLocked begins a resolution for the current intent. Callers hold c.mu.
func (c *Controller) startLocked(force bool) {
	if c.closed || c.from == "" || c.to == "" {
		return
	}

	// A fresh request supersedes both pending timers and in-flight work.
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	myGen := c.gen
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	// A fresh non-expired cached rate goes straight to Success, avoiding a
	// flicker through Loading.
	if !force {
		if rate, ok := c.resolver.Cached(c.from, c.to); ok {
			c.loadedOnce = true
			c.publishLocked(domain.Success{
				FromAmount: c.amount,
				ToAmount:   convert.Apply(rate, c.amount),
				Rate:       *rate,
			})
			return
		}
	}

	c.publishLocked(domain.Loading{Initial: !c.loadedOnce})

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	reqID := uuid.New()
	from, to, amount := c.from, c.to, c.amount

	go func() {
		var (
			rate *domain.ExchangeRate
			err  error
		)
		if force {
			rate, err = c.resolver.Refresh(ctx, from, to)
		} else {
			rate, err = c.resolver.Resolve(ctx, from, to)
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if myGen != c.gen {
			c.logger.Debug("stale resolution dropped",
				"request_id", reqID, "from", from, "to", to)
			return
		}
		c.cancel = nil
		c.loadedOnce = true

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrCancelled) {
				return
			}
			c.logger.Warn("resolution failed",
				"request_id", reqID, "from", from, "to", to, "error", err)
			c.publishLocked(domain.Error{Message: err.Error()})
			return
		}

		c.publishLocked(domain.Success{
			FromAmount: amount,
			ToAmount:   convert.Apply(rate, amount),
			Rate:       *rate,
		})
	}()
}

func (c *Controller) publishLocked(state domain.ConversionState) {
	c.state = state
	for _, ch := range c.subs {
		select {
		case ch <- state:
		default:
		}
	}
}
