package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResolver serves scripted rates with optional per-pair delays.
type fakeResolver struct {
	mu     sync.Mutex
	rates  map[string]float64
	delays map[string]time.Duration
	cached map[string]float64
	calls  []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		rates:  make(map[string]float64),
		delays: make(map[string]time.Duration),
		cached: make(map[string]float64),
	}
}

func pairKey(from, to string) string { return from + ":" + to }

func (f *fakeResolver) resolve(ctx context.Context, from, to, op string) (*domain.ExchangeRate, error) {
	key := pairKey(from, to)
	f.mu.Lock()
	f.calls = append(f.calls, op+":"+key)
	delay := f.delays[key]
	value, ok := f.rates[key]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("%s->%s: %w", from, to, domain.ErrQuoteUnavailable)
	}
	return &domain.ExchangeRate{
		From: from, To: to, Rate: value,
		Source: "fake", ResolvedAt: time.Now(), TTL: time.Minute,
	}, nil
}

func (f *fakeResolver) Resolve(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	return f.resolve(ctx, from, to, "resolve")
}

func (f *fakeResolver) Refresh(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	return f.resolve(ctx, from, to, "refresh")
}

func (f *fakeResolver) Cached(from, to string) (*domain.ExchangeRate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.cached[pairKey(from, to)]
	if !ok {
		return nil, false
	}
	return &domain.ExchangeRate{
		From: from, To: to, Rate: value,
		Source: "cache", ResolvedAt: time.Now(), TTL: time.Minute,
	}, true
}

func (f *fakeResolver) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestController(resolver *fakeResolver, debounce time.Duration) *Controller {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(resolver, debounce, logger)
}

func waitForState(t *testing.T, states <-chan domain.ConversionState, kind domain.StateKind) domain.ConversionState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-states:
			if s.Kind() == kind {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %q", kind)
		}
	}
}

func TestController_ResolveOnSelection(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("bitcoin", "try")] = 2000000
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetAmount("2")
	c.SetFrom("btc")
	c.SetTo("try")

	success := waitForState(t, states, domain.StateSuccess).(domain.Success)
	assert.Equal(t, 2.0, success.FromAmount)
	assert.InEpsilon(t, 4000000.0, success.ToAmount, 1e-9)
	assert.Equal(t, "bitcoin", success.Rate.From)
}

func TestController_FirstLoadingIsInitial(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("bitcoin", "try")] = 2000000
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetFrom("btc")
	c.SetTo("try")

	loading := waitForState(t, states, domain.StateLoading).(domain.Loading)
	assert.True(t, loading.Initial)

	waitForState(t, states, domain.StateSuccess)
	c.Refresh()
	loading = waitForState(t, states, domain.StateLoading).(domain.Loading)
	assert.False(t, loading.Initial)
}

func TestController_DebounceCollapsesKeystrokes(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("bitcoin", "try")] = 10
	c := newTestController(resolver, 150*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetFrom("btc")
	c.SetTo("try")
	waitForState(t, states, domain.StateSuccess)
	baseline := len(resolver.callLog())

	c.SetAmount("1")
	time.Sleep(50 * time.Millisecond)
	c.SetAmount("12")
	time.Sleep(50 * time.Millisecond)
	c.SetAmount("123")

	success := waitForState(t, states, domain.StateSuccess).(domain.Success)
	assert.Equal(t, 123.0, success.FromAmount)
	assert.InEpsilon(t, 1230.0, success.ToAmount, 1e-9)

	// Exactly one resolution for the whole burst.
	assert.Equal(t, baseline+1, len(resolver.callLog()))
}

func TestController_InvalidAmountIgnored(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("bitcoin", "try")] = 10
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetFrom("btc")
	c.SetTo("try")
	waitForState(t, states, domain.StateSuccess)
	baseline := len(resolver.callLog())

	c.SetAmount("abc")
	c.SetAmount("-5")
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, baseline, len(resolver.callLog()))
	_, _, amount := c.Intent()
	assert.Equal(t, 0.0, amount)
}

func TestController_Supersession(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("aaa", "bbb")] = 111
	resolver.rates[pairKey("ccc", "bbb")] = 222
	resolver.rates[pairKey("ccc", "ddd")] = 333
	resolver.delays[pairKey("aaa", "bbb")] = 300 * time.Millisecond
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetAmount("1")
	c.SetFrom("aaa")
	c.SetTo("bbb")
	// Supersede before the slow (aaa, bbb) resolution completes.
	c.SetFrom("ccc")
	c.SetTo("ddd")

	var successes []domain.Success
	deadline := time.After(2 * time.Second)
collect:
	for {
		select {
		case s := <-states:
			if suc, ok := s.(domain.Success); ok {
				successes = append(successes, suc)
				if suc.Rate.From == "ccc" && suc.Rate.To == "ddd" {
					break collect
				}
			}
		case <-deadline:
			t.Fatal("timed out waiting for final success")
		}
	}

	// Give the stale (aaa, bbb) result time to arrive; it must be dropped.
	time.Sleep(400 * time.Millisecond)

	final := c.State()
	require.Equal(t, domain.StateSuccess, final.Kind())
	assert.Equal(t, "ccc", final.(domain.Success).Rate.From)
	assert.Equal(t, "ddd", final.(domain.Success).Rate.To)
	for _, suc := range successes {
		assert.NotEqual(t, "aaa", suc.Rate.From, "stale result must never be published")
	}
}

func TestController_CachedPairSkipsLoading(t *testing.T) {
	resolver := newFakeResolver()
	resolver.cached[pairKey("bitcoin", "try")] = 2000000
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetAmount("1")
	c.SetFrom("btc")
	c.SetTo("try")

	success := waitForState(t, states, domain.StateSuccess)
	assert.InEpsilon(t, 2000000.0, success.(domain.Success).ToAmount, 1e-9)
	assert.Empty(t, resolver.callLog(), "cached pair must not hit the resolver")

	// No Loading state was ever published.
	for {
		select {
		case s := <-states:
			assert.NotEqual(t, domain.StateLoading, s.Kind())
		default:
			return
		}
	}
}

func TestController_SwapResolvesNewPairOnly(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("bitcoin", "try")] = 10
	resolver.rates[pairKey("try", "bitcoin")] = 0.1
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetFrom("btc")
	c.SetTo("try")
	waitForState(t, states, domain.StateSuccess)
	baseline := len(resolver.callLog())

	c.Swap()
	success := waitForState(t, states, domain.StateSuccess).(domain.Success)
	assert.Equal(t, "try", success.Rate.From)
	assert.Equal(t, "bitcoin", success.Rate.To)

	calls := resolver.callLog()
	require.Equal(t, baseline+1, len(calls))
	assert.Equal(t, "resolve:try:bitcoin", calls[len(calls)-1])
}

func TestController_RefreshBypassesCache(t *testing.T) {
	resolver := newFakeResolver()
	resolver.cached[pairKey("bitcoin", "try")] = 1
	resolver.rates[pairKey("bitcoin", "try")] = 2
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetFrom("btc")
	c.SetTo("try")
	waitForState(t, states, domain.StateSuccess)
	require.Empty(t, resolver.callLog())

	c.Refresh()
	success := waitForState(t, states, domain.StateSuccess).(domain.Success)
	assert.InEpsilon(t, 2.0, success.Rate.Rate, 1e-9)

	calls := resolver.callLog()
	require.Len(t, calls, 1)
	assert.Equal(t, "refresh:bitcoin:try", calls[0])
}

func TestController_ErrorReplacesSuccess(t *testing.T) {
	resolver := newFakeResolver()
	resolver.rates[pairKey("bitcoin", "try")] = 10
	c := newTestController(resolver, 50*time.Millisecond)
	defer c.Close()
	states := c.Subscribe()

	c.SetFrom("btc")
	c.SetTo("try")
	waitForState(t, states, domain.StateSuccess)

	// No scripted rate for the new pair: the resolution fails.
	c.SetTo("eur")
	errState := waitForState(t, states, domain.StateError).(domain.Error)
	assert.Contains(t, errState.Message, "quote unavailable")
	assert.Equal(t, domain.StateError, c.State().Kind())
}
