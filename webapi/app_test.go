package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	infracache "github.com/coinwatch/coinwatch/infra/cache"
	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/quotes"
	"github.com/coinwatch/coinwatch/pkg/rates"
	"github.com/coinwatch/coinwatch/pkg/watchlist"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	prices quotes.PriceTable
	coins  []quotes.Coin
	vs     []string
}

func (f *fakeSource) ListCoins(ctx context.Context) ([]quotes.Coin, error) {
	return f.coins, nil
}

func (f *fakeSource) ListVsCurrencies(ctx context.Context) ([]string, error) {
	return f.vs, nil
}

func (f *fakeSource) GetPrice(ctx context.Context, ids, vs []string) (quotes.PriceTable, error) {
	table := make(quotes.PriceTable)
	for _, id := range ids {
		row, ok := f.prices[id]
		if !ok {
			continue
		}
		for _, code := range vs {
			if price, ok := row[code]; ok {
				if table[id] == nil {
					table[id] = make(map[string]float64)
				}
				table[id][code] = price
			}
		}
	}
	return table, nil
}

func (f *fakeSource) GetCoin(ctx context.Context, id string) (*quotes.Coin, error) {
	for i := range f.coins {
		if f.coins[i].ID == id {
			return &f.coins[i], nil
		}
	}
	return nil, &domain.SourceError{Source: "fake", Err: domain.ErrCurrencyNotFound}
}

func (f *fakeSource) Name() string { return "fake" }

// memRepo is an in-memory watchlist.Repository for handler tests.
type memRepo struct {
	mu      sync.Mutex
	entries []watchlist.Entry
}

func (m *memRepo) Add(ctx context.Context, currencyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.CurrencyID == currencyID {
			return nil
		}
	}
	m.entries = append(m.entries, watchlist.Entry{CurrencyID: currencyID, AddedAt: time.Now()})
	return nil
}

func (m *memRepo) Remove(ctx context.Context, currencyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.CurrencyID != currencyID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memRepo) List(ctx context.Context) ([]watchlist.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]watchlist.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memRepo) Contains(ctx context.Context, currencyID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.CurrencyID == currencyID {
			return true, nil
		}
	}
	return false, nil
}

func newTestApp() *fiber.App {
	src := &fakeSource{
		prices: quotes.PriceTable{
			"bitcoin":  {"try": 2000000.0, "usd": 60000.0},
			"ethereum": {"usd": 3000.0, "try": 90000.0},
		},
		coins: []quotes.Coin{
			{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
			{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
		},
		vs: []string{"usd", "eur", "try"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.New(src, logger)
	engine := rates.New(src, cat, infracache.NewMemoryCache(), rates.Config{}, logger)
	svc := watchlist.New(&memRepo{}, cat, logger)
	return NewApp(Deps{Catalog: cat, Engine: engine, Watchlist: svc, Logger: logger})
}

func TestConvertEndpoint(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"from":"btc","to":"try","amount":0.5}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/convert/", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var result ConvertResponse
	require.NoError(t, json.Unmarshal(data, &result))
	assert.InEpsilon(t, 1000000.0, result.ToAmount, 1e-9)
	assert.Equal(t, "1.00M", result.FormattedToAmount)
	assert.Equal(t, "bitcoin", result.Rate.From)
	assert.Equal(t, "try", result.Rate.To)
}

func TestConvertEndpoint_ValidationFailure(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"from":"btc","amount":1}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/convert/", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/problem+json")
}

func TestConvertEndpoint_UnknownCurrency(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"from":"nope","to":"try","amount":1}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/convert/", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var pd ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, fiber.StatusNotFound, pd.Status)
	assert.Contains(t, pd.Detail, "currency not found")
}

func TestListCryptoEndpoint(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/currencies/crypto", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var currencies []domain.Currency
	require.NoError(t, json.Unmarshal(data, &currencies))
	require.Len(t, currencies, 2)
	assert.Equal(t, "bitcoin", currencies[0].ID)
}

func TestGetCurrencyEndpoint_AliasLookup(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/currencies/eth", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var currency domain.Currency
	require.NoError(t, json.Unmarshal(data, &currency))
	assert.Equal(t, "ethereum", currency.ID)
	assert.False(t, currency.IsFiat)
}

func TestGetCurrencyEndpoint_NotFound(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(fiber.MethodGet, "/api/currencies/zzz", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWatchlistEndpoints(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"currency_id":"btc"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/watchlist/", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/api/watchlist/", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var currencies []domain.Currency
	require.NoError(t, json.Unmarshal(data, &currencies))
	require.Len(t, currencies, 1)
	assert.Equal(t, "bitcoin", currencies[0].ID)

	req = httptest.NewRequest(fiber.MethodDelete, "/api/watchlist/bitcoin", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/api/watchlist/", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	data, err = json.Marshal(envelope.Data)
	require.NoError(t, err)
	currencies = nil
	require.NoError(t, json.Unmarshal(data, &currencies))
	assert.Empty(t, currencies)
}

func TestWatchlistEndpoint_UnknownCurrencyRejected(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"currency_id":"zzz"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/api/watchlist/", body)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
