// Package cryptocompare adapts the CryptoCompare aggregator API to the
// quotes.Source interface. The aggregator speaks ticker symbols (BTC, ETH),
// so requests and responses are translated to and from canonical ids.
package cryptocompare

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coinwatch/coinwatch/pkg/catalog"
	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/quotes"
	"github.com/tidwall/gjson"
)

const sourceName = "cryptocompare"

// vsCodes is the fiat vocabulary the aggregator accepts as tsyms.
var vsCodes = []string{
	"usd", "eur", "gbp", "jpy", "try", "rub", "cad", "aud", "chf", "cny",
	"inr", "krw", "brl", "mxn", "sek", "nok", "pln", "zar", "btc", "eth",
}

// Client is a quotes.Source over the CryptoCompare REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a CryptoCompare client.
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ListCoins returns the aggregator's coin listing translated to canonical
// ids. Coins whose ticker the alias table does not know are skipped; the
// catalog filters to its allow-list anyway.
func (c *Client) ListCoins(ctx context.Context) ([]quotes.Coin, error) {
	body, err := c.get(ctx, "/data/all/coinlist", nil)
	if err != nil {
		return nil, err
	}

	var coins []quotes.Coin
	gjson.GetBytes(body, "Data").ForEach(func(_, entry gjson.Result) bool {
		ticker := strings.ToLower(entry.Get("Symbol").String())
		id := catalog.Normalize(ticker)
		if id == ticker {
			// Unknown ticker, no canonical id for it.
			return true
		}
		coins = append(coins, quotes.Coin{
			ID:      id,
			Symbol:  entry.Get("Symbol").String(),
			Name:    entry.Get("CoinName").String(),
			IconURL: entry.Get("ImageUrl").String(),
		})
		return true
	})
	return coins, nil
}

// ListVsCurrencies returns the quote-currency codes accepted as tsyms.
func (c *Client) ListVsCurrencies(ctx context.Context) ([]string, error) {
	out := make([]string, len(vsCodes))
	copy(out, vsCodes)
	return out, nil
}

// GetPrice batches all ids and vs codes into one pricemulti call.
func (c *Client) GetPrice(ctx context.Context, ids, vs []string) (quotes.PriceTable, error) {
	tickerToID := make(map[string]string, len(ids))
	fsyms := make([]string, 0, len(ids))
	for _, id := range ids {
		ticker, ok := catalog.TickerFor(id)
		if !ok {
			continue
		}
		upper := strings.ToUpper(ticker)
		tickerToID[upper] = catalog.Normalize(id)
		fsyms = append(fsyms, upper)
	}

	tsyms := make([]string, 0, len(vs))
	for _, code := range vs {
		tsyms = append(tsyms, strings.ToUpper(code))
	}

	params := url.Values{
		"fsyms": {strings.Join(fsyms, ",")},
		"tsyms": {strings.Join(tsyms, ",")},
	}
	body, err := c.get(ctx, "/data/pricemulti", params)
	if err != nil {
		return nil, err
	}

	if gjson.GetBytes(body, "Response").String() == "Error" {
		msg := gjson.GetBytes(body, "Message").String()
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstreamFetch, msg)
	}

	table := make(quotes.PriceTable)
	gjson.ParseBytes(body).ForEach(func(ticker, row gjson.Result) bool {
		id, ok := tickerToID[ticker.String()]
		if !ok {
			return true
		}
		prices := make(map[string]float64)
		row.ForEach(func(code, price gjson.Result) bool {
			prices[strings.ToLower(code.String())] = price.Float()
			return true
		})
		table[id] = prices
		return true
	})
	return table, nil
}

// GetCoin resolves a single coin through the full listing; the aggregator has
// no cheap single-coin endpoint keyed the way the catalog asks.
func (c *Client) GetCoin(ctx context.Context, id string) (*quotes.Coin, error) {
	id = catalog.Normalize(id)
	coins, err := c.ListCoins(ctx)
	if err != nil {
		return nil, err
	}
	for i := range coins {
		if coins[i].ID == id {
			return &coins[i], nil
		}
	}
	return nil, &domain.SourceError{Source: sourceName, Err: domain.ErrCurrencyNotFound}
}

// Name identifies the source.
func (c *Client) Name() string { return sourceName }

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrUpstreamFetch, err)
	}
	if c.apiKey != "" {
		req.Header.Set("authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrUpstreamFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("cryptocompare request failed", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: API returned status %d: %s", domain.ErrUpstreamFetch, resp.StatusCode, string(body))
	}
	return body, nil
}

// Ensure Client implements quotes.Source.
var _ quotes.Source = (*Client)(nil)
