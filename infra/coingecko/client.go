// Package coingecko adapts the CoinGecko market-data API to the quotes.Source
// interface.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coinwatch/coinwatch/pkg/domain"
	"github.com/coinwatch/coinwatch/pkg/quotes"
)

const sourceName = "coingecko"

// Client is a quotes.Source over the CoinGecko REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// coinListEntry is one row of /coins/list.
type coinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// coinDetail is the subset of /coins/{id} the catalog needs.
type coinDetail struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Small string `json:"small"`
	} `json:"image"`
}

// New creates a CoinGecko client. An empty apiKey is valid for the public
// endpoints.
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

// ListCoins returns the full coin listing.
func (c *Client) ListCoins(ctx context.Context) ([]quotes.Coin, error) {
	var entries []coinListEntry
	if err := c.getJSON(ctx, "/coins/list", nil, &entries); err != nil {
		return nil, err
	}
	coins := make([]quotes.Coin, 0, len(entries))
	for _, e := range entries {
		coins = append(coins, quotes.Coin{ID: e.ID, Symbol: e.Symbol, Name: e.Name})
	}
	return coins, nil
}

// ListVsCurrencies returns the supported quote-currency codes.
func (c *Client) ListVsCurrencies(ctx context.Context) ([]string, error) {
	var codes []string
	if err := c.getJSON(ctx, "/simple/supported_vs_currencies", nil, &codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// GetPrice returns latest quotes for every (id, vs) combination in one
// batched call using comma-joined parameters.
func (c *Client) GetPrice(ctx context.Context, ids, vs []string) (quotes.PriceTable, error) {
	params := url.Values{
		"ids":           {strings.Join(ids, ",")},
		"vs_currencies": {strings.Join(vs, ",")},
	}
	var table quotes.PriceTable
	if err := c.getJSON(ctx, "/simple/price", params, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// GetCoin returns a single coin by id.
func (c *Client) GetCoin(ctx context.Context, id string) (*quotes.Coin, error) {
	params := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"market_data":    {"false"},
		"community_data": {"false"},
		"developer_data": {"false"},
	}
	var detail coinDetail
	if err := c.getJSON(ctx, "/coins/"+url.PathEscape(id), params, &detail); err != nil {
		return nil, err
	}
	if detail.ID == "" {
		return nil, &domain.SourceError{Source: sourceName, Err: domain.ErrCurrencyNotFound}
	}
	return &quotes.Coin{
		ID:      detail.ID,
		Symbol:  detail.Symbol,
		Name:    detail.Name,
		IconURL: detail.Image.Small,
	}, nil
}

// Name identifies the source.
func (c *Client) Name() string { return sourceName }

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrUpstreamFetch, err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return &domain.SourceError{Source: sourceName, Err: domain.ErrCurrencyNotFound}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("coingecko request failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: API returned status %d: %s", domain.ErrUpstreamFetch, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrUpstreamFetch, err)
	}
	return nil
}

// Ensure Client implements quotes.Source.
var _ quotes.Source = (*Client)(nil)
