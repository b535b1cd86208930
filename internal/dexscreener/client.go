package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"reversal-alert-bot/internal/types"
)

const defaultBaseURL = "https://api.dexscreener.com"

// ErrNoPairs means DexScreener knows no trading pair for the address. This is
// a normal lookup failure (wrong or delisted contract address), not an
// upstream outage.
var ErrNoPairs = errors.New("no trading pairs found for token")

// Client fetches token quotes from the DexScreener API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	Pairs []struct {
		PriceUSD  string `json:"priceUsd"`
		BaseToken struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"baseToken"`
	} `json:"pairs"`
}

// Quote returns the current price snapshot for the token at address, taken
// from the first pair DexScreener reports.
func (c *Client) Quote(ctx context.Context, address string) (types.Quote, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.BaseURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.Quote{}, errors.Wrap(err, "could not build dexscreener request")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return types.Quote{}, errors.Wrapf(err, "dexscreener request failed for %s", address)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Quote{}, errors.Errorf("dexscreener returned status %d for %s", resp.StatusCode, address)
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return types.Quote{}, errors.Wrapf(err, "could not parse dexscreener response for %s", address)
	}

	if len(data.Pairs) == 0 {
		return types.Quote{}, ErrNoPairs
	}

	pair := data.Pairs[0]
	price, err := strconv.ParseFloat(pair.PriceUSD, 64)
	if err != nil {
		return types.Quote{}, errors.Wrapf(err, "invalid priceUsd %q for %s", pair.PriceUSD, address)
	}
	if price <= 0 {
		return types.Quote{}, errors.Errorf("non-positive price %f for %s", price, address)
	}

	return types.Quote{
		Price:  price,
		Name:   pair.BaseToken.Name,
		Symbol: pair.BaseToken.Symbol,
	}, nil
}
