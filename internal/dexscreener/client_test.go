package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := NewClient()
	c.BaseURL = srv.URL
	return c, srv
}

func TestQuoteParsesFirstPair(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/CAaddr1", r.URL.Path)
		w.Write([]byte(`{
			"pairs": [
				{"priceUsd": "0.001234", "baseToken": {"name": "Token One", "symbol": "ONE"}},
				{"priceUsd": "0.999999", "baseToken": {"name": "Other Pair", "symbol": "OTH"}}
			]
		}`))
	})
	defer srv.Close()

	quote, err := c.Quote(context.Background(), "CAaddr1")
	require.NoError(t, err)
	assert.Equal(t, 0.001234, quote.Price)
	assert.Equal(t, "Token One", quote.Name)
	assert.Equal(t, "ONE", quote.Symbol)
}

func TestQuoteUnknownTokenIsNormalFailure(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": null}`))
	})
	defer srv.Close()

	_, err := c.Quote(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNoPairs)
}

func TestQuoteUpstreamError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := c.Quote(context.Background(), "CAaddr1")
	assert.Error(t, err)
}

func TestQuoteRejectsBadPrice(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unparseable", `{"pairs": [{"priceUsd": "abc", "baseToken": {"name": "T", "symbol": "T"}}]}`},
		{"zero", `{"pairs": [{"priceUsd": "0", "baseToken": {"name": "T", "symbol": "T"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.body
			c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			defer srv.Close()

			_, err := c.Quote(context.Background(), "CAaddr1")
			assert.Error(t, err)
		})
	}
}
