package pushover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reversal-alert-bot/internal/types"
)

func testAlert() types.ReversalAlert {
	return types.ReversalAlert{
		Address:     "CAaddr1",
		Symbol:      "TKN",
		Name:        "Token",
		PercentGain: 42.5,
		Price:       0.0014,
		LocalBottom: 0.001,
		FiredAt:     time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC),
	}
}

func TestSendEmergencyPriority(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	c := NewClient("api-token", "user-key")
	c.Endpoint = srv.URL

	require.NoError(t, c.Send(context.Background(), testAlert()))

	assert.Equal(t, []string{"api-token"}, form["token"])
	assert.Equal(t, []string{"user-key"}, form["user"])
	assert.Equal(t, []string{"2"}, form["priority"])
	assert.Equal(t, []string{"siren"}, form["sound"])
	assert.Equal(t, []string{"30"}, form["retry"])
	assert.Equal(t, []string{"3600"}, form["expire"])
	require.Len(t, form["message"], 1)
	assert.Contains(t, form["message"][0], "+42.5% from bottom")
	require.Len(t, form["title"], 1)
	assert.Contains(t, form["title"][0], "TKN")
}

func TestSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("api-token", "user-key")
	c.Endpoint = srv.URL

	assert.Error(t, c.Send(context.Background(), testAlert()))
}
