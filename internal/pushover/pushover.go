package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"reversal-alert-bot/internal/types"
)

const defaultEndpoint = "https://api.pushover.net/1/messages.json"

// Client delivers reversal alerts through the Pushover messages API as
// emergency-priority notifications with the siren sound. Delivery is
// fire-and-forget: one attempt, no retry.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client

	apiToken string
	userKey  string
}

func NewClient(apiToken, userKey string) *Client {
	return &Client{
		Endpoint:   defaultEndpoint,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		apiToken:   apiToken,
		userKey:    userKey,
	}
}

// Send pushes one reversal alert.
func (c *Client) Send(ctx context.Context, alert types.ReversalAlert) error {
	message := fmt.Sprintf(
		"🚀 %s reversed!\n\n📈 +%.1f%% from bottom\n💰 Current price: $%.6f\n📉 Local bottom: $%.6f\n⏰ %s",
		alert.Symbol,
		alert.PercentGain,
		alert.Price,
		alert.LocalBottom,
		alert.FiredAt.Format("15:04:05"),
	)

	form := url.Values{
		"token":    {c.apiToken},
		"user":     {c.userKey},
		"message":  {message},
		"title":    {fmt.Sprintf("🔥 REVERSAL: %s +%.0f%%", alert.Symbol, alert.PercentGain)},
		"sound":    {"siren"},
		"priority": {"2"},
		"retry":    {"30"},
		"expire":   {"3600"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "could not build pushover request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "pushover request failed for %s", alert.Symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("pushover returned status %d for %s", resp.StatusCode, alert.Symbol)
	}

	return nil
}
