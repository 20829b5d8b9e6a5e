package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ConfirmContactPayload is posted to the contact-confirmation endpoint after
// a successful check-in.
type ConfirmContactPayload struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	EventName  string `json:"event_name"`
	LocationID string `json:"location_id"`
}

// Notifier posts contact confirmations. Calls are best effort: callers log
// failures and never block or roll back on them.
type Notifier struct {
	endpoint string
	hc       *http.Client
}

func NewNotifier(endpoint string) *Notifier {
	return &Notifier{
		endpoint: endpoint,
		hc: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (n *Notifier) ConfirmContact(ctx context.Context, payload ConfirmContactPayload) error {
	if n.endpoint == "" {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.hc.Do(req)
	if err != nil {
		return fmt.Errorf("confirm contact request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("confirm contact returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
