package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Client talks to the external commerce platform. Every call is stateless:
// the caller resolves the per-location API key and passes it in. There is no
// built-in retry; callers decide whether a failure is worth retrying.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		hc: &http.Client{
			Timeout: timeout,
		},
	}
}

// UpstreamError carries the status and body of a non-2xx upstream response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}

type ProductRequest struct {
	Name        string `json:"name"`
	LocationID  string `json:"locationId"`
	Description string `json:"description,omitempty"`
	EventID     string `json:"eventId"`
}

type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"locationId"`
}

type PriceRequest struct {
	Name              string          `json:"name"`
	Currency          string          `json:"currency"`
	Amount            decimal.Decimal `json:"amount"`
	LocationID        string          `json:"locationId"`
	AvailableQuantity int             `json:"availableQuantity"`
}

type Price struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type InventoryItem struct {
	PriceID           string `json:"priceId"`
	AvailableQuantity int    `json:"availableQuantity"`
}

type InventoryRequest struct {
	LocationID string          `json:"locationId"`
	Items      []InventoryItem `json:"items"`
}

func (c *Client) CreateProduct(ctx context.Context, apiKey string, req ProductRequest) (*Product, error) {
	var product Product
	if err := c.do(ctx, apiKey, http.MethodPost, "/products", req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, apiKey, productID string, req ProductRequest) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/products/%s", productID)
	if err := c.do(ctx, apiKey, http.MethodPut, path, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) CreatePrice(ctx context.Context, apiKey, productID string, req PriceRequest) (*Price, error) {
	var price Price
	path := fmt.Sprintf("/products/%s/prices", productID)
	if err := c.do(ctx, apiKey, http.MethodPost, path, req, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

func (c *Client) UpdatePrice(ctx context.Context, apiKey, productID, priceID string, req PriceRequest) (*Price, error) {
	var price Price
	path := fmt.Sprintf("/products/%s/prices/%s", productID, priceID)
	if err := c.do(ctx, apiKey, http.MethodPut, path, req, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

func (c *Client) SyncInventory(ctx context.Context, apiKey string, req InventoryRequest) error {
	return c.do(ctx, apiKey, http.MethodPost, "/inventory", req, nil)
}

// FetchOrder returns the raw upstream order payload so callers can persist it
// verbatim for auditing.
func (c *Client) FetchOrder(ctx context.Context, apiKey, orderID string) ([]byte, error) {
	url := c.baseURL + fmt.Sprintf("/orders/%s", orderID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch order request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func (c *Client) do(ctx context.Context, apiKey, method, path string, payload, dest interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("commerce request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if dest != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dest); err != nil {
			return fmt.Errorf("failed to decode upstream response: %w", err)
		}
	}

	return nil
}
