// Package shipping is a thin client for the delivery-partner REST API. Calls
// run through a circuit breaker so a carrier outage trips fast instead of
// tying up request handlers.
package shipping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Config holds delivery-partner connection details.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client calls the delivery-partner API.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// ManifestRequest asks the carrier to generate a shipping label for an order.
type ManifestRequest struct {
	OrderID   string  `json:"order_id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	PostCode  string  `json:"post_code"`
	Country   string  `json:"country"`
	CODAmount float64 `json:"cod_amount,omitempty"`
}

// Manifest is the carrier-generated label/tracking record.
type Manifest struct {
	ManifestID     string `json:"manifest_id"`
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url,omitempty"`
}

// TrackingStatus is the carrier's view of a shipment.
type TrackingStatus struct {
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
	Description    string `json:"description,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// NewClient creates a delivery-partner client.
func NewClient(cfg Config) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "shipping-partner",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
	}
}

// CreateManifest requests a shipping label and tracking number for an order.
func (c *Client) CreateManifest(req ManifestRequest) (*Manifest, error) {
	var manifest Manifest
	if err := c.post("/v1/manifests", req, &manifest); err != nil {
		return nil, fmt.Errorf("failed to create manifest for order %s: %w", req.OrderID, err)
	}
	return &manifest, nil
}

// Track fetches the carrier status for a tracking number.
func (c *Client) Track(trackingNumber string) (*TrackingStatus, error) {
	var status TrackingStatus
	if err := c.get("/v1/track/"+trackingNumber, &status); err != nil {
		return nil, fmt.Errorf("failed to track shipment %s: %w", trackingNumber, err)
	}
	return &status, nil
}

func (c *Client) post(path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(http.MethodPost, path, bytes.NewReader(body), out)
}

func (c *Client) get(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) do(method, path string, body io.Reader, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequest(method, c.cfg.BaseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("carrier returned %d: %s", resp.StatusCode, payload)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("failed to decode carrier response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}
