// Package client talks to a remote bill API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pigeonworks-llc/billed/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Config represents the configuration of the bill API client.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration // Default: 30 seconds
}

// StatusError is returned when the API answers with a non-success status.
// Its message is what the bills page shows to the user.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Erreur %d", e.StatusCode)
}

// Client is a bill API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client. When ClientID and ClientSecret are set, requests are
// authorized with an OAuth2 client-credentials token.
func New(ctx context.Context, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = cc.Client(context.WithValue(ctx, oauth2.HTTPClient, httpClient))
		httpClient.Timeout = timeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type billsResponse struct {
	Bills []models.Bill `json:"bills"`
}

type billResponse struct {
	Bill models.Bill `json:"bill"`
}

// ListBills fetches the bills issued by email, or every bill when email is empty.
func (c *Client) ListBills(ctx context.Context, email string) ([]models.Bill, error) {
	endpoint := c.baseURL + "/api/v1/bills"
	if email != "" {
		endpoint += "?" + url.Values{"email": {email}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var out billsResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Bills, nil
}

// CreateBill submits a new bill.
func (c *Client) CreateBill(ctx context.Context, in *models.CreateBillRequest) (*models.Bill, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bill: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/bills", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out billResponse
	if err := c.do(req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out.Bill, nil
}

func (c *Client) do(req *http.Request, want int, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
