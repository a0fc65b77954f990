package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shipment-parser/internal/handlers"
	"shipment-parser/internal/parser"
)

const userAgent = "shipment-parser-cli/1.0"

// Client represents an HTTP client for a running shipment-parser server
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 30*time.Second)
}

// NewClientWithTimeout creates a new API client with a request timeout
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithAPIKey sets the bearer token sent with parse requests
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = key
	return c
}

// APIError represents an error from the API
type APIError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Unwrap maps the status code back to the pipeline error it stands for, so
// remote and local failures are handled alike.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case http.StatusUnprocessableEntity:
		return parser.ErrNoRecords
	case http.StatusRequestEntityTooLarge:
		return parser.ErrInputTooLarge
	default:
		return nil
	}
}

// doRequest performs an HTTP request and handles errors
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	// Handle API errors
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()

		apiErr := APIError{Code: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return nil, &apiErr
	}

	return resp, nil
}

// HealthCheck checks if the API server is healthy
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// Parse sends text to the server and returns its result
func (c *Client) Parse(text string) (*parser.Result, error) {
	resp, err := c.doRequest("POST", "/api/parse", &handlers.ParseRequest{Text: text})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed handlers.ParseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &parser.Result{
		RunID:    parsed.RunID,
		Strategy: parsed.Strategy,
		Records:  parsed.Records,
		Warnings: parsed.Warnings,
	}, nil
}

// Export sends text to the server and returns the workbook bytes
func (c *Client) Export(text string) ([]byte, error) {
	resp, err := c.doRequest("POST", "/api/export", &handlers.ParseRequest{Text: text})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return data, nil
}
