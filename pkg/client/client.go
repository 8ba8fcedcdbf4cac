package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Client is an HTTP client for submitting receipts to the ingestion gateway
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new ingestion client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewWithHTTPClient creates a new ingestion client with a custom HTTP client
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// StatusError is returned when the gateway rejects a submission
type StatusError struct {
	StatusCode int
	Code       pipeline.Code
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Submit sends document bytes as a direct submission
func (c *Client) Submit(ctx context.Context, userID string, data []byte) (*pipeline.SubmitResponse, error) {
	return c.post(ctx, pipeline.SubmitRequest{
		UserID:         userID,
		FileDataBase64: base64.StdEncoding.EncodeToString(data),
	})
}

// Relay sends a push envelope referencing an already landed object
func (c *Client) Relay(ctx context.Context, bucket, name string) (*pipeline.SubmitResponse, error) {
	inner, err := json.Marshal(pipeline.ObjectNotification{Bucket: bucket, Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return c.post(ctx, pipeline.PushEnvelope{
		Message: &pipeline.PushMessage{
			Data: base64.StdEncoding.EncodeToString(inner),
		},
	})
}

func (c *Client) post(ctx context.Context, payload any) (*pipeline.SubmitResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		var errResp pipeline.ErrorResponse
		if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error != "" {
			return nil, &StatusError{StatusCode: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
	}

	var submitResp pipeline.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&submitResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &submitResp, nil
}
