// Package vision talks to the Google Cloud Vision images:annotate endpoint
// for safe-search moderation and text detection.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/google"
)

// DefaultEndpoint is the public Vision v1 annotate URL
const DefaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

const cloudVisionScope = "https://www.googleapis.com/auth/cloud-vision"

// Likelihood is the Vision API likelihood enum
type Likelihood string

const (
	Unknown      Likelihood = "UNKNOWN"
	VeryUnlikely Likelihood = "VERY_UNLIKELY"
	Unlikely     Likelihood = "UNLIKELY"
	Possible     Likelihood = "POSSIBLE"
	Likely       Likelihood = "LIKELY"
	VeryLikely   Likelihood = "VERY_LIKELY"
)

// AtLeastLikely reports LIKELY or VERY_LIKELY
func (l Likelihood) AtLeastLikely() bool {
	return l == Likely || l == VeryLikely
}

// SafeSearch holds the moderation likelihoods the gateway cares about
type SafeSearch struct {
	Adult    Likelihood `json:"adult"`
	Violence Likelihood `json:"violence"`
	Racy     Likelihood `json:"racy"`
}

// TextAnnotation is one OCR result; the first entry carries the full text
type TextAnnotation struct {
	Description string `json:"description"`
	Locale      string `json:"locale,omitempty"`
}

// Config configures a Client
type Config struct {
	Endpoint     string
	APIKey       string
	MaxDimension int
	Timeout      time.Duration
}

// Client calls images:annotate.
// With an API key the key is sent as a query parameter; otherwise requests
// are authorised with application default credentials.
type Client struct {
	endpoint string
	apiKey   string
	maxDim   int
	http     *http.Client
}

// New builds a Client, resolving default credentials when no API key is set
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	var hc *http.Client
	if cfg.APIKey != "" {
		hc = &http.Client{Timeout: cfg.Timeout}
	} else {
		var err error
		hc, err = google.DefaultClient(ctx, cloudVisionScope)
		if err != nil {
			return nil, fmt.Errorf("failed to load google credentials: %w", err)
		}
		hc.Timeout = cfg.Timeout
	}
	return NewWithHTTPClient(cfg, hc), nil
}

// NewWithHTTPClient builds a Client on an existing http.Client
func NewWithHTTPClient(cfg Config, hc *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		maxDim:   cfg.MaxDimension,
		http:     hc,
	}
}

// SafeSearch runs SAFE_SEARCH_DETECTION on the image
func (c *Client) SafeSearch(ctx context.Context, image []byte) (SafeSearch, error) {
	res, err := c.annotate(ctx, image, "SAFE_SEARCH_DETECTION")
	if err != nil {
		return SafeSearch{}, err
	}
	if res.SafeSearch == nil {
		return SafeSearch{}, fmt.Errorf("vision: response has no safeSearchAnnotation")
	}
	return *res.SafeSearch, nil
}

// DetectText runs TEXT_DETECTION and returns every annotation
func (c *Client) DetectText(ctx context.Context, image []byte) ([]TextAnnotation, error) {
	res, err := c.annotate(ctx, image, "TEXT_DETECTION")
	if err != nil {
		return nil, err
	}
	return res.TextAnnotations, nil
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	SafeSearch      *SafeSearch      `json:"safeSearchAnnotation,omitempty"`
	TextAnnotations []TextAnnotation `json:"textAnnotations,omitempty"`
	Error           *apiStatus       `json:"error,omitempty"`
}

type apiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) annotate(ctx context.Context, image []byte, featureType string) (*imageResponse, error) {
	image = Prepare(image, c.maxDim)

	body, err := json.Marshal(annotateRequest{Requests: []imageRequest{{
		Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
		Features: []feature{{Type: featureType}},
	}}})
	if err != nil {
		return nil, fmt.Errorf("vision: encode request: %w", err)
	}

	endpoint := c.endpoint
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: %s request: %w", featureType, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("vision: %s returned status %d: %s", featureType, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("vision: decode response: %w", err)
	}
	if len(out.Responses) == 0 {
		return nil, fmt.Errorf("vision: empty response")
	}
	r := out.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return nil, fmt.Errorf("vision: %s", r.Error.Message)
	}
	return &r, nil
}
