// Package reviews is a client for the review platform's private reply API.
package reviews

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReplySource tags replies posted by this service.
const ReplySource = "automation"

// maxBodyBytes caps how much of an upstream response body is kept.
const maxBodyBytes = 64 << 10

// ErrMissingToken is returned when no business token is configured.
var ErrMissingToken = errors.New("TP_BUSINESS_TOKEN missing, set it in the environment")

// Config configures the client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client posts replies to reviews.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a reply API client. A zero timeout defaults to 20 seconds.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Response is the upstream answer to a reply post.
type Response struct {
	StatusCode int
	Body       string
}

type replyRequest struct {
	Message     string `json:"message"`
	ReplySource string `json:"replySource"`
}

// PostReply posts message as the company reply to the review. Each call
// carries a fresh idempotency key and is attempted exactly once. Any HTTP
// response is returned as-is; only transport failures are errors.
func (c *Client) PostReply(ctx context.Context, reviewID, message string) (*Response, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	body, err := json.Marshal(replyRequest{Message: message, ReplySource: ReplySource})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reply: %w", err)
	}

	endpoint := c.baseURL + "/v1/private/reviews/" + url.PathEscape(reviewID) + "/reply"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create reply request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reply request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read reply response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: string(respBody)}, nil
}
