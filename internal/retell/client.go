// Package retell is a thin REST client for the Retell conversational voice API.
package retell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ent0n29/shakti/internal/observability"
)

const DefaultBaseURL = "https://api.retellai.com"

// APIError is returned when the vendor answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Retell API error: %d - %s", e.StatusCode, e.Body)
}

// Response is a successful vendor reply. Body is relayed to callers unchanged.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

type CreateWebCallRequest struct {
	AgentID string `json:"agent_id"`
}

type CreatePhoneCallRequest struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
	AgentID    string `json:"agent_id"`
}

// Client issues single, unretried requests against the vendor API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client. A zero timeout leaves requests bounded only by ctx.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) CreateWebCall(ctx context.Context, req CreateWebCallRequest) (Response, error) {
	return c.do(ctx, http.MethodPost, "/v2/create-web-call", req)
}

func (c *Client) CreatePhoneCall(ctx context.Context, req CreatePhoneCallRequest) (Response, error) {
	return c.do(ctx, http.MethodPost, "/v2/create-phone-call", req)
}

func (c *Client) ListAgents(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/list-agents", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (resp Response, err error) {
	ctx, span := observability.StartSpan(ctx, "retell "+path,
		attribute.String("http.method", method),
		attribute.String("retell.path", path),
	)
	defer func() {
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		observability.EndSpan(span, err)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{StatusCode: res.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Response{StatusCode: res.StatusCode}, &APIError{StatusCode: res.StatusCode, Body: string(raw)}
	}
	if !json.Valid(raw) {
		return Response{StatusCode: res.StatusCode}, fmt.Errorf("retell returned non-JSON body (status %d)", res.StatusCode)
	}
	return Response{StatusCode: res.StatusCode, Body: json.RawMessage(raw)}, nil
}
