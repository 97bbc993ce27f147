// Package proxyclient calls the retell-call proxy on behalf of the call widget.
package proxyclient

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
	"github.com/ent0n29/shakti/internal/protocol"
)

// Error is a non-2xx proxy reply. Message is the envelope error when present.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("call proxy returned status %d", e.StatusCode)
	}
	return e.Message
}

type Options struct {
	// APIKey is sent as both apikey and a bearer authorization header, the way
	// supabase-style function gateways expect the publishable key.
	APIKey string
	// Timeout bounds each request. Zero leaves requests bounded only by ctx.
	Timeout time.Duration
}

type Client struct {
	url    string
	apiKey string
	client *http.Client
}

func New(url string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout < 0 {
		timeout = 0
	}
	return &Client{
		url:    strings.TrimSpace(url),
		apiKey: strings.TrimSpace(opts.APIKey),
		client: &http.Client{Timeout: timeout},
	}
}

// Invoke posts one proxy request and decodes the fields the widget reads from
// the relayed vendor response.
func (c *Client) Invoke(ctx context.Context, req protocol.ProxyRequest) (result protocol.ProxyResult, err error) {
	ctx, span := observability.StartSpan(ctx, "proxy "+string(req.Action),
		attribute.String("proxy.action", string(req.Action)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if c.url == "" {
		return protocol.ProxyResult{}, fmt.Errorf("proxy url is required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return protocol.ProxyResult{}, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return protocol.ProxyResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("apikey", c.apiKey)
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return protocol.ProxyResult{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return protocol.ProxyResult{}, fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var envelope protocol.ProxyError
		_ = json.Unmarshal(raw, &envelope)
		return protocol.ProxyResult{}, &Error{StatusCode: res.StatusCode, Message: envelope.Error}
	}
	// list-agents relays a JSON array; only objects carry widget fields.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return protocol.ProxyResult{}, fmt.Errorf("decode response: invalid JSON")
		}
		return protocol.ProxyResult{}, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return protocol.ProxyResult{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
