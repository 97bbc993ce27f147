package calllog

import (
	"context"
	"time"
)

// Record is a server-side diagnostic entry for one proxy dispatch.
type Record struct {
	ID             string    `json:"id"`
	Action         string    `json:"action"`
	AgentID        string    `json:"agent_id"`
	ToNumber       string    `json:"to_number,omitempty"`
	UpstreamStatus int       `json:"upstream_status"`
	Error          string    `json:"error,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists and retrieves call log records.
type Store interface {
	Save(ctx context.Context, record Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}
