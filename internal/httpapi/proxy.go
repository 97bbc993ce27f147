package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ent0n29/shakti/internal/calllog"
	"github.com/ent0n29/shakti/internal/phone"
	"github.com/ent0n29/shakti/internal/policy"
	"github.com/ent0n29/shakti/internal/protocol"
	"github.com/ent0n29/shakti/internal/reliability"
	"github.com/ent0n29/shakti/internal/retell"
)

const (
	msgMissingAPIKey     = "RETELL_API_KEY is not configured"
	msgMissingFromNumber = "RETELL_FROM_NUMBER is not configured"
	msgInvalidAction     = "Invalid action. Use: create-web-call, create-phone-call, or list-agents"
)

// handleRetellCall forwards one vendor call per request. Every failure becomes a
// 500 envelope; success relays the vendor body and status untouched.
func (s *Server) handleRetellCall(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req protocol.ProxyRequest

	res, err := s.dispatch(r.Context(), r, &req)
	elapsed := time.Since(start)

	action := actionLabel(req.Action)
	s.recordCall(r.Context(), req, res, err, elapsed)

	if err != nil {
		detail, _ := policy.RedactPII(err.Error())
		log.Printf("retell-call error: action=%s agent_id=%s err=%s", req.Action, req.AgentID, detail)
		s.metrics.ProxyRequests.WithLabelValues(action, "error").Inc()
		respondJSON(w, http.StatusInternalServerError, protocol.ProxyError{
			Error:  err.Error(),
			Status: protocol.StatusError,
		})
		return
	}

	log.Printf("retell-call ok: action=%s agent_id=%s upstream_status=%d", req.Action, req.AgentID, res.StatusCode)
	s.metrics.ProxyRequests.WithLabelValues(action, "ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}

func (s *Server) dispatch(ctx context.Context, r *http.Request, req *protocol.ProxyRequest) (retell.Response, error) {
	if s.cfg.RetellAPIKey == "" || s.vendor == nil {
		return retell.Response{}, errors.New(msgMissingAPIKey)
	}

	if err := decodeJSON(r, req); err != nil {
		if errors.Is(err, errEmptyBody) {
			return retell.Response{}, errors.New("request body is required")
		}
		return retell.Response{}, fmt.Errorf("invalid request body: %w", err)
	}
	log.Printf("retell-call request: action=%s agent_id=%s phone_number=%s", req.Action, req.AgentID, policy.MaskPhone(req.PhoneNumber))

	var (
		res retell.Response
		err error
	)
	start := time.Now()
	switch req.Action {
	case protocol.ActionCreateWebCall:
		res, err = s.vendor.CreateWebCall(ctx, retell.CreateWebCallRequest{AgentID: req.AgentID})
	case protocol.ActionCreatePhoneCall:
		var call retell.CreatePhoneCallRequest
		call, err = s.phoneCallRequest(*req)
		if err != nil {
			return retell.Response{}, err
		}
		req.PhoneNumber = call.ToNumber
		res, err = s.vendor.CreatePhoneCall(ctx, call)
	case protocol.ActionListAgents:
		res, err = s.vendor.ListAgents(ctx)
	default:
		return retell.Response{}, errors.New(msgInvalidAction)
	}
	s.metrics.ObserveUpstreamLatency(string(req.Action), time.Since(start))

	if err != nil {
		var apiErr *retell.APIError
		class := reliability.ClassifyTransportError(err)
		if errors.As(err, &apiErr) {
			class = reliability.ClassifyHTTPStatus(apiErr.StatusCode)
		}
		s.metrics.UpstreamErrors.WithLabelValues(string(req.Action), class).Inc()
		return res, err
	}
	return res, nil
}

// phoneCallRequest builds the outbound call. The caller ID always comes from
// configuration; both numbers are stripped of formatting.
func (s *Server) phoneCallRequest(req protocol.ProxyRequest) (retell.CreatePhoneCallRequest, error) {
	from := phone.Normalize(strings.TrimSpace(s.cfg.RetellFromNumber))
	if from == "" {
		return retell.CreatePhoneCallRequest{}, errors.New(msgMissingFromNumber)
	}
	to := phone.Normalize(strings.TrimSpace(req.PhoneNumber))
	if to == "" {
		return retell.CreatePhoneCallRequest{}, errors.New("phone_number is required for create-phone-call")
	}
	return retell.CreatePhoneCallRequest{
		FromNumber: from,
		ToNumber:   to,
		AgentID:    req.AgentID,
	}, nil
}

func (s *Server) recordCall(ctx context.Context, req protocol.ProxyRequest, res retell.Response, err error, elapsed time.Duration) {
	if s.calls == nil || req.Action == "" {
		return
	}
	rec := calllog.Record{
		Action:         string(req.Action),
		AgentID:        req.AgentID,
		UpstreamStatus: res.StatusCode,
		LatencyMS:      elapsed.Milliseconds(),
	}
	if req.Action == protocol.ActionCreatePhoneCall {
		rec.ToNumber = policy.MaskPhone(req.PhoneNumber)
	}
	if err != nil {
		rec.Error, _ = policy.RedactPII(err.Error())
	}
	if saveErr := s.calls.Save(ctx, rec); saveErr != nil {
		s.metrics.CallLogErrors.Inc()
		log.Printf("call log save failed: %v", saveErr)
	}
}

// actionLabel keeps metric cardinality bounded for unknown actions.
func actionLabel(a protocol.Action) string {
	switch a {
	case protocol.ActionCreateWebCall, protocol.ActionCreatePhoneCall, protocol.ActionListAgents:
		return string(a)
	case "":
		return "none"
	default:
		return "invalid"
	}
}
