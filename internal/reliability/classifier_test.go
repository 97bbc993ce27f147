package reliability

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{400, ClassClient},
		{401, ClassClient},
		{404, ClassClient},
		{408, ClassTimeout},
		{422, ClassClient},
		{429, ClassRateLimited},
		{500, ClassServer},
		{503, ClassServer},
		{504, ClassTimeout},
	}
	for _, tc := range cases {
		got := ClassifyHTTPStatus(tc.code)
		if got != tc.want {
			t.Fatalf("ClassifyHTTPStatus(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransportError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("send request: %w", context.Canceled), ClassCanceled},
		{fmt.Errorf("send request: %w", context.DeadlineExceeded), ClassTimeout},
		{fmt.Errorf("send request: %w", timeoutErr{}), ClassTimeout},
		{errors.New("connection refused"), ClassTransport},
	}
	for _, tc := range cases {
		if got := ClassifyTransportError(tc.err); got != tc.want {
			t.Fatalf("ClassifyTransportError(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
