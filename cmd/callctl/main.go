package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ent0n29/shakti/internal/callsession"
	"github.com/ent0n29/shakti/internal/proxyclient"
	"github.com/ent0n29/shakti/internal/vendor"
)

type options struct {
	mode        callsession.Mode
	phone       string
	agentID     string
	proxyURL    string
	apiKey      string
	vendorKind  string
	vendorWSURL string
	hold        time.Duration
	resetDelay  time.Duration
	tick        time.Duration
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "callctl: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "callctl: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var cfg options
	var mode string

	fs := flag.NewFlagSet("callctl", flag.ContinueOnError)
	fs.StringVar(&mode, "mode", "web", "call mode: web|phone")
	fs.StringVar(&cfg.phone, "phone", "", "number to dial in phone mode, with country code")
	fs.StringVar(&cfg.agentID, "agent-id", os.Getenv("RETELL_AGENT_ID"), "vendor agent id")
	fs.StringVar(&cfg.proxyURL, "proxy-url", "http://127.0.0.1:8080/v1/retell-call", "retell-call proxy URL")
	fs.StringVar(&cfg.apiKey, "api-key", os.Getenv("PROXY_API_KEY"), "optional key sent as apikey and bearer token")
	fs.StringVar(&cfg.vendorKind, "vendor", "mock", "realtime session: mock|ws")
	fs.StringVar(&cfg.vendorWSURL, "vendor-ws-url", "", "websocket event bridge URL for -vendor ws")
	fs.DurationVar(&cfg.hold, "hold", 10*time.Second, "how long to stay on the call before hanging up")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg.mode = callsession.Mode(strings.ToLower(strings.TrimSpace(mode)))
	switch cfg.mode {
	case callsession.ModeWeb, callsession.ModePhone:
	default:
		return options{}, fmt.Errorf("mode must be web or phone, got %q", mode)
	}
	if cfg.mode == callsession.ModePhone && strings.TrimSpace(cfg.phone) == "" {
		return options{}, fmt.Errorf("phone is required in phone mode")
	}
	cfg.proxyURL = strings.TrimSpace(cfg.proxyURL)
	if cfg.proxyURL == "" {
		return options{}, fmt.Errorf("proxy-url is required")
	}
	switch cfg.vendorKind {
	case "mock":
	case "ws":
		if strings.TrimSpace(cfg.vendorWSURL) == "" {
			return options{}, fmt.Errorf("vendor-ws-url is required with -vendor ws")
		}
	default:
		return options{}, fmt.Errorf("vendor must be mock or ws, got %q", cfg.vendorKind)
	}
	if cfg.hold < 0 {
		return options{}, fmt.Errorf("hold must be >= 0")
	}
	cfg.resetDelay = 2 * time.Second
	cfg.tick = time.Second
	return cfg, nil
}

func run(ctx context.Context, cfg options, out io.Writer) error {
	p := &printer{out: out}

	factory := func() vendor.Client { return vendor.NewMockClient(vendor.DefaultScript()...) }
	if cfg.vendorKind == "ws" {
		factory = func() vendor.Client { return vendor.NewWSClient(cfg.vendorWSURL) }
	}

	w := callsession.NewWidget(callsession.Options{
		AgentID:      cfg.agentID,
		Proxy:        proxyclient.New(cfg.proxyURL, proxyclient.Options{APIKey: cfg.apiKey}),
		Vendor:       factory,
		Notifier:     callsession.NotifierFunc(p.notify),
		TickInterval: cfg.tick,
		ResetDelay:   cfg.resetDelay,
		OnChange:     p.render,
	})
	defer w.Close()

	if err := w.SetMode(cfg.mode); err != nil {
		return err
	}
	p.render(w.Snapshot())

	var err error
	if cfg.mode == callsession.ModePhone {
		err = w.StartPhoneCall(ctx, cfg.phone)
	} else {
		err = w.StartWebCall(ctx)
	}
	if err != nil {
		return err
	}

	hold := time.NewTimer(cfg.hold)
	defer hold.Stop()
	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

wait:
	for {
		select {
		case <-ctx.Done():
			break wait
		case <-hold.C:
			break wait
		case <-poll.C:
			if st := w.Snapshot().Status; st == callsession.StatusEnded || st == callsession.StatusIdle {
				break wait
			}
		}
	}

	if err := w.EndCall(context.Background()); err != nil && !errors.Is(err, callsession.ErrNoActiveCall) {
		return err
	}
	return waitIdle(w, cfg.resetDelay+time.Second)
}

func waitIdle(w *callsession.Widget, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if w.Snapshot().Status == callsession.StatusIdle {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("widget did not return to idle within %s", timeout)
}

// printer writes notifications, caption changes and new visible transcript lines.
type printer struct {
	mu         sync.Mutex
	out        io.Writer
	caption    string
	transcript string
}

func (p *printer) notify(n callsession.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prefix := "*"
	if n.Variant == callsession.VariantDestructive {
		prefix = "!"
	}
	fmt.Fprintf(p.out, "%s %s: %s\n", prefix, n.Title, n.Description)
}

func (p *printer) render(s callsession.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caption := s.StatusText(); caption != p.caption {
		p.caption = caption
		fmt.Fprintf(p.out, "[%s] %s\n", s.Status, caption)
	}

	var b strings.Builder
	for _, e := range s.VisibleTranscript() {
		b.WriteString("  ")
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}
	if text := b.String(); text != p.transcript {
		p.transcript = text
		if text != "" {
			fmt.Fprint(p.out, text)
		}
	}
}
