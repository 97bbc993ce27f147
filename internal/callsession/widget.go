package callsession

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ent0n29/shakti/internal/phone"
	"github.com/ent0n29/shakti/internal/protocol"
	"github.com/ent0n29/shakti/internal/vendor"
)

const (
	defaultTickInterval = time.Second
	defaultResetDelay   = 2 * time.Second
)

type Options struct {
	AgentID    string
	Proxy      Proxy
	Vendor     vendor.Factory
	Microphone Microphone
	Notifier   Notifier

	// TickInterval is one elapsed-second of the call counter.
	TickInterval time.Duration
	// ResetDelay is how long the ended state is shown before returning to idle.
	ResetDelay time.Duration

	// OnChange receives a snapshot after every state change, outside the widget lock.
	OnChange func(Snapshot)
}

// Widget is the call-session state machine for one client. It runs at most one
// call at a time and owns at most one vendor session.
type Widget struct {
	mu   sync.Mutex
	opts Options

	status      Status
	mode        Mode
	muted       bool
	elapsed     int
	transcript  []Entry
	phoneNumber string

	// client is the single ownership slot for the active vendor session.
	client vendor.Client

	attempt    uint64
	tickerStop chan struct{}
	resetGen   uint64
	resetTimer *time.Timer
	closed     bool
}

func NewWidget(opts Options) *Widget {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = defaultResetDelay
	}
	if opts.Microphone == nil {
		opts.Microphone = MicrophoneFunc(func(context.Context) error { return nil })
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Notification) {})
	}
	if opts.Vendor == nil {
		opts.Vendor = func() vendor.Client { return vendor.NewMockClient() }
	}
	return &Widget{
		opts:   opts,
		status: StatusIdle,
		mode:   ModeWeb,
	}
}

func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// SetMode switches between web and phone calls while idle.
func (w *Widget) SetMode(mode Mode) error {
	if mode != ModeWeb && mode != ModePhone {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	w.mu.Lock()
	if w.status != StatusIdle {
		w.mu.Unlock()
		return ErrCallInProgress
	}
	w.mode = mode
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.changed(snap)
	return nil
}

// StartWebCall opens a browser-style call: microphone, access token from the
// proxy, then a realtime vendor session whose events drive the state.
func (w *Widget) StartWebCall(ctx context.Context) error {
	w.mu.Lock()
	if err := w.beginLocked(StatusConnecting); err != nil {
		w.mu.Unlock()
		return err
	}
	w.mode = ModeWeb
	attempt := w.attempt
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.changed(snap)

	if err := w.opts.Microphone.Request(ctx); err != nil {
		return w.abort(attempt, fmt.Errorf("%w: %v", ErrMicrophoneDenied, err))
	}

	res, err := w.invoke(ctx, protocol.ProxyRequest{
		Action:  protocol.ActionCreateWebCall,
		AgentID: w.opts.AgentID,
	})
	if err != nil {
		return w.abort(attempt, err)
	}
	if res.AccessToken == "" {
		return w.abort(attempt, errors.New("proxy returned no access token"))
	}

	client := w.opts.Vendor()
	w.mu.Lock()
	if w.attempt != attempt || w.status != StatusConnecting {
		w.mu.Unlock()
		_ = client.StopCall(ctx)
		return ErrCallCancelled
	}
	w.client = client
	w.mu.Unlock()

	go w.consume(client)

	if err := client.StartCall(ctx, res.AccessToken); err != nil {
		// The slot must be released before StopCall closes the event channel.
		cause := w.abort(attempt, fmt.Errorf("start vendor session: %w", err))
		stopQuietly(client)
		return cause
	}
	return nil
}

// StartPhoneCall asks the vendor to dial number. No realtime session is opened;
// the widget reports connected as soon as the proxy accepts the call.
func (w *Widget) StartPhoneCall(ctx context.Context, number string) error {
	cleaned := phone.Clean(number)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.status != StatusIdle {
		w.mu.Unlock()
		return ErrCallInProgress
	}
	w.mode = ModePhone
	w.phoneNumber = cleaned
	if !phone.Valid(cleaned) {
		snap := w.snapshotLocked()
		w.mu.Unlock()
		w.changed(snap)
		w.notify(Notification{
			Title:       "Invalid Phone Number",
			Description: "Please enter a valid phone number with country code (e.g., +91 1234567890)",
			Variant:     VariantDestructive,
		})
		return ErrInvalidPhoneNumber
	}
	if err := w.beginLocked(StatusCalling); err != nil {
		w.mu.Unlock()
		return err
	}
	attempt := w.attempt
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.changed(snap)

	if _, err := w.invoke(ctx, protocol.ProxyRequest{
		Action:      protocol.ActionCreatePhoneCall,
		AgentID:     w.opts.AgentID,
		PhoneNumber: cleaned,
	}); err != nil {
		return w.abort(attempt, err)
	}

	w.mu.Lock()
	if w.attempt != attempt || w.status != StatusCalling {
		w.mu.Unlock()
		return ErrCallCancelled
	}
	w.startTimerLocked()
	_ = w.setStatusLocked(StatusConnected)
	snap = w.snapshotLocked()
	w.mu.Unlock()

	w.notify(Notification{Title: "Call Initiated", Description: fmt.Sprintf("Calling %s...", cleaned)})
	w.changed(snap)
	return nil
}

// EndCall hangs up the current call, pending or connected.
func (w *Widget) EndCall(ctx context.Context) error {
	w.mu.Lock()
	if !w.status.active() {
		w.mu.Unlock()
		return ErrNoActiveCall
	}
	client := w.releaseLocked()
	w.stopTimerLocked()
	w.muted = false
	_ = w.setStatusLocked(StatusEnded)
	w.scheduleResetLocked()
	snap := w.snapshotLocked()
	w.mu.Unlock()
	w.changed(snap)

	if client != nil {
		if err := client.StopCall(ctx); err != nil {
			log.Printf("call widget: stop vendor session: %v", err)
			return fmt.Errorf("stop call: %w", err)
		}
	}
	return nil
}

// ToggleMute flips the mute flag and forwards it to the vendor session. It does
// nothing without a web-mode vendor session. Returns the new flag.
func (w *Widget) ToggleMute() (bool, error) {
	w.mu.Lock()
	client := w.client
	if client == nil || w.mode != ModeWeb {
		muted := w.muted
		w.mu.Unlock()
		return muted, nil
	}
	w.muted = !w.muted
	muted := w.muted
	snap := w.snapshotLocked()
	w.mu.Unlock()

	var err error
	if muted {
		err = client.Mute()
	} else {
		err = client.Unmute()
	}
	w.changed(snap)
	return muted, err
}

// Close releases the vendor session and all timers. The widget is unusable afterwards.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	client := w.releaseLocked()
	w.stopTimerLocked()
	w.resetGen++
	if w.resetTimer != nil {
		w.resetTimer.Stop()
		w.resetTimer = nil
	}
	w.mu.Unlock()

	if client != nil {
		return client.StopCall(context.Background())
	}
	return nil
}

// consume feeds vendor events into the state machine until the session's
// channel closes. Events from a released session are dropped.
func (w *Widget) consume(client vendor.Client) {
	for ev := range client.Events() {
		w.handleEvent(client, ev)
	}

	w.mu.Lock()
	owned := w.client == client
	w.mu.Unlock()
	if owned {
		w.handleEvent(client, protocol.CallEvent{Type: protocol.EventError, Error: "vendor session closed unexpectedly"})
	}
}

func (w *Widget) handleEvent(client vendor.Client, ev protocol.CallEvent) {
	var notes []Notification

	w.mu.Lock()
	if w.client != client {
		w.mu.Unlock()
		return
	}
	switch ev.Type {
	case protocol.EventCallStarted:
		if w.setStatusLocked(StatusConnected) != nil {
			break
		}
		w.startTimerLocked()
		notes = append(notes, Notification{Title: "Call Connected", Description: "You're now connected with Shakti AI"})
	case protocol.EventCallEnded:
		if w.setStatusLocked(StatusEnded) != nil {
			break
		}
		w.stopTimerLocked()
		w.releaseLocked()
		w.muted = false
		w.scheduleResetLocked()
		notes = append(notes, Notification{Title: "Call Ended", Description: "Call duration: " + FormatDuration(w.elapsed)})
	case protocol.EventUpdate:
		if ev.Transcript != nil {
			w.transcript = entriesFrom(ev.Transcript)
		}
	case protocol.EventError:
		log.Printf("call widget: vendor error: %s", ev.Error)
		w.stopTimerLocked()
		w.releaseLocked()
		w.muted = false
		_ = w.setStatusLocked(StatusIdle)
		notes = append(notes, Notification{Title: "Error", Description: "Something went wrong with the call", Variant: VariantDestructive})
		go stopQuietly(client)
	}
	snap := w.snapshotLocked()
	w.mu.Unlock()

	for _, n := range notes {
		w.notify(n)
	}
	w.changed(snap)
}

func (w *Widget) invoke(ctx context.Context, req protocol.ProxyRequest) (protocol.ProxyResult, error) {
	if w.opts.Proxy == nil {
		return protocol.ProxyResult{}, errors.New("call proxy is not configured")
	}
	res, err := w.opts.Proxy.Invoke(ctx, req)
	if err != nil {
		return protocol.ProxyResult{}, err
	}
	if res.Error != "" {
		return protocol.ProxyResult{}, errors.New(res.Error)
	}
	return res, nil
}

// abort ends a pending attempt after a permission, validation or upstream failure.
func (w *Widget) abort(attempt uint64, cause error) error {
	log.Printf("call widget: start failed: %v", cause)
	w.mu.Lock()
	if w.attempt != attempt || (w.status != StatusConnecting && w.status != StatusCalling) {
		w.mu.Unlock()
		return cause
	}
	w.stopTimerLocked()
	w.releaseLocked()
	_ = w.setStatusLocked(StatusIdle)
	snap := w.snapshotLocked()
	w.mu.Unlock()

	w.notify(Notification{Title: "Error", Description: cause.Error(), Variant: VariantDestructive})
	w.changed(snap)
	return cause
}

func (w *Widget) beginLocked(pending Status) error {
	if w.closed {
		return ErrClosed
	}
	if w.status != StatusIdle {
		return ErrCallInProgress
	}
	if err := w.setStatusLocked(pending); err != nil {
		return err
	}
	w.attempt++
	w.transcript = nil
	w.elapsed = 0
	w.muted = false
	return nil
}

func (w *Widget) setStatusLocked(to Status) error {
	if !CanTransition(w.status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.status, to)
	}
	w.status = to
	return nil
}

func (w *Widget) releaseLocked() vendor.Client {
	c := w.client
	w.client = nil
	return c
}

func (w *Widget) startTimerLocked() {
	if w.tickerStop != nil {
		return
	}
	stop := make(chan struct{})
	w.tickerStop = stop
	interval := w.opts.TickInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				w.mu.Lock()
				if w.tickerStop != stop {
					w.mu.Unlock()
					return
				}
				w.elapsed++
				snap := w.snapshotLocked()
				w.mu.Unlock()
				w.changed(snap)
			}
		}
	}()
}

func (w *Widget) stopTimerLocked() {
	if w.tickerStop == nil {
		return
	}
	close(w.tickerStop)
	w.tickerStop = nil
}

// scheduleResetLocked returns the widget to idle once after ResetDelay.
func (w *Widget) scheduleResetLocked() {
	w.resetGen++
	gen := w.resetGen
	if w.resetTimer != nil {
		w.resetTimer.Stop()
	}
	w.resetTimer = time.AfterFunc(w.opts.ResetDelay, func() {
		w.mu.Lock()
		if w.resetGen != gen || w.status != StatusEnded {
			w.mu.Unlock()
			return
		}
		_ = w.setStatusLocked(StatusIdle)
		w.resetTimer = nil
		snap := w.snapshotLocked()
		w.mu.Unlock()
		w.changed(snap)
	})
}

func (w *Widget) snapshotLocked() Snapshot {
	return Snapshot{
		Status:         w.status,
		Mode:           w.mode,
		Muted:          w.muted,
		ElapsedSeconds: w.elapsed,
		Transcript:     append([]Entry(nil), w.transcript...),
		PhoneNumber:    w.phoneNumber,
	}
}

func (w *Widget) notify(n Notification) {
	if n.Variant == "" {
		n.Variant = VariantDefault
	}
	w.opts.Notifier.Notify(n)
}

func (w *Widget) changed(s Snapshot) {
	if w.opts.OnChange != nil {
		w.opts.OnChange(s)
	}
}

func stopQuietly(c vendor.Client) {
	if err := c.StopCall(context.Background()); err != nil {
		log.Printf("call widget: stop vendor session: %v", err)
	}
}
