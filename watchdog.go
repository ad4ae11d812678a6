package session

import (
	"context"
	"math"
	"sync"
	"time"
)

// WatchdogState is one of the inactivity machine's states.
type WatchdogState string

const (
	// WatchdogIdle means timers are running and no warning is shown.
	WatchdogIdle WatchdogState = "idle"
	// WatchdogWarningShown means the pre-expiry countdown is visible.
	WatchdogWarningShown WatchdogState = "warning_shown"
	// WatchdogExpired means logout was forced. Terminal for this instance;
	// a fresh watchdog (e.g. after a new login) starts again at Idle.
	WatchdogExpired WatchdogState = "expired"
)

// Watchdog is the timer-driven inactivity state machine: it observes
// activity signals, raises a pre-expiry warning, and forces logout after
// prolonged idleness.
//
// Three timers exist while armed: the warning timer, the logout timer, and
// the once-per-second countdown ticker. Every reset and teardown clears all
// three; a leaked timer would fire a spurious warning or logout after the
// machine believes it has reset. The countdown is cosmetic only, the
// expiry transition is driven by the absolute logout timer.
type Watchdog struct {
	mu           sync.Mutex
	state        WatchdogState
	inactivity   time.Duration
	warning      time.Duration
	now          func() time.Time
	logout       func(ctx context.Context)
	logger       Logger
	activitySink ActivitySink
	onWarning    func(secondsRemaining int)
	onTick       func(secondsRemaining int)
	onExpired    func()

	warnTimer   *time.Timer
	expireTimer *time.Timer
	tickStop    chan struct{}
	expireAt    time.Time
	// generation guards stale timer callbacks: a timer armed before a reset
	// or visibility change must not apply its side effect afterwards.
	generation uint64
	hidden     bool
	stopped    bool
}

// WatchdogOption customizes watchdog construction.
type WatchdogOption func(*Watchdog)

// WithWatchdogClock injects a custom clock (useful for tests).
func WithWatchdogClock(clock func() time.Time) WatchdogOption {
	return func(w *Watchdog) {
		if clock != nil {
			w.now = clock
		}
	}
}

// WithWatchdogLogger overrides the logger used for sink and logout failures.
func WithWatchdogLogger(logger Logger) WatchdogOption {
	return func(w *Watchdog) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatchdogActivitySink sets the ActivitySink used to publish warning and
// expiry events.
func WithWatchdogActivitySink(sink ActivitySink) WatchdogOption {
	return func(w *Watchdog) {
		w.activitySink = normalizeActivitySink(sink)
	}
}

// WithWatchdogOnWarning registers the callback fired on Idle -> WarningShown.
func WithWatchdogOnWarning(cb func(secondsRemaining int)) WatchdogOption {
	return func(w *Watchdog) {
		w.onWarning = cb
	}
}

// WithWatchdogOnTick registers the once-per-second countdown callback while
// the warning is shown.
func WithWatchdogOnTick(cb func(secondsRemaining int)) WatchdogOption {
	return func(w *Watchdog) {
		w.onTick = cb
	}
}

// WithWatchdogOnExpired registers the callback fired after forced logout,
// used by the hosting UI to redirect to the login view.
func WithWatchdogOnExpired(cb func()) WatchdogOption {
	return func(w *Watchdog) {
		w.onExpired = cb
	}
}

// NewWatchdog returns an unarmed watchdog. logout is invoked exactly once on
// expiry; its failures are swallowed so a failed remote logout cannot keep
// the client session alive. Call Start to arm.
func NewWatchdog(logout func(ctx context.Context), cfg Config, opts ...WatchdogOption) *Watchdog {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	w := &Watchdog{
		state:        WatchdogIdle,
		inactivity:   cfg.GetInactivityTimeout(),
		warning:      cfg.GetWarningTimeout(),
		now:          time.Now,
		logout:       logout,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}

	if w.warning >= w.inactivity {
		w.warning = w.inactivity / 2
	}

	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	return w
}

// Start arms the timers from a fresh activity stamp.
func (w *Watchdog) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || w.state == WatchdogExpired {
		return
	}
	w.resetLocked()
}

// Touch records a tracked activity signal (pointer, key, scroll, touch,
// click). During WarningShown it cancels the countdown and returns to Idle.
// Ignored once expired; a fresh instance is needed after a new login.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || w.hidden || w.state == WatchdogExpired {
		return
	}
	w.resetLocked()
}

// KeepSession is the explicit "keep me signed in" action from the warning
// modal. Identical to activity.
func (w *Watchdog) KeepSession() {
	w.Touch()
}

// SetVisible tracks page visibility. A hidden period does not count as
// forced-idle time: hiding pauses the timers, and regaining visibility
// restamps activity and resets the machine.
func (w *Watchdog) SetVisible(visible bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped || w.state == WatchdogExpired {
		return
	}

	if !visible {
		w.hidden = true
		w.clearTimersLocked()
		w.state = WatchdogIdle
		return
	}

	w.hidden = false
	w.resetLocked()
}

// Stop tears the watchdog down, clearing all timers. Idempotent.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	w.clearTimersLocked()
}

// State returns the current machine state.
func (w *Watchdog) State() WatchdogState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// IsWarningShown reports whether the countdown modal should render.
func (w *Watchdog) IsWarningShown() bool {
	return w.State() == WatchdogWarningShown
}

// SecondsRemaining returns the display countdown while the warning is shown,
// zero otherwise. Recomputed from the absolute deadline so the displayed
// value cannot drift from the real expiry.
func (w *Watchdog) SecondsRemaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != WatchdogWarningShown {
		return 0
	}

	secs := int(math.Ceil(w.expireAt.Sub(w.now()).Seconds()))
	if secs < 0 {
		return 0
	}
	return secs
}

// resetLocked restamps activity and re-arms both timers. Callers hold the
// lock.
func (w *Watchdog) resetLocked() {
	w.clearTimersLocked()
	w.state = WatchdogIdle
	w.generation++
	gen := w.generation

	now := w.now()
	w.expireAt = now.Add(w.inactivity)
	w.warnTimer = time.AfterFunc(w.inactivity-w.warning, func() { w.warnFired(gen) })
	w.expireTimer = time.AfterFunc(w.inactivity, func() { w.expireFired(gen) })
}

func (w *Watchdog) clearTimersLocked() {
	if w.warnTimer != nil {
		w.warnTimer.Stop()
		w.warnTimer = nil
	}
	if w.expireTimer != nil {
		w.expireTimer.Stop()
		w.expireTimer = nil
	}
	if w.tickStop != nil {
		close(w.tickStop)
		w.tickStop = nil
	}
}

func (w *Watchdog) warnFired(gen uint64) {
	w.mu.Lock()

	if w.stopped || w.hidden || gen != w.generation || w.state != WatchdogIdle {
		w.mu.Unlock()
		return
	}

	w.state = WatchdogWarningShown
	w.startCountdownLocked()

	secs := int(math.Ceil(w.expireAt.Sub(w.now()).Seconds()))
	onWarning := w.onWarning
	w.mu.Unlock()

	w.emitEvent(ActivityEventIdleWarning, map[string]any{"seconds_remaining": secs})

	if onWarning != nil {
		onWarning(secs)
	}
}

func (w *Watchdog) expireFired(gen uint64) {
	w.mu.Lock()

	if w.stopped || w.hidden || gen != w.generation || w.state == WatchdogExpired {
		w.mu.Unlock()
		return
	}

	w.state = WatchdogExpired
	w.clearTimersLocked()
	logout := w.logout
	onExpired := w.onExpired
	w.mu.Unlock()

	// Forced expiry must end the client session no matter what: logout
	// failures are swallowed and the redirect signal fires regardless.
	if logout != nil {
		logout(context.Background())
	}

	w.emitEvent(ActivityEventIdleExpired, nil)

	if onExpired != nil {
		onExpired()
	}
}

func (w *Watchdog) startCountdownLocked() {
	stop := make(chan struct{})
	w.tickStop = stop
	onTick := w.onTick

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if onTick != nil {
					onTick(w.SecondsRemaining())
				}
			}
		}
	}()
}

func (w *Watchdog) emitEvent(eventType ActivityEventType, metadata map[string]any) {
	sink := normalizeActivitySink(w.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		Metadata:   metadata,
		OccurredAt: w.now(),
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(context.Background(), event); err != nil {
		w.logger.Warn("watchdog activity sink error: %v", err)
	}
}
