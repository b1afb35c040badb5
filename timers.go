package autofocus

import (
	"slices"
	"sync"
	"time"
)

// TimerFunc is a fixed-period callback. It returns the delay until its next
// run, or false to unregister itself.
type TimerFunc func(now time.Time) (next time.Duration, again bool)

type timer struct {
	name string
	due  time.Time
	fn   TimerFunc
	// rearm is set by Register while the timer is firing; a callback that
	// then asks to stop is scheduled again after rearmDelay instead.
	rearm      bool
	rearmDelay time.Duration
}

// Timers is the host's timer registration capability: named one-shot timers
// that keep running for as long as their callback asks to be rescheduled.
type Timers struct {
	mu     sync.Mutex
	timers map[string]*timer
	now    func() time.Time
	logger func() Logger
}

func NewTimers(now func() time.Time, logger func() Logger) *Timers {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = NewNopLogger
	}
	return &Timers{
		timers: make(map[string]*timer),
		now:    now,
		logger: logger,
	}
}

// Register schedules fn to run delay from now. It reports false and leaves
// the existing timer alone if name is already registered; if that timer is
// firing and its callback asks to stop, it runs once more after delay.
func (t *Timers) Register(name string, delay time.Duration, fn TimerFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tm, ok := t.timers[name]; ok {
		tm.rearm = true
		tm.rearmDelay = delay
		return false
	}
	t.timers[name] = &timer{name: name, due: t.now().Add(delay), fn: fn}
	t.logger().Debugf("timer %q registered (first run in %v)", name, delay)
	return true
}

func (t *Timers) Unregister(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.timers[name]; !ok {
		return false
	}
	delete(t.timers, name)
	t.logger().Debugf("timer %q unregistered", name)
	return true
}

func (t *Timers) IsRegistered(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.timers[name]
	return ok
}

func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}

// Fire runs every timer due at now, in due order, and returns how many ran.
// Callbacks run without the registry lock held, so they may register or
// unregister timers themselves.
func (t *Timers) Fire(now time.Time) int {
	t.mu.Lock()
	due := make([]*timer, 0, len(t.timers))
	for _, tm := range t.timers {
		if !now.Before(tm.due) {
			tm.rearm = false
			due = append(due, tm)
		}
	}
	slices.SortFunc(due, func(a, b *timer) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		if a.name < b.name {
			return -1
		}
		if a.name > b.name {
			return 1
		}
		return 0
	})
	t.mu.Unlock()

	for _, tm := range due {
		next, again := tm.fn(now)

		t.mu.Lock()
		if t.timers[tm.name] == tm {
			switch {
			case again:
				tm.due = now.Add(next)
			case tm.rearm:
				tm.due = now.Add(tm.rearmDelay)
				tm.rearm = false
			default:
				delete(t.timers, tm.name)
				t.logger().Debugf("timer %q finished", tm.name)
			}
		}
		t.mu.Unlock()
	}
	return len(due)
}
