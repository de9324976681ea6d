// Package clock provides the monotonic and wall clock capabilities used by the
// button classifier and the light controller.
package clock

import (
	"sync"
	"time"
)

// EpochYear is reported by the wall clock until SNTP has set the time.
const EpochYear = 1970

type Clock interface {
	Now() time.Time
}

// System returns time.Now, which carries a monotonic reading, so durations
// computed with Sub never go backwards.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// UTC is the wall clock.
type UTC struct{}

func (UTC) Now() time.Time { return time.Now().UTC() }

// Synchronized reports whether t comes from a clock that has been set, using
// the epoch year as the "never synced" sentinel.
func Synchronized(t time.Time) bool {
	return t.Year() != EpochYear
}

// Fake is a manually driven clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
