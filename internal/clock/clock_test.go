package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSynchronized(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		expected bool
	}{
		{"epoch", time.Unix(0, 0).UTC(), false},
		{"late 1970", time.Date(1970, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{"1971", time.Date(1971, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"synced", time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Synchronized(tt.t))
		})
	}
}

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())

	f.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, f.Now().Sub(start))

	later := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	f.Set(later)
	assert.Equal(t, later, f.Now())
}

func TestUTCIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, UTC{}.Now().Location())
}
