package lightcontroller

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/hydro-controller/internal/gpio"
	"github.com/thatsimonsguy/hydro-controller/internal/model"
	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
)

// Light bundles the output line with the schedule that drives it. Both are
// guarded by one mutex so the controller loop and configuration updates never
// see a half-applied change.
type Light struct {
	mu       sync.Mutex
	line     gpio.OutputLine
	schedule schedule.Schedule
	level    model.Level
	known    bool
}

type Status struct {
	Schedule schedule.Schedule
	Level    model.Level
	// Known is false until a write has succeeded.
	Known bool
}

func NewLight(line gpio.OutputLine, sched schedule.Schedule) *Light {
	return &Light{line: line, schedule: sched}
}

// ReplaceSchedule swaps the whole schedule. The controller picks it up on its
// next evaluation.
func (l *Light) ReplaceSchedule(s schedule.Schedule) {
	l.mu.Lock()
	old := l.schedule
	l.schedule = s
	l.mu.Unlock()

	log.Info().
		Str("old", old.String()).
		Str("new", s.String()).
		Msg("Light schedule replaced")
}

func (l *Light) Schedule() schedule.Schedule {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.schedule
}

func (l *Light) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Status{Schedule: l.schedule, Level: l.level, Known: l.known}
}

// Force drives the line regardless of schedule. Used for the startup and
// shutdown safe state.
func (l *Light) Force(level model.Level) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setLocked(level, l.line.Set)
}

func (l *Light) setLocked(level model.Level, set func(model.Level) error) error {
	if err := set(level); err != nil {
		return err
	}
	l.level = level
	l.known = true
	return nil
}
