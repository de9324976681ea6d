package main

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/hydro-controller/db"
	"github.com/thatsimonsguy/hydro-controller/internal/button"
	"github.com/thatsimonsguy/hydro-controller/internal/clock"
	"github.com/thatsimonsguy/hydro-controller/internal/controllers/lightcontroller"
	"github.com/thatsimonsguy/hydro-controller/internal/datadog"
	"github.com/thatsimonsguy/hydro-controller/internal/gpio"
	"github.com/thatsimonsguy/hydro-controller/internal/model"
	"github.com/thatsimonsguy/hydro-controller/internal/notifications"
	"github.com/thatsimonsguy/hydro-controller/internal/schedule"
)

type reactions struct {
	db       *sql.DB
	light    *lightcontroller.Light
	clock    clock.Clock
	metrics  *datadog.Client
	fallback schedule.Schedule

	mu  sync.RWMutex
	pub notifications.Publisher
	// last light level handed to pub; announced is false until one has been
	announced bool
	lastLight model.Level
}

// setPublisher swaps in a connected publisher once MQTT comes up. Publishing
// runs on its own goroutine so a slow broker never stalls the button poll or
// the controller loop.
func (r *reactions) setPublisher(p notifications.Publisher) {
	async := notifications.NewAsync(p, notifications.DefaultQueueSize)

	r.mu.Lock()
	r.pub = async
	r.announced = false
	r.mu.Unlock()
}

// lightChanged records level and reports whether it differs from what was
// last published.
func (r *reactions) lightChanged(level model.Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.announced && r.lastLight == level {
		return false
	}
	r.announced = true
	r.lastLight = level
	return true
}

func (r *reactions) publisher() notifications.Publisher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pub == nil {
		return notifications.Disabled{}
	}
	return r.pub
}

func (r *reactions) press(kind model.PressKind) {
	log.Info().Str("kind", string(kind)).Msg("Button press")
	r.metrics.Incr("button.press", "kind:"+string(kind))

	if err := r.publisher().PublishPress(notifications.PressEvent{Timestamp: r.clock.Now(), Kind: kind}); err != nil {
		log.Warn().Err(err).Msg("Failed to publish button press")
	}
}

func (r *reactions) shortPress() button.Handler {
	return button.HandlerFunc(func(gpio.InputLine) {
		r.press(model.ShortPress)
	})
}

// longPress also re-applies the persisted schedule, so edits made directly in
// the store take effect without a restart.
func (r *reactions) longPress() button.Handler {
	return button.HandlerFunc(func(gpio.InputLine) {
		r.press(model.LongPress)

		sched, err := db.LoadSchedule(r.db, r.fallback)
		if err != nil {
			log.Error().Err(err).Msg("Failed to reload light schedule")
			return
		}
		r.light.ReplaceSchedule(sched)
	})
}

// evaluated reports each controller tick to metrics, and level changes to MQTT.
func (r *reactions) evaluated(ev lightcontroller.Evaluation) {
	r.metrics.Gauge("light.on", boolToFloat(ev.Level == model.High))
	r.metrics.Gauge("clock.synchronized", boolToFloat(ev.Synchronized))
	if ev.Err != nil {
		r.metrics.Incr("light.write_error")
	}

	if !ev.Wrote || !r.lightChanged(ev.Level) {
		return
	}
	err := r.publisher().PublishLight(notifications.LightEvent{
		Timestamp:    ev.Time,
		Level:        ev.Level,
		Synchronized: ev.Synchronized,
		Hour:         ev.Hour,
		Schedule:     r.light.Schedule().String(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to publish light state")
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func pollInterval(millis int) time.Duration {
	if millis <= 0 {
		return 10 * time.Millisecond
	}
	return time.Duration(millis) * time.Millisecond
}
