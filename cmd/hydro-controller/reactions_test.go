package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func setupReactions(t *testing.T) (*reactions, *notifications.FakePublisher, *clock.Fake) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	pub := &notifications.FakePublisher{}
	wall := clock.NewFake(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	return &reactions{
		db:       database,
		light:    lightcontroller.NewLight(&gpio.FakeOutput{}, schedule.Empty()),
		clock:    wall,
		metrics:  datadog.New(false, "", "", nil),
		pub:      pub,
		fallback: schedule.Default(),
	}, pub, wall
}

func TestShortPressPublishes(t *testing.T) {
	r, pub, wall := setupReactions(t)

	r.shortPress().Handle(gpio.NewFakeInput(model.Low))

	events := pub.PressEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.ShortPress, events[0].Kind)
	assert.Equal(t, wall.Now(), events[0].Timestamp)
	assert.True(t, r.light.Schedule().IsEmpty())
}

func TestLongPressReloadsSchedule(t *testing.T) {
	r, pub, _ := setupReactions(t)
	require.NoError(t, db.PutSetting(r.db, db.KeyLightHours, "6,7,8"))

	r.longPress().Handle(gpio.NewFakeInput(model.Low))

	assert.Equal(t, "6-8", r.light.Schedule().String())
	require.Len(t, pub.PressEvents(), 1)
	assert.Equal(t, model.LongPress, pub.PressEvents()[0].Kind)
}

func TestLongPressWithoutStoredHoursUsesFallback(t *testing.T) {
	r, _, _ := setupReactions(t)

	r.longPress().Handle(gpio.NewFakeInput(model.Low))

	assert.Equal(t, "0-11,20-23", r.light.Schedule().String())
}

func TestPublishFailureDoesNotStopReaction(t *testing.T) {
	r, pub, _ := setupReactions(t)
	pub.Err = errors.New("broker gone")
	require.NoError(t, db.PutSetting(r.db, db.KeyLightHours, "1"))

	r.longPress().Handle(gpio.NewFakeInput(model.Low))

	assert.Equal(t, "1", r.light.Schedule().String())
}

func TestButtonDrivesReactions(t *testing.T) {
	r, pub, wall := setupReactions(t)
	line := gpio.NewFakeInput(model.High)

	btn := button.New(line,
		button.WithClock(wall),
		button.OnShortPress(r.shortPress()),
		button.OnLongPress(r.longPress()),
	)

	line.SetLevel(model.Low)
	btn.Poll()
	wall.Advance(100 * time.Millisecond)
	line.SetLevel(model.High)
	btn.Poll()

	line.SetLevel(model.Low)
	btn.Poll()
	wall.Advance(time.Second)
	line.SetLevel(model.High)
	btn.Poll()

	events := pub.PressEvents()
	require.Len(t, events, 2)
	assert.Equal(t, model.ShortPress, events[0].Kind)
	assert.Equal(t, model.LongPress, events[1].Kind)
}

func TestEvaluatedPublishesOnlyWrites(t *testing.T) {
	r, pub, _ := setupReactions(t)

	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Hour: 9, Level: model.High, Wrote: true})
	r.evaluated(lightcontroller.Evaluation{Synchronized: false, Level: model.Low, Wrote: false})

	events := pub.LightEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.High, events[0].Level)
	assert.Equal(t, 9, events[0].Hour)
}

func TestEvaluatedPublishesOnlyLevelChanges(t *testing.T) {
	r, pub, _ := setupReactions(t)

	// force_off writes low every second until the clock syncs
	for i := 0; i < 3; i++ {
		r.evaluated(lightcontroller.Evaluation{Synchronized: false, Level: model.Low, Wrote: true})
	}
	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Hour: 21, Level: model.High, Wrote: true})
	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Hour: 22, Level: model.High, Wrote: true})
	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Hour: 12, Level: model.Low, Wrote: true})

	events := pub.LightEvents()
	require.Len(t, events, 3)
	assert.Equal(t, model.Low, events[0].Level)
	assert.Equal(t, model.High, events[1].Level)
	assert.Equal(t, model.Low, events[2].Level)
}

func TestNewPublisherRepublishesCurrentLevel(t *testing.T) {
	r, _, _ := setupReactions(t)
	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Level: model.High, Wrote: true})

	f := &notifications.FakePublisher{}
	r.setPublisher(f)
	t.Cleanup(func() { r.publisher().Close() })

	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Level: model.High, Wrote: true})
	assert.Eventually(t, func() bool { return len(f.LightEvents()) == 1 }, time.Second, 5*time.Millisecond)
}

// stalledPublisher never returns until released, like a broker that stopped
// acknowledging.
type stalledPublisher struct {
	notifications.FakePublisher
	release chan struct{}
}

func (s *stalledPublisher) PublishPress(event notifications.PressEvent) error {
	<-s.release
	return s.FakePublisher.PublishPress(event)
}

func (s *stalledPublisher) PublishLight(event notifications.LightEvent) error {
	<-s.release
	return s.FakePublisher.PublishLight(event)
}

func TestStalledBrokerDoesNotBlockPoll(t *testing.T) {
	r, _, wall := setupReactions(t)
	stalled := &stalledPublisher{release: make(chan struct{})}
	r.setPublisher(stalled)
	t.Cleanup(func() {
		close(stalled.release)
		r.publisher().Close()
	})

	line := gpio.NewFakeInput(model.High)
	btn := button.New(line,
		button.WithClock(wall),
		button.OnShortPress(r.shortPress()),
		button.OnLongPress(r.longPress()),
	)

	for i := 0; i < 3; i++ {
		line.SetLevel(model.Low)
		btn.Poll()
		wall.Advance(50 * time.Millisecond)
		line.SetLevel(model.High)

		start := time.Now()
		kind, ok := btn.Poll()
		assert.Less(t, time.Since(start), 100*time.Millisecond)
		assert.True(t, ok)
		assert.Equal(t, model.ShortPress, kind)
	}

	start := time.Now()
	r.evaluated(lightcontroller.Evaluation{Synchronized: true, Level: model.High, Wrote: true})
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPollInterval(t *testing.T) {
	assert.Equal(t, 10*time.Millisecond, pollInterval(0))
	assert.Equal(t, 25*time.Millisecond, pollInterval(25))
}

func TestPublisherDefaultsToDisabled(t *testing.T) {
	r := &reactions{}
	assert.IsType(t, notifications.Disabled{}, r.publisher())

	f := &notifications.FakePublisher{}
	r.setPublisher(f)
	t.Cleanup(func() { r.publisher().Close() })
	assert.IsType(t, &notifications.Async{}, r.publisher())

	require.NoError(t, r.publisher().PublishPress(notifications.PressEvent{Kind: model.ShortPress}))
	assert.Eventually(t, func() bool { return len(f.PressEvents()) == 1 }, time.Second, 5*time.Millisecond)
}
