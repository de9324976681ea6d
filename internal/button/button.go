// Package button classifies presses on a polled input line into short and
// long presses.
//
// Poll is a pure state advance: it never sleeps and never starts goroutines.
// Reactions run synchronously inside Poll on the caller's goroutine, so a slow
// handler delays the next poll. The line is assumed to be electrically clean;
// contact bounce on release shows up as extra short presses.
package button

import (
	"time"

	"github.com/thatsimonsguy/hydro-controller/internal/clock"
	"github.com/thatsimonsguy/hydro-controller/internal/gpio"
	"github.com/thatsimonsguy/hydro-controller/internal/model"
)

const DefaultLongPress = 500 * time.Millisecond

// Handler reacts to a classified press.
type Handler interface {
	Handle(line gpio.InputLine)
}

type HandlerFunc func(line gpio.InputLine)

func (f HandlerFunc) Handle(line gpio.InputLine) { f(line) }

var noop = HandlerFunc(func(gpio.InputLine) {})

type Button struct {
	line      gpio.InputLine
	clock     clock.Clock
	polarity  model.Polarity
	longPress time.Duration
	onShort   Handler
	onLong    Handler

	state     model.ButtonState
	pressedAt time.Time
}

type Option func(*Button)

func WithPolarity(p model.Polarity) Option {
	return func(b *Button) { b.polarity = p }
}

// WithLongPress sets the hold time at or above which a press is long.
// Non-positive values keep the default.
func WithLongPress(d time.Duration) Option {
	return func(b *Button) {
		if d > 0 {
			b.longPress = d
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(b *Button) { b.clock = c }
}

func OnShortPress(h Handler) Option {
	return func(b *Button) {
		if h != nil {
			b.onShort = h
		}
	}
}

func OnLongPress(h Handler) Option {
	return func(b *Button) {
		if h != nil {
			b.onLong = h
		}
	}
}

// New returns a released, active-low button with a 500ms long press threshold.
func New(line gpio.InputLine, opts ...Option) *Button {
	b := &Button{
		line:      line,
		clock:     clock.System{},
		polarity:  model.ActiveLow,
		longPress: DefaultLongPress,
		onShort:   noop,
		onLong:    noop,
		state:     model.Released,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Poll samples the line once and advances the state machine. When a release
// completes a press, the matching handler runs and the classification is
// returned with ok set.
func (b *Button) Poll() (kind model.PressKind, ok bool) {
	pressed := b.polarity.Pressed(b.line.Read())

	switch b.state {
	case model.Released:
		if pressed {
			b.state = model.Pressed
			b.pressedAt = b.clock.Now()
		}
		return "", false

	case model.Pressed:
		if pressed {
			return "", false
		}
		b.state = model.Released
		held := b.clock.Now().Sub(b.pressedAt)

		if held < b.longPress {
			b.onShort.Handle(b.line)
			return model.ShortPress, true
		}
		b.onLong.Handle(b.line)
		return model.LongPress, true
	}

	return "", false
}

func (b *Button) State() model.ButtonState {
	return b.state
}

func (b *Button) Pressed() bool {
	return b.state == model.Pressed
}

func (b *Button) LongPress() time.Duration {
	return b.longPress
}
