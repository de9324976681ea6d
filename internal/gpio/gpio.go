// Package gpio exposes the button and light as digital line capabilities.
// The real lines use the Linux GPIO character device or the pinctrl tool; the
// fakes let the controllers run without hardware.
package gpio

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/hydro-controller/internal/model"
	"github.com/thatsimonsguy/hydro-controller/system/shutdown"
)

const (
	BackendGPIOCDev = "gpiocdev"
	BackendPinctrl  = "pinctrl"
)

// InputLine reads a digital input. Reads are infallible to callers; a real
// line escalates hardware faults through OnReadFault.
type InputLine interface {
	Read() model.Level
}

// OutputLine drives a digital output.
type OutputLine interface {
	Set(level model.Level) error
}

var safeMode bool

// SetSafeMode turns every real output write into a logged no-op.
func SetSafeMode(enabled bool) {
	safeMode = enabled
}

// OnReadFault is called when a real input line cannot be read. A button that
// cannot be read is a hardware fault, so the default shuts the process down.
var OnReadFault = func(pin int, err error) {
	shutdown.ShutdownWithError(err, fmt.Sprintf("Failed to read pin level for pin %d", pin))
}

func guardedSet(pin int, level model.Level, set func() error) error {
	if safeMode {
		log.Debug().Int("pin", pin).Str("level", level.String()).Msg("Safe mode: skipping output write")
		return nil
	}
	if err := set(); err != nil {
		return fmt.Errorf("set pin %d %s: %w", pin, level, err)
	}
	return nil
}

// Lines holds the opened button and light lines.
type Lines struct {
	Button  InputLine
	Light   OutputLine
	closers []io.Closer
}

// Open requests the button and light lines from the chosen backend.
func Open(backend, chip string, button model.GPIOPin, lightPin int) (*Lines, error) {
	switch backend {
	case BackendPinctrl:
		in, err := NewPinctrlInput(button.Number, button.Polarity())
		if err != nil {
			return nil, err
		}
		return &Lines{Button: in, Light: NewPinctrlOutput(lightPin)}, nil
	case BackendGPIOCDev, "":
		in, err := NewCdevInput(chip, button.Number, button.Polarity())
		if err != nil {
			return nil, fmt.Errorf("open button line: %w", err)
		}
		out, err := NewCdevOutput(chip, lightPin, model.Low)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("open light line: %w", err)
		}
		return &Lines{Button: in, Light: out, closers: []io.Closer{in, out}}, nil
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", backend)
	}
}

func (l *Lines) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func levelOf(v int) model.Level {
	return model.Level(v != 0)
}

func valueOf(level model.Level) int {
	if level == model.High {
		return 1
	}
	return 0
}
