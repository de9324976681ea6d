package gpio

import (
	"fmt"

	"github.com/thatsimonsguy/hydro-controller/internal/model"
	"github.com/thatsimonsguy/hydro-controller/internal/pinctrl"
)

var (
	readLevel = pinctrl.ReadLevel
	readPin   = pinctrl.ReadPin
	setPin    = pinctrl.SetPin
	drive     = pinctrl.Drive
)

// ValidateStartupPins checks that the boot script left the pins in their safe
// state: light an output driven low, button an input pulled to its released
// level.
func ValidateStartupPins(lightPin int, button model.GPIOPin) error {
	light, err := readPin(lightPin)
	if err != nil {
		return fmt.Errorf("failed to read light pin %d: %w", lightPin, err)
	}
	if light.Mode != "op" || light.Level != "lo" {
		return fmt.Errorf("light pin %d is in wrong state at startup (mode=%s level=%s, expected op/lo)", lightPin, light.Mode, light.Level)
	}

	btn, err := readPin(button.Number)
	if err != nil {
		return fmt.Errorf("failed to read button pin %d: %w", button.Number, err)
	}
	pull := releasedPull(button.Polarity())
	if btn.Mode != "ip" || btn.Pull != pull {
		return fmt.Errorf("button pin %d is in wrong state at startup (mode=%s pull=%s, expected ip/%s)", button.Number, btn.Mode, btn.Pull, pull)
	}
	return nil
}

// releasedPull is the bias that holds an unpressed button at its idle level.
func releasedPull(p model.Polarity) string {
	if p == model.ActiveHigh {
		return "pd"
	}
	return "pu"
}

// PinctrlInput reads a pin by shelling out to pinctrl. Slower than the
// character device but works on images where the chip is held elsewhere.
type PinctrlInput struct {
	pin  int
	last model.Level
}

// NewPinctrlInput configures pin as an input pulled towards its released level.
func NewPinctrlInput(pin int, polarity model.Polarity) (*PinctrlInput, error) {
	idle := model.High
	if polarity == model.ActiveHigh {
		idle = model.Low
	}
	if err := setPin(pin, "ip", releasedPull(polarity)); err != nil {
		return nil, err
	}
	return &PinctrlInput{pin: pin, last: idle}, nil
}

func (p *PinctrlInput) Read() model.Level {
	high, err := readLevel(p.pin)
	if err != nil {
		OnReadFault(p.pin, err)
		return p.last
	}
	p.last = model.Level(high)
	return p.last
}

type PinctrlOutput struct {
	pin int
}

func NewPinctrlOutput(pin int) *PinctrlOutput {
	return &PinctrlOutput{pin: pin}
}

func (p *PinctrlOutput) Set(level model.Level) error {
	return guardedSet(p.pin, level, func() error {
		return drive(p.pin, bool(level))
	})
}
