package model

// Level is the electrical level of a digital line.
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Polarity says which line level means "pressed".
type Polarity string

const (
	ActiveLow  Polarity = "active_low"
	ActiveHigh Polarity = "active_high"
)

// Pressed reports whether level is the active level for p. The zero value
// behaves as ActiveLow.
func (p Polarity) Pressed(level Level) bool {
	if p == ActiveHigh {
		return level == High
	}
	return level == Low
}

type ButtonState string

const (
	Released ButtonState = "released"
	Pressed  ButtonState = "pressed"
)

type PressKind string

const (
	ShortPress PressKind = "short_press"
	LongPress  PressKind = "long_press"
)

type GPIOPin struct {
	Number     int
	ActiveHigh bool
}

// Polarity returns the press polarity for an input pin.
func (p GPIOPin) Polarity() Polarity {
	if p.ActiveHigh {
		return ActiveHigh
	}
	return ActiveLow
}
