//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/thatsimonsguy/hydro-controller/internal/model"
)

const consumer = "hydro-controller"

// CdevInput reads a line through the GPIO character device.
type CdevInput struct {
	pin  int
	line *gpiocdev.Line
	last model.Level
}

// NewCdevInput requests pin as an input, biased towards its released level so
// a floating button reads as not pressed.
func NewCdevInput(chip string, pin int, polarity model.Polarity) (*CdevInput, error) {
	bias := gpiocdev.WithPullUp
	idle := model.High
	if polarity == model.ActiveHigh {
		bias = gpiocdev.WithPullDown
		idle = model.Low
	}

	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsInput, bias, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}
	return &CdevInput{pin: pin, line: line, last: idle}, nil
}

func (c *CdevInput) Read() model.Level {
	v, err := c.line.Value()
	if err != nil {
		OnReadFault(c.pin, err)
		return c.last
	}
	c.last = levelOf(v)
	return c.last
}

func (c *CdevInput) Close() error {
	if err := c.line.Close(); err != nil {
		return fmt.Errorf("close input pin %d: %w", c.pin, err)
	}
	return nil
}

// CdevOutput drives a line through the GPIO character device.
type CdevOutput struct {
	pin  int
	line *gpiocdev.Line
}

func NewCdevOutput(chip string, pin int, initial model.Level) (*CdevOutput, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(valueOf(initial)), gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &CdevOutput{pin: pin, line: line}, nil
}

func (c *CdevOutput) Set(level model.Level) error {
	return guardedSet(c.pin, level, func() error {
		return c.line.SetValue(valueOf(level))
	})
}

// Close drives the light low and releases the line, leaving the pin as an
// input with pull-down to match the Pi boot default.
func (c *CdevOutput) Close() error {
	var errs []error
	if !safeMode {
		if err := c.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive pin %d low: %w", c.pin, err))
		}
	}
	if err := c.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", c.pin, err))
	}
	if err := c.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close pin %d: %w", c.pin, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
