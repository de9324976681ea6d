//go:build !linux

package gpio

import (
	"errors"

	"github.com/thatsimonsguy/hydro-controller/internal/model"
)

var errUnsupported = errors.New("gpio: character device not supported on this platform (requires Linux)")

type CdevInput struct{}

func NewCdevInput(chip string, pin int, polarity model.Polarity) (*CdevInput, error) {
	return nil, errUnsupported
}

func (c *CdevInput) Read() model.Level { return model.High }

func (c *CdevInput) Close() error { return nil }

type CdevOutput struct{}

func NewCdevOutput(chip string, pin int, initial model.Level) (*CdevOutput, error) {
	return nil, errUnsupported
}

func (c *CdevOutput) Set(level model.Level) error { return errUnsupported }

func (c *CdevOutput) Close() error { return nil }
