package notifications

import (
	"encoding/json"
	"time"

	"github.com/thatsimonsguy/hydro-controller/internal/model"
)

const (
	TopicButton = "button"
	TopicLight  = "light"
)

// Publisher sends controller events to whatever is listening. Implementations
// must not block the caller for long and must tolerate a missing broker.
type Publisher interface {
	PublishPress(event PressEvent) error
	PublishLight(event LightEvent) error
	Close() error
}

type PressEvent struct {
	Timestamp time.Time
	Kind      model.PressKind
}

type LightEvent struct {
	Timestamp    time.Time
	Level        model.Level
	Synchronized bool
	Hour         int
	Schedule     string
}

type pressPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

type lightPayload struct {
	Timestamp    string `json:"timestamp"`
	State        string `json:"state"`
	Synchronized bool   `json:"synchronized"`
	Hour         *int   `json:"hour,omitempty"`
	Schedule     string `json:"schedule"`
}

func FormatPressPayload(event PressEvent) ([]byte, error) {
	return json.Marshal(pressPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Kind),
	})
}

// FormatLightPayload omits the hour while the clock is unsynchronized.
func FormatLightPayload(event LightEvent) ([]byte, error) {
	p := lightPayload{
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
		State:        event.Level.String(),
		Synchronized: event.Synchronized,
		Schedule:     event.Schedule,
	}
	if event.Synchronized {
		hour := event.Hour
		p.Hour = &hour
	}
	return json.Marshal(p)
}

// Disabled drops every event.
type Disabled struct{}

func (Disabled) PublishPress(PressEvent) error { return nil }
func (Disabled) PublishLight(LightEvent) error { return nil }
func (Disabled) Close() error                  { return nil }
