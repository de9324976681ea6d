package shutdown

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// ExitFunc is replaced in tests.
var ExitFunc = os.Exit

var (
	mu        sync.Mutex
	safeState func()
)

// SetSafeState registers the action that puts outputs into their safe state
// before the process exits.
func SetSafeState(fn func()) {
	mu.Lock()
	safeState = fn
	mu.Unlock()
}

func Shutdown() {
	exit(0)
}

func ShutdownWithError(err error, msg string) {
	log.Error().Err(err).Msg(msg)
	exit(1)
}

func exit(code int) {
	mu.Lock()
	fn := safeState
	mu.Unlock()

	if fn != nil {
		fn()
		log.Info().Msg("Outputs driven to safe state")
	}
	ExitFunc(code)
}
