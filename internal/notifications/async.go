package notifications

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultQueueSize  = 32
	asyncCloseTimeout = 2 * time.Second
)

// Async hands events to a worker goroutine so callers never wait on the
// broker. When the queue is full new events are dropped.
type Async struct {
	inner   Publisher
	events  chan func(Publisher) error
	quit    chan struct{}
	stopped chan struct{}

	mu        sync.Mutex
	closed    bool
	dropped   int
	closeOnce sync.Once
}

func NewAsync(inner Publisher, size int) *Async {
	if size <= 0 {
		size = DefaultQueueSize
	}
	a := &Async{
		inner:   inner,
		events:  make(chan func(Publisher) error, size),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.quit:
			return
		case send := <-a.events:
			if err := send(a.inner); err != nil {
				log.Warn().Err(err).Msg("Failed to publish event")
			}
		}
	}
}

func (a *Async) enqueue(send func(Publisher) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}

	select {
	case a.events <- send:
		if a.dropped > 0 {
			log.Warn().Int("dropped", a.dropped).Msg("Publish queue recovered")
			a.dropped = 0
		}
	default:
		if a.dropped == 0 {
			log.Warn().Int("capacity", cap(a.events)).Msg("Publish queue full, dropping events")
		}
		a.dropped++
	}
	return nil
}

func (a *Async) PublishPress(event PressEvent) error {
	return a.enqueue(func(p Publisher) error { return p.PublishPress(event) })
}

func (a *Async) PublishLight(event LightEvent) error {
	return a.enqueue(func(p Publisher) error { return p.PublishLight(event) })
}

// Dropped reports events discarded since the queue last had room.
func (a *Async) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Close stops the worker, waiting at most asyncCloseTimeout for an in-flight
// publish, then closes the wrapped publisher. Queued events are discarded.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()

		close(a.quit)
		select {
		case <-a.stopped:
		case <-time.After(asyncCloseTimeout):
			log.Warn().Msg("Publisher still busy on close")
		}
		err = a.inner.Close()
	})
	return err
}
