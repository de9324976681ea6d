package notifications

import "sync"

// FakePublisher records events for tests.
type FakePublisher struct {
	mu     sync.Mutex
	Err    error
	Press  []PressEvent
	Light  []LightEvent
	Closed bool
}

func (f *FakePublisher) PublishPress(event PressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Press = append(f.Press, event)
	return f.Err
}

func (f *FakePublisher) PublishLight(event LightEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Light = append(f.Light, event)
	return f.Err
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *FakePublisher) PressEvents() []PressEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PressEvent(nil), f.Press...)
}

func (f *FakePublisher) LightEvents() []LightEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]LightEvent(nil), f.Light...)
}
