package gpio

import (
	"errors"
	"sync"

	"github.com/thatsimonsguy/hydro-controller/internal/model"
)

// FakeInput is a scripted input line. Queued levels are consumed one per
// Read; once the queue is empty the last level repeats.
type FakeInput struct {
	mu    sync.Mutex
	level model.Level
	queue []model.Level
	Reads int
}

func NewFakeInput(initial model.Level) *FakeInput {
	return &FakeInput{level: initial}
}

// Push queues levels for subsequent reads.
func (f *FakeInput) Push(levels ...model.Level) {
	f.mu.Lock()
	f.queue = append(f.queue, levels...)
	f.mu.Unlock()
}

// SetLevel drops any queued levels and holds the line at level.
func (f *FakeInput) SetLevel(level model.Level) {
	f.mu.Lock()
	f.queue = nil
	f.level = level
	f.mu.Unlock()
}

func (f *FakeInput) Read() model.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if len(f.queue) > 0 {
		f.level = f.queue[0]
		f.queue = f.queue[1:]
	}
	return f.level
}

// ErrFakeWrite is returned by FakeOutput when a failure is scripted.
var ErrFakeWrite = errors.New("simulated write failure")

// FakeOutput records writes for test assertions.
type FakeOutput struct {
	mu       sync.Mutex
	writes   []model.Level
	level    model.Level
	attempts int
	failNext int
	failAll  bool
}

func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

// FailNext makes the next n writes fail.
func (f *FakeOutput) FailNext(n int) {
	f.mu.Lock()
	f.failNext = n
	f.mu.Unlock()
}

// FailAll makes every write fail until cleared.
func (f *FakeOutput) FailAll(fail bool) {
	f.mu.Lock()
	f.failAll = fail
	f.mu.Unlock()
}

func (f *FakeOutput) Set(level model.Level) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failAll {
		return ErrFakeWrite
	}
	if f.failNext > 0 {
		f.failNext--
		return ErrFakeWrite
	}
	f.writes = append(f.writes, level)
	f.level = level
	return nil
}

// Writes returns the successful writes in order.
func (f *FakeOutput) Writes() []model.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Level(nil), f.writes...)
}

// Level returns the last successfully written level.
func (f *FakeOutput) Level() model.Level {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Attempts counts every Set call, failed or not.
func (f *FakeOutput) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}
