package irrigation

import (
	"sync"
)

type fakeSensor struct {
	mu            sync.Mutex
	readings      []int
	index         int
	activations   int
	deactivations int
	reads         int
	activateErr   error
	readErr       error
	deactivateErr error

	// block, when set, holds ActivateMoistureSensor until closed
	block chan struct{}
}

func newFakeSensor(readings ...int) *fakeSensor {
	return &fakeSensor{readings: readings}
}

func (f *fakeSensor) setReadings(readings ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.readings = readings
	f.index = 0
}

func (f *fakeSensor) ActivateMoistureSensor() error {
	f.mu.Lock()
	f.activations++
	block := f.block
	err := f.activateErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	return err
}

func (f *fakeSensor) DeactivateMoistureSensor() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deactivations++
	return f.deactivateErr
}

func (f *fakeSensor) ReadMoisture() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reads++
	if f.readErr != nil {
		return 0, f.readErr
	}

	value := f.readings[f.index%len(f.readings)]
	f.index++

	return value, nil
}

func (f *fakeSensor) counts() (activations, deactivations int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.activations, f.deactivations
}

type fakePump struct {
	mu     sync.Mutex
	on     bool
	ons    int
	offs   int
	onErr  error
	offErr error
}

func (f *fakePump) TurnPumpOn() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ons++
	if f.onErr != nil {
		return f.onErr
	}
	f.on = true

	return nil
}

func (f *fakePump) TurnPumpOff() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.offs++
	if f.offErr != nil {
		return f.offErr
	}
	f.on = false

	return nil
}

func (f *fakePump) setOffErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.offErr = err
}

func (f *fakePump) counts() (ons, offs int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.ons, f.offs
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Send(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.messages...)
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeRecorder) Record(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
}

func (f *fakeRecorder) count(eventType int32) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, e := range f.events {
		if e.Type == eventType {
			n++
		}
	}

	return n
}
