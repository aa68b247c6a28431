package mqtt

import "github.com/gadomski/atlas/internal/heartbeat"

// FakePublisher records published heartbeats for test assertions.
type FakePublisher struct {
	// Heartbeats contains every heartbeat that was published.
	Heartbeats []heartbeat.Heartbeat

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, is returned by Publish.
	PublishError error

	// Closed tracks whether Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the heartbeat.
func (f *FakePublisher) Publish(h heartbeat.Heartbeat) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Heartbeats = append(f.Heartbeats, h)
	payload, err := FormatPayload(h)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
