package events

import (
	"context"
	"sync"
)

// Memory records published events in process. Used by tests and available
// for single-node development without a broker.
type Memory struct {
	mu      sync.Mutex
	byTopic map[string][]Event
	err     error
}

func NewMemory() *Memory {
	return &Memory{byTopic: make(map[string][]Event)}
}

// FailWith makes every subsequent Publish return err. Lets tests verify
// that publish failures never fail the surrounding request.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) Publish(_ context.Context, topic string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byTopic[topic] = append(m.byTopic[topic], event)
	return nil
}

// Published returns a copy of the events recorded for a topic.
func (m *Memory) Published(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.byTopic[topic]))
	copy(out, m.byTopic[topic])
	return out
}

func (m *Memory) Close() {}
