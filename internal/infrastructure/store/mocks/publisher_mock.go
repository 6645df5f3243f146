package mocks

import (
	"context"
	"sync"
)

// MockPublisher captures messages handed to a broker.
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
	// FailAfter makes every call after the first FailAfter succeed calls
	// return PublishErr. Zero fails every call when PublishErr is set.
	FailAfter int
}

type PublishCall struct {
	Key     string
	Event   any
	Headers map[string]string
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event any, headers map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishErr != nil && len(m.PublishCalls) >= m.FailAfter {
		return m.PublishErr
	}
	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: event, Headers: headers})
	return nil
}

func (m *MockPublisher) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PublishCall(nil), m.PublishCalls...)
}
