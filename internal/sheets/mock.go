package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/service"
)

// MockPersister is a mock implementation of ExpensePersister for testing.
type MockPersister struct {
	SaveFunc      func(ctx context.Context, userID string, attrs model.Attributes, status service.SaveStatus) error
	SaveCalls     []SaveCall
	SaveCallCount int
	mu            sync.Mutex
}

// SaveCall represents a single call to Save.
type SaveCall struct {
	UserID     string
	Attributes model.Attributes
	Status     service.SaveStatus
}

// NewMockPersister creates a new mock persister.
func NewMockPersister() *MockPersister {
	return &MockPersister{
		SaveCalls: make([]SaveCall, 0),
	}
}

// Save implements the ExpensePersister interface.
func (m *MockPersister) Save(ctx context.Context, userID string, attrs model.Attributes, status service.SaveStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount++
	m.SaveCalls = append(m.SaveCalls, SaveCall{
		UserID:     userID,
		Attributes: attrs,
		Status:     status,
	})

	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, attrs, status)
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockPersister) Calls() []SaveCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SaveCall(nil), m.SaveCalls...)
}
