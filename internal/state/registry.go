// Package state implements the per-user conversation state registry: the
// single-slot record of which flow a user is in and where they are in it.
package state

import (
	"sync"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
)

// Registry holds at most one ConversationState per user.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*model.ConversationState
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*model.ConversationState)}
}

// Enter unconditionally replaces any existing entry for userID with a fresh
// flow state. Abandoning a prior flow's edit session is the caller's job.
func (r *Registry) Enter(userID string, flow model.FlowKind, step model.Step, edit *model.EditScratch, wizard *model.WizardScratch) *model.ConversationState {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &model.ConversationState{
		UserID: userID,
		Flow:   flow,
		Step:   step,
		Edit:   edit,
		Wizard: wizard,
	}
	r.entries[userID] = entry
	return entry.Clone()
}

// Advance moves an existing entry to the next step, applying the patch to
// its scratch data first. Returns ErrNoActiveFlow when the user has no
// entry; callers treat that as "the flow already ended" and re-prompt.
func (r *Registry) Advance(userID string, nextStep model.Step, patch func(*model.ConversationState)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok {
		return common.ErrNoActiveFlow
	}
	if patch != nil {
		patch(entry)
	}
	entry.Step = nextStep
	return nil
}

// Clear removes the entry for userID; idempotent.
func (r *Registry) Clear(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, userID)
}

// Peek returns a copy of the user's entry, or nil if absent.
func (r *Registry) Peek(userID string) *model.ConversationState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[userID].Clone()
}
