// Package session holds the in-memory draft and edit-session stores that
// back the conversation engine.
package session

import (
	"sync"
	"time"

	"github.com/Veraticus/chatledger/internal/model"
)

// DraftStore holds ephemeral drafts awaiting a user decision. Drafts are
// never persisted; they do not survive a restart.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]*model.Draft
	now    func() time.Time
}

// NewDraftStore creates an empty draft store.
func NewDraftStore() *DraftStore {
	return &DraftStore{
		drafts: make(map[string]*model.Draft),
		now:    time.Now,
	}
}

// Put creates a draft for userID from parsed attributes and stores it.
func (s *DraftStore) Put(userID string, attrs model.Attributes) *model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := s.now()
	draft := model.NewDraft(userID, attrs, createdAt)
	// Time-based ids can collide when two drafts land on the same tick.
	for s.drafts[draft.ID] != nil {
		createdAt = createdAt.Add(time.Nanosecond)
		draft = model.NewDraft(userID, attrs, createdAt)
	}
	s.drafts[draft.ID] = draft
	return draft
}

// Get returns the draft with the given id, or nil if absent.
func (s *DraftStore) Get(draftID string) *model.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drafts[draftID]
}

// Remove deletes a draft; no-op if absent.
func (s *DraftStore) Remove(draftID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, draftID)
}

// Len reports the number of pending drafts.
func (s *DraftStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}
