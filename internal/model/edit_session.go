package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChangeRecord captures a single field mutation inside an edit session.
type ChangeRecord struct {
	At     time.Time
	Field  string
	Old    any
	New    any
	Reason string
}

// EditSession is a timed, mutable working copy of one Draft plus the audit
// trail of every field change made during editing. The working copy and the
// snapshot are value copies; mutating the session never touches the draft.
type EditSession struct {
	CreatedAt    time.Time
	LastActivity time.Time
	ID           string
	UserID       string
	DraftID      string
	Working      Attributes
	Snapshot     Attributes
	Changes      []ChangeRecord
}

// NewEditSession creates a session for userID editing the given draft.
func NewEditSession(userID, draftID string, attrs Attributes, now time.Time) *EditSession {
	return &EditSession{
		ID:           uuid.NewString()[:8],
		UserID:       userID,
		DraftID:      draftID,
		Working:      attrs.Clone(),
		Snapshot:     attrs.Clone(),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// UpdateField overwrites a working-copy field, refreshes the activity
// timestamp, and appends exactly one change record. Validation of the new
// value is the caller's responsibility.
func (s *EditSession) UpdateField(field string, newValue any, reason string, now time.Time) {
	old := s.Working.Get(field)
	s.Working.Set(field, newValue)
	s.LastActivity = now
	s.Changes = append(s.Changes, ChangeRecord{
		Field:  field,
		Old:    old,
		New:    newValue,
		At:     now,
		Reason: reason,
	})
}

// Expired reports whether the session has seen no activity for longer than
// the timeout.
func (s *EditSession) Expired(timeout time.Duration, now time.Time) bool {
	return now.Sub(s.LastActivity) > timeout
}

// ChangeSummary renders the last few changes for the presentation layer.
func (s *EditSession) ChangeSummary() string {
	if len(s.Changes) == 0 {
		return "No changes made yet"
	}

	start := 0
	if len(s.Changes) > 5 {
		start = len(s.Changes) - 5
	}

	var b strings.Builder
	b.WriteString("Changes made:\n")
	for _, change := range s.Changes[start:] {
		fmt.Fprintf(&b, "• %s: %v → %v\n", change.Field, change.Old, change.New)
	}
	return b.String()
}
