package model

import (
	"fmt"
	"time"
)

// Draft is a proposed expense awaiting a user decision. Drafts live only in
// memory; a process restart discards them and approval must happen within
// the same run.
type Draft struct {
	CreatedAt  time.Time
	ID         string
	UserID     string
	Attributes Attributes
}

// NewDraftID builds the opaque draft identifier from the owning user and
// creation time.
func NewDraftID(userID string, createdAt time.Time) string {
	return fmt.Sprintf("exp_%s_%d", userID, createdAt.UnixNano())
}

// NewDraft creates a draft owned by userID with the given parsed attributes.
func NewDraft(userID string, attrs Attributes, createdAt time.Time) *Draft {
	return &Draft{
		ID:         NewDraftID(userID, createdAt),
		UserID:     userID,
		Attributes: attrs.Clone(),
		CreatedAt:  createdAt,
	}
}
