// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/chatledger/internal/model"
)

// SaveStatus records how a persisted expense was disposed.
type SaveStatus string

// Save statuses.
const (
	StatusConfirmed SaveStatus = "Confirmed"
	StatusEdited    SaveStatus = "Edited & Approved"
)

// ClassificationStore defines the contract for the per-user classification
// set. Name lookups are case-insensitive.
type ClassificationStore interface {
	GetClassifications(ctx context.Context, userID string) ([]model.Classification, error)
	GetClassificationByName(ctx context.Context, userID, name string) (*model.Classification, error)
	CreateClassification(ctx context.Context, userID, name, glyph string, keywords []string) (*model.Classification, error)
	DeleteClassification(ctx context.Context, userID, name string) error

	// MatchKeyword finds the classification whose keyword set contains a
	// word of the given text, or nil when none match.
	MatchKeyword(ctx context.Context, userID, text string) (*model.Classification, error)

	// EnsureDefaults seeds the stock classification set for a user who has
	// none yet.
	EnsureDefaults(ctx context.Context, userID string) error
}

// ExpenseLog records finalized expenses locally alongside the external save.
type ExpenseLog interface {
	LogExpense(ctx context.Context, userID string, attrs model.Attributes, status SaveStatus) error
	GetExpenses(ctx context.Context, userID string, since time.Time) ([]model.Attributes, error)
}

// CategorySuggester is the category-resolution collaborator. Given the text
// a user typed and their existing classification names, it returns the best
// existing match or "" when there is none. An error is treated exactly like
// "": the caller falls through to creating a new classification.
type CategorySuggester interface {
	Suggest(ctx context.Context, candidate string, existing []string) (string, error)
}

// ExpensePersister is the persistence collaborator. The engine never retries
// a failed save on its own; failure is surfaced to the flow caller verbatim.
type ExpensePersister interface {
	Save(ctx context.Context, userID string, attrs model.Attributes, status SaveStatus) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
