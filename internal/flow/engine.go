// Package flow implements the conversation engine: the edit flow and
// creation wizard state machines, and the reconciliation rules that keep
// the draft store, session store, and state registry consistent.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/service"
	"github.com/Veraticus/chatledger/internal/session"
	"github.com/Veraticus/chatledger/internal/state"
)

// Engine routes user input to the active flow's state machine and enforces
// the cross-store reconciliation policy.
type Engine struct {
	drafts          *session.DraftStore
	sessions        *session.Store
	registry        *state.Registry
	classifications service.ClassificationStore
	suggester       service.CategorySuggester
	persister       service.ExpensePersister
	expenseLog      service.ExpenseLog
	locks           *userLocks
	config          Config
}

// Config holds tunables for the flow engine.
type Config struct {
	MaxNameLength  int
	MaxGlyphLength int
	SweepInterval  time.Duration
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxNameLength:  40,
		MaxGlyphLength: 8,
		SweepInterval:  5 * time.Minute,
	}
}

// New creates a flow engine with the given stores and collaborators. The
// expense log may be nil; everything else is required.
func New(drafts *session.DraftStore, sessions *session.Store, registry *state.Registry,
	classifications service.ClassificationStore, suggester service.CategorySuggester,
	persister service.ExpensePersister, expenseLog service.ExpenseLog) *Engine {
	return NewWithConfig(drafts, sessions, registry, classifications, suggester, persister, expenseLog, DefaultConfig())
}

// NewWithConfig creates a flow engine with custom configuration.
func NewWithConfig(drafts *session.DraftStore, sessions *session.Store, registry *state.Registry,
	classifications service.ClassificationStore, suggester service.CategorySuggester,
	persister service.ExpensePersister, expenseLog service.ExpenseLog, config Config) *Engine {
	if config.MaxNameLength <= 0 {
		config.MaxNameLength = DefaultConfig().MaxNameLength
	}
	if config.MaxGlyphLength <= 0 {
		config.MaxGlyphLength = DefaultConfig().MaxGlyphLength
	}
	return &Engine{
		drafts:          drafts,
		sessions:        sessions,
		registry:        registry,
		classifications: classifications,
		suggester:       suggester,
		persister:       persister,
		expenseLog:      expenseLog,
		locks:           newUserLocks(),
		config:          config,
	}
}

// RegisterDraft stores a freshly parsed expense as a pending draft. Called
// by the surrounding application once the AI parse produced a usable amount.
func (e *Engine) RegisterDraft(userID string, attrs model.Attributes) *model.Draft {
	return e.drafts.Put(userID, attrs)
}

// Draft returns the pending draft with the given id, or nil.
func (e *Engine) Draft(draftID string) *model.Draft {
	return e.drafts.Get(draftID)
}

// HandleAction processes a discrete user action (a button press).
func (e *Engine) HandleAction(ctx context.Context, userID string, action model.Action) (*model.Prompt, error) {
	switch action.Kind {
	case model.ActionApprove:
		return e.approve(ctx, userID, action.DraftID)
	case model.ActionReject:
		return e.reject(userID, action.DraftID)
	case model.ActionEdit:
		return e.startEdit(userID, action.DraftID)
	case model.ActionSave:
		return e.save(ctx, userID)
	case model.ActionCancel:
		return e.cancel(userID)
	case model.ActionAddCategory:
		return e.startWizard(userID)
	default:
		return nil, fmt.Errorf("unhandled action kind %q", action.Kind)
	}
}

// HandleText processes free text from a user. Input only reaches a flow
// handler when the registry says a flow is active.
func (e *Engine) HandleText(ctx context.Context, userID, text string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	st := e.registry.Peek(userID)
	if st == nil {
		// A session without a registry entry is an invariant violation:
		// log it and self-heal by clearing the orphaned side.
		if sess := e.sessions.Get(userID); sess != nil {
			slog.Error("session exists without registry entry, clearing",
				"user_id", userID, "session_id", sess.ID)
			e.sessions.Destroy(sess.ID)
		}
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}

	switch st.Flow {
	case model.FlowEdit:
		return e.handleEditText(ctx, mu, userID, st, text)
	case model.FlowWizard:
		return e.handleWizardText(ctx, userID, st, text)
	default:
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}
}

// approve persists an untouched draft with status Confirmed and discards it.
// The draft survives a failed save so the user can retry.
func (e *Engine) approve(ctx context.Context, userID, draftID string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	draft := e.drafts.Get(draftID)
	if draft == nil || draft.UserID != userID {
		mu.Unlock()
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrDraftNotFound
	}
	attrs := draft.Attributes.Clone()
	mu.Unlock()

	if err := e.persister.Save(ctx, userID, attrs, service.StatusConfirmed); err != nil {
		common.LogError(err, "failed to persist approved draft", common.Fields{"user_id": userID, "draft_id": draftID})
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeSaveFailed}, common.NewPersistenceError(err)
	}

	mu.Lock()
	if e.drafts.Get(draftID) == nil {
		// A concurrent approve or reject consumed the draft while the
		// persist was in flight; that call owns the outcome.
		mu.Unlock()
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrDraftNotFound
	}
	e.drafts.Remove(draftID)
	mu.Unlock()

	e.logExpense(ctx, userID, attrs, service.StatusConfirmed)
	slog.Info("draft approved", "user_id", userID, "draft_id", draftID)
	return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeApproved, Attributes: &attrs}, nil
}

// reject discards a pending draft without persisting anything.
func (e *Engine) reject(userID, draftID string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	draft := e.drafts.Get(draftID)
	if draft == nil || draft.UserID != userID {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrDraftNotFound
	}
	e.drafts.Remove(draftID)

	slog.Info("draft rejected", "user_id", userID, "draft_id", draftID)
	return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeRejected}, nil
}

// startEdit opens an edit session over a pending draft and enters the edit
// flow at its first step. Any prior session or flow for the user is dropped.
func (e *Engine) startEdit(userID, draftID string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	draft := e.drafts.Get(draftID)
	if draft == nil || draft.UserID != userID {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrDraftNotFound
	}

	sess := e.sessions.Create(userID, draftID, draft.Attributes)
	e.registry.Enter(userID, model.FlowEdit, model.StepCollectingAmount,
		&model.EditScratch{SessionID: sess.ID}, nil)

	attrs := sess.Working.Clone()
	return &model.Prompt{Flow: model.FlowEdit, Step: model.StepCollectingAmount, Attributes: &attrs}, nil
}

// save commits the session's working copy through the persistence
// collaborator and, on success, clears draft, session, and registry entry
// as one unit. On failure nothing is cleared so the user can retry.
func (e *Engine) save(ctx context.Context, userID string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()

	st := e.registry.Peek(userID)
	sess := e.sessions.Get(userID)
	if sess == nil {
		defer mu.Unlock()
		if st != nil && st.Flow == model.FlowEdit {
			e.registry.Clear(userID)
			return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrSessionExpired
		}
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}
	if st == nil || st.Flow != model.FlowEdit {
		// Orphaned session: heal and report no flow.
		slog.Error("session exists without edit flow entry, clearing",
			"user_id", userID, "session_id", sess.ID)
		e.sessions.Destroy(sess.ID)
		mu.Unlock()
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}
	if st.Step != model.StepReady {
		defer mu.Unlock()
		return &model.Prompt{Flow: model.FlowEdit, Step: st.Step, Notice: model.NoticeInvalidInput},
			common.NewValidationError("save", "edit is not ready to save")
	}

	sessionID := sess.ID
	draftID := sess.DraftID
	attrs := sess.Working.Clone()
	summary := sess.ChangeSummary()
	// Keep the session alive while the save is in flight so a sweep cannot
	// destroy it mid-commit.
	e.sessions.Touch(sess)
	mu.Unlock()

	if err := e.persister.Save(ctx, userID, attrs, service.StatusEdited); err != nil {
		common.LogError(err, "failed to persist edited expense", common.Fields{"user_id": userID, "session_id": sessionID})
		return &model.Prompt{Flow: model.FlowEdit, Step: model.StepReady, Notice: model.NoticeSaveFailed},
			common.NewPersistenceError(err)
	}

	mu.Lock()
	defer mu.Unlock()

	cur := e.sessions.Get(userID)
	if cur == nil || cur.ID != sessionID {
		// A concurrent cancel or expiry won the race; the loser reports it.
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}

	e.sessions.Destroy(sessionID)
	e.drafts.Remove(draftID)
	e.registry.Clear(userID)

	e.logExpense(ctx, userID, attrs, service.StatusEdited)
	slog.Info("edited expense saved", "user_id", userID, "session_id", sessionID)
	return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeSaved, Attributes: &attrs, Summary: summary}, nil
}

// cancel tears down whatever flow the user is in. For the edit flow the
// draft, session, and registry entry all go; for the wizard only the
// registry entry exists.
func (e *Engine) cancel(userID string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	st := e.registry.Peek(userID)
	sess := e.sessions.Get(userID)
	if st == nil && sess == nil {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}

	if sess != nil {
		e.drafts.Remove(sess.DraftID)
		e.sessions.Destroy(sess.ID)
	}
	e.registry.Clear(userID)

	slog.Info("flow cancelled", "user_id", userID)
	return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeCancelled}, nil
}

// Sweep walks every user with a session and lets the store's lazy eviction
// run under that user's lock, clearing any registry entry whose flow
// depended on a session that expired. Returns the number of sessions
// removed.
func (e *Engine) Sweep() int {
	removed := 0
	for _, userID := range e.sessions.ActiveUsers() {
		mu := e.locks.get(userID)
		mu.Lock()
		if e.sessions.Get(userID) == nil {
			removed++
			if st := e.registry.Peek(userID); st != nil && st.Flow == model.FlowEdit {
				e.registry.Clear(userID)
			}
		}
		mu.Unlock()
	}
	if removed > 0 {
		slog.Info("sweep removed expired sessions", "count", removed)
	}
	return removed
}

// StartSweeper runs Sweep on the configured interval until ctx is done.
func (e *Engine) StartSweeper(ctx context.Context) {
	interval := e.config.SweepInterval
	if interval <= 0 {
		interval = DefaultConfig().SweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.Sweep()
			}
		}
	}()
}

// SessionStats exposes session store statistics for observability.
func (e *Engine) SessionStats() session.Stats {
	return e.sessions.GetStats()
}

func (e *Engine) logExpense(ctx context.Context, userID string, attrs model.Attributes, status service.SaveStatus) {
	if e.expenseLog == nil {
		return
	}
	if err := e.expenseLog.LogExpense(ctx, userID, attrs, status); err != nil {
		common.LogError(err, "failed to record expense locally", common.Fields{"user_id": userID})
	}
}
