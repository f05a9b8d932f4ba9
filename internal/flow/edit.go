package flow

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
)

var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseAmount extracts a positive amount from free text, accepting inputs
// like "350", "350.50", or "₹350.50".
func parseAmount(text string) (float64, error) {
	match := amountPattern.FindString(text)
	if match == "" {
		return 0, common.NewValidationError(model.FieldAmount, "no number found")
	}
	amount, err := strconv.ParseFloat(match, 64)
	if err != nil || amount <= 0 {
		return 0, common.NewValidationError(model.FieldAmount, "amount must be a positive number")
	}
	return amount, nil
}

// handleEditText advances the edit flow with one free-text input. The
// caller holds the user's lock; the lock is released around the category
// suggestion call and the state re-validated afterwards.
func (e *Engine) handleEditText(ctx context.Context, mu *sync.Mutex, userID string, st *model.ConversationState, text string) (*model.Prompt, error) {
	sess := e.sessions.Get(userID)
	if sess == nil || (st.Edit != nil && st.Edit.SessionID != sess.ID) {
		// The backing session expired or was replaced; the flow is over.
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrSessionExpired
	}

	switch st.Step {
	case model.StepCollectingAmount:
		amount, err := parseAmount(text)
		if err != nil {
			return &model.Prompt{Flow: model.FlowEdit, Step: st.Step, Notice: model.NoticeInvalidInput}, err
		}
		e.sessions.UpdateField(sess, model.FieldAmount, amount, "user updated amount: "+text)
		if err := e.registry.Advance(userID, model.StepCollectingCategory, nil); err != nil {
			return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, err
		}
		return &model.Prompt{Flow: model.FlowEdit, Step: model.StepCollectingCategory, Notice: model.NoticeFieldCommitted}, nil

	case model.StepCollectingCategory:
		return e.collectCategory(ctx, mu, userID, sess.ID, text)

	case model.StepConfirmingSuggestion:
		return e.confirmSuggestion(ctx, userID, st, text)

	case model.StepReady:
		// Only Save or Cancel make sense here.
		return &model.Prompt{Flow: model.FlowEdit, Step: model.StepReady, Notice: model.NoticeInvalidInput},
			common.NewValidationError("input", "edit is ready; save or cancel")

	default:
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}
}

// collectCategory resolves free-text category input: an existing name
// commits immediately; otherwise the suggester is consulted outside the
// lock, and its answer either opens a confirmation step or falls through to
// creating a brand-new classification.
func (e *Engine) collectCategory(ctx context.Context, mu *sync.Mutex, userID, sessionID, text string) (*model.Prompt, error) {
	name := model.NormalizeClassificationName(text)
	if name == "" {
		return &model.Prompt{Flow: model.FlowEdit, Step: model.StepCollectingCategory, Notice: model.NoticeInvalidInput},
			common.NewValidationError(model.FieldCategory, "category cannot be empty")
	}

	existing, err := e.classifications.GetClassificationByName(ctx, userID, name)
	if err != nil {
		common.LogError(err, "classification lookup failed", common.Fields{"user_id": userID})
	}
	if existing != nil {
		return e.commitCategory(userID, existing.Name, model.NoticeFieldCommitted)
	}

	names, err := e.classificationNames(ctx, userID)
	if err != nil {
		common.LogError(err, "failed to list classifications", common.Fields{"user_id": userID})
	}

	// The suggestion call is external; drop the user's lock around it and
	// re-validate the flow state once it is re-acquired.
	mu.Unlock()
	suggestion, err := e.suggester.Suggest(ctx, text, names)
	mu.Lock()
	if err != nil {
		// An unrecognized response and "no suggestion" behave identically.
		suggestion = ""
	}

	st := e.registry.Peek(userID)
	sess := e.sessions.Get(userID)
	if st == nil || st.Flow != model.FlowEdit || st.Step != model.StepCollectingCategory ||
		sess == nil || sess.ID != sessionID {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}

	if suggestion != "" && containsFold(names, suggestion) {
		err := e.registry.Advance(userID, model.StepConfirmingSuggestion, func(entry *model.ConversationState) {
			if entry.Edit != nil {
				entry.Edit.PendingCategory = name
				entry.Edit.SuggestedCategory = model.NormalizeClassificationName(suggestion)
			}
		})
		if err != nil {
			return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, err
		}
		return &model.Prompt{
			Flow:       model.FlowEdit,
			Step:       model.StepConfirmingSuggestion,
			Candidate:  name,
			Suggestion: model.NormalizeClassificationName(suggestion),
		}, nil
	}

	return e.createAndCommitCategory(ctx, userID, name)
}

// confirmSuggestion handles the reply to a suggested category: an
// affirmative commits the suggestion, anything else commits the user's
// original text as a brand-new classification.
func (e *Engine) confirmSuggestion(ctx context.Context, userID string, st *model.ConversationState, text string) (*model.Prompt, error) {
	if st.Edit == nil || st.Edit.PendingCategory == "" {
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}

	if isAffirmative(text) {
		return e.commitCategory(userID, st.Edit.SuggestedCategory, model.NoticeFieldCommitted)
	}
	return e.createAndCommitCategory(ctx, userID, st.Edit.PendingCategory)
}

// createAndCommitCategory mints a new classification with the default glyph
// and an empty keyword set, then commits it as the session's category.
func (e *Engine) createAndCommitCategory(ctx context.Context, userID, name string) (*model.Prompt, error) {
	if _, err := e.classifications.CreateClassification(ctx, userID, name, model.DefaultGlyph, nil); err != nil {
		common.LogError(err, "failed to create classification", common.Fields{"user_id": userID, "name": name})
	}
	return e.commitCategory(userID, name, model.NoticeCategoryAdded)
}

// commitCategory writes the category into the session and moves the flow to
// Ready, clearing any pending suggestion scratch.
func (e *Engine) commitCategory(userID, category string, notice model.PromptNotice) (*model.Prompt, error) {
	sess := e.sessions.Get(userID)
	if sess == nil {
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeExpired}, common.ErrSessionExpired
	}

	category = model.NormalizeClassificationName(category)
	e.sessions.UpdateField(sess, model.FieldCategory, category, "user updated category: "+category)
	err := e.registry.Advance(userID, model.StepReady, func(entry *model.ConversationState) {
		if entry.Edit != nil {
			entry.Edit.PendingCategory = ""
			entry.Edit.SuggestedCategory = ""
		}
	})
	if err != nil {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, err
	}

	attrs := sess.Working.Clone()
	return &model.Prompt{Flow: model.FlowEdit, Step: model.StepReady, Notice: notice, Attributes: &attrs, Summary: sess.ChangeSummary()}, nil
}

func (e *Engine) classificationNames(ctx context.Context, userID string) ([]string, error) {
	classifications, err := e.classifications.GetClassifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(classifications))
	for i, c := range classifications {
		names[i] = c.Name
	}
	return names, nil
}

func isAffirmative(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes", "y", "yeah", "yep":
		return true
	default:
		return false
	}
}

func containsFold(names []string, candidate string) bool {
	for _, name := range names {
		if strings.EqualFold(name, candidate) {
			return true
		}
	}
	return false
}
