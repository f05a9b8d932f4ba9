package flow

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
)

// startWizard enters the classification creation wizard. Entering a new
// flow abandons whatever the user was doing; a live edit session is
// destroyed so it can never be saved against a flow that moved on.
func (e *Engine) startWizard(userID string) (*model.Prompt, error) {
	mu := e.locks.get(userID)
	mu.Lock()
	defer mu.Unlock()

	if sess := e.sessions.Get(userID); sess != nil {
		e.sessions.Destroy(sess.ID)
	}
	e.registry.Enter(userID, model.FlowWizard, model.StepCollectingName, nil, &model.WizardScratch{})

	return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingName}, nil
}

// handleWizardText advances the creation wizard with one free-text input.
// The caller holds the user's lock.
func (e *Engine) handleWizardText(ctx context.Context, userID string, st *model.ConversationState, text string) (*model.Prompt, error) {
	switch st.Step {
	case model.StepCollectingName:
		return e.collectName(ctx, userID, text)
	case model.StepCollectingGlyph:
		return e.collectGlyph(userID, text)
	case model.StepCollectingKeywords:
		return e.collectKeywords(ctx, userID, st, text)
	default:
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}
}

func (e *Engine) collectName(ctx context.Context, userID, text string) (*model.Prompt, error) {
	name := model.NormalizeClassificationName(text)
	if name == "" {
		return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingName, Notice: model.NoticeInvalidInput},
			common.NewValidationError("name", "name cannot be empty")
	}
	if utf8.RuneCountInString(name) > e.config.MaxNameLength {
		return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingName, Notice: model.NoticeInvalidInput},
			common.NewValidationError("name", "name is too long")
	}

	existing, err := e.classifications.GetClassificationByName(ctx, userID, name)
	if err != nil {
		common.LogError(err, "classification lookup failed", common.Fields{"user_id": userID})
	}
	if existing != nil {
		return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingName, Notice: model.NoticeInvalidInput},
			fmt.Errorf("%w: %q", common.ErrDuplicateName, name)
	}

	err = e.registry.Advance(userID, model.StepCollectingGlyph, func(entry *model.ConversationState) {
		if entry.Wizard != nil {
			entry.Wizard.Name = name
		}
	})
	if err != nil {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, err
	}
	return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingGlyph}, nil
}

// collectGlyph is lenient: the glyph is cosmetic, so invalid or overlong
// input falls back to the default rather than re-prompting.
func (e *Engine) collectGlyph(userID, text string) (*model.Prompt, error) {
	glyph := strings.TrimSpace(text)
	if glyph == "" || utf8.RuneCountInString(glyph) > e.config.MaxGlyphLength {
		glyph = model.DefaultGlyph
	}

	err := e.registry.Advance(userID, model.StepCollectingKeywords, func(entry *model.ConversationState) {
		if entry.Wizard != nil {
			entry.Wizard.Glyph = glyph
		}
	})
	if err != nil {
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, err
	}
	return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingKeywords}, nil
}

func (e *Engine) collectKeywords(ctx context.Context, userID string, st *model.ConversationState, text string) (*model.Prompt, error) {
	if st.Wizard == nil || st.Wizard.Name == "" {
		e.registry.Clear(userID)
		return &model.Prompt{Flow: model.FlowNone, Notice: model.NoticeNoActiveFlow}, common.ErrNoActiveFlow
	}

	keywords := model.ParseKeywords(text)
	created, err := e.classifications.CreateClassification(ctx, userID, st.Wizard.Name, st.Wizard.Glyph, keywords)
	if err != nil {
		common.LogError(err, "failed to create classification", common.Fields{"user_id": userID, "name": st.Wizard.Name})
		return &model.Prompt{Flow: model.FlowWizard, Step: model.StepCollectingKeywords, Notice: model.NoticeInvalidInput},
			common.NewUserError("could not save the new classification", err)
	}

	e.registry.Clear(userID)
	return &model.Prompt{
		Flow:      model.FlowWizard,
		Step:      model.StepDone,
		Notice:    model.NoticeCategoryAdded,
		Candidate: created.Name,
	}, nil
}
