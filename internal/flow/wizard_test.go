package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
)

func startWizardFlow(t *testing.T, env *testEnv, userID string) {
	t.Helper()
	_, err := env.engine.HandleAction(context.Background(), userID, model.Action{Kind: model.ActionAddCategory})
	require.NoError(t, err)
}

func TestWizard_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	startWizardFlow(t, env, "u1")

	prompt, err := env.engine.HandleText(ctx, "u1", "Travel")
	require.NoError(t, err)
	assert.Equal(t, model.StepCollectingGlyph, prompt.Step)

	prompt, err = env.engine.HandleText(ctx, "u1", "✈️")
	require.NoError(t, err)
	assert.Equal(t, model.StepCollectingKeywords, prompt.Step)

	prompt, err = env.engine.HandleText(ctx, "u1", "flight, Hotel, , train")
	require.NoError(t, err)
	assert.Equal(t, model.StepDone, prompt.Step)
	assert.Equal(t, model.NoticeCategoryAdded, prompt.Notice)
	assert.Nil(t, env.registry.Peek("u1"), "completed wizard must clear its registry entry")

	created, err := env.classStore.GetClassificationByName(ctx, "u1", "travel")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "✈️", created.Glyph)
	assert.Equal(t, []string{"flight", "hotel", "train"}, created.Keywords)
}

func TestWizard_NameValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "   "},
		{name: "too long", input: strings.Repeat("x", 41)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			startWizardFlow(t, env, "u1")

			prompt, err := env.engine.HandleText(context.Background(), "u1", tc.input)
			require.Error(t, err)
			assert.True(t, common.IsValidation(err))
			assert.Equal(t, model.StepCollectingName, prompt.Step, "step must not advance")
		})
	}
}

func TestWizard_DuplicateNameReprompts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.classStore.CreateClassification(ctx, "u1", "travel", "✈️", nil)
	require.NoError(t, err)
	startWizardFlow(t, env, "u1")

	prompt, err := env.engine.HandleText(ctx, "u1", "TRAVEL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDuplicateName), "duplicate check must be case-insensitive")
	assert.Equal(t, model.StepCollectingName, prompt.Step)
}

func TestWizard_GlyphIsLenient(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "emoji kept", input: "🚀", want: "🚀"},
		{name: "short text kept", input: "tx", want: "tx"},
		{name: "empty defaults", input: "  ", want: model.DefaultGlyph},
		{name: "overlong defaults", input: strings.Repeat("g", 20), want: model.DefaultGlyph},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			startWizardFlow(t, env, "u1")
			_, err := env.engine.HandleText(ctx, "u1", "stuff")
			require.NoError(t, err)

			prompt, err := env.engine.HandleText(ctx, "u1", tc.input)
			require.NoError(t, err, "glyph input is never rejected")
			assert.Equal(t, model.StepCollectingKeywords, prompt.Step)

			entry := env.registry.Peek("u1")
			require.NotNil(t, entry)
			require.NotNil(t, entry.Wizard)
			assert.Equal(t, tc.want, entry.Wizard.Glyph)
		})
	}
}

func TestWizard_KeywordsNoneYieldsEmptySet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	startWizardFlow(t, env, "u1")
	_, err := env.engine.HandleText(ctx, "u1", "gifts")
	require.NoError(t, err)
	_, err = env.engine.HandleText(ctx, "u1", "🎁")
	require.NoError(t, err)

	prompt, err := env.engine.HandleText(ctx, "u1", "None")
	require.NoError(t, err)
	assert.Equal(t, model.StepDone, prompt.Step)

	created, err := env.classStore.GetClassificationByName(ctx, "u1", "gifts")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Empty(t, created.Keywords)
}

func TestWizard_CancelClearsStateOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	startWizardFlow(t, env, "u1")
	_, err := env.engine.HandleText(ctx, "u1", "travel")
	require.NoError(t, err)

	prompt, err := env.engine.HandleAction(ctx, "u1", model.Action{Kind: model.ActionCancel, DraftID: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.NoticeCancelled, prompt.Notice)
	assert.Nil(t, env.registry.Peek("u1"))

	created, err := env.classStore.GetClassificationByName(ctx, "u1", "travel")
	require.NoError(t, err)
	assert.Nil(t, created, "cancel must not mutate the classification set")
}

func TestWizard_EnteringDestroysLiveEditSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draft := env.startEditFlow(t, "u1")

	startWizardFlow(t, env, "u1")

	assert.Nil(t, env.sessions.Get("u1"), "entering a new flow must destroy the prior session")
	entry := env.registry.Peek("u1")
	require.NotNil(t, entry)
	assert.Equal(t, model.FlowWizard, entry.Flow)

	// The stale save must now observe that the edit flow is gone.
	_, err := env.engine.HandleAction(ctx, "u1", model.Action{Kind: model.ActionSave, DraftID: draft.ID})
	assert.ErrorIs(t, err, common.ErrNoActiveFlow)
	assert.Zero(t, env.persister.SaveCallCount)
}
