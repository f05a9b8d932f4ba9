package model

// FlowKind names a multi-step conversational procedure.
type FlowKind string

// Flow kinds.
const (
	FlowNone   FlowKind = "none"
	FlowEdit   FlowKind = "edit"
	FlowWizard FlowKind = "wizard"
)

// Step identifies the current position within a flow. The valid values
// depend on the flow kind.
type Step string

// Edit flow steps, in order. No step may be skipped.
const (
	StepCollectingAmount     Step = "collecting_amount"
	StepCollectingCategory   Step = "collecting_category"
	StepConfirmingSuggestion Step = "confirming_suggestion"
	StepReady                Step = "ready"
)

// Creation wizard steps.
const (
	StepCollectingName     Step = "collecting_name"
	StepCollectingGlyph    Step = "collecting_glyph"
	StepCollectingKeywords Step = "collecting_keywords"
	StepDone               Step = "done"
)

// EditScratch holds edit-flow data that lives outside the session itself:
// the backing session id and, while a suggestion is pending, both the text
// the user typed and the match the resolver proposed.
type EditScratch struct {
	SessionID         string
	PendingCategory   string
	SuggestedCategory string
}

// WizardScratch accumulates the classification being built.
type WizardScratch struct {
	Name     string
	Glyph    string
	Keywords []string
}

// ConversationState is the single active flow descriptor for one user.
// Exactly one of Edit or Wizard is non-nil, matching Flow.
type ConversationState struct {
	UserID string
	Flow   FlowKind
	Step   Step
	Edit   *EditScratch
	Wizard *WizardScratch
}

// Clone returns a deep copy so callers can read state outside the lock that
// guards the registry.
func (c *ConversationState) Clone() *ConversationState {
	if c == nil {
		return nil
	}
	out := *c
	if c.Edit != nil {
		edit := *c.Edit
		out.Edit = &edit
	}
	if c.Wizard != nil {
		wizard := *c.Wizard
		wizard.Keywords = append([]string(nil), c.Wizard.Keywords...)
		out.Wizard = &wizard
	}
	return &out
}
