package model

// PromptNotice qualifies a prompt with the outcome of the input that
// produced it, so the presentation layer can pick wording.
type PromptNotice string

// Prompt notices.
const (
	NoticeNone           PromptNotice = ""
	NoticeInvalidInput   PromptNotice = "invalid_input"
	NoticeSaved          PromptNotice = "saved"
	NoticeApproved       PromptNotice = "approved"
	NoticeRejected       PromptNotice = "rejected"
	NoticeCancelled      PromptNotice = "cancelled"
	NoticeExpired        PromptNotice = "expired"
	NoticeNoActiveFlow   PromptNotice = "no_active_flow"
	NoticeSaveFailed     PromptNotice = "save_failed"
	NoticeCategoryAdded  PromptNotice = "category_added"
	NoticeFieldCommitted PromptNotice = "field_committed"
)

// Prompt is the abstract next-prompt descriptor the engine hands back to
// the presentation layer. The engine never constructs user-facing text.
type Prompt struct {
	Flow       FlowKind
	Step       Step
	Notice     PromptNotice
	Suggestion string
	Candidate  string
	Attributes *Attributes
	Summary    string
}
