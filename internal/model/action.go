package model

import (
	"fmt"
	"strings"
)

// ActionKind names a discrete user action arriving from the presentation
// layer, as opposed to free text.
type ActionKind string

// Action kinds.
const (
	ActionApprove     ActionKind = "approve"
	ActionEdit        ActionKind = "edit"
	ActionReject      ActionKind = "reject"
	ActionSave        ActionKind = "save"
	ActionCancel      ActionKind = "cancel"
	ActionAddCategory ActionKind = "add_category"
)

// Action is a structured user action decoded once at the boundary. The old
// callback strings ("edit_<id>", "save_expense_<id>") are never re-parsed
// past this point.
type Action struct {
	Kind    ActionKind
	DraftID string
}

// Callback prefixes understood by ParseAction.
var actionPrefixes = []struct {
	prefix string
	kind   ActionKind
}{
	{"approve_", ActionApprove},
	{"edit_", ActionEdit},
	{"reject_", ActionReject},
	{"save_expense_", ActionSave},
	{"cancel_edit_", ActionCancel},
}

// ParseAction decodes a raw callback string into a structured Action.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	if raw == "add_category" {
		return Action{Kind: ActionAddCategory}, nil
	}

	for _, p := range actionPrefixes {
		if strings.HasPrefix(raw, p.prefix) {
			id := strings.TrimPrefix(raw, p.prefix)
			if id == "" {
				return Action{}, fmt.Errorf("action %q has empty id", raw)
			}
			return Action{Kind: p.kind, DraftID: id}, nil
		}
	}

	return Action{}, fmt.Errorf("unrecognized action %q", raw)
}

// String renders the action back into its wire form.
func (a Action) String() string {
	switch a.Kind {
	case ActionAddCategory:
		return string(ActionAddCategory)
	case ActionSave:
		return "save_expense_" + a.DraftID
	case ActionCancel:
		return "cancel_edit_" + a.DraftID
	default:
		return string(a.Kind) + "_" + a.DraftID
	}
}
