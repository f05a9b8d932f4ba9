package model

import (
	"testing"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Action
		wantErr bool
	}{
		{
			name: "approve with id",
			raw:  "approve_exp_u1_123",
			want: Action{Kind: ActionApprove, DraftID: "exp_u1_123"},
		},
		{
			name: "edit with id",
			raw:  "edit_exp_u1_123",
			want: Action{Kind: ActionEdit, DraftID: "exp_u1_123"},
		},
		{
			name: "reject with id",
			raw:  "reject_exp_u1_123",
			want: Action{Kind: ActionReject, DraftID: "exp_u1_123"},
		},
		{
			name: "save uses long prefix",
			raw:  "save_expense_exp_u1_123",
			want: Action{Kind: ActionSave, DraftID: "exp_u1_123"},
		},
		{
			name: "cancel uses long prefix",
			raw:  "cancel_edit_exp_u1_123",
			want: Action{Kind: ActionCancel, DraftID: "exp_u1_123"},
		},
		{
			name: "add category has no id",
			raw:  "add_category",
			want: Action{Kind: ActionAddCategory},
		},
		{
			name: "surrounding whitespace tolerated",
			raw:  "  approve_x  ",
			want: Action{Kind: ActionApprove, DraftID: "x"},
		},
		{
			name:    "empty id rejected",
			raw:     "approve_",
			wantErr: true,
		},
		{
			name:    "unknown action rejected",
			raw:     "explode_everything",
			wantErr: true,
		},
		{
			name:    "empty string rejected",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAction(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAction(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestActionString_RoundTrips(t *testing.T) {
	actions := []Action{
		{Kind: ActionApprove, DraftID: "d1"},
		{Kind: ActionEdit, DraftID: "d1"},
		{Kind: ActionReject, DraftID: "d1"},
		{Kind: ActionSave, DraftID: "d1"},
		{Kind: ActionCancel, DraftID: "d1"},
		{Kind: ActionAddCategory},
	}

	for _, a := range actions {
		parsed, err := ParseAction(a.String())
		if err != nil {
			t.Errorf("ParseAction(%q) failed: %v", a.String(), err)
			continue
		}
		if parsed != a {
			t.Errorf("Round trip %q: got %+v, want %+v", a.String(), parsed, a)
		}
	}
}
