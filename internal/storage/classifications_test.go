package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/chatledger/internal/common"
)

func TestSQLiteStorage_CreateAndGetClassification(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	created, err := store.CreateClassification(ctx, "u1", "Travel", "✈️", []string{"flight", "hotel"})
	if err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}
	if created.Name != "travel" {
		t.Errorf("Name not normalized: got %q, want %q", created.Name, "travel")
	}
	if created.ID == 0 {
		t.Error("Expected a non-zero row id")
	}

	got, err := store.GetClassificationByName(ctx, "u1", "TRAVEL")
	if err != nil {
		t.Fatalf("Failed to get classification: %v", err)
	}
	if got == nil {
		t.Fatal("Expected case-insensitive lookup to find the classification")
	}
	if got.Glyph != "✈️" {
		t.Errorf("Glyph = %q, want ✈️", got.Glyph)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "flight" || got.Keywords[1] != "hotel" {
		t.Errorf("Keywords round-trip failed: %v", got.Keywords)
	}
}

func TestSQLiteStorage_CreateDuplicateReturnsExisting(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first, err := store.CreateClassification(ctx, "u1", "food", "🍽️", []string{"lunch"})
	if err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}

	second, err := store.CreateClassification(ctx, "u1", "  FOOD  ", "🌮", []string{"taco"})
	if err != nil {
		t.Fatalf("Duplicate create must not error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected existing row back, got id %d, want %d", second.ID, first.ID)
	}
	if second.Glyph != "🍽️" {
		t.Errorf("Duplicate create must not overwrite the glyph, got %q", second.Glyph)
	}
}

func TestSQLiteStorage_CreateWithoutGlyphUsesDefault(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	created, err := store.CreateClassification(context.Background(), "u1", "subscriptions", "", nil)
	if err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}
	if created.Glyph != "📝" {
		t.Errorf("Glyph = %q, want the default 📝", created.Glyph)
	}
}

func TestSQLiteStorage_ClassificationsAreScopedPerUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateClassification(ctx, "u1", "travel", "✈️", nil); err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}
	if _, err := store.CreateClassification(ctx, "u2", "travel", "🧳", nil); err != nil {
		t.Fatalf("Same name for another user must be allowed: %v", err)
	}

	got, err := store.GetClassificationByName(ctx, "u2", "travel")
	if err != nil {
		t.Fatalf("Failed to get classification: %v", err)
	}
	if got == nil || got.Glyph != "🧳" {
		t.Errorf("Expected u2's own row, got %+v", got)
	}

	list, err := store.GetClassifications(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to list classifications: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("u1 must see only their own rows, got %d", len(list))
	}
}

func TestSQLiteStorage_GetClassificationByNameMissing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.GetClassificationByName(context.Background(), "u1", "nothing")
	if err != nil {
		t.Fatalf("Missing name must not error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for a missing name, got %+v", got)
	}
}

func TestSQLiteStorage_DeleteClassification(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateClassification(ctx, "u1", "travel", "✈️", nil); err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}

	if err := store.DeleteClassification(ctx, "u1", "TRAVEL"); err != nil {
		t.Fatalf("Failed to delete classification: %v", err)
	}

	got, err := store.GetClassificationByName(ctx, "u1", "travel")
	if err != nil {
		t.Fatalf("Failed to get classification: %v", err)
	}
	if got != nil {
		t.Error("Classification still present after delete")
	}

	if err := store.DeleteClassification(ctx, "u1", "travel"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Deleting a missing name: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_MatchKeyword(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateClassification(ctx, "u1", "transport", "🚗", []string{"uber", "petrol"}); err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}
	if _, err := store.CreateClassification(ctx, "u1", "food", "🍽️", []string{"zomato"}); err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "exact keyword", text: "uber", want: "transport"},
		{name: "keyword inside text", text: "Paid Zomato for dinner", want: "food"},
		{name: "case insensitive", text: "PETROL pump", want: "transport"},
		{name: "no match", text: "rent payment", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.MatchKeyword(ctx, "u1", tt.text)
			if err != nil {
				t.Fatalf("MatchKeyword failed: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("Expected no match, got %q", got.Name)
				}
				return
			}
			if got == nil || got.Name != tt.want {
				t.Errorf("MatchKeyword(%q) = %v, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSQLiteStorage_ValidationErrors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.GetClassifications(ctx, ""); err == nil {
		t.Error("Expected error for empty user id")
	}
	if _, err := store.CreateClassification(ctx, "u1", "   ", "x", nil); err == nil {
		t.Error("Expected error for blank classification name")
	}
}
