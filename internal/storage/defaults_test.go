package storage

import (
	"context"
	"testing"
)

func TestSQLiteStorage_EnsureDefaultsSeedsNewUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.EnsureDefaults(ctx, "u1"); err != nil {
		t.Fatalf("EnsureDefaults failed: %v", err)
	}

	list, err := store.GetClassifications(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to list classifications: %v", err)
	}
	if len(list) != len(defaultClassifications) {
		t.Fatalf("Seeded %d classifications, want %d", len(list), len(defaultClassifications))
	}

	food, err := store.GetClassificationByName(ctx, "u1", "food")
	if err != nil {
		t.Fatalf("Failed to get seeded classification: %v", err)
	}
	if food == nil || food.Glyph != "🍽️" {
		t.Errorf("Expected seeded food entry with its glyph, got %+v", food)
	}
}

func TestSQLiteStorage_EnsureDefaultsSkipsExistingUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateClassification(ctx, "u1", "custom", "🎯", nil); err != nil {
		t.Fatalf("Failed to create classification: %v", err)
	}

	if err := store.EnsureDefaults(ctx, "u1"); err != nil {
		t.Fatalf("EnsureDefaults failed: %v", err)
	}

	list, err := store.GetClassifications(ctx, "u1")
	if err != nil {
		t.Fatalf("Failed to list classifications: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("A user with any classification must not be re-seeded, got %d rows", len(list))
	}
}

func TestSQLiteStorage_EnsureDefaultsIsPerUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.EnsureDefaults(ctx, "u1"); err != nil {
		t.Fatalf("EnsureDefaults failed: %v", err)
	}

	list, err := store.GetClassifications(ctx, "u2")
	if err != nil {
		t.Fatalf("Failed to list classifications: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Seeding u1 must not touch u2, got %d rows", len(list))
	}
}
