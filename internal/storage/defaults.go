package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/chatledger/internal/model"
)

// defaultClassifications is the stock set seeded for a user who has none.
var defaultClassifications = []model.Classification{
	{Name: "food", Glyph: "🍽️", Keywords: []string{"zomato", "swiggy", "restaurant", "food", "lunch", "dinner", "breakfast", "cafe", "pizza", "burger", "meal", "dining"}},
	{Name: "transport", Glyph: "🚗", Keywords: []string{"uber", "ola", "petrol", "taxi", "metro", "bus", "train", "auto", "fuel", "parking", "toll", "commute"}},
	{Name: "shopping", Glyph: "🛒", Keywords: []string{"amazon", "flipkart", "shopping", "mall", "clothes", "shoes", "electronics", "laptop", "purchase"}},
	{Name: "groceries", Glyph: "🥕", Keywords: []string{"grocery", "vegetables", "milk", "fruits", "supermarket", "dmart", "fresh", "organic"}},
	{Name: "medical", Glyph: "💊", Keywords: []string{"hospital", "doctor", "medicine", "pharmacy", "medical", "health", "clinic", "treatment"}},
	{Name: "entertainment", Glyph: "🎬", Keywords: []string{"movie", "cinema", "game", "music", "netflix", "spotify", "concert", "show"}},
	{Name: "utilities", Glyph: "⚡", Keywords: []string{"electricity", "water", "gas", "internet", "wifi", "broadband", "recharge", "bill", "phone"}},
	{Name: "education", Glyph: "📚", Keywords: []string{"course", "book", "education", "training", "certification", "udemy", "coursera", "study"}},
	{Name: "miscellaneous", Glyph: "📝", Keywords: nil},
}

// EnsureDefaults seeds the stock classification set for a user who has no
// classifications yet. No-op for users who already have any.
func (s *SQLiteStorage) EnsureDefaults(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM classifications WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count classifications: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range defaultClassifications {
		if _, err := s.CreateClassification(ctx, userID, c.Name, c.Glyph, c.Keywords); err != nil {
			return fmt.Errorf("failed to seed classification %q: %w", c.Name, err)
		}
	}

	slog.Info("seeded default classifications", "user_id", userID, "count", len(defaultClassifications))
	return nil
}
