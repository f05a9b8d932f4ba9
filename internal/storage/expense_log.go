package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/chatledger/internal/model"
	"github.com/Veraticus/chatledger/internal/service"
)

// LogExpense records a finalized expense locally, alongside whatever the
// external persister did with it.
func (s *SQLiteStorage) LogExpense(ctx context.Context, userID string, attrs model.Attributes, status service.SaveStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	date := attrs.Date
	if date.IsZero() {
		date = time.Now()
	}

	query := `
		INSERT INTO expense_log (user_id, date, amount, merchant, category, payment_method, notes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		userID, date, attrs.Amount, attrs.Merchant, attrs.Category,
		attrs.PaymentMethod, attrs.Notes, string(status))
	if err != nil {
		return fmt.Errorf("failed to log expense: %w", err)
	}

	slog.Debug("logged expense", "user_id", userID, "amount", attrs.Amount, "category", attrs.Category)
	return nil
}

// GetExpenses returns a user's locally logged expenses since the given time.
func (s *SQLiteStorage) GetExpenses(ctx context.Context, userID string, since time.Time) ([]model.Attributes, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT date, amount, merchant, category, payment_method, notes
		FROM expense_log
		WHERE user_id = ? AND date >= ?
		ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Attributes
	for rows.Next() {
		var a model.Attributes
		if err := rows.Scan(&a.Date, &a.Amount, &a.Merchant, &a.Category, &a.PaymentMethod, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
