package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/chatledger/internal/common"
	"github.com/Veraticus/chatledger/internal/model"
)

// GetClassifications returns all of a user's classifications, ordered by name.
func (s *SQLiteStorage) GetClassifications(ctx context.Context, userID string) ([]model.Classification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, glyph, keywords, created_at
		FROM classifications
		WHERE user_id = ?
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	var classifications []model.Classification
	for rows.Next() {
		c, scanErr := scanClassification(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		classifications = append(classifications, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classifications: %w", err)
	}

	slog.Debug("retrieved classifications", "user_id", userID, "count", len(classifications))
	return classifications, nil
}

// GetClassificationByName returns a user's classification by name,
// case-insensitively, or nil when absent.
func (s *SQLiteStorage) GetClassificationByName(ctx context.Context, userID, name string) (*model.Classification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, name, glyph, keywords, created_at
		FROM classifications
		WHERE user_id = ? AND lower(name) = lower(?)`

	row := s.db.QueryRowContext(ctx, query, userID, name)
	c, err := scanClassification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateClassification creates a classification for a user. Creating a name
// the user already has returns the existing row untouched, so flows that
// mint a category on the fly stay idempotent.
func (s *SQLiteStorage) CreateClassification(ctx context.Context, userID, name, glyph string, keywords []string) (*model.Classification, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	name = model.NormalizeClassificationName(name)
	if name == "" {
		return nil, fmt.Errorf("classification name cannot be empty")
	}
	if glyph == "" {
		glyph = model.DefaultGlyph
	}

	existing, err := s.GetClassificationByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	insertQuery := `
		INSERT INTO classifications (user_id, name, glyph, keywords, created_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, insertQuery, userID, name, glyph, encodeKeywords(keywords), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create classification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get classification id: %w", err)
	}

	slog.Info("created classification", "user_id", userID, "name", name)
	return &model.Classification{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Glyph:     glyph,
		Keywords:  keywords,
		CreatedAt: now,
	}, nil
}

// DeleteClassification removes a user's classification by name.
func (s *SQLiteStorage) DeleteClassification(ctx context.Context, userID, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	query := `DELETE FROM classifications WHERE user_id = ? AND lower(name) = lower(?)`
	result, err := s.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		return fmt.Errorf("failed to delete classification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// MatchKeyword finds the first classification whose keyword set contains a
// word of the given text, or nil when none match.
func (s *SQLiteStorage) MatchKeyword(ctx context.Context, userID, text string) (*model.Classification, error) {
	classifications, err := s.GetClassifications(ctx, userID)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(text)
	for i := range classifications {
		for _, keyword := range classifications[i].Keywords {
			if keyword != "" && strings.Contains(lowered, keyword) {
				return &classifications[i], nil
			}
		}
	}
	return nil, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassification(row rowScanner) (*model.Classification, error) {
	var c model.Classification
	var keywords string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Glyph, &keywords, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan classification: %w", err)
	}
	c.Keywords = decodeKeywords(keywords)
	return &c, nil
}

func encodeKeywords(keywords []string) string {
	return strings.Join(keywords, ",")
}

func decodeKeywords(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Split(encoded, ",")
}
