package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// IncrementCaseCount adds one to the number of cases opened against userID in guildID.
func (s *Store) IncrementCaseCount(ctx context.Context, guildID, userID string) error {
	query := `INSERT INTO modcases (guild_id, user_id, modcase_count) VALUES (?, ?, 1)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET modcase_count = modcase_count + 1`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to increment case count for %s: %w", userID, err)
	}
	return nil
}

// DecrementCaseCount subtracts one, never going below zero.
func (s *Store) DecrementCaseCount(ctx context.Context, guildID, userID string) error {
	query := `UPDATE modcases SET modcase_count = MAX(modcase_count - 1, 0) WHERE guild_id = ? AND user_id = ?`
	if _, err := s.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to decrement case count for %s: %w", userID, err)
	}
	return nil
}

// CaseCount returns the counter for userID, zero if it has none.
func (s *Store) CaseCount(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT modcase_count FROM modcases WHERE guild_id = ? AND user_id = ?`, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get case count for %s: %w", userID, err)
	}
	return count, nil
}
