package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modcase-bot/model"
)

// InsertCase stores a new case. A duplicate case id is reported as an error.
func (s *Store) InsertCase(ctx context.Context, c *model.Case) error {
	query := `INSERT INTO cases (case_id, guild_id, target_user_id, kind, reason, issuer_id, created_at, duration_seconds, proofs, approved, approver_id, request_state, log_channel_id, log_message_id, request_channel_id, request_message_id)
			  VALUES (:case_id, :guild_id, :target_user_id, :kind, :reason, :issuer_id, :created_at, :duration_seconds, :proofs, :approved, :approver_id, :request_state, :log_channel_id, :log_message_id, :request_channel_id, :request_message_id)`
	if _, err := s.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("failed to insert case %s: %w", c.CaseID, err)
	}
	return nil
}

// GetCase returns the case with caseID, or nil if there is none.
func (s *Store) GetCase(ctx context.Context, caseID string) (*model.Case, error) {
	var c model.Case
	err := s.db.GetContext(ctx, &c, `SELECT * FROM cases WHERE case_id = ?`, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case %s: %w", caseID, err)
	}
	return &c, nil
}

// FindCases lists cases matching filter, newest first.
func (s *Store) FindCases(ctx context.Context, filter model.CaseFilter) ([]model.Case, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.GuildID != "" {
		where = append(where, "guild_id = ?")
		args = append(args, filter.GuildID)
	}
	if filter.TargetUserID != "" {
		where = append(where, "target_user_id = ?")
		args = append(args, filter.TargetUserID)
	}
	if filter.IssuerID != "" {
		where = append(where, "issuer_id = ?")
		args = append(args, filter.IssuerID)
	}

	query := "SELECT * FROM cases"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	var cases []model.Case
	if err := s.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

func (s *Store) UpdateReason(ctx context.Context, caseID, reason string) error {
	return s.updateCase(ctx, caseID, `UPDATE cases SET reason = ? WHERE case_id = ?`, reason, caseID)
}

// SetProofs replaces the stored proof URLs.
func (s *Store) SetProofs(ctx context.Context, caseID string, proofs []string) error {
	return s.updateCase(ctx, caseID, `UPDATE cases SET proofs = ? WHERE case_id = ?`, model.StringList(proofs), caseID)
}

func (s *Store) SetLogMessage(ctx context.Context, caseID string, ref model.MessageRef) error {
	return s.updateCase(ctx, caseID, `UPDATE cases SET log_channel_id = ?, log_message_id = ? WHERE case_id = ?`, ref.ChannelID, ref.MessageID, caseID)
}

func (s *Store) SetRequestMessage(ctx context.Context, caseID string, ref model.MessageRef) error {
	return s.updateCase(ctx, caseID, `UPDATE cases SET request_channel_id = ?, request_message_id = ? WHERE case_id = ?`, ref.ChannelID, ref.MessageID, caseID)
}

// ResolveBanRequest moves a pending request to state in one conditional update,
// so only the first of several concurrent resolutions succeeds.
func (s *Store) ResolveBanRequest(ctx context.Context, caseID string, state model.RequestState, approverID string) (bool, error) {
	query := `UPDATE cases SET request_state = ?, approver_id = ?, approved = ?
		WHERE case_id = ? AND kind = ? AND request_state = ?`
	result, err := s.db.ExecContext(ctx, query, state, approverID, state == model.RequestApproved,
		caseID, model.KindRequestBan, model.RequestPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve ban request %s: %w", caseID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for ban request %s: %w", caseID, err)
	}
	return n == 1, nil
}

// ReopenBanRequest returns an approved request to pending after the ban itself failed.
func (s *Store) ReopenBanRequest(ctx context.Context, caseID string) error {
	return s.updateCase(ctx, caseID, `UPDATE cases SET request_state = ?, approver_id = '', approved = 0 WHERE case_id = ? AND kind = ?`,
		model.RequestPending, caseID, model.KindRequestBan)
}

// DeleteCase removes a case and reports whether it existed.
func (s *Store) DeleteCase(ctx context.Context, caseID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cases WHERE case_id = ?`, caseID)
	if err != nil {
		return false, fmt.Errorf("failed to delete case %s: %w", caseID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for case %s: %w", caseID, err)
	}
	return n > 0, nil
}

func (s *Store) updateCase(ctx context.Context, caseID, query string, args ...interface{}) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update case %s: %w", caseID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for case %s: %w", caseID, err)
	}
	if n == 0 {
		return fmt.Errorf("no case found with id %s", caseID)
	}
	return nil
}
