package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// UpsertPendingIdentity creates or refreshes the global pending record for
// an email and unions groupID into its group set.
func (s *SQLiteStore) UpsertPendingIdentity(ctx context.Context, email, name, invitedBy, groupID string) error {
	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO pending_identities (email, name, invited_by, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET name = excluded.name, invited_by = excluded.invited_by, updated_at = excluded.updated_at`,
		email, name, invitedBy, models.PendingStatusPending, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert pending identity: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO pending_identity_groups (email, group_id) VALUES (?, ?)",
		email, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to union pending group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPendingIdentity retrieves the pending record for an email, with its
// group set. Returns (nil, nil) when the email was never invited.
func (s *SQLiteStore) GetPendingIdentity(ctx context.Context, email string) (*models.PendingIdentity, error) {
	pi := &models.PendingIdentity{}
	err := s.db.QueryRowContext(ctx,
		"SELECT email, name, invited_by, status, created_at, updated_at FROM pending_identities WHERE email = ?",
		email,
	).Scan(&pi.Email, &pi.Name, &pi.InvitedBy, &pi.Status, &pi.CreatedAt, &pi.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending identity: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id FROM pending_identity_groups WHERE email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return nil, fmt.Errorf("failed to scan pending group: %w", err)
		}
		pi.Groups = append(pi.Groups, groupID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending groups: %w", err)
	}
	return pi, nil
}

// MarkPendingIdentityRegistered flips the pending record to registered.
// The record is kept for audit, never deleted.
func (s *SQLiteStore) MarkPendingIdentityRegistered(ctx context.Context, email string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE pending_identities SET status = ?, updated_at = ? WHERE email = ?",
		models.PendingStatusRegistered, time.Now().Unix(), email,
	)
	if err != nil {
		return fmt.Errorf("failed to mark pending identity registered: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConvertPendingMember converts a pending member into a confirmed member
// within a single group, atomically: the pending entry is removed, the user
// is added to the member list unless already present, and every pending
// split matching the email in the group's records is rewritten to reference
// the user. Splits for other emails in the same records are untouched.
// Returns the number of records whose splits changed.
func (s *SQLiteStore) ConvertPendingMember(ctx context.Context, groupID, email, userID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM group_pending_members WHERE group_id = ? AND email = ?",
		groupID, email,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to remove pending member: %w", err)
	}

	// Idempotent: skip the insert when the user is already a member.
	var present int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&present)
	if err != nil {
		return 0, fmt.Errorf("failed to check membership: %w", err)
	}
	if present == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, position)
			 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?))`,
			groupID, userID, groupID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to add member: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT sp.record_id FROM splits sp
		 JOIN records r ON r.id = sp.record_id
		 WHERE r.group_id = ? AND sp.email = ? AND sp.pending = 1`,
		groupID, email,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to find pending splits: %w", err)
	}
	var recordIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan record id: %w", err)
		}
		recordIDs = append(recordIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate record ids: %w", err)
	}

	for _, recordID := range recordIDs {
		_, err = tx.ExecContext(ctx,
			`UPDATE splits SET user_id = ?, email = '', name = '', pending = 0
			 WHERE record_id = ? AND email = ? AND pending = 1`,
			userID, recordID, email,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to convert splits: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(recordIDs), nil
}
