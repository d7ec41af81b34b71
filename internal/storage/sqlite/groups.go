package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// CreateGroup persists a new group with its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	if group.Currency == "" {
		group.Currency = "USD"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, currency, icon, image, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		group.ID, group.Name, group.Currency, group.Icon, group.Image,
		group.OwnerID, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i, userID := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)",
			group.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its members and pending members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, currency, icon, image, owner_id, created_at, updated_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.Currency, &group.Icon, &group.Image,
		&group.OwnerID, &group.CreatedAt, &group.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if err := s.loadGroupLists(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *SQLiteStore) loadGroupLists(ctx context.Context, group *models.Group) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("failed to scan member: %w", err)
		}
		group.Members = append(group.Members, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate members: %w", err)
	}

	pmRows, err := s.db.QueryContext(ctx,
		"SELECT email, name, invited_by, invited_at FROM group_pending_members WHERE group_id = ? ORDER BY invited_at",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get pending members: %w", err)
	}
	defer pmRows.Close()

	for pmRows.Next() {
		var pm models.PendingMember
		if err := pmRows.Scan(&pm.Email, &pm.Name, &pm.InvitedBy, &pm.InvitedAt); err != nil {
			return fmt.Errorf("failed to scan pending member: %w", err)
		}
		group.PendingMembers = append(group.PendingMembers, pm)
	}
	if err := pmRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate pending members: %w", err)
	}
	return nil
}

// ListGroupsForUser returns the groups the user belongs to, newest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// UpdateGroup updates the group's mutable fields (name, currency, icon, image).
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	group.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET name = ?, currency = ?, icon = ?, image = ?, updated_at = ? WHERE id = ?",
		group.Name, group.Currency, group.Icon, group.Image, group.UpdatedAt, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteGroup removes the group; members, pending members, records and
// splits go with it via cascading foreign keys.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddGroupMember appends a user to the group's member list.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?))`,
		groupID, userID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveGroupMember removes a user from the group's member list. Historical
// ledger records keep their references to the user for audit.
func (s *SQLiteStore) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// AddPendingMember appends a pending member entry to the group.
func (s *SQLiteStore) AddPendingMember(ctx context.Context, groupID string, pm models.PendingMember) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_pending_members (group_id, email, name, invited_by, invited_at) VALUES (?, ?, ?, ?, ?)",
		groupID, pm.Email, pm.Name, pm.InvitedBy, pm.InvitedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add pending member: %w", err)
	}
	return nil
}
