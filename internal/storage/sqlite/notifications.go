package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// CreateNotifications inserts a batch of notifications in one transaction.
func (s *SQLiteStore) CreateNotifications(ctx context.Context, notifs []*models.Notification) error {
	if len(notifs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, n := range notifs {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt == 0 {
			n.CreatedAt = time.Now().Unix()
		}
		meta := "{}"
		if len(n.Metadata) > 0 {
			raw, err := json.Marshal(n.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal metadata: %w", err)
			}
			meta = string(raw)
		}
		read := 0
		if n.Read {
			read = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO notifications (id, recipient, sender, type, message, related_id, related_kind, read, metadata, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Recipient, n.Sender, n.Type, n.Message, n.RelatedID, n.RelatedKind, read, meta, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListNotifications returns a recipient's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, recipient string, limit int) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recipient, sender, type, message, related_id, related_kind, read, metadata, created_at
		 FROM notifications WHERE recipient = ? ORDER BY created_at DESC LIMIT ?`,
		recipient, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifs []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var read int
		var meta string
		err := rows.Scan(&n.ID, &n.Recipient, &n.Sender, &n.Type, &n.Message,
			&n.RelatedID, &n.RelatedKind, &read, &meta, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Read = read == 1
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		notifs = append(notifs, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifs, nil
}

// CountUnreadNotifications counts a recipient's unread notifications.
func (s *SQLiteStore) CountUnreadNotifications(ctx context.Context, recipient string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM notifications WHERE recipient = ? AND read = 0",
		recipient,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one notification read; the recipient filter
// keeps users from touching each other's notifications.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id, recipient string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND recipient = ?",
		id, recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every notification of a recipient read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, recipient string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE recipient = ? AND read = 0",
		recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes one notification owned by the recipient.
func (s *SQLiteStore) DeleteNotification(ctx context.Context, id, recipient string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = ? AND recipient = ?",
		id, recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteAllNotifications clears a recipient's feed.
func (s *SQLiteStore) DeleteAllNotifications(ctx context.Context, recipient string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE recipient = ?", recipient,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteReadNotifications removes only the recipient's read notifications.
func (s *SQLiteStore) DeleteReadNotifications(ctx context.Context, recipient string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE recipient = ? AND read = 1", recipient,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
