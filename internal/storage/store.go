// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitbook/backend/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface for the backend. Implementations must
// serialize concurrent mutations of the same group or record (the SQLite
// implementation relies on transactions and the single-writer model) and
// must keep the per-group reconciliation step atomic.
type Store interface {
	// Users

	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns (nil, nil) when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns a map keyed by user ID; missing users are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	// SearchUsersByEmail matches email substrings, excluding one user ID.
	SearchUsersByEmail(ctx context.Context, query, excludeID string, limit int) ([]*models.User, error)

	// Groups and membership

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsForUser returns groups the user is a confirmed member of,
	// newest first.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	// DeleteGroup removes the group and every ledger record in it.
	DeleteGroup(ctx context.Context, groupID string) error
	AddGroupMember(ctx context.Context, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	AddPendingMember(ctx context.Context, groupID string, pm models.PendingMember) error

	// Pending identities

	// UpsertPendingIdentity creates or refreshes the global record for an
	// email and unions groupID into its group set.
	UpsertPendingIdentity(ctx context.Context, email, name, invitedBy, groupID string) error
	// GetPendingIdentity returns (nil, nil) when the email was never invited.
	GetPendingIdentity(ctx context.Context, email string) (*models.PendingIdentity, error)
	MarkPendingIdentityRegistered(ctx context.Context, email string) error
	// ConvertPendingMember atomically, within one group: drops the pending
	// member row, adds userID to confirmed members unless already present,
	// and rewrites every pending split for email to reference userID.
	// Returns the number of records whose splits were rewritten.
	ConvertPendingMember(ctx context.Context, groupID, email, userID string) (int, error)

	// Ledger records

	CreateRecord(ctx context.Context, rec *models.Record) error
	GetRecord(ctx context.Context, recordID string) (*models.Record, error)
	UpdateRecord(ctx context.Context, rec *models.Record) error
	DeleteRecord(ctx context.Context, recordID string) error
	// ListRecordsByGroup returns the group's records, most recent date first.
	// When kind is non-empty only records of that kind are returned.
	ListRecordsByGroup(ctx context.Context, groupID, kind string) ([]models.Record, error)
	// ListRecordsForUser returns records where the user is payer or split
	// participant, across groups, most recent first, bounded by limit.
	ListRecordsForUser(ctx context.Context, userID string, limit int) ([]models.Record, error)
	// ListPaymentsBetween returns PAYMENT records between the two users in
	// either direction, optionally scoped to one group, most recent first.
	ListPaymentsBetween(ctx context.Context, userA, userB, groupID string) ([]models.Record, error)

	// Notifications

	CreateNotifications(ctx context.Context, notifs []*models.Notification) error
	ListNotifications(ctx context.Context, recipient string, limit int) ([]*models.Notification, error)
	CountUnreadNotifications(ctx context.Context, recipient string) (int, error)
	MarkNotificationRead(ctx context.Context, id, recipient string) error
	MarkAllNotificationsRead(ctx context.Context, recipient string) error
	DeleteNotification(ctx context.Context, id, recipient string) error
	// DeleteAllNotifications clears a recipient's feed and returns how many
	// notifications were removed.
	DeleteAllNotifications(ctx context.Context, recipient string) (int, error)
	// DeleteReadNotifications removes only the recipient's read notifications
	// and returns how many were removed.
	DeleteReadNotifications(ctx context.Context, recipient string) (int, error)

	// Categories

	CreateCategory(ctx context.Context, cat *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	// ListCategories returns global categories plus the user's own.
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, cat *models.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
