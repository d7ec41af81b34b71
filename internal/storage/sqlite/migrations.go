package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitbook/backend/internal/models"
)

// schema contains the SQL statements to set up the database tables.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    avatar TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    currency TEXT NOT NULL DEFAULT 'USD',
    icon TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    owner_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (group_id, user_id),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS group_pending_members (
    group_id TEXT NOT NULL,
    email TEXT NOT NULL,
    name TEXT NOT NULL,
    invited_by TEXT NOT NULL,
    invited_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, email),
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS pending_identities (
    email TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    invited_by TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pending_identity_groups (
    email TEXT NOT NULL,
    group_id TEXT NOT NULL,
    PRIMARY KEY (email, group_id),
    FOREIGN KEY (email) REFERENCES pending_identities(email) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    description TEXT NOT NULL,
    amount REAL NOT NULL,
    kind TEXT NOT NULL,
    date INTEGER NOT NULL,
    payer_id TEXT NOT NULL,
    receiver_id TEXT NOT NULL DEFAULT '',
    category_id TEXT NOT NULL DEFAULT '',
    receipt_image TEXT NOT NULL DEFAULT '',
    pay_method TEXT NOT NULL DEFAULT '',
    pay_transaction_id TEXT NOT NULL DEFAULT '',
    pay_remarks TEXT NOT NULL DEFAULT '',
    pay_recorded_by TEXT NOT NULL DEFAULT '',
    verified INTEGER NOT NULL DEFAULT 0,
    verified_by TEXT NOT NULL DEFAULT '',
    verified_at INTEGER NOT NULL DEFAULT 0,
    verify_status TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES groups(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS splits (
    record_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    user_id TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    amount REAL NOT NULL,
    pending INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (record_id, position),
    FOREIGN KEY (record_id) REFERENCES records(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    recipient TEXT NOT NULL,
    sender TEXT NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    related_id TEXT NOT NULL DEFAULT '',
    related_kind TEXT NOT NULL DEFAULT '',
    read INTEGER NOT NULL DEFAULT 0,
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT 'expense',
    created_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_group_members_user ON group_members(user_id);
CREATE INDEX IF NOT EXISTS idx_pending_members_email ON group_pending_members(email);
CREATE INDEX IF NOT EXISTS idx_records_group_date ON records(group_id, date DESC);
CREATE INDEX IF NOT EXISTS idx_records_payer ON records(payer_id);
CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind);
CREATE INDEX IF NOT EXISTS idx_splits_record ON splits(record_id);
CREATE INDEX IF NOT EXISTS idx_splits_user ON splits(user_id);
CREATE INDEX IF NOT EXISTS idx_splits_email ON splits(email);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_categories_owner ON categories(type, created_by);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// defaultCategories are the global expense categories every user sees.
var defaultCategories = []struct {
	name string
	icon string
}{
	{"Food & Dining", "fas fa-utensils"},
	{"Transportation", "fas fa-car"},
	{"Groceries", "fas fa-shopping-cart"},
	{"Entertainment", "fas fa-film"},
	{"Utilities", "fas fa-bolt"},
	{"Rent", "fas fa-home"},
	{"Healthcare", "fas fa-medkit"},
	{"Shopping", "fas fa-shopping-bag"},
	{"Travel", "fas fa-plane"},
	{"Education", "fas fa-book"},
	{"Sports", "fas fa-football-ball"},
	{"Personal Care", "fas fa-spa"},
	{"Gifts", "fas fa-gift"},
	{"Insurance", "fas fa-shield-alt"},
	{"Other", "fas fa-ellipsis-h"},
}

// seedCategories inserts the default global categories once. Global rows have
// an empty created_by; if any exist the database is already seeded.
func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM categories WHERE created_by = ''").Scan(&count); err != nil {
		return fmt.Errorf("failed to count global categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, c := range defaultCategories {
		_, err := tx.Exec(
			"INSERT INTO categories (id, name, icon, type, created_by, created_at) VALUES (?, ?, ?, ?, '', ?)",
			uuid.New().String(), c.name, c.icon, models.CategoryExpense, now,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.name, err)
		}
	}
	return tx.Commit()
}
