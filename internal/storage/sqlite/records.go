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

const recordColumns = `id, group_id, description, amount, kind, date, payer_id, receiver_id,
	category_id, receipt_image, pay_method, pay_transaction_id, pay_remarks, pay_recorded_by,
	verified, verified_by, verified_at, verify_status, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*models.Record, error) {
	rec := &models.Record{}
	var (
		payMethod, payTxID, payRemarks, payRecordedBy string
		verified                                      int
		verifiedBy, verifyStatus                      string
		verifiedAt                                    int64
	)
	err := row.Scan(
		&rec.ID, &rec.GroupID, &rec.Description, &rec.Amount, &rec.Kind, &rec.Date,
		&rec.PayerID, &rec.ReceiverID, &rec.CategoryID, &rec.ReceiptImage,
		&payMethod, &payTxID, &payRemarks, &payRecordedBy,
		&verified, &verifiedBy, &verifiedAt, &verifyStatus,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.Kind == models.KindPayment {
		rec.Payment = &models.PaymentDetails{
			Method:        payMethod,
			TransactionID: payTxID,
			Remarks:       payRemarks,
			RecordedBy:    payRecordedBy,
		}
		rec.Verification = &models.Verification{
			Verified:   verified == 1,
			VerifiedBy: verifiedBy,
			VerifiedAt: verifiedAt,
			Status:     verifyStatus,
		}
	}
	return rec, nil
}

func recordArgs(rec *models.Record) []any {
	var (
		payMethod, payTxID, payRemarks, payRecordedBy string
		verified                                      int
		verifiedBy, verifyStatus                      string
		verifiedAt                                    int64
	)
	if rec.Payment != nil {
		payMethod = rec.Payment.Method
		payTxID = rec.Payment.TransactionID
		payRemarks = rec.Payment.Remarks
		payRecordedBy = rec.Payment.RecordedBy
	}
	if rec.Verification != nil {
		if rec.Verification.Verified {
			verified = 1
		}
		verifiedBy = rec.Verification.VerifiedBy
		verifiedAt = rec.Verification.VerifiedAt
		verifyStatus = rec.Verification.Status
	}
	return []any{
		rec.ID, rec.GroupID, rec.Description, rec.Amount, rec.Kind, rec.Date,
		rec.PayerID, rec.ReceiverID, rec.CategoryID, rec.ReceiptImage,
		payMethod, payTxID, payRemarks, payRecordedBy,
		verified, verifiedBy, verifiedAt, verifyStatus,
		rec.CreatedAt, rec.UpdatedAt,
	}
}

func insertSplits(ctx context.Context, tx *sql.Tx, recordID string, splits []models.Split) error {
	for i, sp := range splits {
		pending := 0
		if sp.Pending {
			pending = 1
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO splits (record_id, position, user_id, email, name, amount, pending) VALUES (?, ?, ?, ?, ?, ?, ?)",
			recordID, i, sp.UserID, sp.Email, sp.Name, sp.Amount, pending,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// CreateRecord persists a new ledger record with its splits.
func (s *SQLiteStore) CreateRecord(ctx context.Context, rec *models.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Date == 0 {
		rec.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		recordArgs(rec)...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	if err := insertSplits(ctx, tx, rec.ID, rec.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by ID, including its splits.
func (s *SQLiteStore) GetRecord(ctx context.Context, recordID string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ?", recordID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := s.loadSplits(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, rec *models.Record) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, email, name, amount, pending FROM splits WHERE record_id = ? ORDER BY position",
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sp models.Split
		var pending int
		if err := rows.Scan(&sp.UserID, &sp.Email, &sp.Name, &sp.Amount, &pending); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		sp.Pending = pending == 1
		rec.Splits = append(rec.Splits, sp)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

// UpdateRecord rewrites a record and replaces its splits.
func (s *SQLiteStore) UpdateRecord(ctx context.Context, rec *models.Record) error {
	rec.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := recordArgs(rec)
	res, err := tx.ExecContext(ctx,
		`UPDATE records SET group_id = ?, description = ?, amount = ?, kind = ?, date = ?,
		 payer_id = ?, receiver_id = ?, category_id = ?, receipt_image = ?,
		 pay_method = ?, pay_transaction_id = ?, pay_remarks = ?, pay_recorded_by = ?,
		 verified = ?, verified_by = ?, verified_at = ?, verify_status = ?,
		 created_at = ?, updated_at = ? WHERE id = ?`,
		append(args[1:], rec.ID)...,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM splits WHERE record_id = ?", rec.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if err := insertSplits(ctx, tx, rec.ID, rec.Splits); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteRecord removes a record; its splits cascade.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", recordID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	for i := range records {
		if err := s.loadSplits(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// ListRecordsByGroup returns a group's records, most recent date first.
// kind filters to one record kind when non-empty.
func (s *SQLiteStore) ListRecordsByGroup(ctx context.Context, groupID, kind string) ([]models.Record, error) {
	if kind != "" {
		return s.queryRecords(ctx,
			"SELECT "+recordColumns+" FROM records WHERE group_id = ? AND kind = ? ORDER BY date DESC, created_at DESC",
			groupID, kind)
	}
	return s.queryRecords(ctx,
		"SELECT "+recordColumns+" FROM records WHERE group_id = ? ORDER BY date DESC, created_at DESC",
		groupID)
}

// ListRecordsForUser returns records where the user is payer or a split
// participant, across all groups, most recent first.
func (s *SQLiteStore) ListRecordsForUser(ctx context.Context, userID string, limit int) ([]models.Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE payer_id = ? OR id IN (SELECT record_id FROM splits WHERE user_id = ?)
		 ORDER BY date DESC, created_at DESC LIMIT ?`,
		userID, userID, limit)
}

// ListPaymentsBetween returns PAYMENT records between two users in either
// direction, optionally scoped to one group, most recent first.
func (s *SQLiteStore) ListPaymentsBetween(ctx context.Context, userA, userB, groupID string) ([]models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records
		 WHERE kind = ? AND ((payer_id = ? AND receiver_id = ?) OR (payer_id = ? AND receiver_id = ?))`
	args := []any{models.KindPayment, userA, userB, userB, userA}
	if groupID != "" {
		query += " AND group_id = ?"
		args = append(args, groupID)
	}
	query += " ORDER BY date DESC, created_at DESC"
	return s.queryRecords(ctx, query, args...)
}
