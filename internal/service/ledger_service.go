package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/splitbook/backend/internal/ledger"
	"github.com/splitbook/backend/internal/middleware"
	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/money"
	"github.com/splitbook/backend/internal/notify"
	"github.com/splitbook/backend/internal/storage"
)

// maxRemarksLen caps free-text payment remarks.
const maxRemarksLen = 500

// userRecordsLimit bounds the cross-group activity feed.
const userRecordsLimit = 50

// LedgerService appends, mutates and queries ledger records: shared expenses
// and settle-up payments.
type LedgerService struct {
	storage storage.Store
	sink    notify.Sink
}

// NewLedgerService creates a ledger service.
func NewLedgerService(store storage.Store, sink notify.Sink) *LedgerService {
	return &LedgerService{storage: store, sink: sink}
}

// SplitInput is one requested share. Exactly one of UserID or Email must be
// set; an email targets a pending (unregistered) participant.
type SplitInput struct {
	UserID string
	Email  string
	Name   string
	Amount float64
}

func buildSplits(inputs []SplitInput) []models.Split {
	splits := make([]models.Split, len(inputs))
	for i, in := range inputs {
		if in.UserID != "" {
			splits[i] = models.NewUserSplit(in.UserID, in.Amount)
		} else {
			splits[i] = models.NewPendingSplit(in.Email, in.Name, in.Amount)
		}
	}
	return splits
}

// ExpenseInput carries the fields for a new shared expense. The
// authenticated user becomes the payer.
type ExpenseInput struct {
	GroupID      string
	Description  string
	Amount       float64
	Date         int64
	CategoryID   string
	ReceiptImage string
	Splits       []SplitInput
}

// CreateExpense appends an EXPENSE record. The payer must be a confirmed
// member, every split must reference a user or an email, and the split
// amounts must sum to the total within the money tolerance.
func (s *LedgerService) CreateExpense(ctx context.Context, in ExpenseInput) (*models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if in.GroupID == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: groupId and description", ErrMissingFields)
	}

	group, err := s.storage.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}

	splits := buildSplits(in.Splits)
	if err := ledger.ValidateSplits(splits, in.Amount); err != nil {
		return nil, err
	}

	date := in.Date
	if date == 0 {
		date = time.Now().Unix()
	}
	rec := &models.Record{
		GroupID:      in.GroupID,
		Description:  strings.TrimSpace(in.Description),
		Amount:       in.Amount,
		Kind:         models.KindExpense,
		Date:         date,
		PayerID:      actorID,
		CategoryID:   in.CategoryID,
		ReceiptImage: in.ReceiptImage,
		Splits:       splits,
	}
	if err := s.storage.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.notifyExpenseAdded(ctx, group, rec, actorID)
	slog.Info("Expense created", "record_id", rec.ID, "group_id", rec.GroupID, "amount", rec.Amount, "splits", len(splits))
	return rec, nil
}

// notifyExpenseAdded tells every registered split participant except the
// payer. Pending participants have no account to notify.
func (s *LedgerService) notifyExpenseAdded(ctx context.Context, group *models.Group, rec *models.Record, actorID string) {
	payer, err := s.storage.GetUserByID(ctx, actorID)
	payerName := "Someone"
	if err == nil && payer != nil {
		payerName = payer.Name
	}

	var events []notify.Event
	for _, sp := range rec.Splits {
		if sp.Pending || sp.UserID == actorID {
			continue
		}
		events = append(events, notify.Event{
			Recipient:   sp.UserID,
			Sender:      actorID,
			Type:        models.NotifyExpenseAdded,
			Message:     fmt.Sprintf("%s added %q in %s", payerName, rec.Description, group.Name),
			RelatedID:   rec.ID,
			RelatedKind: models.RelatedExpense,
			Metadata: map[string]any{
				"groupId": group.ID,
				"amount":  sp.Amount,
			},
		})
	}
	s.sink.Emit(ctx, events...)
}

// Get returns one record with participant identities expanded. The caller
// must be a member of the record's group.
func (s *LedgerService) Get(ctx context.Context, recordID string) (*RecordDetail, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	rec, err := s.storage.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	group, err := s.storage.GetGroup(ctx, rec.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}
	return s.expand(ctx, rec, group)
}

// UserRef is a display-ready reference to a registered user.
type UserRef struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

// RecordDetail is a record plus the resolved identities it references.
type RecordDetail struct {
	Record    *models.Record
	GroupName string
	// Users maps every referenced user ID (payer, receiver, split users,
	// recorder, verifier) to its profile.
	Users map[string]*UserRef
	// Category is resolved when the record carries a category reference.
	Category *models.Category
}

func (s *LedgerService) expand(ctx context.Context, rec *models.Record, group *models.Group) (*RecordDetail, error) {
	ids := []string{rec.PayerID}
	if rec.ReceiverID != "" {
		ids = append(ids, rec.ReceiverID)
	}
	if rec.Payment != nil && rec.Payment.RecordedBy != "" {
		ids = append(ids, rec.Payment.RecordedBy)
	}
	if rec.Verification != nil && rec.Verification.VerifiedBy != "" {
		ids = append(ids, rec.Verification.VerifiedBy)
	}
	for _, sp := range rec.Splits {
		if sp.UserID != "" {
			ids = append(ids, sp.UserID)
		}
	}

	users, err := s.storage.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	refs := make(map[string]*UserRef, len(users))
	for id, u := range users {
		refs[id] = &UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
	}

	detail := &RecordDetail{Record: rec, GroupName: group.Name, Users: refs}
	if rec.CategoryID != "" {
		cat, err := s.storage.GetCategory(ctx, rec.CategoryID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		detail.Category = cat
	}
	return detail, nil
}

// UpdateExpenseInput carries optional record updates; nil fields are kept.
// Providing Splits replaces the breakdown and is re-validated against the
// (possibly updated) amount.
type UpdateExpenseInput struct {
	Description  *string
	Amount       *float64
	Date         *int64
	CategoryID   *string
	ReceiptImage *string
	Splits       []SplitInput
}

// UpdateExpense modifies a record. Only the payer may update.
func (s *LedgerService) UpdateExpense(ctx context.Context, recordID string, in UpdateExpenseInput) (*models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	rec, err := s.storage.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.PayerID != actorID {
		return nil, ErrForbidden
	}

	if in.Description != nil {
		rec.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		rec.Amount = *in.Amount
	}
	if in.Date != nil {
		rec.Date = *in.Date
	}
	if in.CategoryID != nil {
		rec.CategoryID = *in.CategoryID
	}
	if in.ReceiptImage != nil {
		rec.ReceiptImage = *in.ReceiptImage
	}
	if in.Splits != nil {
		rec.Splits = buildSplits(in.Splits)
	}
	if err := ledger.ValidateSplits(rec.Splits, rec.Amount); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}
	return rec, nil
}

// Delete removes a record. Only the payer may delete, payments included.
func (s *LedgerService) Delete(ctx context.Context, recordID string) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}

	rec, err := s.storage.GetRecord(ctx, recordID)
	if err != nil {
		return err
	}
	if rec.PayerID != actorID {
		return ErrForbidden
	}

	if err := s.storage.DeleteRecord(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	slog.Info("Record deleted", "record_id", recordID, "kind", rec.Kind, "by", actorID)
	return nil
}

// ListByGroup returns a group's records, newest date first. kind may be
// empty (all), EXPENSE or PAYMENT. The caller must be a member.
func (s *LedgerService) ListByGroup(ctx context.Context, groupID, kind string) ([]models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	group, err := s.storage.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}
	return s.storage.ListRecordsByGroup(ctx, groupID, kind)
}

// ListForUser returns the caller's recent activity across all groups.
func (s *LedgerService) ListForUser(ctx context.Context) ([]models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	return s.storage.ListRecordsForUser(ctx, actorID, userRecordsLimit)
}

// PaymentInput carries the fields for a settle-up payment. The authenticated
// user records the payment and may differ from the payer.
type PaymentInput struct {
	GroupID       string
	PayerID       string
	ReceiverID    string
	Amount        float64
	Method        string
	TransactionID string
	Remarks       string
	Date          int64
	ReceiptImage  string
}

// SettleUp appends a PAYMENT record in PENDING verification state. Payer and
// receiver must be distinct confirmed members, and the recorder must be a
// member too.
func (s *LedgerService) SettleUp(ctx context.Context, in PaymentInput) (*models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if in.GroupID == "" || in.PayerID == "" || in.ReceiverID == "" {
		return nil, fmt.Errorf("%w: groupId, payerId and receiverId", ErrMissingFields)
	}
	if in.PayerID == in.ReceiverID {
		return nil, ErrSameParty
	}
	if in.Amount < 0 {
		return nil, ledger.ErrNegativeAmount
	}
	if len(in.Remarks) > maxRemarksLen {
		return nil, ErrRemarksTooLong
	}

	group, err := s.storage.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}
	if !group.HasMember(in.PayerID) || !group.HasMember(in.ReceiverID) {
		return nil, ErrNotMember
	}

	users, err := s.storage.GetUsersByIDs(ctx, []string{in.PayerID, in.ReceiverID})
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	payerName, receiverName := "Someone", "someone"
	if u := users[in.PayerID]; u != nil {
		payerName = u.Name
	}
	if u := users[in.ReceiverID]; u != nil {
		receiverName = u.Name
	}

	method := in.Method
	if method == "" {
		method = models.MethodOther
	}
	date := in.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	rec := &models.Record{
		GroupID:      in.GroupID,
		Description:  fmt.Sprintf("Payment from %s to %s", payerName, receiverName),
		Amount:       money.Round2(in.Amount),
		Kind:         models.KindPayment,
		Date:         date,
		PayerID:      in.PayerID,
		ReceiverID:   in.ReceiverID,
		ReceiptImage: in.ReceiptImage,
		Splits:       []models.Split{models.NewUserSplit(in.ReceiverID, money.Round2(in.Amount))},
		Payment: &models.PaymentDetails{
			Method:        method,
			TransactionID: in.TransactionID,
			Remarks:       in.Remarks,
			RecordedBy:    actorID,
		},
		Verification: &models.Verification{Status: models.VerifyPending},
	}
	if err := s.storage.CreateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	events := []notify.Event{{
		Recipient:   in.ReceiverID,
		Sender:      in.PayerID,
		Type:        models.NotifyPaymentReceived,
		Message:     fmt.Sprintf("%s recorded a payment of %.2f to you", payerName, rec.Amount),
		RelatedID:   rec.ID,
		RelatedKind: models.RelatedPayment,
		Metadata:    map[string]any{"groupId": group.ID, "amount": rec.Amount},
	}}
	// When a third party records the payment, the payer gets told as well.
	if actorID != in.PayerID {
		events = append(events, notify.Event{
			Recipient:   in.PayerID,
			Sender:      actorID,
			Type:        models.NotifyPaymentReceived,
			Message:     fmt.Sprintf("A payment of %.2f from you to %s was recorded", rec.Amount, receiverName),
			RelatedID:   rec.ID,
			RelatedKind: models.RelatedPayment,
			Metadata:    map[string]any{"groupId": group.ID, "amount": rec.Amount},
		})
	}
	s.sink.Emit(ctx, events...)

	slog.Info("Payment recorded", "record_id", rec.ID, "group_id", rec.GroupID,
		"payer", in.PayerID, "receiver", in.ReceiverID, "amount", rec.Amount, "recorded_by", actorID)
	return rec, nil
}

// VerifyPayment applies the receiver's ACCEPTED or DISPUTED decision to a
// pending payment and notifies the payer.
func (s *LedgerService) VerifyPayment(ctx context.Context, recordID, decision string) (*models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	rec, err := s.storage.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := ledger.Verify(rec, actorID, decision, time.Now().Unix()); err != nil {
		return nil, err
	}
	if err := s.storage.UpdateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	receiver, err := s.storage.GetUserByID(ctx, actorID)
	receiverName := "The receiver"
	if err == nil && receiver != nil {
		receiverName = receiver.Name
	}
	notifType := models.NotifyPaymentVerified
	message := fmt.Sprintf("%s accepted your payment of %.2f", receiverName, rec.Amount)
	if decision == models.VerifyDisputed {
		notifType = models.NotifyPaymentDisputed
		message = fmt.Sprintf("%s disputed your payment of %.2f", receiverName, rec.Amount)
	}
	s.sink.Emit(ctx, notify.Event{
		Recipient:   rec.PayerID,
		Sender:      actorID,
		Type:        notifType,
		Message:     message,
		RelatedID:   rec.ID,
		RelatedKind: models.RelatedPayment,
		Metadata:    map[string]any{"groupId": rec.GroupID, "amount": rec.Amount, "status": decision},
	})

	slog.Info("Payment verified", "record_id", rec.ID, "decision", decision, "by", actorID)
	return rec, nil
}

// UpdateRemarks changes the free-text remarks on a payment. The payer, the
// receiver or the user who recorded the payment may update them.
func (s *LedgerService) UpdateRemarks(ctx context.Context, recordID, remarks string) (*models.Record, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if len(remarks) > maxRemarksLen {
		return nil, ErrRemarksTooLong
	}

	rec, err := s.storage.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Kind != models.KindPayment || rec.Payment == nil {
		return nil, ledger.ErrWrongKind
	}
	if actorID != rec.PayerID && actorID != rec.ReceiverID && actorID != rec.Payment.RecordedBy {
		return nil, ErrForbidden
	}

	rec.Payment.Remarks = remarks
	if err := s.storage.UpdateRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update remarks: %w", err)
	}
	return rec, nil
}

// PaymentsSummary is the payment history between the caller and another
// user, plus the signed net amount.
type PaymentsSummary struct {
	Payments []models.Record
	// Net is positive when the caller has net-paid more than the other user.
	Net float64
	// TotalPayments is the number of payments in either direction.
	TotalPayments int
}

// PaymentsBetween returns the payment history between the caller and
// otherUserID, optionally scoped to one group.
func (s *LedgerService) PaymentsBetween(ctx context.Context, otherUserID, groupID string) (*PaymentsSummary, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if otherUserID == "" {
		return nil, fmt.Errorf("%w: userId", ErrMissingFields)
	}
	if otherUserID == actorID {
		return nil, ErrSameParty
	}

	payments, err := s.storage.ListPaymentsBetween(ctx, actorID, otherUserID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &PaymentsSummary{
		Payments:      payments,
		Net:           ledger.NetBetween(actorID, otherUserID, payments),
		TotalPayments: len(payments),
	}, nil
}
