package models

import "strings"

// Record kinds.
const (
	KindExpense = "EXPENSE"
	KindPayment = "PAYMENT" // settling up
)

// Payment verification states.
const (
	VerifyPending  = "PENDING"
	VerifyAccepted = "ACCEPTED"
	VerifyDisputed = "DISPUTED"
)

// Payment methods.
const (
	MethodCash         = "CASH"
	MethodBankTransfer = "BANK_TRANSFER"
	MethodUPI          = "UPI"
	MethodCreditCard   = "CREDIT_CARD"
	MethodDebitCard    = "DEBIT_CARD"
	MethodPaypal       = "PAYPAL"
	MethodVenmo        = "VENMO"
	MethodOther        = "OTHER"
)

// Record is a single ledger entry in a group: either a shared expense or a
// settle-up payment. Payments carry a single split crediting the receiver,
// plus payment details and a verification state.
type Record struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// GroupID is the group this record belongs to.
	GroupID string

	// Description is the human-readable label for the record.
	Description string

	// Amount is the total monetary amount, non-negative.
	Amount float64

	// Kind is KindExpense or KindPayment.
	Kind string

	// Date is the Unix timestamp the expense/payment happened.
	Date int64

	// PayerID is the user who paid.
	PayerID string

	// ReceiverID is the user who received a payment. Set iff Kind is PAYMENT.
	ReceiverID string

	// CategoryID optionally references a Category. Empty for payments.
	CategoryID string

	// ReceiptImage is an optional URL of a receipt image.
	ReceiptImage string

	// Splits is the breakdown of the amount across participants.
	// Invariant: the split amounts sum to Amount within 0.01.
	Splits []Split

	// Payment holds payment details, set iff Kind is PAYMENT.
	Payment *PaymentDetails

	// Verification holds the settlement state, set iff Kind is PAYMENT.
	Verification *Verification

	// CreatedAt is the Unix timestamp when the record was appended.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

// Split is one participant's share of a Record. Exactly one of UserID or
// Email identifies the participant: a registered user, or a pending member
// keyed by lowercased email. Use NewUserSplit / NewPendingSplit so the
// variant is always well-formed.
type Split struct {
	// UserID references a registered user. Empty when Pending.
	UserID string

	// Email identifies a pending participant, lowercase. Empty otherwise.
	Email string

	// Name is the pending participant's display name. Empty otherwise.
	Name string

	// Amount is this participant's share, non-negative.
	Amount float64

	// Pending is true when the split targets an unregistered email.
	Pending bool
}

// NewUserSplit builds a split for a registered user.
func NewUserSplit(userID string, amount float64) Split {
	return Split{UserID: userID, Amount: amount}
}

// NewPendingSplit builds a split for an invited, unregistered participant.
func NewPendingSplit(email, name string, amount float64) Split {
	if name == "" {
		name = "Unknown"
	}
	return Split{Email: strings.ToLower(email), Name: name, Amount: amount, Pending: true}
}

// PaymentDetails describes how a payment was made and who recorded it.
type PaymentDetails struct {
	// Method is one of the payment method constants.
	Method string

	// TransactionID is an optional external reference.
	TransactionID string

	// Remarks is free text, at most 500 characters.
	Remarks string

	// RecordedBy is the user who recorded the payment. May differ from the
	// payer when a third party enters it.
	RecordedBy string
}

// Verification is the settlement state of a payment record.
// Status moves from PENDING to ACCEPTED or DISPUTED; both are terminal.
type Verification struct {
	// Verified is true once the receiver accepted the payment.
	Verified bool

	// VerifiedBy is the user who verified, always the receiver.
	VerifiedBy string

	// VerifiedAt is the Unix timestamp of verification.
	VerifiedAt int64

	// Status is VerifyPending, VerifyAccepted or VerifyDisputed.
	Status string
}
