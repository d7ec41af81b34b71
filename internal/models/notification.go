package models

// Notification types.
const (
	NotifyExpenseAdded    = "EXPENSE_ADDED"
	NotifyPaymentReceived = "PAYMENT_RECEIVED"
	NotifyPaymentVerified = "PAYMENT_VERIFIED"
	NotifyPaymentDisputed = "PAYMENT_DISPUTED"
	NotifyReminder        = "REMINDER"
	NotifyGroupInvite     = "GROUP_INVITE"
)

// Related entity kinds for notifications.
const (
	RelatedExpense = "Expense"
	RelatedPayment = "Payment"
	RelatedGroup   = "Group"
)

// Notification is a message delivered to a user about ledger activity.
type Notification struct {
	// ID is the unique identifier (UUID format).
	ID string

	// Recipient is the user receiving the notification.
	Recipient string

	// Sender is the user whose action triggered it.
	Sender string

	// Type is one of the notification type constants.
	Type string

	// Message is the rendered notification text.
	Message string

	// RelatedID optionally references the triggering record or group.
	RelatedID string

	// RelatedKind names what RelatedID refers to.
	RelatedKind string

	// Read is true once the recipient has seen it.
	Read bool

	// Metadata carries extra display data (amounts, group names).
	Metadata map[string]any

	// CreatedAt is the Unix timestamp when the notification was emitted.
	CreatedAt int64
}
