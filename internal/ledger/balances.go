package ledger

import (
	"sort"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/money"
)

// BalanceEntry is one participant's net position in a group.
// Positive means the participant is owed money; negative means they owe.
type BalanceEntry struct {
	// UserID is set for registered participants.
	UserID string

	// Email and Name are set for pending participants.
	Email string
	Name  string

	// Balance is the net amount, rounded to 2 decimal places.
	Balance float64

	// Pending is true for participants not yet registered.
	Pending bool
}

// ComputeBalances derives net balances for every confirmed member and every
// pending email of the group from its EXPENSE records. PAYMENT records are
// deliberately excluded: settlements are surfaced through the payment
// history, not netted into the balance sheet.
//
// For each split of each expense: a split against someone other than the
// payer debits that participant and credits the payer by the same amount; a
// payer's own split contributes nothing. Accumulation is commutative, so the
// result does not depend on record order.
func ComputeBalances(group *models.Group, records []models.Record) []BalanceEntry {
	balances := make(map[string]float64, len(group.Members))
	for _, m := range group.Members {
		balances[m] = 0
	}

	type pendingBal struct {
		name    string
		balance float64
	}
	pending := make(map[string]*pendingBal, len(group.PendingMembers))
	for _, pm := range group.PendingMembers {
		pending[pm.Email] = &pendingBal{name: pm.Name}
	}

	for _, rec := range records {
		if rec.Kind != models.KindExpense {
			continue
		}
		for _, s := range rec.Splits {
			switch {
			case s.Pending && s.Email != "":
				pb, ok := pending[s.Email]
				if !ok {
					pb = &pendingBal{name: s.Name}
					pending[s.Email] = pb
				}
				pb.balance -= s.Amount
				balances[rec.PayerID] += s.Amount
			case s.UserID != "" && s.UserID != rec.PayerID:
				balances[s.UserID] -= s.Amount
				balances[rec.PayerID] += s.Amount
			}
		}
	}

	entries := make([]BalanceEntry, 0, len(balances)+len(pending))

	// Confirmed members first, in join order, then any payers no longer in
	// the member list (kept for audit), then pending emails.
	seen := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		entries = append(entries, BalanceEntry{UserID: m, Balance: money.Round2(balances[m])})
		seen[m] = true
	}
	var extra []string
	for id := range balances {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		entries = append(entries, BalanceEntry{UserID: id, Balance: money.Round2(balances[id])})
	}

	emails := make([]string, 0, len(pending))
	for email := range pending {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	for _, email := range emails {
		pb := pending[email]
		entries = append(entries, BalanceEntry{
			Email:   email,
			Name:    pb.name,
			Balance: money.Round2(pb.balance),
			Pending: true,
		})
	}

	return entries
}
