// Package ledger implements the invariants of the group expense ledger: the
// split-sum check on appended records, the balance engine, the net-payment
// summary between two users, and the payment verification state machine.
//
// Everything here is pure computation over models; persistence and
// notifications live in the service layer.
package ledger

import (
	"errors"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/money"
)

var (
	// ErrInvalidSplit means a split identifies neither a registered user nor
	// a pending email, or identifies both at once.
	ErrInvalidSplit = errors.New("split must reference either a user or an email, not both")

	// ErrNegativeAmount means a record or split amount is below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrSplitSum means the splits do not sum to the record amount.
	ErrSplitSum = errors.New("splits must sum up to the total amount")

	// ErrWrongKind means a payment-only operation hit a non-payment record.
	ErrWrongKind = errors.New("not a payment record")

	// ErrNotReceiver means someone other than the payment receiver tried to
	// verify it.
	ErrNotReceiver = errors.New("only the payment receiver can verify this payment")

	// ErrAlreadyVerified means the payment already reached a terminal
	// verification state.
	ErrAlreadyVerified = errors.New("payment verification already settled")

	// ErrBadDecision means the verification decision is not ACCEPTED or
	// DISPUTED.
	ErrBadDecision = errors.New("verification decision must be ACCEPTED or DISPUTED")
)

// ValidateSplits checks the split invariants for a record of the given
// amount: every split carries exactly one participant reference, no amount is
// negative, and the split amounts sum to amount within money.Tolerance.
func ValidateSplits(splits []models.Split, amount float64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if len(splits) == 0 {
		return ErrSplitSum
	}

	sum := 0.0
	for _, s := range splits {
		hasUser := s.UserID != ""
		hasEmail := s.Email != ""
		if hasUser == hasEmail {
			return ErrInvalidSplit
		}
		if s.Pending != hasEmail {
			return ErrInvalidSplit
		}
		if s.Amount < 0 {
			return ErrNegativeAmount
		}
		sum += s.Amount
	}

	if !money.SumWithin(sum, amount) {
		return ErrSplitSum
	}
	return nil
}

// Verify applies a verification decision to a payment record on behalf of
// actorID. Only the receiver may verify, only PAYMENT records can be
// verified, and ACCEPTED/DISPUTED are terminal: once set, further decisions
// are rejected.
func Verify(rec *models.Record, actorID, decision string, now int64) error {
	if rec.Kind != models.KindPayment {
		return ErrWrongKind
	}
	if decision != models.VerifyAccepted && decision != models.VerifyDisputed {
		return ErrBadDecision
	}
	if rec.ReceiverID != actorID {
		return ErrNotReceiver
	}
	if rec.Verification == nil {
		rec.Verification = &models.Verification{Status: models.VerifyPending}
	}
	if rec.Verification.Status != models.VerifyPending {
		return ErrAlreadyVerified
	}

	rec.Verification.Verified = decision == models.VerifyAccepted
	rec.Verification.VerifiedBy = actorID
	rec.Verification.VerifiedAt = now
	rec.Verification.Status = decision
	return nil
}

// NetBetween sums the given PAYMENT records into a signed net amount between
// two users: positive means userA has net-paid more than userB. Records of
// other kinds or between other parties are ignored.
func NetBetween(userA, userB string, payments []models.Record) float64 {
	net := 0.0
	for _, p := range payments {
		if p.Kind != models.KindPayment {
			continue
		}
		switch {
		case p.PayerID == userA && p.ReceiverID == userB:
			net += p.Amount
		case p.PayerID == userB && p.ReceiverID == userA:
			net -= p.Amount
		}
	}
	return money.Round2(net)
}
