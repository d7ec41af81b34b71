package ledger

import (
	"errors"
	"testing"

	"github.com/splitbook/backend/internal/models"
)

func TestValidateSplits(t *testing.T) {
	tests := []struct {
		name    string
		splits  []models.Split
		amount  float64
		wantErr error
	}{
		{
			name: "valid even split",
			splits: []models.Split{
				models.NewUserSplit("alice", 15),
				models.NewUserSplit("bob", 15),
			},
			amount: 30,
		},
		{
			name: "valid with pending participant",
			splits: []models.Split{
				models.NewUserSplit("alice", 10),
				models.NewPendingSplit("carol@example.com", "Carol", 20),
			},
			amount: 30,
		},
		{
			name: "valid within tolerance",
			splits: []models.Split{
				models.NewUserSplit("alice", 10),
				models.NewUserSplit("bob", 19.995),
			},
			amount: 30,
		},
		{
			name:    "empty splits",
			splits:  nil,
			amount:  30,
			wantErr: ErrSplitSum,
		},
		{
			name: "sum off by more than tolerance",
			splits: []models.Split{
				models.NewUserSplit("alice", 10),
				models.NewUserSplit("bob", 10),
			},
			amount:  30,
			wantErr: ErrSplitSum,
		},
		{
			name: "split with neither user nor email",
			splits: []models.Split{
				{Amount: 30},
			},
			amount:  30,
			wantErr: ErrInvalidSplit,
		},
		{
			name: "split with both user and email",
			splits: []models.Split{
				{UserID: "alice", Email: "alice@example.com", Amount: 30},
			},
			amount:  30,
			wantErr: ErrInvalidSplit,
		},
		{
			name: "email split not flagged pending",
			splits: []models.Split{
				{Email: "carol@example.com", Amount: 30},
			},
			amount:  30,
			wantErr: ErrInvalidSplit,
		},
		{
			name: "negative split amount",
			splits: []models.Split{
				models.NewUserSplit("alice", -5),
				models.NewUserSplit("bob", 35),
			},
			amount:  30,
			wantErr: ErrNegativeAmount,
		},
		{
			name: "negative total",
			splits: []models.Split{
				models.NewUserSplit("alice", 10),
			},
			amount:  -10,
			wantErr: ErrNegativeAmount,
		},
		{
			name: "zero amount with zero splits",
			splits: []models.Split{
				models.NewUserSplit("alice", 0),
			},
			amount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplits(tt.splits, tt.amount)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSplits() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func pendingPayment(payer, receiver string, amount float64) *models.Record {
	return &models.Record{
		Kind:         models.KindPayment,
		PayerID:      payer,
		ReceiverID:   receiver,
		Amount:       amount,
		Verification: &models.Verification{Status: models.VerifyPending},
	}
}

func TestVerify(t *testing.T) {
	t.Run("receiver accepts", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "bob", models.VerifyAccepted, 1000); err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		v := rec.Verification
		if !v.Verified || v.Status != models.VerifyAccepted || v.VerifiedBy != "bob" || v.VerifiedAt != 1000 {
			t.Errorf("unexpected verification state: %+v", v)
		}
	})

	t.Run("receiver disputes", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "bob", models.VerifyDisputed, 1000); err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		v := rec.Verification
		if v.Verified || v.Status != models.VerifyDisputed {
			t.Errorf("unexpected verification state: %+v", v)
		}
	})

	t.Run("payer cannot verify", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "alice", models.VerifyAccepted, 1000); !errors.Is(err, ErrNotReceiver) {
			t.Errorf("Verify() error = %v, want ErrNotReceiver", err)
		}
	})

	t.Run("third party cannot verify", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "carol", models.VerifyAccepted, 1000); !errors.Is(err, ErrNotReceiver) {
			t.Errorf("Verify() error = %v, want ErrNotReceiver", err)
		}
	})

	t.Run("expense cannot be verified", func(t *testing.T) {
		rec := &models.Record{Kind: models.KindExpense, PayerID: "alice"}
		if err := Verify(rec, "bob", models.VerifyAccepted, 1000); !errors.Is(err, ErrWrongKind) {
			t.Errorf("Verify() error = %v, want ErrWrongKind", err)
		}
	})

	t.Run("invalid decision", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "bob", "MAYBE", 1000); !errors.Is(err, ErrBadDecision) {
			t.Errorf("Verify() error = %v, want ErrBadDecision", err)
		}
	})

	t.Run("accepted is terminal", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "bob", models.VerifyAccepted, 1000); err != nil {
			t.Fatalf("first Verify() error = %v", err)
		}
		if err := Verify(rec, "bob", models.VerifyDisputed, 2000); !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("second Verify() error = %v, want ErrAlreadyVerified", err)
		}
		if rec.Verification.Status != models.VerifyAccepted || rec.Verification.VerifiedAt != 1000 {
			t.Errorf("terminal state was mutated: %+v", rec.Verification)
		}
	})

	t.Run("disputed is terminal", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		if err := Verify(rec, "bob", models.VerifyDisputed, 1000); err != nil {
			t.Fatalf("first Verify() error = %v", err)
		}
		if err := Verify(rec, "bob", models.VerifyAccepted, 2000); !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("second Verify() error = %v, want ErrAlreadyVerified", err)
		}
	})

	t.Run("missing verification state is treated as pending", func(t *testing.T) {
		rec := pendingPayment("alice", "bob", 20)
		rec.Verification = nil
		if err := Verify(rec, "bob", models.VerifyAccepted, 1000); err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if rec.Verification == nil || rec.Verification.Status != models.VerifyAccepted {
			t.Errorf("unexpected verification state: %+v", rec.Verification)
		}
	})
}

func TestNetBetween(t *testing.T) {
	payments := []models.Record{
		{Kind: models.KindPayment, PayerID: "alice", ReceiverID: "bob", Amount: 30},
		{Kind: models.KindPayment, PayerID: "bob", ReceiverID: "alice", Amount: 10},
		{Kind: models.KindPayment, PayerID: "alice", ReceiverID: "carol", Amount: 99},
		{Kind: models.KindExpense, PayerID: "alice", Amount: 500},
	}

	if got := NetBetween("alice", "bob", payments); got != 20 {
		t.Errorf("NetBetween(alice, bob) = %v, want 20", got)
	}
	if got := NetBetween("bob", "alice", payments); got != -20 {
		t.Errorf("NetBetween(bob, alice) = %v, want -20", got)
	}
	if got := NetBetween("bob", "carol", payments); got != 0 {
		t.Errorf("NetBetween(bob, carol) = %v, want 0", got)
	}
}
