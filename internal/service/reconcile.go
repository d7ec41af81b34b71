package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

// Reconciler converts a pending identity into a registered member when an
// account with that email is created: for every group the email was invited
// into, the pending member row becomes a confirmed membership and all pending
// splits for the email are rewritten to the new user ID.
type Reconciler struct {
	storage storage.Store
}

// NewReconciler creates a reconciler.
func NewReconciler(store storage.Store) *Reconciler {
	return &Reconciler{storage: store}
}

// OnRegistered reconciles a newly registered user against their pending
// identity, if any. Each group converts independently and atomically; a
// failure in one group does not roll back the others. The identity is marked
// registered even when some groups failed, so a retry never double-applies.
// Returns the number of groups successfully converted.
func (r *Reconciler) OnRegistered(ctx context.Context, user *models.User) (int, error) {
	pi, err := r.storage.GetPendingIdentity(ctx, user.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to look up pending identity: %w", err)
	}
	if pi == nil || pi.Status == models.PendingStatusRegistered {
		return 0, nil
	}

	converted := 0
	for _, groupID := range pi.Groups {
		if _, err := r.storage.ConvertPendingMember(ctx, groupID, user.Email, user.ID); err != nil {
			slog.Error("Failed to convert pending member",
				"group_id", groupID, "email", user.Email, "error", err)
			continue
		}
		converted++
	}

	if err := r.storage.MarkPendingIdentityRegistered(ctx, user.Email); err != nil {
		slog.Error("Failed to mark pending identity registered",
			"email", user.Email, "error", err)
	}

	slog.Info("Pending identity reconciled",
		"email", user.Email, "user_id", user.ID,
		"groups", len(pi.Groups), "converted", converted)
	return converted, nil
}
