package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestUserStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := createTestUser(t, store, "alice@example.com", "Alice")

	got, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)

	got, err = store.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown email should return nil without error")

	_, err = store.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	t.Run("search excludes caller", func(t *testing.T) {
		bob := createTestUser(t, store, "bob@example.com", "Bob")
		results, err := store.SearchUsersByEmail(ctx, "example.com", alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, bob.ID, results[0].ID)
	})

	t.Run("update profile", func(t *testing.T) {
		alice.Name = "Alice B."
		alice.Avatar = "https://img.example.com/a.png"
		require.NoError(t, store.UpdateUser(ctx, alice))

		got, err := store.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice B.", got.Name)
		assert.Equal(t, "https://img.example.com/a.png", got.Avatar)
	})
}

func TestGroupStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	group := &models.Group{Name: "Trip", Members: []string{alice.ID}, OwnerID: alice.ID}
	require.NoError(t, store.CreateGroup(ctx, group))
	require.NotEmpty(t, group.ID)

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD", got.Currency, "currency defaults to USD")
	assert.Equal(t, []string{alice.ID}, got.Members)

	require.NoError(t, store.AddGroupMember(ctx, group.ID, bob.ID))
	got, err = store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID, bob.ID}, got.Members, "members keep join order")

	groups, err := store.ListGroupsForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	require.NoError(t, store.RemoveGroupMember(ctx, group.ID, bob.ID))
	groups, err = store.ListGroupsForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	t.Run("delete cascades records", func(t *testing.T) {
		rec := &models.Record{
			GroupID: group.ID,
			Kind:    models.KindExpense,
			PayerID: alice.ID,
			Amount:  10,
			Splits:  []models.Split{models.NewUserSplit(alice.ID, 10)},
		}
		require.NoError(t, store.CreateRecord(ctx, rec))

		require.NoError(t, store.DeleteGroup(ctx, group.ID))
		_, err := store.GetGroup(ctx, group.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetRecord(ctx, rec.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestPendingIdentityStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	g1 := &models.Group{Name: "Trip", Members: []string{alice.ID}, OwnerID: alice.ID}
	require.NoError(t, store.CreateGroup(ctx, g1))
	g2 := &models.Group{Name: "Flat", Members: []string{alice.ID}, OwnerID: alice.ID}
	require.NoError(t, store.CreateGroup(ctx, g2))

	email := "carol@example.com"
	require.NoError(t, store.UpsertPendingIdentity(ctx, email, "Carol", alice.ID, g1.ID))
	require.NoError(t, store.UpsertPendingIdentity(ctx, email, "Carol X", alice.ID, g2.ID))
	// Same group twice must not duplicate.
	require.NoError(t, store.UpsertPendingIdentity(ctx, email, "Carol X", alice.ID, g2.ID))

	pi, err := store.GetPendingIdentity(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, pi)
	assert.Equal(t, models.PendingStatusPending, pi.Status)
	assert.Equal(t, "Carol X", pi.Name, "name follows the latest invite")
	assert.ElementsMatch(t, []string{g1.ID, g2.ID}, pi.Groups)

	pi, err = store.GetPendingIdentity(ctx, "never@example.com")
	require.NoError(t, err)
	assert.Nil(t, pi)

	require.NoError(t, store.MarkPendingIdentityRegistered(ctx, email))
	pi, err = store.GetPendingIdentity(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatusRegistered, pi.Status)
}

func TestConvertPendingMember(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	group := &models.Group{Name: "Trip", Members: []string{alice.ID}, OwnerID: alice.ID}
	require.NoError(t, store.CreateGroup(ctx, group))

	email := "carol@example.com"
	require.NoError(t, store.AddPendingMember(ctx, group.ID, models.PendingMember{
		Email: email, Name: "Carol", InvitedBy: alice.ID, InvitedAt: 1,
	}))

	rec := &models.Record{
		GroupID: group.ID,
		Kind:    models.KindExpense,
		PayerID: alice.ID,
		Amount:  30,
		Splits: []models.Split{
			models.NewUserSplit(alice.ID, 15),
			models.NewPendingSplit(email, "Carol", 15),
		},
	}
	require.NoError(t, store.CreateRecord(ctx, rec))

	// A split for a different pending email must stay untouched.
	other := &models.Record{
		GroupID: group.ID,
		Kind:    models.KindExpense,
		PayerID: alice.ID,
		Amount:  10,
		Splits:  []models.Split{models.NewPendingSplit("dan@example.com", "Dan", 10)},
	}
	require.NoError(t, store.CreateRecord(ctx, other))

	carol := createTestUser(t, store, email, "Carol")
	converted, err := store.ConvertPendingMember(ctx, group.ID, email, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, converted)

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, got.HasMember(carol.ID))
	assert.False(t, got.HasPending(email))

	gotRec, err := store.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, gotRec.Splits, 2)
	assert.Equal(t, carol.ID, gotRec.Splits[1].UserID)
	assert.Empty(t, gotRec.Splits[1].Email)
	assert.False(t, gotRec.Splits[1].Pending)
	assert.Equal(t, 15.0, gotRec.Splits[1].Amount)

	gotOther, err := store.GetRecord(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, gotOther.Splits[0].Pending, "unrelated pending split must remain pending")

	t.Run("idempotent", func(t *testing.T) {
		converted, err := store.ConvertPendingMember(ctx, group.ID, email, carol.ID)
		require.NoError(t, err)
		assert.Zero(t, converted)

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		count := 0
		for _, m := range got.Members {
			if m == carol.ID {
				count++
			}
		}
		assert.Equal(t, 1, count, "member must not be duplicated")
	})
}

func TestRecordStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	group := &models.Group{Name: "Trip", Members: []string{alice.ID, bob.ID}, OwnerID: alice.ID}
	require.NoError(t, store.CreateGroup(ctx, group))

	payment := &models.Record{
		GroupID:    group.ID,
		Kind:       models.KindPayment,
		PayerID:    bob.ID,
		ReceiverID: alice.ID,
		Amount:     20,
		Date:       100,
		Splits:     []models.Split{models.NewUserSplit(alice.ID, 20)},
		Payment: &models.PaymentDetails{
			Method:        models.MethodUPI,
			TransactionID: "tx-1",
			Remarks:       "dinner",
			RecordedBy:    bob.ID,
		},
		Verification: &models.Verification{Status: models.VerifyPending},
	}
	require.NoError(t, store.CreateRecord(ctx, payment))

	got, err := store.GetRecord(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Payment)
	require.NotNil(t, got.Verification)
	assert.Equal(t, models.MethodUPI, got.Payment.Method)
	assert.Equal(t, models.VerifyPending, got.Verification.Status)

	expense := &models.Record{
		GroupID: group.ID,
		Kind:    models.KindExpense,
		PayerID: alice.ID,
		Amount:  30,
		Date:    200,
		Splits: []models.Split{
			models.NewUserSplit(alice.ID, 15),
			models.NewUserSplit(bob.ID, 15),
		},
	}
	require.NoError(t, store.CreateRecord(ctx, expense))

	gotExp, err := store.GetRecord(ctx, expense.ID)
	require.NoError(t, err)
	assert.Nil(t, gotExp.Payment, "expenses carry no payment details")
	assert.Nil(t, gotExp.Verification)

	t.Run("list by group filters kind", func(t *testing.T) {
		all, err := store.ListRecordsByGroup(ctx, group.ID, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, expense.ID, all[0].ID, "newest date first")

		payments, err := store.ListRecordsByGroup(ctx, group.ID, models.KindPayment)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, payment.ID, payments[0].ID)
	})

	t.Run("list for user covers payer and participant", func(t *testing.T) {
		recs, err := store.ListRecordsForUser(ctx, bob.ID, 50)
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("payments between either direction", func(t *testing.T) {
		recs, err := store.ListPaymentsBetween(ctx, alice.ID, bob.ID, "")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, payment.ID, recs[0].ID)

		recs, err = store.ListPaymentsBetween(ctx, alice.ID, bob.ID, "other-group")
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("update rewrites splits", func(t *testing.T) {
		expense.Amount = 40
		expense.Splits = []models.Split{
			models.NewUserSplit(alice.ID, 20),
			models.NewUserSplit(bob.ID, 20),
		}
		require.NoError(t, store.UpdateRecord(ctx, expense))

		got, err := store.GetRecord(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, 40.0, got.Amount)
		require.Len(t, got.Splits, 2)
		assert.Equal(t, 20.0, got.Splits[0].Amount)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteRecord(ctx, expense.ID))
		_, err := store.GetRecord(ctx, expense.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestNotificationStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNotifications(ctx, []*models.Notification{
		{Recipient: "u1", Type: models.NotifyExpenseAdded, Message: "one", Metadata: map[string]any{"amount": 10.0}},
		{Recipient: "u1", Type: models.NotifyPaymentReceived, Message: "two"},
		{Recipient: "u2", Type: models.NotifyReminder, Message: "three"},
	}))

	notifs, err := store.ListNotifications(ctx, "u1", 50)
	require.NoError(t, err)
	assert.Len(t, notifs, 2)

	count, err := store.CountUnreadNotifications(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	t.Run("recipient scoping", func(t *testing.T) {
		err := store.MarkNotificationRead(ctx, notifs[0].ID, "u2")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, store.MarkNotificationRead(ctx, notifs[0].ID, "u1"))
		count, err := store.CountUnreadNotifications(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("mark all read", func(t *testing.T) {
		require.NoError(t, store.MarkAllNotificationsRead(ctx, "u1"))
		count, err := store.CountUnreadNotifications(ctx, "u1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete scoped", func(t *testing.T) {
		assert.ErrorIs(t, store.DeleteNotification(ctx, notifs[1].ID, "u2"), storage.ErrNotFound)
		require.NoError(t, store.DeleteNotification(ctx, notifs[1].ID, "u1"))
	})
}

func TestNotificationBulkDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateNotifications(ctx, []*models.Notification{
		{Recipient: "u1", Type: models.NotifyExpenseAdded, Message: "one"},
		{Recipient: "u1", Type: models.NotifyPaymentReceived, Message: "two"},
		{Recipient: "u1", Type: models.NotifyReminder, Message: "three"},
		{Recipient: "u2", Type: models.NotifyReminder, Message: "four"},
	}))

	notifs, err := store.ListNotifications(ctx, "u1", 50)
	require.NoError(t, err)
	require.Len(t, notifs, 3)
	require.NoError(t, store.MarkNotificationRead(ctx, notifs[0].ID, "u1"))

	t.Run("delete read keeps unread", func(t *testing.T) {
		deleted, err := store.DeleteReadNotifications(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		remaining, err := store.ListNotifications(ctx, "u1", 50)
		require.NoError(t, err)
		assert.Len(t, remaining, 2)
	})

	t.Run("delete all clears only the recipient", func(t *testing.T) {
		deleted, err := store.DeleteAllNotifications(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		remaining, err := store.ListNotifications(ctx, "u1", 50)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		others, err := store.ListNotifications(ctx, "u2", 50)
		require.NoError(t, err)
		assert.Len(t, others, 1)
	})
}

func TestCategoryStorage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	globals, err := store.ListCategories(ctx, "nobody")
	require.NoError(t, err)
	require.Len(t, globals, len(defaultCategories), "defaults are seeded on a fresh database")
	for _, c := range globals {
		assert.Empty(t, c.CreatedBy)
		assert.Equal(t, models.CategoryExpense, c.Type)
	}

	t.Run("seeding is idempotent", func(t *testing.T) {
		require.NoError(t, seedCategories(store.db))
		again, err := store.ListCategories(ctx, "nobody")
		require.NoError(t, err)
		assert.Len(t, again, len(defaultCategories))
	})

	custom := &models.Category{Name: "Board Games", Icon: "fas fa-dice", CreatedBy: "u1"}
	require.NoError(t, store.CreateCategory(ctx, custom))

	t.Run("list scopes custom categories to owner", func(t *testing.T) {
		mine, err := store.ListCategories(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, mine, len(defaultCategories)+1)

		theirs, err := store.ListCategories(ctx, "u2")
		require.NoError(t, err)
		assert.Len(t, theirs, len(defaultCategories))
	})

	t.Run("update", func(t *testing.T) {
		custom.Name = "Games"
		require.NoError(t, store.UpdateCategory(ctx, custom))

		got, err := store.GetCategory(ctx, custom.ID)
		require.NoError(t, err)
		assert.Equal(t, "Games", got.Name)

		missing := &models.Category{ID: "missing", Name: "x"}
		assert.ErrorIs(t, store.UpdateCategory(ctx, missing), storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteCategory(ctx, custom.ID))
		_, err := store.GetCategory(ctx, custom.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteCategory(ctx, custom.ID), storage.ErrNotFound)
	})
}
