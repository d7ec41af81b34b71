package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/splitbook/backend/internal/auth"
	"github.com/splitbook/backend/internal/ledger"
	"github.com/splitbook/backend/internal/middleware"
	"github.com/splitbook/backend/internal/models"
	"github.com/splitbook/backend/internal/notify"
	"github.com/splitbook/backend/internal/storage"
)

// GroupService manages groups, membership and pending invites.
type GroupService struct {
	storage storage.Store
	sink    notify.Sink
}

// NewGroupService creates a group service.
func NewGroupService(store storage.Store, sink notify.Sink) *GroupService {
	return &GroupService{storage: store, sink: sink}
}

// CreateGroupInput carries the fields for a new group.
type CreateGroupInput struct {
	Name     string
	Currency string
	Icon     string
	Image    string
	// MemberIDs are additional registered users to add at creation. The
	// creator is always a member and becomes the owner.
	MemberIDs []string
}

// Create creates a group owned by the authenticated user.
func (s *GroupService) Create(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingFields)
	}

	members := []string{actorID}
	seen := map[string]bool{actorID: true}
	for _, id := range in.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}

	group := &models.Group{
		Name:     strings.TrimSpace(in.Name),
		Currency: strings.ToUpper(in.Currency),
		Icon:     in.Icon,
		Image:    in.Image,
		Members:  members,
		OwnerID:  actorID,
	}
	if err := s.storage.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "owner", actorID, "members", len(members))
	return group, nil
}

// Get returns a group the authenticated user is a member of.
func (s *GroupService) Get(ctx context.Context, groupID string) (*models.Group, error) {
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
	return group, nil
}

// List returns the groups the authenticated user belongs to, newest first.
func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	return s.storage.ListGroupsForUser(ctx, actorID)
}

// UpdateGroupInput carries optional group updates; nil fields are kept.
type UpdateGroupInput struct {
	Name     *string
	Currency *string
	Icon     *string
	Image    *string
}

// Update modifies group attributes. Only the owner may update.
func (s *GroupService) Update(ctx context.Context, groupID string, in UpdateGroupInput) (*models.Group, error) {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	group, err := s.storage.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name", ErrMissingFields)
		}
		group.Name = strings.TrimSpace(*in.Name)
	}
	if in.Currency != nil {
		group.Currency = strings.ToUpper(*in.Currency)
	}
	if in.Icon != nil {
		group.Icon = *in.Icon
	}
	if in.Image != nil {
		group.Image = *in.Image
	}

	if err := s.storage.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return group, nil
}

// Delete removes a group and all its records. Only the owner may delete.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}

	group, err := s.storage.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != actorID {
		return ErrForbidden
	}

	if err := s.storage.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	slog.Info("Group deleted", "group_id", groupID, "owner", actorID)
	return nil
}

// AddMemberInput identifies who to add: a registered user by ID, or an
// unregistered person by email (with an optional display name).
type AddMemberInput struct {
	UserID string
	Email  string
	Name   string
}

// AddMemberResult reports what AddMember did.
type AddMemberResult struct {
	Group *models.Group
	// Pending is true when the person was invited by email instead of added.
	Pending bool
	// ConvertedRecords is how many existing records had pending splits
	// rewritten to the added user.
	ConvertedRecords int
}

// AddMember adds a registered user to the group, or records a pending invite
// for an email with no account yet. Adding a user whose email was previously
// invited also converts their pending splits in this group. Any confirmed
// member may add people.
func (s *GroupService) AddMember(ctx context.Context, groupID string, in AddMemberInput) (*AddMemberResult, error) {
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

	// Resolve the target: an explicit user ID, or an email that may or may
	// not belong to a registered account.
	var user *models.User
	email := auth.NormalizeEmail(in.Email)
	switch {
	case in.UserID != "":
		user, err = s.storage.GetUserByID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
	case email != "":
		user, err = s.storage.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: userId or email", ErrMissingFields)
	}

	if user == nil {
		return s.invitePending(ctx, group, email, in.Name, actorID)
	}

	if group.HasMember(user.ID) {
		return nil, ErrAlreadyMember
	}

	// ConvertPendingMember also covers users who were never invited: it adds
	// the member and finds zero pending splits to rewrite.
	converted, err := s.storage.ConvertPendingMember(ctx, groupID, user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	s.sink.Emit(ctx, notify.Event{
		Recipient:   user.ID,
		Sender:      actorID,
		Type:        models.NotifyGroupInvite,
		Message:     fmt.Sprintf("You have been added to the group %q", group.Name),
		RelatedID:   group.ID,
		RelatedKind: models.RelatedGroup,
	})

	group, err = s.storage.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	slog.Info("Member added", "group_id", groupID, "user_id", user.ID, "converted_records", converted)
	return &AddMemberResult{Group: group, ConvertedRecords: converted}, nil
}

func (s *GroupService) invitePending(ctx context.Context, group *models.Group, email, name, actorID string) (*AddMemberResult, error) {
	if group.HasPending(email) {
		return nil, ErrAlreadyInvited
	}

	pm := models.PendingMember{
		Email:     email,
		Name:      name,
		InvitedBy: actorID,
		InvitedAt: time.Now().Unix(),
	}
	if err := s.storage.AddPendingMember(ctx, group.ID, pm); err != nil {
		return nil, fmt.Errorf("failed to add pending member: %w", err)
	}
	if err := s.storage.UpsertPendingIdentity(ctx, email, name, actorID, group.ID); err != nil {
		return nil, fmt.Errorf("failed to record pending identity: %w", err)
	}

	updated, err := s.storage.GetGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	slog.Info("Pending member invited", "group_id", group.ID, "email", email, "invited_by", actorID)
	return &AddMemberResult{Group: updated, Pending: true}, nil
}

// RemoveMember removes a confirmed member. A member may leave on their own;
// removing anyone else requires the owner. The owner can never be removed,
// not even by themself: the owner is always a member, and a group without
// its owner would be unreadable and undeletable.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	actorID := middleware.GetUserID(ctx)
	if actorID == "" {
		return ErrUnauthenticated
	}

	group, err := s.storage.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if actorID != userID && group.OwnerID != actorID {
		return ErrForbidden
	}
	if userID == group.OwnerID {
		return ErrForbidden
	}
	if !group.HasMember(userID) {
		return ErrNotMember
	}

	if err := s.storage.RemoveGroupMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	slog.Info("Member removed", "group_id", groupID, "user_id", userID, "by", actorID)
	return nil
}

// Balances computes the current balance of every participant in the group,
// confirmed and pending, from its EXPENSE records.
func (s *GroupService) Balances(ctx context.Context, groupID string) ([]ledger.BalanceEntry, error) {
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

	records, err := s.storage.ListRecordsByGroup(ctx, groupID, models.KindExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return ledger.ComputeBalances(group, records), nil
}
