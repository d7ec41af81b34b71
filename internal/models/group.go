package models

// Group is a set of people who share expenses in one currency.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// Currency is the ISO currency code for the group, uppercase (default USD).
	Currency string

	// Icon is an optional icon name or emoji.
	Icon string

	// Image is an optional URL for the group cover image.
	Image string

	// Members holds the user IDs of confirmed members, in join order.
	// The owner is always a member.
	Members []string

	// PendingMembers lists invited people who have not registered yet.
	// An email appears here at most once.
	PendingMembers []PendingMember

	// OwnerID is the user who created the group.
	OwnerID string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last group change.
	UpdatedAt int64
}

// HasMember reports whether userID is a confirmed member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// HasPending reports whether the (lowercased) email is already invited.
func (g *Group) HasPending(email string) bool {
	for _, pm := range g.PendingMembers {
		if pm.Email == email {
			return true
		}
	}
	return false
}

// PendingMember is an invited, not-yet-registered participant of one group.
type PendingMember struct {
	// Email is the invitee's email, lowercase.
	Email string

	// Name is the display name supplied by the inviter.
	Name string

	// InvitedBy is the user ID of the inviter.
	InvitedBy string

	// InvitedAt is the Unix timestamp of the invite.
	InvitedAt int64
}

// Pending identity lifecycle states.
const (
	PendingStatusPending    = "pending"
	PendingStatusRegistered = "registered"
)

// PendingIdentity is the global record for an invited email across groups.
// It is upserted on every invite (groups accumulate via set union) and is
// flipped to registered exactly once, when an account with that email is
// created. It is never deleted automatically.
type PendingIdentity struct {
	// Email is the case-insensitive key, stored lowercase.
	Email string

	// Name is the most recently supplied display name.
	Name string

	// InvitedBy is the user who most recently invited this email.
	InvitedBy string

	// Groups is the set of group IDs the email is invited into.
	Groups []string

	// Status is pending or registered.
	Status string

	// CreatedAt is the Unix timestamp of the first invite.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last upsert or status change.
	UpdatedAt int64
}
