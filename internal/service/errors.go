// Package service implements the application operations on top of the
// storage layer: groups and membership, the expense/payment ledger,
// settlement verification, pending-member reconciliation, accounts and
// notifications. Handlers translate the sentinel errors defined here (and in
// the ledger, auth and storage packages) into HTTP statuses.
package service

import "errors"

var (
	// ErrUnauthenticated means no user identity was found on the context.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means the actor is authenticated but not allowed to
	// perform this operation on this entity.
	ErrForbidden = errors.New("not authorized")

	// ErrNotMember means the actor or a referenced user is not a confirmed
	// member of the group.
	ErrNotMember = errors.New("not a member of this group")

	// ErrAlreadyMember means the user to add is already a confirmed member.
	ErrAlreadyMember = errors.New("user is already a member of this group")

	// ErrAlreadyInvited means the email already has a pending invite in the
	// group.
	ErrAlreadyInvited = errors.New("this email is already invited to the group")

	// ErrSameParty means payer and receiver of a payment are the same user.
	ErrSameParty = errors.New("payer and receiver cannot be the same user")

	// ErrMissingFields means a required request field is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrRemarksTooLong means payment remarks exceed the 500 character cap.
	ErrRemarksTooLong = errors.New("remarks must be 500 characters or less")
)
