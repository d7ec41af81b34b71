// Package notify delivers notification events produced by the ledger and
// group services. Emission is fire-and-forget: delivery failures are logged
// and never propagate back into the operation that triggered them.
package notify

import (
	"context"
	"log/slog"

	"github.com/splitbook/backend/internal/models"
)

// Event is one notification to be delivered to a user.
type Event struct {
	Recipient   string
	Sender      string
	Type        string
	Message     string
	RelatedID   string
	RelatedKind string
	Metadata    map[string]any
}

// Sink accepts notification events. Implementations must not return
// delivery errors to callers.
type Sink interface {
	Emit(ctx context.Context, events ...Event)
}

// NotificationStorage is the persistence surface the dispatcher needs.
type NotificationStorage interface {
	CreateNotifications(ctx context.Context, notifs []*models.Notification) error
}

// Publisher pushes events to an external broker, in addition to storage.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Dispatcher persists events as notifications and, when a publisher is
// configured, forwards them to the broker. Both paths swallow errors.
type Dispatcher struct {
	storage   NotificationStorage
	publisher Publisher // optional
}

// NewDispatcher creates a dispatcher. publisher may be nil.
func NewDispatcher(storage NotificationStorage, publisher Publisher) *Dispatcher {
	return &Dispatcher{storage: storage, publisher: publisher}
}

// Emit stores the events and forwards them to the publisher if configured.
func (d *Dispatcher) Emit(ctx context.Context, events ...Event) {
	if len(events) == 0 {
		return
	}

	notifs := make([]*models.Notification, len(events))
	for i, ev := range events {
		notifs[i] = &models.Notification{
			Recipient:   ev.Recipient,
			Sender:      ev.Sender,
			Type:        ev.Type,
			Message:     ev.Message,
			RelatedID:   ev.RelatedID,
			RelatedKind: ev.RelatedKind,
			Metadata:    ev.Metadata,
		}
	}
	if err := d.storage.CreateNotifications(ctx, notifs); err != nil {
		slog.Error("Failed to store notifications", "count", len(notifs), "error", err)
	}

	if d.publisher == nil {
		return
	}
	for _, ev := range events {
		if err := d.publisher.Publish(ctx, ev); err != nil {
			slog.Error("Failed to publish notification event",
				"type", ev.Type,
				"recipient", ev.Recipient,
				"error", err,
			)
		}
	}
}

// Discard is a Sink that drops every event; used in tests.
type Discard struct{}

// Emit does nothing.
func (Discard) Emit(ctx context.Context, events ...Event) {}
