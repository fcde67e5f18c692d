package fanout

import (
	"context"
	"fmt"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// Notification is the live update pushed to observers
type Notification struct {
	Type        model.EventType `json:"type"`
	EventID     string          `json:"event_id,omitempty"`
	AuctionID   string          `json:"auction_id"`
	ActorID     string          `json:"actor_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	At          time.Time       `json:"at"`
}

// NotificationFromEvent builds the live update for an audit record
func NotificationFromEvent(e model.AuctionEvent) Notification {
	return Notification{
		Type:        e.Type,
		EventID:     e.EventID,
		AuctionID:   e.AuctionID,
		ActorID:     e.ActorID,
		Amount:      e.Amount,
		Description: e.Description,
		At:          e.CreatedAt,
	}
}

// EventSink receives every recorded event, e.g. a message broker
type EventSink interface {
	Publish(ctx context.Context, event model.AuctionEvent) error
}

// Fanout appends the audit trail and pushes live updates. Only the append is
// authoritative; push and sink failures are logged and never returned.
type Fanout struct {
	events   repository.EventLog
	registry *Registry
	sink     EventSink
	now      func() time.Time
}

// Option configures a Fanout
type Option func(*Fanout)

// WithSink forwards every recorded event to sink
func WithSink(sink EventSink) Option {
	return func(f *Fanout) { f.sink = sink }
}

// WithClock overrides the time source used to stamp events
func WithClock(now func() time.Time) Option {
	return func(f *Fanout) { f.now = now }
}

// NewFanout creates a Fanout over the event log and connection registry
func NewFanout(events repository.EventLog, registry *Registry, opts ...Option) *Fanout {
	f := &Fanout{
		events:   events,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Registry returns the connection registry used for push delivery
func (f *Fanout) Registry() *Registry {
	return f.registry
}

// Record appends event to the audit log, then broadcasts it to the auction's room
func (f *Fanout) Record(ctx context.Context, event model.AuctionEvent) (model.AuctionEvent, error) {
	if event.EventID == "" {
		event.EventID = utils.GenerateID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = f.now()
	}
	if err := f.events.AppendEvent(ctx, event); err != nil {
		return model.AuctionEvent{}, fmt.Errorf("fanout: append %s event for auction %s: %w", event.Type, event.AuctionID, err)
	}

	delivered := f.registry.Broadcast(event.AuctionID, NotificationFromEvent(event))
	utils.Debug("Event broadcast", map[string]any{
		"event_id":   event.EventID,
		"auction_id": event.AuctionID,
		"type":       event.Type,
		"delivered":  delivered,
	})

	if f.sink != nil {
		if err := f.sink.Publish(ctx, event); err != nil {
			utils.Warn("Failed to export event", map[string]any{
				"event_id":   event.EventID,
				"auction_id": event.AuctionID,
				"error":      err.Error(),
			})
		}
	}
	return event, nil
}

// NotifyUser pushes n to every connection of userID. With no live connection
// the notice is held for the user's next registration and
// ErrNotificationDropped is returned.
func (f *Fanout) NotifyUser(userID string, n Notification) error {
	if f.registry.SendToUser(userID, n) > 0 {
		return nil
	}
	f.registry.Hold(userID, n)
	return fmt.Errorf("fanout: user %s has no live connection, notice held: %w", userID, biddingerrors.ErrNotificationDropped)
}

// Events returns an auction's audit trail
func (f *Fanout) Events(ctx context.Context, auctionID string) ([]model.AuctionEvent, error) {
	events, err := f.events.GetEventsByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("fanout: %w", err)
	}
	return events, nil
}
