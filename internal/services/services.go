// Package services holds the application use cases: category and
// transaction management and dashboard aggregation. Handlers talk to these
// services only; the services talk to storage, cache and the message bus.
package services

import (
	"context"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Publisher sends ledger events. *amqp.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// Invalidator drops cached read models after a write.
type Invalidator interface {
	Clear(ctx context.Context)
}

// Calendar decides what "today" is.
type Calendar struct {
	Now      func() time.Time
	Location *time.Location
}

// SystemCalendar uses the wall clock in loc.
func SystemCalendar(loc *time.Location) Calendar {
	return Calendar{Now: time.Now, Location: loc}
}

func (c Calendar) Today() core.Date {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return core.Today(now(), c.Location)
}

func invalidate(ctx context.Context, inv Invalidator) {
	if inv != nil {
		inv.Clear(ctx)
	}
}

// publish sends event when a publisher is configured. Failures are logged and
// never returned: the write has already committed.
func publish(ctx context.Context, p Publisher, logger *log.Logger, event *amqp.LedgerEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish ledger event",
			log.NewFields().WithOperation(log.OpPublish).WithEvent(event.ID, string(event.Kind)).WithError(err).ToSlice()...)
		return
	}
	logger.DebugContext(ctx, "Ledger event published",
		log.NewFields().WithEvent(event.ID, string(event.Kind)).ToSlice()...)
}
