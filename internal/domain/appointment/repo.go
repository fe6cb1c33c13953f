package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Appointment, error)
	// ListByOwnerBetween returns the owner's appointments with
	// scheduled_at in [from, to), ordered chronologically.
	ListByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*Appointment, error)
	// ExistsAt reports whether the owner already has an appointment at the
	// exact instant, ignoring excludeID (pass uuid.Nil for creates).
	ExistsAt(ctx context.Context, ownerID uuid.UUID, at time.Time, excludeID uuid.UUID) (bool, error)
	// CountByTimeOfDay aggregates the owner's bookings since the given
	// instant, grouped by the HH:MM time of day.
	CountByTimeOfDay(ctx context.Context, ownerID uuid.UUID, since time.Time) (map[string]int, error)
	// ListDueReminders returns appointments whose reminder is due at now,
	// not yet sent, and whose status is not cancelled.
	ListDueReminders(ctx context.Context, now time.Time) ([]*Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}
