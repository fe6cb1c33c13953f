// Package appointment implements the clinic's booking core: owner-scoped
// appointment CRUD, ranked availability slots, and the reminder dispatch
// loop.
package appointment

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var validStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true,
	StatusCancelled: true, StatusCompleted: true,
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool { return validStatuses[s] }

var validTreatments = map[string]bool{
	"Cleaning":             true,
	"Whitening":            true,
	"Orthodontics":         true,
	"Endodontics":          true,
	"Extraction":           true,
	"Implant":              true,
	"General Consultation": true,
}

// ValidTreatment reports whether t is one of the offered treatments.
func ValidTreatment(t string) bool { return validTreatments[t] }

const (
	ReminderEmail    = "email"
	ReminderWhatsApp = "whatsapp"
	ReminderBoth     = "both"
	ReminderNone     = "none"
)

var validReminderMethods = map[string]bool{
	ReminderEmail: true, ReminderWhatsApp: true,
	ReminderBoth: true, ReminderNone: true,
}

// ValidReminderMethod reports whether m is a known reminder method.
func ValidReminderMethod(m string) bool { return validReminderMethods[m] }

// ReminderLead is how far before the appointment a reminder becomes due.
const ReminderLead = 24 * time.Hour

type Appointment struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	PatientName string    `json:"patient_name"`
	Treatment   string    `json:"treatment"`
	ScheduledAt time.Time `json:"scheduled_at"`
	// TimeOfDay is the HH:MM projection of ScheduledAt, denormalized for
	// demand aggregation. Kept consistent by SetScheduledAt.
	TimeOfDay      string    `json:"time_of_day"`
	Status         string    `json:"status"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	ReminderMethod string    `json:"reminder_method"`
	ReminderDueAt  time.Time `json:"reminder_due_at"`
	ReminderSent   bool      `json:"reminder_sent"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetScheduledAt moves the appointment to a new instant and keeps the
// derived fields in step: TimeOfDay tracks the new time, the reminder due
// time moves with it, and a previously sent reminder becomes due again.
func (a *Appointment) SetScheduledAt(at time.Time) {
	a.ScheduledAt = at
	a.TimeOfDay = at.Format("15:04")
	a.ReminderDueAt = at.Add(-ReminderLead)
	a.ReminderSent = false
}
