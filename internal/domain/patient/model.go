// Package patient manages the clinic's patient records and their embedded
// clinical activity log.
package patient

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	TreatmentPending    = "pending"
	TreatmentInProgress = "in_progress"
	TreatmentFinished   = "finished"
)

var validTreatmentStatuses = map[string]bool{
	TreatmentPending: true, TreatmentInProgress: true, TreatmentFinished: true,
}

// ValidTreatmentStatus reports whether s is a known treatment status.
func ValidTreatmentStatus(s string) bool { return validTreatmentStatuses[s] }

type Patient struct {
	ID              uuid.UUID  `json:"id"`
	Code            string     `json:"code"`
	Name            string     `json:"name"`
	LastVisit       time.Time  `json:"last_visit"`
	History         string     `json:"history"`
	ConsultDate     *time.Time `json:"consult_date,omitempty"`
	TreatmentType   string     `json:"treatment_type,omitempty"`
	TreatmentStatus string     `json:"treatment_status"`
	NextVisit       *time.Time `json:"next_visit,omitempty"`
	Activities      []Activity `json:"activities"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Activity is one clinical-visit log entry belonging to a patient.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCode returns a short display code in the clinic's historical
// "#MS-NNNN" format.
func NewCode() string {
	return fmt.Sprintf("#MS-%d", rand.Intn(9000)+1000)
}
