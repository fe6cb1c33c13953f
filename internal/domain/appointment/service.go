package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/misonrisa/clinic/internal/platform/apperror"
)

type Service struct {
	repo        Repository
	startHour   int
	endHour     int
	slotMinutes int
	logger      zerolog.Logger

	// now is replaced in tests to pin the clock.
	now func() time.Time
}

func NewService(repo Repository, startHour, endHour, slotMinutes int, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		startHour:   startHour,
		endHour:     endHour,
		slotMinutes: slotMinutes,
		logger:      logger,
		now:         time.Now,
	}
}

// combineDateTime builds the appointment instant from its date and HH:MM
// parts, in the deployment's local timezone.
func combineDateTime(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, apperror.ValidationField("date", "date must be YYYY-MM-DD")
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, apperror.ValidationField("time", "time must be HH:MM")
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

type CreateInput struct {
	PatientName    string `json:"patient_name" validate:"required"`
	Treatment      string `json:"treatment" validate:"required"`
	Date           string `json:"date" validate:"required"`
	Time           string `json:"time" validate:"required"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	Notes          string `json:"notes"`
	ReminderMethod string `json:"reminder_method"`
}

// Create validates and books a new appointment for the owner. The checks
// run in order and fail on the first violation: required fields, strictly
// future instant, then the exact-minute double-booking check. The unique
// index on (owner_id, scheduled_at) backstops the conflict check against
// concurrent submissions.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Appointment, error) {
	in.PatientName = strings.TrimSpace(in.PatientName)
	switch {
	case in.PatientName == "":
		return nil, apperror.ValidationField("patient_name", "patient name is required")
	case in.Treatment == "":
		return nil, apperror.ValidationField("treatment", "treatment is required")
	case in.Date == "":
		return nil, apperror.ValidationField("date", "date is required")
	case in.Time == "":
		return nil, apperror.ValidationField("time", "time is required")
	}
	if !ValidTreatment(in.Treatment) {
		return nil, apperror.ValidationField("treatment", "unknown treatment: "+in.Treatment)
	}
	if in.ReminderMethod == "" {
		in.ReminderMethod = ReminderEmail
	}
	if !ValidReminderMethod(in.ReminderMethod) {
		return nil, apperror.ValidationField("reminder_method", "unknown reminder method: "+in.ReminderMethod)
	}

	at, err := combineDateTime(in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if !at.After(s.now()) {
		return nil, apperror.PastDate("appointments cannot be booked in the past")
	}

	taken, err := s.repo.ExistsAt(ctx, ownerID, at, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("an appointment already exists at that time")
	}

	a := &Appointment{
		OwnerID:        ownerID,
		PatientName:    in.PatientName,
		Treatment:      in.Treatment,
		Status:         StatusPending,
		Phone:          in.Phone,
		Email:          in.Email,
		Notes:          in.Notes,
		ReminderMethod: in.ReminderMethod,
	}
	a.SetScheduledAt(at)

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Str("appointment_id", a.ID.String()).
		Time("scheduled_at", a.ScheduledAt).Msg("appointment booked")
	return a, nil
}

// getOwned fetches the appointment and hides cross-owner records behind
// not-found so other owners' bookings are never disclosed.
func (s *Service) getOwned(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != ownerID {
		return nil, apperror.NotFound("appointment not found")
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return s.getOwned(ctx, ownerID, id)
}

type UpdateInput struct {
	PatientName    *string `json:"patient_name"`
	Treatment      *string `json:"treatment"`
	Date           *string `json:"date"`
	Time           *string `json:"time"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	Notes          *string `json:"notes"`
	Status         *string `json:"status"`
	ReminderMethod *string `json:"reminder_method"`
}

// Update applies a partial patch. Rescheduling requires both date and time
// and re-runs the future and conflict checks; it also resets the reminder
// so the new time gets its own notification. Edits that leave the time
// alone never touch reminder state.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	a, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.PatientName != nil {
		name := strings.TrimSpace(*in.PatientName)
		if name == "" {
			return nil, apperror.ValidationField("patient_name", "patient name cannot be empty")
		}
		a.PatientName = name
	}
	if in.Treatment != nil {
		if !ValidTreatment(*in.Treatment) {
			return nil, apperror.ValidationField("treatment", "unknown treatment: "+*in.Treatment)
		}
		a.Treatment = *in.Treatment
	}
	if in.Phone != nil {
		a.Phone = *in.Phone
	}
	if in.Email != nil {
		a.Email = *in.Email
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, apperror.ValidationField("status", "unknown status: "+*in.Status)
		}
		a.Status = *in.Status
	}
	if in.ReminderMethod != nil {
		if !ValidReminderMethod(*in.ReminderMethod) {
			return nil, apperror.ValidationField("reminder_method", "unknown reminder method: "+*in.ReminderMethod)
		}
		a.ReminderMethod = *in.ReminderMethod
	}

	if in.Date != nil || in.Time != nil {
		if in.Date == nil || in.Time == nil {
			return nil, apperror.Validation("date and time must be provided together")
		}
		at, err := combineDateTime(*in.Date, *in.Time)
		if err != nil {
			return nil, err
		}
		if !at.Equal(a.ScheduledAt) {
			if !at.After(s.now()) {
				return nil, apperror.PastDate("appointments cannot be moved into the past")
			}
			taken, err := s.repo.ExistsAt(ctx, ownerID, at, a.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperror.Conflict("an appointment already exists at that time")
			}
			a.SetScheduledAt(at)
		}
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateStatus changes only the status field. Any transition between known
// statuses is allowed.
func (s *Service) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, apperror.ValidationField("status",
			fmt.Sprintf("status must be one of %s, %s, %s, %s",
				StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted))
	}
	a, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Appointment, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListBetween returns the owner's appointments on days from from through
// to, both inclusive.
func (s *Service) ListBetween(ctx context.Context, ownerID uuid.UUID, from, to string) ([]*Appointment, error) {
	start, err := time.ParseInLocation("2006-01-02", from, time.Local)
	if err != nil {
		return nil, apperror.ValidationField("from", "from must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", to, time.Local)
	if err != nil {
		return nil, apperror.ValidationField("to", "to must be YYYY-MM-DD")
	}
	return s.repo.ListByOwnerBetween(ctx, ownerID, start, end.AddDate(0, 0, 1))
}

// ListForDay returns the owner's appointments on the given day.
func (s *Service) ListForDay(ctx context.Context, ownerID uuid.UUID, date string) ([]*Appointment, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, apperror.ValidationField("date", "date must be YYYY-MM-DD")
	}
	return s.repo.ListByOwnerBetween(ctx, ownerID, day, day.AddDate(0, 0, 1))
}
