package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/misonrisa/clinic/internal/platform/apperror"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name      string     `json:"name" validate:"required"`
	LastVisit *time.Time `json:"last_visit"`
	History   string     `json:"history"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Patient, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperror.ValidationField("name", "name is required")
	}

	p := &Patient{
		Name:            in.Name,
		History:         in.History,
		TreatmentStatus: TreatmentPending,
		LastVisit:       time.Now(),
	}
	if in.LastVisit != nil {
		p.LastVisit = *in.LastVisit
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	p.Activities = []Activity{}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

type UpdateInput struct {
	Name            *string    `json:"name"`
	LastVisit       *time.Time `json:"last_visit"`
	History         *string    `json:"history"`
	ConsultDate     *time.Time `json:"consult_date"`
	TreatmentType   *string    `json:"treatment_type"`
	TreatmentStatus *string    `json:"treatment_status"`
	NextVisit       *time.Time `json:"next_visit"`
}

// Update applies a partial patch; nil fields keep their stored value.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.ValidationField("name", "name cannot be empty")
		}
		p.Name = name
	}
	if in.LastVisit != nil {
		p.LastVisit = *in.LastVisit
	}
	if in.History != nil {
		p.History = *in.History
	}
	if in.ConsultDate != nil {
		p.ConsultDate = in.ConsultDate
	}
	if in.TreatmentType != nil {
		p.TreatmentType = *in.TreatmentType
	}
	if in.TreatmentStatus != nil {
		if !ValidTreatmentStatus(*in.TreatmentStatus) {
			return nil, apperror.ValidationField("treatment_status", "unknown treatment status: "+*in.TreatmentStatus)
		}
		p.TreatmentStatus = *in.TreatmentStatus
	}
	if in.NextVisit != nil {
		p.NextVisit = in.NextVisit
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

type ActivityInput struct {
	Title string     `json:"title" validate:"required"`
	Date  *time.Time `json:"date"`
	Notes string     `json:"notes"`
}

// AddActivity appends a log entry to the patient and returns the refreshed
// patient record.
func (s *Service) AddActivity(ctx context.Context, patientID uuid.UUID, in ActivityInput) (*Patient, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, apperror.ValidationField("title", "title is required")
	}
	if _, err := s.repo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	a := &Activity{PatientID: patientID, Title: in.Title, Notes: in.Notes, Date: time.Now()}
	if in.Date != nil {
		a.Date = *in.Date
	}
	if err := s.repo.AddActivity(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, patientID)
}

type ActivityPatch struct {
	Title *string    `json:"title"`
	Date  *time.Time `json:"date"`
	Notes *string    `json:"notes"`
}

func (s *Service) UpdateActivity(ctx context.Context, patientID, activityID uuid.UUID, in ActivityPatch) (*Patient, error) {
	a, err := s.repo.GetActivity(ctx, patientID, activityID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationField("title", "title cannot be empty")
		}
		a.Title = title
	}
	if in.Date != nil {
		a.Date = *in.Date
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}

	if err := s.repo.UpdateActivity(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, patientID)
}

func (s *Service) DeleteActivity(ctx context.Context, patientID, activityID uuid.UUID) error {
	return s.repo.DeleteActivity(ctx, patientID, activityID)
}
