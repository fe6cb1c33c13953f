package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	AddActivity(ctx context.Context, a *Activity) error
	GetActivity(ctx context.Context, patientID, activityID uuid.UUID) (*Activity, error)
	UpdateActivity(ctx context.Context, a *Activity) error
	DeleteActivity(ctx context.Context, patientID, activityID uuid.UUID) error
	ListActivities(ctx context.Context, patientID uuid.UUID) ([]Activity, error)
}
