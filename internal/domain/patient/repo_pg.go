package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/misonrisa/clinic/internal/platform/apperror"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, code, name, last_visit, history, consult_date,
	treatment_type, treatment_status, next_visit, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.LastVisit, &p.History, &p.ConsultDate,
		&p.TreatmentType, &p.TreatmentStatus, &p.NextVisit, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("patient not found")
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.Code == "" {
		p.Code = NewCode()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, code, name, last_visit, history, consult_date,
			treatment_type, treatment_status, next_visit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.Code, p.Name, p.LastVisit, p.History, p.ConsultDate,
		p.TreatmentType, p.TreatmentStatus, p.NextVisit).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	p.Activities, err = r.ListActivities(ctx, id)
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patients SET name=$2, last_visit=$3, history=$4, consult_date=$5,
			treatment_type=$6, treatment_status=$7, next_visit=$8, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.LastVisit, p.History, p.ConsultDate,
		p.TreatmentType, p.TreatmentStatus, p.NextVisit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("patient not found")
	}
	return nil
}

// Delete removes the patient row; activities go with it via the FK cascade.
func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("patient not found")
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patients
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

const activityCols = `id, patient_id, title, date, notes, created_at`

func scanActivity(row pgx.Row) (*Activity, error) {
	var a Activity
	err := row.Scan(&a.ID, &a.PatientID, &a.Title, &a.Date, &a.Notes, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("activity not found")
	}
	return &a, err
}

func (r *repoPG) AddActivity(ctx context.Context, a *Activity) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_activities (id, patient_id, title, date, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at`,
		a.ID, a.PatientID, a.Title, a.Date, a.Notes).Scan(&a.CreatedAt)
}

func (r *repoPG) GetActivity(ctx context.Context, patientID, activityID uuid.UUID) (*Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx,
		`SELECT `+activityCols+` FROM patient_activities WHERE id = $1 AND patient_id = $2`,
		activityID, patientID))
}

func (r *repoPG) UpdateActivity(ctx context.Context, a *Activity) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient_activities SET title=$3, date=$4, notes=$5
		WHERE id = $1 AND patient_id = $2`,
		a.ID, a.PatientID, a.Title, a.Date, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("activity not found")
	}
	return nil
}

func (r *repoPG) DeleteActivity(ctx context.Context, patientID, activityID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM patient_activities WHERE id = $1 AND patient_id = $2`,
		activityID, patientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("activity not found")
	}
	return nil
}

func (r *repoPG) ListActivities(ctx context.Context, patientID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+activityCols+` FROM patient_activities
		WHERE patient_id = $1 ORDER BY date ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}
