package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/misonrisa/clinic/internal/platform/apperror"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, owner_id, patient_name, treatment, scheduled_at, time_of_day,
	status, phone, email, notes, reminder_method, reminder_due_at, reminder_sent,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.OwnerID, &a.PatientName, &a.Treatment, &a.ScheduledAt,
		&a.TimeOfDay, &a.Status, &a.Phone, &a.Email, &a.Notes, &a.ReminderMethod,
		&a.ReminderDueAt, &a.ReminderSent, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("appointment not found")
	}
	return &a, err
}

// isUniqueViolation reports whether err is the postgres unique-constraint
// error raised by the (owner_id, scheduled_at) index.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, owner_id, patient_name, treatment, scheduled_at,
			time_of_day, status, phone, email, notes, reminder_method, reminder_due_at,
			reminder_sent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		a.ID, a.OwnerID, a.PatientName, a.Treatment, a.ScheduledAt, a.TimeOfDay,
		a.Status, a.Phone, a.Email, a.Notes, a.ReminderMethod, a.ReminderDueAt,
		a.ReminderSent).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return apperror.Conflict("an appointment already exists at that time")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET patient_name=$2, treatment=$3, scheduled_at=$4,
			time_of_day=$5, status=$6, phone=$7, email=$8, notes=$9,
			reminder_method=$10, reminder_due_at=$11, reminder_sent=$12,
			updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientName, a.Treatment, a.ScheduledAt, a.TimeOfDay, a.Status,
		a.Phone, a.Email, a.Notes, a.ReminderMethod, a.ReminderDueAt, a.ReminderSent)
	if isUniqueViolation(err) {
		return apperror.Conflict("an appointment already exists at that time")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("appointment not found")
	}
	return nil
}

func (r *repoPG) listQuery(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Appointment, error) {
	return r.listQuery(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE owner_id = $1 ORDER BY scheduled_at ASC`, ownerID)
}

func (r *repoPG) ListByOwnerBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return r.listQuery(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE owner_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at ASC`, ownerID, from, to)
}

func (r *repoPG) ExistsAt(ctx context.Context, ownerID uuid.UUID, at time.Time, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM appointments
		WHERE owner_id = $1 AND scheduled_at = $2 AND id <> $3)`,
		ownerID, at, excludeID).Scan(&exists)
	return exists, err
}

func (r *repoPG) CountByTimeOfDay(ctx context.Context, ownerID uuid.UUID, since time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT time_of_day, COUNT(*) FROM appointments
		WHERE owner_id = $1 AND scheduled_at >= $2
		GROUP BY time_of_day`, ownerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var tod string
		var n int
		if err := rows.Scan(&tod, &n); err != nil {
			return nil, err
		}
		counts[tod] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) ListDueReminders(ctx context.Context, now time.Time) ([]*Appointment, error) {
	return r.listQuery(ctx, `SELECT `+apptCols+` FROM appointments
		WHERE reminder_due_at <= $1 AND NOT reminder_sent AND status <> $2
		ORDER BY reminder_due_at ASC`, now, StatusCancelled)
}

func (r *repoPG) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE appointments SET reminder_sent = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}
