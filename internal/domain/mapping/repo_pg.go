package mapping

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo returns a PostgreSQL-backed assignment Repository. It also
// serves as the purger for patient and doctor deletes.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const (
	mappingCols = `id, patient_id, doctor_id, assigned_by, assigned_date, status, notes, created_at, updated_at`

	listedCols = `m.id, m.patient_id, m.doctor_id, m.assigned_by, m.assigned_date, m.status, m.notes,
	m.created_at, m.updated_at, p.first_name, p.last_name, d.first_name, d.last_name, d.specialization`

	listedFrom = `patient_doctor_mapping m
	JOIN patient p ON p.id = m.patient_id
	JOIN doctor d ON d.id = m.doctor_id`
)

const (
	pairConstraint      = "uq_mapping_patient_doctor"
	patientFKConstraint = "patient_doctor_mapping_patient_id_fkey"
	doctorFKConstraint  = "patient_doctor_mapping_doctor_id_fkey"
)

var errNotFound = apperr.NotFound("Mapping not found.")

// Create inserts a. A duplicate pair is not looked up beforehand: the
// unique index decides, so of two concurrent inserts exactly one wins.
func (r *repoPG) Create(ctx context.Context, a *Assignment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient_doctor_mapping (id, patient_id, doctor_id, assigned_by, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING assigned_date, created_at, updated_at`,
		a.ID, a.PatientID, a.DoctorID, a.AssignedBy, a.Status, a.Notes,
	).Scan(&a.AssignedDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapInsertErr(a, err)
	}
	return nil
}

func mapInsertErr(a *Assignment, err error) error {
	if constraint, ok := db.UniqueViolation(err); ok && constraint == pairConstraint {
		return errDuplicate(err)
	}
	if constraint, ok := db.ForeignKeyViolation(err); ok {
		switch constraint {
		case patientFKConstraint:
			return invalidReference("patient", a.PatientID, err)
		case doctorFKConstraint:
			return invalidReference("doctor", a.DoctorID, err)
		}
	}
	return fmt.Errorf("mapping create: %w", err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	var a Assignment
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+mappingCols+` FROM patient_doctor_mapping WHERE id = $1`, id).Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.AssignedBy, &a.AssignedDate, &a.Status, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("mapping get: %w", err)
	}
	return &a, nil
}

// Update writes status and notes. The references and assigned_date are
// never part of the statement.
func (r *repoPG) Update(ctx context.Context, a *Assignment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient_doctor_mapping SET status = $2, notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Status, a.Notes,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return errNotFound
		}
		return fmt.Errorf("mapping update: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_doctor_mapping WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mapping delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Listed, int, error) {
	qb := db.NewSearchQuery(listedFrom, listedCols)
	if f.Status != "" {
		qb.AddEquals("m.status", f.Status)
	}
	if f.PatientID != uuid.Nil {
		qb.AddEquals("m.patient_id", f.PatientID)
	}
	if f.DoctorID != uuid.Nil {
		qb.AddEquals("m.doctor_id", f.DoctorID)
	}
	qb.OrderBy("m.assigned_date DESC, m.id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("mapping count: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("mapping list: %w", err)
	}
	defer rows.Close()

	items := make([]*Listed, 0, limit)
	for rows.Next() {
		l, err := scanListed(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("mapping scan: %w", err)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("mapping list: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_doctor_mapping WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, fmt.Errorf("mapping delete by patient: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_doctor_mapping WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return 0, fmt.Errorf("mapping delete by doctor: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanListed(row pgx.Row) (*Listed, error) {
	var l Listed
	err := row.Scan(
		&l.ID, &l.PatientID, &l.DoctorID, &l.AssignedBy, &l.AssignedDate, &l.Status, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt,
		&l.PatientFirstName, &l.PatientLastName, &l.DoctorFirstName, &l.DoctorLastName, &l.DoctorSpecialization,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
