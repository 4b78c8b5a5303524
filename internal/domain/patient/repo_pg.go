package patient

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

// NewRepo returns a PostgreSQL-backed patient Repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, created_by, first_name, last_name, date_of_birth, gender, blood_group,
	phone_number, email, address, emergency_contact_name, emergency_contact_phone,
	medical_history, allergies, current_medications, insurance_provider, insurance_number,
	created_at, updated_at`

var patientFilters = map[string]db.FilterConfig{
	"gender":      {Type: db.FilterExact, Columns: []string{"gender"}},
	"blood_group": {Type: db.FilterExact, Columns: []string{"blood_group"}},
	"search":      {Type: db.FilterContains, Columns: []string{"first_name", "last_name", "phone_number", "email"}},
}

var errNotFound = apperr.NotFound("Patient not found.")

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (
			id, created_by, first_name, last_name, date_of_birth, gender, blood_group,
			phone_number, email, address, emergency_contact_name, emergency_contact_phone,
			medical_history, allergies, current_medications, insurance_provider, insurance_number
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at`,
		p.ID, p.CreatedBy, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.PhoneNumber, p.Email, p.Address, p.EmergencyContactName, p.EmergencyContactPhone,
		p.MedicalHistory, p.Allergies, p.CurrentMedications, p.InsuranceProvider, p.InsuranceNumber,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	return nil
}

func (r *repoPG) GetByOwner(ctx context.Context, owner string, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1 AND created_by = $2`, id, owner))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("patient get: %w", err)
	}
	return p, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("patient get by id: %w", err)
	}
	return p, nil
}

// Update writes every client-writable column. The owner check is part of
// the WHERE clause, so a record that changed hands or vanished is NotFound.
func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE patient SET
			first_name=$3, last_name=$4, date_of_birth=$5, gender=$6, blood_group=$7,
			phone_number=$8, email=$9, address=$10, emergency_contact_name=$11, emergency_contact_phone=$12,
			medical_history=$13, allergies=$14, current_medications=$15,
			insurance_provider=$16, insurance_number=$17, updated_at=NOW()
		WHERE id = $1 AND created_by = $2
		RETURNING updated_at`,
		p.ID, p.CreatedBy,
		p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodGroup,
		p.PhoneNumber, p.Email, p.Address, p.EmergencyContactName, p.EmergencyContactPhone,
		p.MedicalHistory, p.Allergies, p.CurrentMedications,
		p.InsuranceProvider, p.InsuranceNumber,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return errNotFound
		}
		return fmt.Errorf("patient update: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1 AND created_by = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("patient delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, owner string, filters map[string]string, limit, offset int) ([]*Patient, int, error) {
	qb := db.NewSearchQuery("patient", patientCols)
	qb.AddEquals("created_by", owner)
	qb.ApplyFilters(filters, patientFilters)
	qb.OrderBy("created_at DESC, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("patient count: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	defer rows.Close()

	patients := make([]*Patient, 0, limit)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("patient scan: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("patient list: %w", err)
	}
	return patients, total, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.CreatedBy, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.BloodGroup,
		&p.PhoneNumber, &p.Email, &p.Address, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.MedicalHistory, &p.Allergies, &p.CurrentMedications, &p.InsuranceProvider, &p.InsuranceNumber,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
