package doctor

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

// NewRepo returns a PostgreSQL-backed doctor Repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const doctorCols = `id, created_by, first_name, last_name, specialization, license_number,
	phone_number, email, address, gender, date_of_birth, years_of_experience, education,
	certifications, languages_spoken, consultation_fee, is_available, created_at, updated_at`

var doctorFilters = map[string]db.FilterConfig{
	"specialization": {Type: db.FilterExact, Columns: []string{"specialization"}},
	"gender":         {Type: db.FilterExact, Columns: []string{"gender"}},
	"is_available":   {Type: db.FilterBool, Columns: []string{"is_available"}},
	"search":         {Type: db.FilterContains, Columns: []string{"first_name", "last_name", "license_number"}},
}

const licenseConstraint = "uq_doctor_license_number"

var errNotFound = apperr.NotFound("Doctor not found.")

// mapWriteErr turns a license number clash into a Conflict error.
func mapWriteErr(op string, err error) error {
	if constraint, ok := db.UniqueViolation(err); ok && constraint == licenseConstraint {
		return apperr.Conflict("Invalid input", "Doctor with this license number already exists.", err)
	}
	return fmt.Errorf("doctor %s: %w", op, err)
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor (
			id, created_by, first_name, last_name, specialization, license_number,
			phone_number, email, address, gender, date_of_birth, years_of_experience, education,
			certifications, languages_spoken, consultation_fee, is_available
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at`,
		d.ID, d.CreatedBy, d.FirstName, d.LastName, d.Specialization, d.LicenseNumber,
		d.PhoneNumber, d.Email, d.Address, d.Gender, d.DateOfBirth, d.YearsOfExperience, d.Education,
		d.Certifications, d.LanguagesSpoken, d.ConsultationFee, d.IsAvailable,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return mapWriteErr("create", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, errNotFound
		}
		return nil, fmt.Errorf("doctor get: %w", err)
	}
	return d, nil
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE doctor SET
			first_name=$2, last_name=$3, specialization=$4, license_number=$5,
			phone_number=$6, email=$7, address=$8, gender=$9, date_of_birth=$10,
			years_of_experience=$11, education=$12, certifications=$13, languages_spoken=$14,
			consultation_fee=$15, is_available=$16, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.FirstName, d.LastName, d.Specialization, d.LicenseNumber,
		d.PhoneNumber, d.Email, d.Address, d.Gender, d.DateOfBirth,
		d.YearsOfExperience, d.Education, d.Certifications, d.LanguagesSpoken,
		d.ConsultationFee, d.IsAvailable,
	).Scan(&d.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return errNotFound
		}
		return mapWriteErr("update", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("doctor delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, filters map[string]string, limit, offset int) ([]*Doctor, int, error) {
	qb := db.NewSearchQuery("doctor", doctorCols)
	qb.ApplyFilters(filters, doctorFilters)
	qb.OrderBy("created_at DESC, id")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("doctor count: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("doctor list: %w", err)
	}
	defer rows.Close()

	doctors := make([]*Doctor, 0, limit)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("doctor scan: %w", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("doctor list: %w", err)
	}
	return doctors, total, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.CreatedBy, &d.FirstName, &d.LastName, &d.Specialization, &d.LicenseNumber,
		&d.PhoneNumber, &d.Email, &d.Address, &d.Gender, &d.DateOfBirth, &d.YearsOfExperience, &d.Education,
		&d.Certifications, &d.LanguagesSpoken, &d.ConsultationFee, &d.IsAvailable, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
