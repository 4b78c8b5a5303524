package mapping

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows an assignment list. Zero fields do not filter.
type ListFilter struct {
	Status    string
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

// Repository persists assignments. Create relies on the pair unique index
// and reports a duplicate pair as a Conflict error.
type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Listed, int, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
}
