package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists patients. Every owner-scoped method returns a
// NotFound error for records that do not exist or belong to someone else.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByOwner(ctx context.Context, owner string, id uuid.UUID) (*Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, owner string, id uuid.UUID) error
	List(ctx context.Context, owner string, filters map[string]string, limit, offset int) ([]*Patient, int, error)
}
