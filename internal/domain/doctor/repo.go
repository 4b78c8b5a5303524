package doctor

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists doctors. Create and Update report a clashing
// license number as a Conflict error.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters map[string]string, limit, offset int) ([]*Doctor, int, error)
}
