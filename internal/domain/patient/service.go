package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/db"
	"github.com/healthrec/healthrec/internal/platform/validate"
)

// AssignmentPurger removes the doctor assignments of a patient. It runs in
// the same transaction as the patient delete.
type AssignmentPurger interface {
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
}

type Service struct {
	repo   Repository
	tx     db.TxRunner
	purger AssignmentPurger
}

// NewService returns a patient service. purger removes assignments when a
// patient is deleted, inside the same transaction.
func NewService(repo Repository, tx db.TxRunner, purger AssignmentPurger) *Service {
	return &Service{repo: repo, tx: tx, purger: purger}
}

func requireOwner(owner string) error {
	if owner == "" {
		return apperr.Unauthorized("Authentication credentials were not provided.")
	}
	return nil
}

func (s *Service) List(ctx context.Context, owner string, filters map[string]string, limit, offset int) ([]*Patient, int, error) {
	if err := requireOwner(owner); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, owner, filters, limit, offset)
}

func (s *Service) Create(ctx context.Context, owner string, in *Input) (*Patient, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	p := &Patient{CreatedBy: owner}
	if err := check(p, in, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, owner string, id uuid.UUID) (*Patient, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(ctx, owner, id)
}

// Lookup fetches a patient regardless of owner. Assignment creation uses
// it to resolve references.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies in to an owned patient. Absent fields keep their stored
// values either way; a full update additionally requires every required
// field to be supplied.
func (s *Service) Update(ctx context.Context, owner string, id uuid.UUID, in *Input, partial bool) (*Patient, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByOwner(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if in == nil {
		in = &Input{}
	}
	var required map[string][]string
	if !partial {
		required = in.missing()
	}
	if err := check(existing, in, required); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes an owned patient together with its assignments, in one
// transaction.
func (s *Service) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByOwner(ctx, owner, id); err != nil {
			return err
		}
		if _, err := s.purger.DeleteByPatient(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, owner, id)
	})
}

// check applies in to p and validates the result. required holds errors
// for absent fields that the caller had to send.
func check(p *Patient, in *Input, required map[string][]string) error {
	if in == nil {
		in = &Input{}
	}
	parseErrs := in.apply(p)
	errs := validate.Merge(validate.Struct(p), required)
	for field, msgs := range parseErrs {
		if errs == nil {
			errs = make(map[string][]string)
		}
		errs[field] = msgs
	}
	if len(errs) > 0 {
		return apperr.Validation("Invalid input", errs)
	}
	return nil
}
