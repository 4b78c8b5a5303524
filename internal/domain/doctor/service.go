package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/db"
	"github.com/healthrec/healthrec/internal/platform/validate"
)

// AssignmentPurger removes the patient assignments of a doctor. It runs in
// the same transaction as the doctor delete.
type AssignmentPurger interface {
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
}

// Service implements the doctor operations. Any authenticated caller may
// read or change any doctor.
type Service struct {
	repo   Repository
	tx     db.TxRunner
	purger AssignmentPurger
}

// NewService returns a doctor service. purger removes assignments when a
// doctor is deleted, inside the same transaction.
func NewService(repo Repository, tx db.TxRunner, purger AssignmentPurger) *Service {
	return &Service{repo: repo, tx: tx, purger: purger}
}

func requireCaller(caller string) error {
	if caller == "" {
		return apperr.Unauthorized("Authentication credentials were not provided.")
	}
	return nil
}

func (s *Service) List(ctx context.Context, caller string, filters map[string]string, limit, offset int) ([]*Doctor, int, error) {
	if err := requireCaller(caller); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, filters, limit, offset)
}

func (s *Service) Create(ctx context.Context, caller string, in *Input) (*Doctor, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	d := newDoctor()
	d.CreatedBy = caller
	if err := check(d, in, nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, caller string, id uuid.UUID) (*Doctor, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Lookup fetches a doctor for assignment resolution.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies in to a doctor. See patient.Service.Update for the
// difference between full and partial updates.
func (s *Service) Update(ctx context.Context, caller string, id uuid.UUID, in *Input, partial bool) (*Doctor, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
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

// Delete removes a doctor and every assignment that references it.
func (s *Service) Delete(ctx context.Context, caller string, id uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		if _, err := s.purger.DeleteByDoctor(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
}

func check(d *Doctor, in *Input, required map[string][]string) error {
	if in == nil {
		in = &Input{}
	}
	parseErrs := in.apply(d)
	errs := validate.Merge(validate.Struct(d), required)
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
