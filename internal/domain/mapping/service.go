package mapping

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthrec/healthrec/internal/domain/doctor"
	"github.com/healthrec/healthrec/internal/domain/patient"
	"github.com/healthrec/healthrec/internal/platform/apperr"
	"github.com/healthrec/healthrec/internal/platform/validate"
)

// PatientLookup resolves a patient regardless of its owner.
type PatientLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DoctorLookup resolves a doctor.
type DoctorLookup interface {
	Lookup(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

// Service implements the assignment operations. Assignments are not
// owner-scoped: any authenticated caller may act on any of them.
type Service struct {
	repo     Repository
	patients PatientLookup
	doctors  DoctorLookup
}

// NewService returns an assignment service that resolves references
// through patients and doctors.
func NewService(repo Repository, patients PatientLookup, doctors DoctorLookup) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors}
}

const (
	msgDuplicate    = "This doctor is already assigned to this patient"
	detailDuplicate = "Duplicate assignment"
	msgRequired     = "This field is required."
)

func errDuplicate(cause error) error {
	return apperr.Conflict(msgDuplicate, detailDuplicate, cause)
}

func invalidReference(field string, id interface{}, cause error) error {
	ve := apperr.FieldError(field, fmt.Sprintf("Invalid pk \"%v\" - object does not exist.", id))
	ve.Err = cause
	return ve
}

func requireCaller(caller string) error {
	if caller == "" {
		return apperr.Unauthorized("Authentication credentials were not provided.")
	}
	return nil
}

func (s *Service) List(ctx context.Context, caller string, f ListFilter, limit, offset int) ([]*Listed, int, error) {
	if err := requireCaller(caller); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, f, limit, offset)
}

// ListByPatient lists the assignments of one patient. An unknown patient
// simply has none.
func (s *Service) ListByPatient(ctx context.Context, caller string, patientID uuid.UUID, limit, offset int) ([]*Listed, int, error) {
	if err := requireCaller(caller); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, ListFilter{PatientID: patientID}, limit, offset)
}

// Create assigns a doctor to a patient. Both references must exist. A
// second assignment of the same pair fails with a Conflict error raised by
// the store, never by a prior lookup.
func (s *Service) Create(ctx context.Context, caller string, in *Input) (*Record, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if in == nil {
		in = &Input{}
	}

	a := &Assignment{AssignedBy: caller, Status: StatusActive}
	var errs map[string][]string
	patientID, msg := parseRef(in.Patient)
	if msg != "" {
		errs = validate.Merge(errs, map[string][]string{"patient": {msg}})
	}
	doctorID, msg := parseRef(in.Doctor)
	if msg != "" {
		errs = validate.Merge(errs, map[string][]string{"doctor": {msg}})
	}
	applyWritable(a, in)
	errs = validate.Merge(errs, validate.Struct(a))
	if len(errs) > 0 {
		return nil, apperr.Validation("Invalid input", errs)
	}

	p, err := s.patients.Lookup(ctx, patientID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, invalidReference("patient", patientID, err)
		}
		return nil, err
	}
	d, err := s.doctors.Lookup(ctx, doctorID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, invalidReference("doctor", doctorID, err)
		}
		return nil, err
	}

	a.PatientID, a.DoctorID = p.ID, d.ID
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return &Record{Assignment: a, Patient: p, Doctor: d}, nil
}

func (s *Service) Get(ctx context.Context, caller string, id uuid.UUID) (*Record, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, a)
}

// Update changes status and notes; an absent field keeps its stored value.
// Patient and doctor may be repeated but not changed, and a full update
// must repeat both.
func (s *Service) Update(ctx context.Context, caller string, id uuid.UUID, in *Input, partial bool) (*Record, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if in == nil {
		in = &Input{}
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a := existing
	var errs map[string][]string
	if msg := checkFixedRef(in.Patient, existing.PatientID, partial, "Patient"); msg != "" {
		errs = validate.Merge(errs, map[string][]string{"patient": {msg}})
	}
	if msg := checkFixedRef(in.Doctor, existing.DoctorID, partial, "Doctor"); msg != "" {
		errs = validate.Merge(errs, map[string][]string{"doctor": {msg}})
	}
	applyWritable(a, in)
	errs = validate.Merge(errs, validate.Struct(a))
	if len(errs) > 0 {
		return nil, apperr.Validation("Invalid input", errs)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.record(ctx, a)
}

func (s *Service) Delete(ctx context.Context, caller string, id uuid.UUID) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) record(ctx context.Context, a *Assignment) (*Record, error) {
	p, err := s.patients.Lookup(ctx, a.PatientID)
	if err != nil {
		return nil, err
	}
	d, err := s.doctors.Lookup(ctx, a.DoctorID)
	if err != nil {
		return nil, err
	}
	return &Record{Assignment: a, Patient: p, Doctor: d}, nil
}

func applyWritable(a *Assignment, in *Input) {
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Notes != nil {
		a.Notes = *in.Notes
	}
}

// parseRef reads a required reference. It returns a field message when
// the value is missing or malformed.
func parseRef(v *string) (uuid.UUID, string) {
	if v == nil || *v == "" {
		return uuid.Nil, msgRequired
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return uuid.Nil, fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", *v)
	}
	return id, ""
}

// checkFixedRef validates a reference sent on update against the stored
// one.
func checkFixedRef(v *string, stored uuid.UUID, partial bool, label string) string {
	if v == nil {
		if partial {
			return ""
		}
		return msgRequired
	}
	id, msg := parseRef(v)
	if msg != "" {
		return msg
	}
	if id != stored {
		return label + " cannot be changed once assigned."
	}
	return ""
}
