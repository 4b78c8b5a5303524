package mapping

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/healthrec/internal/domain/doctor"
	"github.com/healthrec/healthrec/internal/domain/patient"
)

// Assignment statuses. Any status may follow any other.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Assignment links one patient to one doctor. At most one assignment
// exists per (patient, doctor) pair, whatever its status.
type Assignment struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patient"`
	DoctorID     uuid.UUID `json:"doctor"`
	AssignedBy   string    `json:"assigned_by"`
	AssignedDate time.Time `json:"assigned_date"`
	Status       string    `json:"status" validate:"required,oneof=active inactive pending"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input carries the client-writable fields. Patient and Doctor are only
// accepted on create; on update they must repeat the stored values.
type Input struct {
	Patient *string `json:"patient"`
	Doctor  *string `json:"doctor"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

// Record is an assignment together with the patient and doctor it
// references.
type Record struct {
	Assignment *Assignment
	Patient    *patient.Patient
	Doctor     *doctor.Doctor
}

// Listed is an assignment row of a list, with names joined in from the
// referenced records.
type Listed struct {
	Assignment
	PatientFirstName     string
	PatientLastName      string
	DoctorFirstName      string
	DoctorLastName       string
	DoctorSpecialization string
}

// Detail is the read projection of a single assignment.
type Detail struct {
	ID             uuid.UUID       `json:"id"`
	Patient        uuid.UUID       `json:"patient"`
	Doctor         uuid.UUID       `json:"doctor"`
	AssignedBy     string          `json:"assigned_by"`
	AssignedDate   time.Time       `json:"assigned_date"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	PatientDetails patient.Summary `json:"patient_details"`
	DoctorDetails  doctor.Summary  `json:"doctor_details"`
}

// Summary is the list projection of an assignment.
type Summary struct {
	ID                   uuid.UUID `json:"id"`
	Patient              uuid.UUID `json:"patient"`
	Doctor               uuid.UUID `json:"doctor"`
	PatientName          string    `json:"patient_name"`
	DoctorName           string    `json:"doctor_name"`
	DoctorSpecialization string    `json:"doctor_specialization"`
	AssignedBy           string    `json:"assigned_by"`
	AssignedDate         time.Time `json:"assigned_date"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewDetail projects r with patient and doctor summaries, ages as of asOf.
func NewDetail(r *Record, asOf time.Time) Detail {
	a := r.Assignment
	return Detail{
		ID:             a.ID,
		Patient:        a.PatientID,
		Doctor:         a.DoctorID,
		AssignedBy:     a.AssignedBy,
		AssignedDate:   a.AssignedDate,
		Status:         a.Status,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		PatientDetails: patient.NewSummary(r.Patient, asOf),
		DoctorDetails:  doctor.NewSummary(r.Doctor, asOf),
	}
}

// NewSummary projects a listed assignment with the joined names.
func NewSummary(l *Listed) Summary {
	p := patient.Patient{FirstName: l.PatientFirstName, LastName: l.PatientLastName}
	d := doctor.Doctor{FirstName: l.DoctorFirstName, LastName: l.DoctorLastName}
	return Summary{
		ID:                   l.ID,
		Patient:              l.PatientID,
		Doctor:               l.DoctorID,
		PatientName:          p.FullName(),
		DoctorName:           d.FullName(),
		DoctorSpecialization: l.DoctorSpecialization,
		AssignedBy:           l.AssignedBy,
		AssignedDate:         l.AssignedDate,
		Status:               l.Status,
		CreatedAt:            l.CreatedAt,
	}
}
