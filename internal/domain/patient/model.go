package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/healthrec/healthrec/internal/platform/validate"
	"github.com/healthrec/healthrec/pkg/civil"
)

// Patient is a patient record. Every patient belongs to the identity that
// created it and is invisible to everyone else.
type Patient struct {
	ID                    uuid.UUID `json:"id"`
	CreatedBy             string    `json:"created_by"`
	FirstName             string    `json:"first_name" validate:"required,max=100"`
	LastName              string    `json:"last_name" validate:"required,max=100"`
	DateOfBirth           time.Time `json:"date_of_birth" validate:"required"`
	Gender                string    `json:"gender" validate:"required,oneof=M F O"`
	BloodGroup            string    `json:"blood_group" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PhoneNumber           string    `json:"phone_number" validate:"required,max=15"`
	Email                 string    `json:"email" validate:"omitempty,email,max=254"`
	Address               string    `json:"address"`
	EmergencyContactName  string    `json:"emergency_contact_name" validate:"max=200"`
	EmergencyContactPhone string    `json:"emergency_contact_phone" validate:"max=15"`
	MedicalHistory        string    `json:"medical_history"`
	Allergies             string    `json:"allergies"`
	CurrentMedications    string    `json:"current_medications"`
	InsuranceProvider     string    `json:"insurance_provider" validate:"max=200"`
	InsuranceNumber       string    `json:"insurance_number" validate:"max=100"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Age is the patient's age in whole years on asOf.
func (p *Patient) Age(asOf time.Time) int {
	return civil.Age(p.DateOfBirth, asOf)
}

// Input carries client-writable fields. A nil field was absent from the
// request body.
type Input struct {
	FirstName             *string `json:"first_name"`
	LastName              *string `json:"last_name"`
	DateOfBirth           *string `json:"date_of_birth"`
	Gender                *string `json:"gender"`
	BloodGroup            *string `json:"blood_group"`
	PhoneNumber           *string `json:"phone_number"`
	Email                 *string `json:"email"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	MedicalHistory        *string `json:"medical_history"`
	Allergies             *string `json:"allergies"`
	CurrentMedications    *string `json:"current_medications"`
	InsuranceProvider     *string `json:"insurance_provider"`
	InsuranceNumber       *string `json:"insurance_number"`
}

// missing reports required fields absent from in. A full update must
// repeat them.
func (in *Input) missing() map[string][]string {
	return validate.Missing(map[string]bool{
		"first_name":    in.FirstName != nil,
		"last_name":     in.LastName != nil,
		"date_of_birth": in.DateOfBirth != nil,
		"gender":        in.Gender != nil,
		"blood_group":   in.BloodGroup != nil,
		"phone_number":  in.PhoneNumber != nil,
	})
}

// apply writes the present fields of in onto p. It returns field errors for
// values that cannot be parsed.
func (in *Input) apply(p *Patient) map[string][]string {
	var errs map[string][]string
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.FirstName, in.FirstName)
	set(&p.LastName, in.LastName)
	set(&p.Gender, in.Gender)
	set(&p.BloodGroup, in.BloodGroup)
	set(&p.PhoneNumber, in.PhoneNumber)
	set(&p.Email, in.Email)
	set(&p.Address, in.Address)
	set(&p.EmergencyContactName, in.EmergencyContactName)
	set(&p.EmergencyContactPhone, in.EmergencyContactPhone)
	set(&p.MedicalHistory, in.MedicalHistory)
	set(&p.Allergies, in.Allergies)
	set(&p.CurrentMedications, in.CurrentMedications)
	set(&p.InsuranceProvider, in.InsuranceProvider)
	set(&p.InsuranceNumber, in.InsuranceNumber)

	if in.DateOfBirth != nil {
		if *in.DateOfBirth == "" {
			p.DateOfBirth = time.Time{}
		} else if dob, err := civil.ParseDate(*in.DateOfBirth); err != nil {
			errs = map[string][]string{"date_of_birth": {"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}}
		} else {
			p.DateOfBirth = dob
		}
	}
	return errs
}

// Detail is the full read projection of a patient.
type Detail struct {
	ID                    uuid.UUID `json:"id"`
	CreatedBy             string    `json:"created_by"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	FullName              string    `json:"full_name"`
	DateOfBirth           string    `json:"date_of_birth"`
	Age                   int       `json:"age"`
	Gender                string    `json:"gender"`
	BloodGroup            string    `json:"blood_group"`
	PhoneNumber           string    `json:"phone_number"`
	Email                 string    `json:"email"`
	Address               string    `json:"address"`
	EmergencyContactName  string    `json:"emergency_contact_name"`
	EmergencyContactPhone string    `json:"emergency_contact_phone"`
	MedicalHistory        string    `json:"medical_history"`
	Allergies             string    `json:"allergies"`
	CurrentMedications    string    `json:"current_medications"`
	InsuranceProvider     string    `json:"insurance_provider"`
	InsuranceNumber       string    `json:"insurance_number"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Summary is the list projection. It leaves out the medical, insurance
// and emergency contact fields.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	CreatedBy   string    `json:"created_by"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	DateOfBirth string    `json:"date_of_birth"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	BloodGroup  string    `json:"blood_group"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDetail projects every field of p, with age as of asOf.
func NewDetail(p *Patient, asOf time.Time) Detail {
	return Detail{
		ID:                    p.ID,
		CreatedBy:             p.CreatedBy,
		FirstName:             p.FirstName,
		LastName:              p.LastName,
		FullName:              p.FullName(),
		DateOfBirth:           civil.FormatDate(p.DateOfBirth),
		Age:                   p.Age(asOf),
		Gender:                p.Gender,
		BloodGroup:            p.BloodGroup,
		PhoneNumber:           p.PhoneNumber,
		Email:                 p.Email,
		Address:               p.Address,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		MedicalHistory:        p.MedicalHistory,
		Allergies:             p.Allergies,
		CurrentMedications:    p.CurrentMedications,
		InsuranceProvider:     p.InsuranceProvider,
		InsuranceNumber:       p.InsuranceNumber,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// NewSummary projects p for list responses, with age as of asOf.
func NewSummary(p *Patient, asOf time.Time) Summary {
	return Summary{
		ID:          p.ID,
		CreatedBy:   p.CreatedBy,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		FullName:    p.FullName(),
		DateOfBirth: civil.FormatDate(p.DateOfBirth),
		Age:         p.Age(asOf),
		Gender:      p.Gender,
		BloodGroup:  p.BloodGroup,
		PhoneNumber: p.PhoneNumber,
		Email:       p.Email,
		CreatedAt:   p.CreatedAt,
	}
}
