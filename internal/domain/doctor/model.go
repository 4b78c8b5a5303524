package doctor

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/healthrec/healthrec/internal/platform/validate"
	"github.com/healthrec/healthrec/pkg/civil"
)

// Specializations lists the accepted values of Doctor.Specialization.
var Specializations = []string{
	"Cardiology", "Dermatology", "Endocrinology", "Gastroenterology", "Neurology",
	"Oncology", "Orthopedics", "Pediatrics", "Psychiatry", "Radiology",
	"Surgery", "Urology", "Other",
}

// Doctor is a practitioner record. Doctors are shared by every caller;
// CreatedBy is kept for auditing only.
type Doctor struct {
	ID                uuid.UUID        `json:"id"`
	CreatedBy         string           `json:"created_by"`
	FirstName         string           `json:"first_name" validate:"required,max=100"`
	LastName          string           `json:"last_name" validate:"required,max=100"`
	Specialization    string           `json:"specialization" validate:"required,oneof=Cardiology Dermatology Endocrinology Gastroenterology Neurology Oncology Orthopedics Pediatrics Psychiatry Radiology Surgery Urology Other"`
	LicenseNumber     string           `json:"license_number" validate:"required,max=50"`
	PhoneNumber       string           `json:"phone_number" validate:"required,max=15"`
	Email             string           `json:"email" validate:"required,email,max=254"`
	Address           string           `json:"address" validate:"required"`
	Gender            string           `json:"gender" validate:"required,oneof=M F O"`
	DateOfBirth       time.Time        `json:"date_of_birth" validate:"required"`
	YearsOfExperience *int             `json:"years_of_experience" validate:"required,gte=0"`
	Education         string           `json:"education" validate:"required"`
	Certifications    string           `json:"certifications"`
	LanguagesSpoken   string           `json:"languages_spoken"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee" validate:"omitempty,money"`
	IsAvailable       bool             `json:"is_available"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// newDoctor returns a doctor carrying the column defaults.
func newDoctor() *Doctor {
	return &Doctor{IsAvailable: true}
}

func (d *Doctor) FullName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}

func (d *Doctor) Age(asOf time.Time) int {
	return civil.Age(d.DateOfBirth, asOf)
}

// Fee is the consultation_fee member of a request body. It records
// whether the member was sent at all, so that an explicit null can clear
// the stored fee.
type Fee struct {
	Present bool
	Raw     []byte
}

func (f *Fee) UnmarshalJSON(b []byte) error {
	f.Present = true
	f.Raw = append(f.Raw[:0], b...)
	return nil
}

// Input carries client-writable fields. A nil field was absent from the
// request body.
type Input struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Specialization    *string `json:"specialization"`
	LicenseNumber     *string `json:"license_number"`
	PhoneNumber       *string `json:"phone_number"`
	Email             *string `json:"email"`
	Address           *string `json:"address"`
	Gender            *string `json:"gender"`
	DateOfBirth       *string `json:"date_of_birth"`
	YearsOfExperience *int    `json:"years_of_experience"`
	Education         *string `json:"education"`
	Certifications    *string `json:"certifications"`
	LanguagesSpoken   *string `json:"languages_spoken"`
	ConsultationFee   Fee     `json:"consultation_fee"`
	IsAvailable       *bool   `json:"is_available"`
}

// missing reports required fields absent from in. A full update must
// repeat them.
func (in *Input) missing() map[string][]string {
	return validate.Missing(map[string]bool{
		"first_name":          in.FirstName != nil,
		"last_name":           in.LastName != nil,
		"specialization":      in.Specialization != nil,
		"license_number":      in.LicenseNumber != nil,
		"phone_number":        in.PhoneNumber != nil,
		"email":               in.Email != nil,
		"address":             in.Address != nil,
		"gender":              in.Gender != nil,
		"date_of_birth":       in.DateOfBirth != nil,
		"years_of_experience": in.YearsOfExperience != nil,
		"education":           in.Education != nil,
	})
}

func (in *Input) apply(d *Doctor) map[string][]string {
	errs := make(map[string][]string)
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&d.FirstName, in.FirstName)
	set(&d.LastName, in.LastName)
	set(&d.Specialization, in.Specialization)
	set(&d.LicenseNumber, in.LicenseNumber)
	set(&d.PhoneNumber, in.PhoneNumber)
	set(&d.Email, in.Email)
	set(&d.Address, in.Address)
	set(&d.Gender, in.Gender)
	set(&d.Education, in.Education)
	set(&d.Certifications, in.Certifications)
	set(&d.LanguagesSpoken, in.LanguagesSpoken)

	if in.YearsOfExperience != nil {
		years := *in.YearsOfExperience
		d.YearsOfExperience = &years
	}
	if in.IsAvailable != nil {
		d.IsAvailable = *in.IsAvailable
	}

	if in.DateOfBirth != nil {
		if *in.DateOfBirth == "" {
			d.DateOfBirth = time.Time{}
		} else if dob, err := civil.ParseDate(*in.DateOfBirth); err != nil {
			errs["date_of_birth"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		} else {
			d.DateOfBirth = dob
		}
	}

	if in.ConsultationFee.Present {
		if bytes.Equal(in.ConsultationFee.Raw, []byte("null")) {
			d.ConsultationFee = nil
		} else {
			var fee decimal.Decimal
			if err := fee.UnmarshalJSON(in.ConsultationFee.Raw); err != nil {
				errs["consultation_fee"] = []string{"A valid number is required."}
			} else {
				d.ConsultationFee = &fee
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Summary is the list projection of a doctor, also embedded in
// assignment details.
type Summary struct {
	ID                uuid.UUID        `json:"id"`
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	FullName          string           `json:"full_name"`
	Specialization    string           `json:"specialization"`
	LicenseNumber     string           `json:"license_number"`
	PhoneNumber       string           `json:"phone_number"`
	Email             string           `json:"email"`
	Gender            string           `json:"gender"`
	Age               int              `json:"age"`
	YearsOfExperience int              `json:"years_of_experience"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee"`
	IsAvailable       bool             `json:"is_available"`
	CreatedAt         time.Time        `json:"created_at"`
}

// Detail is the full read projection of a doctor.
type Detail struct {
	ID                uuid.UUID        `json:"id"`
	CreatedBy         string           `json:"created_by"`
	FirstName         string           `json:"first_name"`
	LastName          string           `json:"last_name"`
	FullName          string           `json:"full_name"`
	Specialization    string           `json:"specialization"`
	LicenseNumber     string           `json:"license_number"`
	PhoneNumber       string           `json:"phone_number"`
	Email             string           `json:"email"`
	Address           string           `json:"address"`
	Gender            string           `json:"gender"`
	DateOfBirth       string           `json:"date_of_birth"`
	Age               int              `json:"age"`
	YearsOfExperience int              `json:"years_of_experience"`
	Education         string           `json:"education"`
	Certifications    string           `json:"certifications"`
	LanguagesSpoken   string           `json:"languages_spoken"`
	ConsultationFee   *decimal.Decimal `json:"consultation_fee"`
	IsAvailable       bool             `json:"is_available"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (d *Doctor) years() int {
	if d.YearsOfExperience == nil {
		return 0
	}
	return *d.YearsOfExperience
}

// NewSummary projects d for list responses, with age as of asOf.
func NewSummary(d *Doctor, asOf time.Time) Summary {
	return Summary{
		ID:                d.ID,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		FullName:          d.FullName(),
		Specialization:    d.Specialization,
		LicenseNumber:     d.LicenseNumber,
		PhoneNumber:       d.PhoneNumber,
		Email:             d.Email,
		Gender:            d.Gender,
		Age:               d.Age(asOf),
		YearsOfExperience: d.years(),
		ConsultationFee:   d.ConsultationFee,
		IsAvailable:       d.IsAvailable,
		CreatedAt:         d.CreatedAt,
	}
}

// NewDetail projects every field of d, with age as of asOf.
func NewDetail(d *Doctor, asOf time.Time) Detail {
	return Detail{
		ID:                d.ID,
		CreatedBy:         d.CreatedBy,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		FullName:          d.FullName(),
		Specialization:    d.Specialization,
		LicenseNumber:     d.LicenseNumber,
		PhoneNumber:       d.PhoneNumber,
		Email:             d.Email,
		Address:           d.Address,
		Gender:            d.Gender,
		DateOfBirth:       civil.FormatDate(d.DateOfBirth),
		Age:               d.Age(asOf),
		YearsOfExperience: d.years(),
		Education:         d.Education,
		Certifications:    d.Certifications,
		LanguagesSpoken:   d.LanguagesSpoken,
		ConsultationFee:   d.ConsultationFee,
		IsAvailable:       d.IsAvailable,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
