package doctor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDoctor_FullName(t *testing.T) {
	d := &Doctor{FirstName: "Gregory", LastName: "House"}
	if got := d.FullName(); got != "Dr. Gregory House" {
		t.Errorf("expected Dr. Gregory House, got %q", got)
	}
}

func TestInput_ConsultationFee(t *testing.T) {
	fee := decimal.RequireFromString("80.00")

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"absent keeps value", `{}`, "80", false},
		{"number", `{"consultation_fee":125.5}`, "125.5", false},
		{"string", `{"consultation_fee":"99.99"}`, "99.99", false},
		{"null clears", `{"consultation_fee":null}`, "", false},
		{"garbage", `{"consultation_fee":"ten"}`, "80", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Input
			if err := json.Unmarshal([]byte(tt.body), &in); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			current := fee
			d := &Doctor{ConsultationFee: &current}
			errs := in.apply(d)
			if tt.wantErr != (len(errs["consultation_fee"]) > 0) {
				t.Fatalf("unexpected errors: %v", errs)
			}
			got := ""
			if d.ConsultationFee != nil {
				got = d.ConsultationFee.String()
			}
			if got != tt.want {
				t.Errorf("fee = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInput_Apply_Availability(t *testing.T) {
	d := newDoctor()
	off := false
	(&Input{IsAvailable: &off}).apply(d)
	if d.IsAvailable {
		t.Error("expected is_available=false")
	}
	if !newDoctor().IsAvailable {
		t.Error("new doctors default to available")
	}
}

func TestNewSummary(t *testing.T) {
	years := 12
	d := &Doctor{
		FirstName:         "Meredith",
		LastName:          "Grey",
		Specialization:    "Surgery",
		DateOfBirth:       time.Date(1978, time.September, 27, 0, 0, 0, 0, time.UTC),
		YearsOfExperience: &years,
		Education:         "Dartmouth",
	}
	s := NewSummary(d, time.Date(2024, time.September, 26, 0, 0, 0, 0, time.UTC))
	if s.FullName != "Dr. Meredith Grey" || s.Age != 45 || s.YearsOfExperience != 12 {
		t.Errorf("unexpected summary %+v", s)
	}
}
