package validate

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type sample struct {
	Name   string           `json:"name" validate:"required,max=5"`
	Email  string           `json:"email" validate:"omitempty,email"`
	Gender string           `json:"gender" validate:"required,oneof=M F O"`
	Years  int              `json:"years" validate:"gte=0"`
	Fee    *decimal.Decimal `json:"fee" validate:"omitempty,money"`
}

func TestStruct_Valid(t *testing.T) {
	fee := decimal.RequireFromString("150.00")
	s := sample{Name: "Ann", Email: "a@b.com", Gender: "F", Years: 3, Fee: &fee}
	if errs := Struct(s); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestStruct_FieldMessages(t *testing.T) {
	s := sample{Name: "", Email: "not-an-email", Gender: "X", Years: -1}
	errs := Struct(s)

	want := map[string]string{
		"name":   "This field is required.",
		"email":  "Enter a valid email address.",
		"gender": `"X" is not a valid choice.`,
		"years":  "greater than or equal to 0",
	}
	for field, frag := range want {
		msgs, ok := errs[field]
		if !ok {
			t.Errorf("expected error for %s, got %v", field, errs)
			continue
		}
		if !strings.Contains(msgs[0], frag) {
			t.Errorf("%s: message %q does not contain %q", field, msgs[0], frag)
		}
	}
}

func TestStruct_MaxLength(t *testing.T) {
	errs := Struct(sample{Name: "toolong", Gender: "M"})
	if _, ok := errs["name"]; !ok {
		t.Fatalf("expected max length error, got %v", errs)
	}
}

func TestMoneyFits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"150.00", true},
		{"99999999.99", true},
		{"100000000", false},
		{"12.345", false},
		{"-1", false},
		{"0.5", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := MoneyFits(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("MoneyFits(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	got := Merge(nil, map[string][]string{"a": {"x"}})
	got = Merge(got, map[string][]string{"a": {"y"}, "b": {"z"}})
	if len(got["a"]) != 2 || len(got["b"]) != 1 {
		t.Errorf("unexpected merge result: %v", got)
	}
	if Merge(nil, nil) != nil {
		t.Error("merging nothing into nil should stay nil")
	}
}

func TestMissing(t *testing.T) {
	if got := Missing(map[string]bool{"a": true}); got != nil {
		t.Errorf("expected nil when everything is present, got %v", got)
	}
	got := Missing(map[string]bool{"first_name": false, "last_name": true, "gender": false})
	if len(got) != 2 {
		t.Fatalf("expected 2 fields, got %v", got)
	}
	if got["first_name"][0] != MsgRequired || got["gender"][0] != MsgRequired {
		t.Errorf("unexpected messages %v", got)
	}
}
