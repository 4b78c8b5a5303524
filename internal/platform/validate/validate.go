// Package validate wraps go-playground/validator and turns its errors into
// the field -> messages map rendered in the {message, errors} envelope.
package validate

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("money", validateMoney)
		instance = v
	})
	return instance
}

// Money bounds for a NUMERIC(10,2) column.
const (
	MoneyMaxDigits = 10
	MoneyPlaces    = 2
)

func validateMoney(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return MoneyFits(d)
}

// MoneyFits reports whether d is non-negative and fits NUMERIC(10,2).
func MoneyFits(d decimal.Decimal) bool {
	if d.IsNegative() {
		return false
	}
	if !d.Equal(d.Truncate(MoneyPlaces)) {
		return false
	}
	limit := decimal.New(1, MoneyMaxDigits-MoneyPlaces)
	return d.Truncate(0).LessThan(limit)
}

// Struct validates v and returns field errors keyed by JSON name, or nil.
func Struct(v interface{}) map[string][]string {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string][]string{"non_field_errors": {err.Error()}}
	}

	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprintf("%v", fe.Value()))
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "money":
		return fmt.Sprintf("Ensure that there are no more than %d digits in total and no more than %d decimal places, and that the value is not negative.",
			MoneyMaxDigits, MoneyPlaces)
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// MsgRequired is reported for a required field that is absent or empty.
const MsgRequired = "This field is required."

// Missing returns a MsgRequired error for every field whose presence flag
// is false, or nil when all are present.
func Missing(present map[string]bool) map[string][]string {
	var out map[string][]string
	for field, ok := range present {
		if ok {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[field] = []string{MsgRequired}
	}
	return out
}

// Merge folds src into dst and returns dst (allocating it when nil).
func Merge(dst, src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string][]string, len(src))
	}
	for k, msgs := range src {
		dst[k] = append(dst[k], msgs...)
	}
	return dst
}
