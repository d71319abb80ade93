package auth

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is assumed for phone numbers without a country code.
var DefaultPhoneRegion = "US"

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field -> message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, ferr := range fieldErrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["form"] = err.Error()
	return out
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// ValidateBirthDate accepts an ISO date (2006-01-02) strictly in the past.
func ValidateBirthDate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return errors.New("birth date is required")
	}

	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return errors.New("must be a valid date in YYYY-MM-DD format")
	}

	if !parsed.Before(time.Now()) {
		return errors.New("must be a date in the past")
	}

	return nil
}

// ValidatePhoneNumber accepts empty values; otherwise the number must parse
// and be valid for its region.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, DefaultPhoneRegion)
	if err != nil {
		return errors.New("must be a valid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}
