package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate  *validator.Validate
	dniRegexp = regexp.MustCompile(`^[0-9A-Za-z]{6,12}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("hhmm", validateHHMM)
	_ = validate.RegisterValidation("password", validatePassword)
	_ = validate.RegisterValidation("dni", validateDNI)
}

func ValidateStruct(s any) error {
	return validate.Struct(s)
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	hasDigit := strings.ContainsAny(password, "0123456789")
	hasLetter := strings.IndexFunc(password, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}) >= 0
	return hasDigit && hasLetter
}

func validateDNI(fl validator.FieldLevel) bool {
	return dniRegexp.MatchString(fl.Field().String())
}

var validationMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"oneof":    "must be one of %s",
	"gtfield":  "must be after %s",
	"hhmm":     "must be a HH:MM time",
	"password": "must have at least 8 characters with letters and digits",
	"dni":      "must be 6 to 12 alphanumeric characters",
	"dive":     "is invalid",
}

// FormatValidationErrors turns validator errors into one readable line.
func FormatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		if strings.Contains(msg, "%s") {
			msg = strings.Replace(msg, "%s", fe.Param(), 1)
		}
		parts = append(parts, strings.ToLower(fe.Field())+" "+msg)
	}
	return strings.Join(parts, ", ")
}
