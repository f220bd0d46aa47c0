package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"carebook/internal/domain"
)

var v = func() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	_ = val.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String())
	})
	_ = val.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.KnownRole(fl.Field().String())
	})
	return val
}()

// Struct validates a tagged form struct and returns user-facing messages,
// one per failed field. Empty slice means valid.
func Struct(s any) []string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid input."}
	}
	var out []string
	for _, fe := range errs {
		out = append(out, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		return "Enter a valid email address."
	case "password":
		return "Password must be 8-72 characters with upper, lower, digit and symbol."
	case "role":
		return "Role must be Admin, Doctor or Patient."
	case "max":
		return fmt.Sprintf("%s is too long (max %s characters).", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s is too small.", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}

// Password enforces the account password policy: length window plus at least
// one lower, upper, digit and symbol. Upper bound matches the bcrypt input limit.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// Email trims and checks a standalone email value (login form).
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 150 {
		return "", false
	}
	return s, v.Var(s, "email") == nil
}

// Fee parses a non-negative currency amount with at most two decimal places.
func Fee(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return f, true
}

// ID parses a positive integer row id from a path or form value.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
