package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	// Auth and users
	"Email":    "Email",
	"Password": "Password",
	"Name":     "Name",
	"Role":     "Role",
	"TenantID": "Tenant",

	// Interview
	"Answer":         "Answer",
	"Question":       "Question",
	"IdempotencyKey": "Idempotency key",

	// Talent search and forwarding
	"JobDescription": "Job description",
	"MinExperience":  "Minimum experience",
	"Location":       "Location",
	"TopK":           "Result count",
	"Score":          "Score",
	"Strengths":      "Strengths",
	"Gaps":           "Gaps",
}

// FieldError is a single failed rule, keyed by the JSON-facing field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	fields := FieldErrors(err)
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		messages = append(messages, f.Message)
	}
	return messages
}

// FieldErrors returns one entry per failed field. Non-validation errors are
// reported under the empty field name.
func FieldErrors(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field:   snakeCase(e.Field()),
			Message: formatSingleError(e),
		})
	}
	return out
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s: is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: must contain at least %s items", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: must contain at most %s items", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "gte":
		return fmt.Sprintf("%s: must be greater than or equal to %s", label, param)

	case "lte":
		return fmt.Sprintf("%s: must be less than or equal to %s", label, param)

	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))

	case "email":
		return fmt.Sprintf("%s: invalid email format", label)

	case "uuid":
		return fmt.Sprintf("%s: must be a valid UUID", label)

	case "valid_name":
		return fmt.Sprintf("%s: may only contain letters, digits, spaces and . ' - / & ( ) ,", label)

	case "valid_role":
		return fmt.Sprintf("%s: must be one of: admin, recruiter, candidate, director", label)

	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or symbols", label)

	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

func snakeCase(s string) string {
	switch s {
	case "TenantID":
		return "tenant_id"
	case "TopK":
		return "top_k"
	}
	var result strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				result.WriteRune('_')
			}
			r += 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}
