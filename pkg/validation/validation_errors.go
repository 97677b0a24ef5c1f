package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels used on the forms.
var FieldLabels = map[string]string{
	"FullName":       "Full name",
	"Name":           "Name",
	"City":           "City",
	"Area":           "Area / locality",
	"Skills":         "Skills",
	"Availability":   "Availability",
	"WhatsApp":       "WhatsApp number",
	"Experience":     "Experience",
	"EmployerType":   "Employer type",
	"Category":       "Work category",
	"Title":          "Job title",
	"Description":    "Work description",
	"Payment":        "Payment",
	"PaymentType":    "Payment type",
	"Timing":         "Timing",
	"Requirements":   "Requirements",
	"Status":         "Status",
	"UserRole":       "Role",
	"Role":           "Role",
	"Content":        "Content",
	"SiteName":       "Site name",
	"ContactEmail":   "Contact email",
	"ContactPhone":   "Contact phone",
	"SEOTitle":       "SEO title",
	"SEODescription": "SEO description",
	"Audience":       "Audience",
	"Message":        "Message",
	"Email":          "Email",
	"Subject":        "Subject",
}

// FormatValidationErrors converts validator errors into one readable message per field.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := fieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		if e.Kind().String() == "slice" {
			return fmt.Sprintf("%s: select at least %s", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)
	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, digits, spaces and . ' - / & ( ) ,", label)
	case "valid_phone":
		return fmt.Sprintf("%s must be a 10 digit mobile number, optionally with country code", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func fieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase turns "SavedJobs" into "Saved Jobs".
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
