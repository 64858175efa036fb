package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	"Owner":     "Owner address",
	"Handle":    "Social handle",
	"URL":       "Avatar URL",
	"Epochs":    "Retention epochs",
	"Format":    "Export format",
	"BlobID":    "Blob ID",
	"Deletable": "Deletable",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
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

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "sui_address":
		return fmt.Sprintf("%s: must be a 0x-prefixed hex address", label)
	case "avatar_url":
		return fmt.Sprintf("%s: must be an http(s) URL or a base64 image data URI", label)
	case "social_handle":
		return fmt.Sprintf("%s: may only contain letters, digits, '_', '.', '-' (max 64)", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji", label)
	default:
		return fmt.Sprintf("%s: failed %s validation", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}
