package config

import (
	"errors"

	"github.com/Masterminds/semver/v3"

	"github.com/thoreinstein/appcfg/internal/logging"
)

// Validation errors for configuration fields.
var (
	// ErrInvalidLogLevel indicates log_level is not a recognized level name.
	ErrInvalidLogLevel = errors.New("unrecognized log level")

	// ErrInvalidUIValue indicates a ui key holds a value of the wrong type.
	ErrInvalidUIValue = errors.New("invalid ui value")

	// ErrInvalidProjectVersion indicates project_version is not a semantic version.
	ErrInvalidProjectVersion = errors.New("project_version is not a semantic version")
)

// Validate checks the parts of a Document this package interprets. The
// opaque sections are not inspected.
// Returns nil if valid, or a slice of validation errors.
func Validate(doc *Document) []error {
	if doc == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if doc.LogLevel != "" {
		if _, err := logging.ParseLevel(doc.LogLevel); err != nil {
			errs = append(errs, &FieldError{Field: KeyLogLevel, Value: doc.LogLevel, Err: ErrInvalidLogLevel})
		}
	}

	if doc.ProjectVersion != "" {
		if _, err := semver.NewVersion(doc.ProjectVersion); err != nil {
			errs = append(errs, &FieldError{Field: KeyProjectVersion, Value: doc.ProjectVersion, Err: ErrInvalidProjectVersion})
		}
	}

	if v, ok := doc.UI["hide_log"]; ok {
		if _, isBool := v.(bool); !isBool {
			errs = append(errs, &FieldError{Field: "ui.hide_log", Value: v, Err: ErrInvalidUIValue})
		}
	}
	if v, ok := doc.UI["language"]; ok {
		if s, isString := v.(string); !isString || s == "" {
			errs = append(errs, &FieldError{Field: "ui.language", Value: v, Err: ErrInvalidUIValue})
		}
	}

	return errs
}

// FieldError represents a validation error for a specific key.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
