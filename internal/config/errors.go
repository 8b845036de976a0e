package config

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned by Load when --config names a missing file.
	ErrFileNotFound = errors.New("config file not found")

	// ErrValidationFailed matches every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError reports one unusable setting found by Validate.
type ValidationError struct {
	Path    string // dotted setting name, e.g. "menu.quitKey"
	Message string
	Value   any
	Code    ValidationErrorCode
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrorCode says which rule a setting broke.
type ValidationErrorCode uint8

const (
	ErrCodeOutOfRange      ValidationErrorCode = iota // number below its minimum
	ErrCodeInvalidEnum                                // not one of the known names
	ErrCodePatternMismatch                            // unparsable key chord, level or duration
)

func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeOutOfRange:
		return "out_of_range"
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	case ErrCodePatternMismatch:
		return "pattern_mismatch"
	}
	return "unknown"
}
