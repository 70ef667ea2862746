package core

import (
	"fmt"
	"strings"
)

// ValidateSettings validates a Settings document according to domain rules.
//
// Validation rules:
//   - ClientID must not be blank
//   - CallbackURL must not be blank
//
// Normalized in place:
//   - surrounding whitespace is trimmed from every field
//   - a blank Environment is replaced with DefaultEnvironment
func ValidateSettings(settings *Settings) error {
	if settings == nil {
		return fmt.Errorf("%w: settings is nil", ErrInvalidSettings)
	}

	settings.ClientID = strings.TrimSpace(settings.ClientID)
	settings.CallbackURL = strings.TrimSpace(settings.CallbackURL)
	settings.Environment = strings.TrimSpace(settings.Environment)

	if settings.ClientID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, ErrEmptyClientID)
	}

	if settings.CallbackURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, ErrEmptyCallbackURL)
	}

	if settings.Environment == "" {
		settings.Environment = DefaultEnvironment
	}

	return nil
}

// IsMissingValue reports whether a raw table cell stands for an absent value.
func IsMissingValue(cell string) bool {
	_, ok := missingValues[strings.TrimSpace(cell)]
	return ok
}

var missingValues = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
}
