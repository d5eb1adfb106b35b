package services

import "errors"

// Client errors. Requests failing with these never reach an AI backend.
var (
	ErrInvalidGender         = errors.New("gender must be \"femenino\" or \"masculino\"")
	ErrInvalidStep           = errors.New("currentStep must be between 0 and 4")
	ErrEmptyMessage          = errors.New("message cannot be empty")
	ErrEmptyPrompt           = errors.New("prompt cannot be empty")
	ErrIncompletePreferences = errors.New("age, experience, occasion and preferences are required")
)

// Server errors.
var (
	ErrEmptyCatalog        = errors.New("no catalog for gender")
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrMalformedProfile    = errors.New("malformed profile")
	ErrEmptyCompletion     = errors.New("provider returned an empty completion")
)

// ValidationError reports whether err is a client error
func ValidationError(err error) bool {
	return errors.Is(err, ErrInvalidGender) ||
		errors.Is(err, ErrInvalidStep) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrEmptyPrompt) ||
		errors.Is(err, ErrIncompletePreferences)
}
