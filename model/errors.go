package model

import "fmt"

// Standard error codes.
const (
	ErrBadRequest    = "BAD_REQUEST"
	ErrUnauthorized  = "UNAUTHORIZED"
	ErrNotFound      = "NOT_FOUND"
	ErrInternalError = "INTERNAL_ERROR"
)

// Pricing-specific error codes.
const (
	ErrInvalidQuantity       = "INVALID_QUANTITY"
	ErrUnknownVariableOption = "UNKNOWN_VARIABLE_OPTION"
	ErrMissingBaseSetting    = "MISSING_BASE_SETTING"
	ErrConfigLoadFailure     = "CONFIG_LOAD_FAILURE"
	ErrConfigSaveFailure     = "CONFIG_SAVE_FAILURE"
)

// ErrorEnvelope is the standard error shape surfaced by the pricing engine
// and its HTTP layer. It implements the error interface.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CodeOf returns the envelope code of err, or INTERNAL_ERROR for any other
// error type. A nil err yields the empty string.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	if env, ok := err.(*ErrorEnvelope); ok {
		return env.Code
	}
	return ErrInternalError
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewUnauthorizedError returns an UNAUTHORIZED error.
func NewUnauthorizedError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrUnauthorized, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}

// NewInvalidQuantityError returns an INVALID_QUANTITY error for a quantity
// that is zero or negative.
func NewInvalidQuantityError(quantity float64) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInvalidQuantity,
		Message: fmt.Sprintf("quantity must be greater than zero, got %g", quantity),
	}
}

// NewUnknownVariableOptionError returns an UNKNOWN_VARIABLE_OPTION error
// naming the offending category and option key. Unknown keys are always
// rejected rather than defaulted, so both entry paths fail identically.
func NewUnknownVariableOptionError(category, key string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrUnknownVariableOption,
		Message: fmt.Sprintf("no option %q in variable category %q", key, category),
		Details: []FieldError{{
			Field:   category,
			Code:    ErrUnknownVariableOption,
			Message: fmt.Sprintf("unknown option %q", key),
		}},
	}
}

// NewMissingBaseSettingError returns a MISSING_BASE_SETTING error for a
// config lacking a required numeric leaf, identified by its dotted path.
func NewMissingBaseSettingError(path string) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrMissingBaseSetting,
		Message: fmt.Sprintf("config is missing required base setting %q", path),
	}
}

// NewConfigLoadError wraps a backend read failure.
func NewConfigLoadError(cause error) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrConfigLoadFailure,
		Message: fmt.Sprintf("loading service config: %v", cause),
	}
}

// NewConfigSaveError wraps a backend write failure.
func NewConfigSaveError(cause error) *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrConfigSaveFailure,
		Message: fmt.Sprintf("saving service config: %v", cause),
	}
}
