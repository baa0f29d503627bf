package llm

import "errors"

// Error type identifiers. Adapters and the dispatcher classify every
// failure under exactly one of these so callers can branch on the
// category without matching message strings.
const (
	ErrTypeValidation            = "validation_error"
	ErrTypeAuthentication        = "authentication_error"
	ErrTypeProvider              = "provider_error"
	ErrTypeParse                 = "parse_error"
	ErrTypeUnsupportedProvider   = "unsupported_provider"
	ErrTypeNotRegistered         = "not_registered"
	ErrTypeNoActiveProvider      = "no_active_provider"
	ErrTypeMultimodalUnsupported = "multimodal_unsupported"
)

// Error represents an error from an LLM provider or the dispatcher.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates an error for input rejected before any
// network call is made.
func NewValidationError(code, message string) *Error {
	return &Error{Code: code, Message: message, Type: ErrTypeValidation}
}

// NewAuthError creates an error for credential acquisition or refresh
// failures.
func NewAuthError(code, message string) *Error {
	return &Error{Code: code, Message: message, Type: ErrTypeAuthentication}
}

// NewProviderError creates an error for a non-success HTTP status from
// the vendor, carrying the status code and the vendor-supplied detail.
func NewProviderError(statusCode int, message string) *Error {
	return &Error{
		Code:       "provider_error",
		Message:    message,
		Type:       ErrTypeProvider,
		StatusCode: statusCode,
	}
}

// NewParseError creates an error for a response body that is not valid
// JSON or lacks every known envelope shape for the vendor.
func NewParseError(message string) *Error {
	return &Error{Code: "parse_error", Message: message, Type: ErrTypeParse}
}

func isType(err error, errType string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return isType(err, ErrTypeValidation) }

// IsAuth reports whether err is an authentication error.
func IsAuth(err error) bool { return isType(err, ErrTypeAuthentication) }

// IsProvider reports whether err is a provider error.
func IsProvider(err error) bool { return isType(err, ErrTypeProvider) }

// IsParse reports whether err is a parse error.
func IsParse(err error) bool { return isType(err, ErrTypeParse) }

// IsUnsupportedProvider reports whether err names a vendor outside the
// known set.
func IsUnsupportedProvider(err error) bool { return isType(err, ErrTypeUnsupportedProvider) }

// IsNotRegistered reports whether err refers to a provider name with no
// registered instance.
func IsNotRegistered(err error) bool { return isType(err, ErrTypeNotRegistered) }

// IsNoActiveProvider reports whether err was raised by dispatching with
// no active provider selected.
func IsNoActiveProvider(err error) bool { return isType(err, ErrTypeNoActiveProvider) }

// IsMultimodalUnsupported reports whether err was raised by the
// multimodal capability gate.
func IsMultimodalUnsupported(err error) bool { return isType(err, ErrTypeMultimodalUnsupported) }
