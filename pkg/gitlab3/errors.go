package gitlab3

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure raised by the client.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidArgument
	KindTypeMismatch
	KindMissingRequiredAttribute
	KindUnauthorizedRequest
	KindForbiddenRequest
	KindResourceNotFound
	KindRequestNotSupported
	KindResourceConflict
	KindServerError
	KindTransportError
	KindMalformedTemplate
)

var kindNames = map[ErrorKind]string{
	KindUnknown:                  "Unknown",
	KindInvalidArgument:          "InvalidArgument",
	KindTypeMismatch:             "TypeMismatch",
	KindMissingRequiredAttribute: "MissingRequiredAttribute",
	KindUnauthorizedRequest:      "UnauthorizedRequest",
	KindForbiddenRequest:         "ForbiddenRequest",
	KindResourceNotFound:         "ResourceNotFound",
	KindRequestNotSupported:      "RequestNotSupported",
	KindResourceConflict:         "ResourceConflict",
	KindServerError:              "ServerError",
	KindTransportError:           "TransportError",
	KindMalformedTemplate:        "MalformedTemplate",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the single error type raised by the client.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Method     string
	URL        string
	Message    string
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Kind.String()

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.Method != "" || e.URL != "" {
		msg = fmt.Sprintf("%s: %s %s", msg, e.Method, e.URL)
	}

	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err* sentinels work with
// errors.Is.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return other.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument          = &Error{Kind: KindInvalidArgument}
	ErrTypeMismatch             = &Error{Kind: KindTypeMismatch}
	ErrMissingRequiredAttribute = &Error{Kind: KindMissingRequiredAttribute}
	ErrUnauthorizedRequest      = &Error{Kind: KindUnauthorizedRequest}
	ErrForbiddenRequest         = &Error{Kind: KindForbiddenRequest}
	ErrResourceNotFound         = &Error{Kind: KindResourceNotFound}
	ErrRequestNotSupported      = &Error{Kind: KindRequestNotSupported}
	ErrResourceConflict         = &Error{Kind: KindResourceConflict}
	ErrServerError              = &Error{Kind: KindServerError}
	ErrTransportError           = &Error{Kind: KindTransportError}
	ErrMalformedTemplate        = &Error{Kind: KindMalformedTemplate}
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrURLRequired        = errors.New("GitLab URL is required")
	ErrSkipTLSOnlyInDev   = errors.New("skipTLS is only allowed in development environments")
	ErrUnexpectedPayload  = errors.New("unexpected response payload")
	ErrNoPrivateToken     = errors.New("session response carries no private_token")
	ErrUnknownResource    = errors.New("unknown resource")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrNotATimestampField = errors.New("not a timestamp field")
)

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error of the given kind around cause. errors.Is
// matches both the kind sentinel and cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindForStatus maps an HTTP status code onto an error kind. Codes below 400
// are successes and report false. Unlisted client errors map to
// KindMissingRequiredAttribute and unlisted server errors to KindServerError.
func KindForStatus(status int) (ErrorKind, bool) {
	switch {
	case status < http.StatusBadRequest:
		return KindUnknown, false
	case status == http.StatusUnauthorized:
		return KindUnauthorizedRequest, true
	case status == http.StatusForbidden:
		return KindForbiddenRequest, true
	case status == http.StatusNotFound:
		return KindResourceNotFound, true
	case status == http.StatusMethodNotAllowed:
		return KindRequestNotSupported, true
	case status == http.StatusConflict:
		return KindResourceConflict, true
	case status >= http.StatusInternalServerError:
		return KindServerError, true
	default:
		return KindMissingRequiredAttribute, true
	}
}

// NewStatusError builds the error for a failed response, or nil for codes
// below 400.
func NewStatusError(status int, method, url string, body []byte) *Error {
	kind, failed := KindForStatus(status)
	if !failed {
		return nil
	}

	return &Error{
		Kind:       kind,
		StatusCode: status,
		Method:     method,
		URL:        url,
		Message:    extractMessage(body),
		Body:       body,
	}
}

// extractMessage pulls GitLab's {"message": ...} out of an error body.
func extractMessage(body []byte) string {
	var envelope struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return ""
	}

	switch {
	case envelope.Message != nil:
		return fmt.Sprint(envelope.Message)
	case envelope.Error != nil:
		return fmt.Sprint(envelope.Error)
	default:
		return ""
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var glErr *Error
	if errors.As(err, &glErr) {
		return glErr.Kind
	}

	return KindUnknown
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindResourceNotFound
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorizedRequest
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbiddenRequest
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return KindOf(err) == KindResourceConflict
}

// IsTransport checks if the request never produced a status code.
func IsTransport(err error) bool {
	return KindOf(err) == KindTransportError
}
