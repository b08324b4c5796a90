package service

import "errors"

var (
	ErrValidation = errors.New("validation")
	ErrUpload     = errors.New("upload")
	ErrPersist    = errors.New("persist")
	ErrQuery      = errors.New("query")
)

// ServiceError wraps a sentinel error with a specific code and message for
// the handler to use. Cause, when set, is the underlying failure.
type ServiceError struct {
	Err     error
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

func ValidationError(code, message string) *ServiceError {
	return NewError(ErrValidation, code, message)
}

func UploadError(code, message string, cause error) *ServiceError {
	return &ServiceError{Err: ErrUpload, Code: code, Message: message, Cause: cause}
}

// DecodeError reports an attachment payload that is not a base64 data URI.
func DecodeError(message string, cause error) *ServiceError {
	return UploadError("DECODE_FAILED", message, cause)
}

func PersistError(message string, cause error) *ServiceError {
	return &ServiceError{Err: ErrPersist, Code: "PERSIST_FAILED", Message: message, Cause: cause}
}

// QueryError surfaces the underlying read failure text to the caller.
func QueryError(cause error) *ServiceError {
	return &ServiceError{Err: ErrQuery, Code: "QUERY_FAILED", Message: cause.Error(), Cause: cause}
}
