package apperror

// AppError carries the HTTP status and the message shown to the client.
type AppError struct {
	Code    int            // HTTP status code
	Message string         // user-facing message
	Details map[string]any // extra fields merged into the response body
	Err     error          // underlying error, never exposed
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates an AppError around an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails attaches extra response fields.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}
