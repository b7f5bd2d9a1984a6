package common

// AppError is an error that already knows how it should be presented over
// HTTP. Handlers pass it through unchanged instead of mapping a sentinel.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    any
	Err        error
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status returns the HTTP status, or fallback when none was set.
func (e *AppError) Status(fallback int) int {
	if e == nil || e.HTTPStatus == 0 {
		return fallback
	}
	return e.HTTPStatus
}
