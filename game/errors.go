package game

import "errors"

// ValidationError is a rejected request: duplicate name, full lobby,
// not-owner, session already active. The caller's state is unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError reports an absent lobby, player or session.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return e.What + " not found" }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsTransport reports whether err is neither a validation nor a not-found
// failure, i.e. the backend was unreachable or misbehaved. Callers keep
// their prior state on transport failures.
func IsTransport(err error) bool {
	return err != nil && !IsValidation(err) && !IsNotFound(err)
}
