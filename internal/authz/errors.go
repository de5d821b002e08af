package authz

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is matched by every AccessDeniedError
var ErrAccessDenied = errors.New("access denied")

// AccessDeniedError is a permission failure with a user facing reason
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAccessDenied, e.Reason)
}

// Is reports ErrAccessDenied as the target
func (*AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}

func denied(format string, args ...any) error {
	return &AccessDeniedError{Reason: fmt.Sprintf(format, args...)}
}
