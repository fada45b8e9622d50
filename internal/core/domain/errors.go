package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAccessDenied    = errors.New("access denied")
	ErrSessionNotFound = errors.New("session not found")
	ErrValidation      = errors.New("validation failed")
	ErrRemote          = errors.New("remote service failure")
	ErrIntegrationPush = errors.New("integration push failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// FieldErrors carries server-side per-field rejections (the 422 case).
// These are mapped back onto the originating form fields instead of
// producing a single notification.
type FieldErrors map[string][]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for name := range f {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fmt.Sprintf("fields rejected: %s", strings.Join(fields, ", "))
}

// AsFieldErrors extracts a FieldErrors from anywhere in the chain.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
