package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	// ErrModelUnavailable marks an optional NLP/embedding/generation backend
	// that is not configured. Components degrade on it, callers never see it.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrTemporary        = errors.New("temporary failure")
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
