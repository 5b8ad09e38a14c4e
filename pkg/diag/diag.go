// Package diag defines the two failure classes the compiler reports.
// Unsupported-input errors describe source constructs the compiler does not
// model and are actionable by the user. Internal errors describe instruction
// shapes a later stage received that an earlier stage should never have
// produced; they indicate a defect in the pipeline itself.
package diag

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks constructs with no lowering at the current stage.
var ErrUnsupported = errors.New("unsupported")

// ErrInternal marks pipeline self-consistency violations.
var ErrInternal = errors.New("internal error")

// Unsupportedf returns an error wrapping ErrUnsupported.
func Unsupportedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// Internalf returns an error wrapping ErrInternal.
func Internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}
