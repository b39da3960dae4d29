// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
)

// ErrInvalidRuntimeType is wrapped by InvalidRuntimeTypeError.
var ErrInvalidRuntimeType = errors.New("invalid runtime type")

// InvalidRuntimeTypeError reports an unknown runtime name.
type InvalidRuntimeTypeError struct {
	Value RuntimeType
}

// Error implements error.
func (e *InvalidRuntimeTypeError) Error() string {
	return fmt.Sprintf("invalid runtime type %q (must be %q or %q)", e.Value, RuntimeTypeNative, RuntimeTypeVirtual)
}

// Unwrap returns ErrInvalidRuntimeType.
func (e *InvalidRuntimeTypeError) Unwrap() error { return ErrInvalidRuntimeType }

// IsValid reports whether t names a known runtime.
func (t RuntimeType) IsValid() (bool, []error) {
	switch t {
	case RuntimeTypeNative, RuntimeTypeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidRuntimeTypeError{Value: t}}
	}
}

// String returns the runtime name.
func (t RuntimeType) String() string { return string(t) }
