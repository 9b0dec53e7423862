// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"errors"
	"fmt"
)

// ErrFieldNotFound is the sentinel matched by every FieldNotFoundError.
var ErrFieldNotFound = errors.New("field not found")

var _ error = &FieldNotFoundError{}

// FieldNotFoundError reports a configured field path that resolves to nothing
// in the record keys or images.
type FieldNotFoundError struct {
	Record *Record
	Path   string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found in record keys or images", e.Path)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}
