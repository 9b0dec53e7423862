// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"fmt"
	"strings"
)

// DefaultSeparator joins the parts of composite field values when no custom
// separator is configured.
const DefaultSeparator = "."

// GetField resolves a dotted field path against the record views, searching
// Keys first, then NewImage, then OldImage. Identity fields win over
// post-change fields, post-change fields win over pre-change fields.
func GetField(record *Record, path string) (any, error) {
	for _, view := range []map[string]any{record.Keys, record.NewImage, record.OldImage} {
		if value, found := Lookup(view, path); found {
			return value, nil
		}
	}

	return nil, &FieldNotFoundError{Record: record, Path: path}
}

// AssembleField resolves one or more field paths against the record. A single
// path returns its value as-is, without string coercion; multiple paths are
// resolved independently, stringified and joined with separator, which may be
// empty.
func AssembleField(record *Record, paths []string, separator string) (any, error) {
	if len(paths) == 1 {
		return GetField(record, paths[0])
	}

	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		value, err := GetField(record, path)
		if err != nil {
			return nil, err
		}
		parts = append(parts, fmt.Sprintf("%v", value))
	}

	return strings.Join(parts, separator), nil
}

// Lookup descends into nested maps following the dot-separated segments of
// path. The boolean result distinguishes a found nil value from a missing
// one.
func Lookup(document map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	current := any(document)
	for _, segment := range segments {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		value, found := asMap[segment]
		if !found {
			return nil, false
		}
		current = value
	}

	return current, true
}
