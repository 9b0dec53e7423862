// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package mapper

import (
	"strings"

	"github.com/mia-platform/essink/internal/source"
)

// buildDocument derives the payload to write for one record: the full new
// image, projected onto the configured pick fields, then optionally replaced
// by the transform hook. A nil result means the record must be skipped.
func (m *Mapper) buildDocument(record *source.Record) map[string]any {
	document := record.NewImage
	if len(m.cfg.PickFields) > 0 {
		document = pickDocument(document, m.cfg.PickFields)
	}

	if m.cfg.TransformRecordHook != nil {
		document = m.cfg.TransformRecordHook(document, record.OldImage)
	}

	return document
}

// pickDocument projects document onto the given dotted paths. Paths missing
// from the document are ignored; the projected result mirrors the source
// nesting.
func pickDocument(document map[string]any, paths []string) map[string]any {
	picked := make(map[string]any)
	for _, path := range paths {
		value, found := source.Lookup(document, path)
		if !found {
			continue
		}
		setPath(picked, path, value)
	}

	return picked
}

// setPath writes value at the dotted path inside document, creating the
// intermediate maps as needed.
func setPath(document map[string]any, path string, value any) {
	segments := strings.Split(path, ".")

	current := document
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
}
