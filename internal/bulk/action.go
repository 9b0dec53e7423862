// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bulk

import "encoding/json"

// VersionTypeExternal instructs Elasticsearch to honor the version carried by
// the action instead of managing versions itself.
const VersionTypeExternal = "external"

type Operation int

const (
	// OperationIndex upserts the document identified by the action.
	OperationIndex Operation = iota
	// OperationDelete removes the document identified by the action.
	OperationDelete
)

func (o Operation) key() string {
	if o == OperationDelete {
		return "delete"
	}

	return "index"
}

// Action is the write-target metadata of a single bulk line. DocType, Parent,
// Version and VersionType are optional and are never serialized when empty.
type Action struct {
	Operation   Operation
	Index       string
	DocType     string
	ID          string
	Parent      string
	Version     *int64
	VersionType string
}

// MarshalJSON renders the action in the Elasticsearch bulk metadata format,
// e.g. {"index":{"_index":"idx","_id":"1"}}.
func (a *Action) MarshalJSON() ([]byte, error) {
	meta := map[string]any{
		"_index": a.Index,
		"_id":    a.ID,
	}

	if a.DocType != "" {
		meta["_type"] = a.DocType
	}
	if a.Parent != "" {
		meta["parent"] = a.Parent
	}
	if a.Version != nil {
		meta["version"] = *a.Version
	}
	if a.VersionType != "" {
		meta["version_type"] = a.VersionType
	}

	return json.Marshal(map[string]any{a.Operation.key(): meta})
}
