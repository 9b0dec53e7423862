// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bulk

// Result is the outcome of a bulk submission as reported by Elasticsearch.
type Result struct {
	Took   int              `json:"took"`
	Errors bool             `json:"errors"`
	Items  []map[string]any `json:"items"`
}

// EmptyResult returns the canonical result of an invocation that produced no
// actions and therefore skipped submission entirely.
func EmptyResult() *Result {
	return &Result{
		Took:   0,
		Errors: false,
		Items:  []map[string]any{},
	}
}
