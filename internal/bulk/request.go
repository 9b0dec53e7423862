// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bulk

import (
	"encoding/json"
	"io"

	"github.com/mia-platform/essink/internal/source"
)

// Item pairs an action with its document payload. Document is nil for delete
// actions.
type Item struct {
	Action   *Action
	Document map[string]any
}

// RecordMeta is the per-record observability payload handed to post-delivery
// hooks. Event carries the original stream record together with its decoded
// key and image views.
type RecordMeta struct {
	Event    *source.Record
	Action   *Action
	Document map[string]any
}

// Request accumulates the actions of one invocation. Items and metadata are
// appended in lockstep and keep the input record order.
type Request struct {
	items []Item
	meta  []RecordMeta
}

func NewRequest() *Request {
	return &Request{
		items: make([]Item, 0),
		meta:  make([]RecordMeta, 0),
	}
}

// Append adds an action and its optional document to the request, recording
// the matching metadata entry.
func (r *Request) Append(action *Action, document map[string]any, event *source.Record) {
	r.items = append(r.items, Item{Action: action, Document: document})
	r.meta = append(r.meta, RecordMeta{Event: event, Action: action, Document: document})
}

// Items returns the accumulated actions in input order.
func (r *Request) Items() []Item {
	return r.items
}

// Metadata returns the per-record metadata in the same order as Items.
func (r *Request) Metadata() []RecordMeta {
	return r.meta
}

// Len returns the number of accumulated actions.
func (r *Request) Len() int {
	return len(r.items)
}

// Empty reports whether the request contains no actions.
func (r *Request) Empty() bool {
	return len(r.items) == 0
}

// EncodeNDJSON writes the request in the newline-delimited format expected by
// the Elasticsearch bulk API: one metadata line per action, followed by the
// document line for index actions.
func (r *Request) EncodeNDJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	for _, item := range r.items {
		if err := encoder.Encode(item.Action); err != nil {
			return err
		}

		if item.Action.Operation == OperationDelete {
			continue
		}

		if err := encoder.Encode(item.Document); err != nil {
			return err
		}
	}

	return nil
}
