// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/destination"
)

var _ destination.BulkSubmitter = &FakeDestination{}

// FakeDestination records every submission for assertions. Err, when set,
// fails every call; ErrQueue entries are consumed one per call, with nil
// meaning success, to script sequences like "fail twice then succeed".
type FakeDestination struct {
	tb testing.TB

	Requests []*bulk.Request
	Params   []map[string]string

	Result   *bulk.Result
	Err      error
	ErrQueue []error
}

func NewFakeDestination(tb testing.TB) *FakeDestination {
	tb.Helper()
	return &FakeDestination{tb: tb}
}

func (f *FakeDestination) SubmitBulk(_ context.Context, request *bulk.Request, params map[string]string) (*bulk.Result, error) {
	f.tb.Helper()
	f.Requests = append(f.Requests, request)
	f.Params = append(f.Params, params)

	if f.Err != nil {
		return nil, f.Err
	}

	if len(f.ErrQueue) > 0 {
		next := f.ErrQueue[0]
		f.ErrQueue = f.ErrQueue[1:]
		if next != nil {
			return nil, next
		}
	}

	if f.Result != nil {
		return f.Result, nil
	}

	return &bulk.Result{Took: 1, Errors: false, Items: []map[string]any{}}, nil
}

// Calls returns the number of submissions performed.
func (f *FakeDestination) Calls() int {
	return len(f.Requests)
}
