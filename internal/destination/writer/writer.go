// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer provides a destination that prints the bulk payload to an
// io.Writer instead of delivering it, for local runs and debugging.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/destination"
)

var _ destination.BulkSubmitter = &writerDestination{}

type writerDestination struct {
	writer io.Writer

	lock sync.Mutex
}

func NewDestination(w io.Writer) destination.BulkSubmitter {
	return &writerDestination{
		writer: w,
	}
}

// SubmitBulk writes the request in bulk NDJSON format and reports a
// successful result without contacting any engine.
func (d *writerDestination) SubmitBulk(_ context.Context, request *bulk.Request, _ map[string]string) (*bulk.Result, error) {
	buffer := new(bytes.Buffer)
	if err := request.EncodeNDJSON(buffer); err != nil {
		return nil, err
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	if _, err := fmt.Fprint(d.writer, buffer.String()); err != nil {
		return nil, err
	}

	return bulk.EmptyResult(), nil
}
