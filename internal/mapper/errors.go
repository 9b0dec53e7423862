// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package mapper

import (
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// ErrUnknownEventName is the sentinel matched by every UnknownEventNameError.
var ErrUnknownEventName = errors.New("unknown event name")

var _ error = &UnknownEventNameError{}

// UnknownEventNameError reports a stream record whose event name is not
// INSERT, MODIFY or REMOVE. It carries the raw record for the error hooks.
type UnknownEventNameError struct {
	Record events.DynamoDBEventRecord
}

func (e *UnknownEventNameError) Error() string {
	return fmt.Sprintf("unknown event name %q", e.Record.EventName)
}

func (e *UnknownEventNameError) Is(target error) bool {
	return target == ErrUnknownEventName
}
