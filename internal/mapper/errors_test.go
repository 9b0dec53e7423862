// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package mapper

import (
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func TestUnknownEventNameError(t *testing.T) {
	t.Parallel()

	unknownErr := &UnknownEventNameError{
		Record: events.DynamoDBEventRecord{EventName: "TRUNCATE"},
	}

	assert.Equal(t, `unknown event name "TRUNCATE"`, unknownErr.Error())
	assert.True(t, errors.Is(unknownErr, ErrUnknownEventName))
	assert.True(t, errors.Is(unknownErr, unknownErr))
	assert.False(t, errors.Is(unknownErr, errors.New("other error")))

	assert.False(t, unknownErr.Is(nil))
}
