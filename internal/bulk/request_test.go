// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package bulk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/essink/internal/source"
)

func TestRequestKeepsActionAndMetadataAligned(t *testing.T) {
	t.Parallel()

	request := NewRequest()
	assert.True(t, request.Empty())

	first := &Action{Operation: OperationIndex, Index: "table", ID: "1"}
	second := &Action{Operation: OperationDelete, Index: "table", ID: "2"}
	firstRecord := &source.Record{Keys: map[string]any{"id": "1"}}
	secondRecord := &source.Record{Keys: map[string]any{"id": "2"}}

	request.Append(first, map[string]any{"id": "1"}, firstRecord)
	request.Append(second, nil, secondRecord)

	require.Equal(t, 2, request.Len())
	assert.False(t, request.Empty())

	items := request.Items()
	metadata := request.Metadata()
	require.Len(t, metadata, 2)

	assert.Same(t, first, items[0].Action)
	assert.Same(t, first, metadata[0].Action)
	assert.Equal(t, firstRecord, metadata[0].Event)
	assert.Equal(t, map[string]any{"id": "1"}, metadata[0].Document)

	assert.Same(t, second, items[1].Action)
	assert.Same(t, second, metadata[1].Action)
	assert.Nil(t, metadata[1].Document)
}

func TestRequestEncodeNDJSON(t *testing.T) {
	t.Parallel()

	request := NewRequest()
	request.Append(
		&Action{Operation: OperationIndex, Index: "table", ID: "1"},
		map[string]any{"name": "first"},
		&source.Record{},
	)
	request.Append(
		&Action{Operation: OperationDelete, Index: "table", ID: "2"},
		nil,
		&source.Record{},
	)

	buffer := new(bytes.Buffer)
	require.NoError(t, request.EncodeNDJSON(buffer))

	lines := strings.Split(strings.TrimRight(buffer.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.JSONEq(t, `{"index":{"_index":"table","_id":"1"}}`, lines[0])
	assert.JSONEq(t, `{"name":"first"}`, lines[1])
	assert.JSONEq(t, `{"delete":{"_index":"table","_id":"2"}}`, lines[2])
}

func TestEmptyResult(t *testing.T) {
	t.Parallel()

	result := EmptyResult()
	assert.Equal(t, 0, result.Took)
	assert.False(t, result.Errors)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}
