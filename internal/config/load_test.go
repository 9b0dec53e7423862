// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsFromPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testCases := map[string]struct {
		path            string
		expectedOptions *Options
		expectedError   error
	}{
		"valid sink file": {
			path: filepath.Join("testdata", "sink.yaml"),
			expectedOptions: &Options{
				Elasticsearch: Elasticsearch{
					Bulk: map[string]string{"refresh": "true"},
				},
				IndexField:   FieldPaths{"table", "env"},
				DocTypeField: FieldPaths{"kind"},
				ParentField:  FieldPaths{"parentId"},
				PickFields:   []string{"id", "profile.name"},
				VersionField: FieldPaths{"version"},
				Separator:    stringPtr("-"),
				Retry: RetryOptions{
					Retries:  2,
					Delay:    100 * time.Millisecond,
					MaxDelay: time.Second,
				},
			},
		},
		"unknown option returns parsing error": {
			path:          filepath.Join("testdata", "unknown.yaml"),
			expectedError: ErrParsing,
		},
		"missing file returns error": {
			path:          filepath.Join(tempDir, "missing"),
			expectedError: syscall.ENOENT,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			options, err := NewOptionsFromPath(test.path)
			if test.expectedError != nil {
				assert.ErrorIs(t, err, test.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expectedOptions, options)
		})
	}
}

func stringPtr(s string) *string {
	return &s
}
