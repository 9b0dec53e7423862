// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/info"
)

func testServerApp(t *testing.T, handler BatchHandler) *impServer {
	t.Helper()

	server, err := NewServer(context.Background(), handler)
	require.NoError(t, err)
	return server.(*impServer)
}

func TestStatusRoute(t *testing.T) {
	server := testServerApp(t, nil)

	response, err := server.app.Test(httptest.NewRequest(http.MethodGet, statusPath, nil))
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)

	body := make(map[string]string)
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	assert.Equal(t, map[string]string{
		"name":    info.AppName,
		"version": info.Version,
		"status":  "OK",
	}, body)
}

func TestBatchRoute(t *testing.T) {
	validBatch := `{"Records":[{"eventID":"1","eventName":"INSERT","dynamodb":{"Keys":{"pk":{"S":"a"}}}}]}`

	t.Run("a posted batch reaches the handler and its result is returned", func(t *testing.T) {
		var received *events.DynamoDBEvent
		server := testServerApp(t, func(_ context.Context, event *events.DynamoDBEvent) (*bulk.Result, error) {
			received = event
			return &bulk.Result{Took: 5, Errors: false, Items: []map[string]any{}}, nil
		})

		request := httptest.NewRequest(http.MethodPost, batchesPath, strings.NewReader(validBatch))
		request.Header.Set("Content-Type", "application/json")

		response, err := server.app.Test(request)
		require.NoError(t, err)
		defer response.Body.Close()

		assert.Equal(t, http.StatusOK, response.StatusCode)
		require.NotNil(t, received)
		require.Len(t, received.Records, 1)
		assert.Equal(t, "INSERT", received.Records[0].EventName)

		result := new(bulk.Result)
		require.NoError(t, json.NewDecoder(response.Body).Decode(result))
		assert.Equal(t, 5, result.Took)
	})

	t.Run("a malformed body is rejected with 400", func(t *testing.T) {
		server := testServerApp(t, func(context.Context, *events.DynamoDBEvent) (*bulk.Result, error) {
			t.Fatal("handler must not run for malformed payloads")
			return nil, nil
		})

		request := httptest.NewRequest(http.MethodPost, batchesPath, strings.NewReader("not json"))
		request.Header.Set("Content-Type", "application/json")

		response, err := server.app.Test(request)
		require.NoError(t, err)
		defer response.Body.Close()

		assert.Equal(t, http.StatusBadRequest, response.StatusCode)

		body := make(map[string]any)
		require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
		assert.Equal(t, "malformed change-stream batch", body["message"])
	})

	t.Run("a handler failure maps to 500", func(t *testing.T) {
		server := testServerApp(t, func(context.Context, *events.DynamoDBEvent) (*bulk.Result, error) {
			return nil, errors.New("delivery failed")
		})

		request := httptest.NewRequest(http.MethodPost, batchesPath, strings.NewReader(validBatch))
		request.Header.Set("Content-Type", "application/json")

		response, err := server.app.Test(request)
		require.NoError(t, err)
		defer response.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, response.StatusCode)

		body := make(map[string]any)
		require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
		assert.Equal(t, "error processing change-stream batch", body["message"])
	})
}

func TestNewServerInvalidEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "0")

	_, err := NewServer(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
}
