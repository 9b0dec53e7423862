// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/config"
	"github.com/mia-platform/essink/internal/destination/fake"
)

func testOptions(client *fake.FakeDestination) *config.Options {
	return &config.Options{
		Elasticsearch: config.Elasticsearch{Client: client},
		Index:         "table",
	}
}

func testEvent(ids ...string) *events.DynamoDBEvent {
	records := make([]events.DynamoDBEventRecord, 0, len(ids))
	for _, id := range ids {
		image := map[string]events.DynamoDBAttributeValue{
			"pk": events.NewStringAttribute(id),
		}
		records = append(records, events.DynamoDBEventRecord{
			EventID:   "event-" + id,
			EventName: "INSERT",
			Change: events.DynamoDBStreamRecord{
				Keys:     image,
				NewImage: image,
			},
		})
	}

	return &events.DynamoDBEvent{Records: records}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil options fail validation", func(t *testing.T) {
		t.Parallel()

		pipeline, err := New(nil)
		assert.Nil(t, pipeline)
		assert.ErrorIs(t, err, config.ErrValidation)
	})

	t.Run("invalid options fail validation", func(t *testing.T) {
		t.Parallel()

		pipeline, err := New(&config.Options{})
		assert.Nil(t, pipeline)
		assert.ErrorIs(t, err, config.ErrValidation)
	})

	t.Run("valid options build a pipeline", func(t *testing.T) {
		t.Parallel()

		pipeline, err := New(testOptions(fake.NewFakeDestination(t)))
		require.NoError(t, err)
		assert.NotNil(t, pipeline)
	})
}

func TestHandleDelivery(t *testing.T) {
	t.Parallel()

	t.Run("a batch is assembled and submitted once", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		client.Result = &bulk.Result{Took: 12, Errors: false, Items: []map[string]any{{}}}

		pipeline, err := New(testOptions(client))
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1", "2"))
		require.NoError(t, err)
		assert.Equal(t, client.Result, result)
		require.Equal(t, 1, client.Calls())
		assert.Equal(t, 2, client.Requests[0].Len())
	})

	t.Run("bulk parameters reach the client untouched", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.Elasticsearch.Bulk = map[string]string{"refresh": "true"}

		pipeline, err := New(options)
		require.NoError(t, err)

		_, err = pipeline.Handle(t.Context(), testEvent("1"))
		require.NoError(t, err)
		require.Equal(t, 1, client.Calls())
		assert.Equal(t, map[string]string{"refresh": "true"}, client.Params[0])
	})

	t.Run("an empty records list yields the canonical empty result", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		pipeline, err := New(testOptions(client))
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent())
		require.NoError(t, err)
		assert.Equal(t, bulk.EmptyResult(), result)
		assert.Zero(t, client.Calls())
	})

	t.Run("a batch where every record is skipped never reaches the client", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.TransformRecordHook = func(map[string]any, map[string]any) map[string]any {
			return nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1", "2"))
		require.NoError(t, err)
		assert.Equal(t, bulk.EmptyResult(), result)
		assert.Zero(t, client.Calls())
	})
}

func TestHandleValidatesEvent(t *testing.T) {
	t.Parallel()

	testCases := map[string]*events.DynamoDBEvent{
		"nil event":        nil,
		"nil records list": {},
	}

	for name, event := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			pipeline, err := New(testOptions(fake.NewFakeDestination(t)))
			require.NoError(t, err)

			result, err := pipeline.Handle(t.Context(), event)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, config.ErrValidation)
		})
	}
}

func TestHandleRetries(t *testing.T) {
	t.Parallel()

	t.Run("a persistent failure is retried the configured number of times", func(t *testing.T) {
		t.Parallel()

		submitErr := errors.New("connection refused")
		client := fake.NewFakeDestination(t)
		client.Err = submitErr

		options := testOptions(client)
		options.Retry = config.RetryOptions{Retries: 2}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1"))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, submitErr)
		assert.Equal(t, 3, client.Calls())
	})

	t.Run("a transient failure recovers within the retry budget", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		client.ErrQueue = []error{errors.New("timeout"), nil}
		client.Result = &bulk.Result{Took: 3, Errors: false, Items: []map[string]any{{}}}

		options := testOptions(client)
		options.Retry = config.RetryOptions{Retries: 2}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1"))
		require.NoError(t, err)
		assert.Equal(t, client.Result, result)
		assert.Equal(t, 2, client.Calls())
	})

	t.Run("without retries a failure aborts after one attempt", func(t *testing.T) {
		t.Parallel()

		submitErr := errors.New("connection refused")
		client := fake.NewFakeDestination(t)
		client.Err = submitErr

		pipeline, err := New(testOptions(client))
		require.NoError(t, err)

		_, err = pipeline.Handle(t.Context(), testEvent("1"))
		assert.ErrorIs(t, err, submitErr)
		assert.Equal(t, 1, client.Calls())
	})
}

func TestHandleHooks(t *testing.T) {
	t.Parallel()

	t.Run("before hook runs ahead of assembly", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		options := testOptions(client)

		var seen *events.DynamoDBEvent
		options.BeforeHook = func(_ context.Context, event *events.DynamoDBEvent) error {
			seen = event
			return nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		event := testEvent("1")
		_, err = pipeline.Handle(t.Context(), event)
		require.NoError(t, err)
		assert.Same(t, event, seen)
	})

	t.Run("before hook errors bypass the error hook", func(t *testing.T) {
		t.Parallel()

		beforeErr := errors.New("not ready")
		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.BeforeHook = func(context.Context, *events.DynamoDBEvent) error {
			return beforeErr
		}
		options.ErrorHook = func(context.Context, *events.DynamoDBEvent, error) (*bulk.Result, error) {
			t.Fatal("error hook must not intercept before hook failures")
			return nil, nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1"))
		assert.Nil(t, result)
		assert.ErrorIs(t, err, beforeErr)
		assert.Zero(t, client.Calls())
	})

	t.Run("after hook receives result and aligned metadata", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.IDField = config.FieldPaths{"pk"}

		var metadata []bulk.RecordMeta
		options.AfterHook = func(_ context.Context, _ *events.DynamoDBEvent, result *bulk.Result, meta []bulk.RecordMeta) (*bulk.Result, error) {
			metadata = meta
			return nil, nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1", "2"))
		require.NoError(t, err)
		assert.False(t, result.Errors)
		require.Len(t, metadata, 2)
		assert.Equal(t, "1", metadata[0].Action.ID)
		assert.Equal(t, "2", metadata[1].Action.ID)
	})

	t.Run("after hook override replaces the delivery result", func(t *testing.T) {
		t.Parallel()

		override := &bulk.Result{Took: 99, Errors: true, Items: []map[string]any{}}
		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.AfterHook = func(context.Context, *events.DynamoDBEvent, *bulk.Result, []bulk.RecordMeta) (*bulk.Result, error) {
			return override, nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1"))
		require.NoError(t, err)
		assert.Same(t, override, result)
	})

	t.Run("after hook does not run for an empty assembled batch", func(t *testing.T) {
		t.Parallel()

		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.AfterHook = func(context.Context, *events.DynamoDBEvent, *bulk.Result, []bulk.RecordMeta) (*bulk.Result, error) {
			t.Fatal("after hook must not run when nothing was submitted")
			return nil, nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent())
		require.NoError(t, err)
		assert.Equal(t, bulk.EmptyResult(), result)
	})

	t.Run("error hook replaces a delivery failure", func(t *testing.T) {
		t.Parallel()

		recovered := &bulk.Result{Took: 0, Errors: true, Items: []map[string]any{}}
		client := fake.NewFakeDestination(t)
		client.Err = errors.New("connection refused")

		options := testOptions(client)
		options.ErrorHook = func(_ context.Context, _ *events.DynamoDBEvent, handlerErr error) (*bulk.Result, error) {
			assert.ErrorIs(t, handlerErr, client.Err)
			return recovered, nil
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		result, err := pipeline.Handle(t.Context(), testEvent("1"))
		require.NoError(t, err)
		assert.Same(t, recovered, result)
	})

	t.Run("error hook intercepts after hook failures", func(t *testing.T) {
		t.Parallel()

		afterErr := errors.New("notification failed")
		client := fake.NewFakeDestination(t)
		options := testOptions(client)
		options.AfterHook = func(context.Context, *events.DynamoDBEvent, *bulk.Result, []bulk.RecordMeta) (*bulk.Result, error) {
			return nil, afterErr
		}

		var intercepted error
		options.ErrorHook = func(_ context.Context, _ *events.DynamoDBEvent, handlerErr error) (*bulk.Result, error) {
			intercepted = handlerErr
			return nil, handlerErr
		}

		pipeline, err := New(options)
		require.NoError(t, err)

		_, err = pipeline.Handle(t.Context(), testEvent("1"))
		assert.ErrorIs(t, err, afterErr)
		assert.ErrorIs(t, intercepted, afterErr)
	})
}
