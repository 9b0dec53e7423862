// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/events"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/config"
	"github.com/mia-platform/essink/internal/destination"
	"github.com/mia-platform/essink/internal/logger"
	"github.com/mia-platform/essink/internal/mapper"
)

const loggerName = "essink:pipeline"

// Pipeline converts one batch of change-stream records into a single bulk
// submission. A Pipeline holds no per-invocation state: the same instance can
// serve any number of sequential invocations.
type Pipeline struct {
	opts   *config.Options
	mapper *mapper.Mapper
	client destination.BulkSubmitter
}

// New validates the options once and builds a Pipeline from them.
// Configuration shape errors surface here and are never recoverable through
// the error hook.
func New(options *config.Options) (*Pipeline, error) {
	if options == nil {
		return nil, config.NewValidationError("options are required")
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		opts:   options,
		mapper: mapper.New(options),
		client: options.Elasticsearch.Client,
	}, nil
}

// Handle processes one incoming batch: validate, run the before hook,
// assemble, submit with bounded retry and dispatch the outcome hooks. Empty
// assembled batches short-circuit with a canonical empty result and never
// reach the client.
func (p *Pipeline) Handle(ctx context.Context, event *events.DynamoDBEvent) (*bulk.Result, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	if err := validateEvent(event); err != nil {
		return p.recover(ctx, event, err)
	}

	if p.opts.BeforeHook != nil {
		// before hook failures propagate uncaught, bypassing the error hook
		if err := p.opts.BeforeHook(ctx, event); err != nil {
			return nil, err
		}
	}

	request, err := p.mapper.BuildRequest(ctx, event)
	if err != nil {
		return p.recover(ctx, event, err)
	}

	if request.Empty() {
		log.Debug("no actions assembled, skipping submission", "records", len(event.Records))
		return bulk.EmptyResult(), nil
	}

	log.Debug("submitting bulk request", "records", len(event.Records), "actions", request.Len())
	result, err := p.submit(ctx, log, request)
	if err != nil {
		return p.recover(ctx, event, err)
	}

	log.Info("bulk request delivered", "actions", request.Len(), "took", result.Took, "errors", result.Errors)

	if p.opts.AfterHook != nil {
		override, err := p.opts.AfterHook(ctx, event, result, request.Metadata())
		if err != nil {
			return p.recover(ctx, event, err)
		}
		if override != nil {
			result = override
		}
	}

	return result, nil
}

// submit delivers the request through the client, retrying sequentially up to
// the configured number of additional attempts. Every attempt resubmits the
// identical, already-assembled request.
func (p *Pipeline) submit(ctx context.Context, log logger.Logger, request *bulk.Request) (*bulk.Result, error) {
	retryOpts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.opts.Retry.Retries + 1),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn("bulk submission failed, retrying", "attempt", attempt+1, "error", err)
		}),
	}
	if p.opts.Retry.Delay > 0 {
		retryOpts = append(retryOpts, retry.Delay(p.opts.Retry.Delay))
	}
	if p.opts.Retry.MaxDelay > 0 {
		retryOpts = append(retryOpts, retry.MaxDelay(p.opts.Retry.MaxDelay))
	}
	if p.opts.Retry.MaxJitter > 0 {
		retryOpts = append(retryOpts, retry.MaxJitter(p.opts.Retry.MaxJitter))
	}

	return retry.DoWithData(func() (*bulk.Result, error) {
		return p.client.SubmitBulk(ctx, request, p.opts.Elasticsearch.Bulk)
	}, retryOpts...)
}

// recover routes a batch-level failure to the error hook when one is
// configured, otherwise propagates it to the caller.
func (p *Pipeline) recover(ctx context.Context, event *events.DynamoDBEvent, handlerErr error) (*bulk.Result, error) {
	if p.opts.ErrorHook != nil {
		return p.opts.ErrorHook(ctx, event, handlerErr)
	}

	return nil, handlerErr
}

// validateEvent checks the incoming batch shape. Unknown fields are already
// tolerated by the JSON decoding of the event itself.
func validateEvent(event *events.DynamoDBEvent) error {
	if event == nil {
		return config.NewValidationError("incoming batch is required")
	}
	if event.Records == nil {
		return config.NewValidationError("incoming batch has no records list")
	}

	return nil
}
