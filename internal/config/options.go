// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"gopkg.in/yaml.v3"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/destination"
	"github.com/mia-platform/essink/internal/source"
)

// BeforeHook runs before batch assembly. A returned error aborts the
// invocation and is never routed to the error hook.
type BeforeHook func(ctx context.Context, event *events.DynamoDBEvent) error

// AfterHook runs after a successful delivery. A non-nil returned result
// replaces the delivery result.
type AfterHook func(ctx context.Context, event *events.DynamoDBEvent, result *bulk.Result, metadata []bulk.RecordMeta) (*bulk.Result, error)

// ErrorHook intercepts batch-level failures after retries are exhausted. Its
// return values replace the invocation outcome.
type ErrorHook func(ctx context.Context, event *events.DynamoDBEvent, handlerErr error) (*bulk.Result, error)

// RecordErrorHook intercepts per-record mapping failures. Returning nil skips
// the failed record and continues the batch; returning an error aborts the
// invocation with it.
type RecordErrorHook func(ctx context.Context, event *events.DynamoDBEvent, recordErr error) error

// TransformRecordHook replaces the document built from a record. Returning
// nil skips the record entirely.
type TransformRecordHook func(document, oldImage map[string]any) map[string]any

// IDResolver computes the document id from the built document and the
// pre-change image.
type IDResolver func(document, oldImage map[string]any) (string, error)

// VersionResolver computes the external document version from the built
// document and the pre-change image.
type VersionResolver func(document, oldImage map[string]any) (int64, error)

// FieldPaths holds one or more dotted field paths. In YAML it accepts both a
// scalar and a sequence of strings.
type FieldPaths []string

// UnmarshalYAML decodes a scalar path or a sequence of paths.
func (p *FieldPaths) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*p = FieldPaths{single}
	default:
		var multiple []string
		if err := value.Decode(&multiple); err != nil {
			return err
		}
		*p = multiple
	}

	return nil
}

// Elasticsearch groups the delivery client and the extra parameters merged
// into every bulk submission.
type Elasticsearch struct {
	// Client performs the bulk submission. It is shared across invocations
	// and never mutated by the pipeline.
	Client destination.BulkSubmitter `yaml:"-" validate:"required"`
	// Bulk holds extra bulk call parameters (e.g. refresh, pipeline) passed
	// through to the client on every submission.
	Bulk map[string]string `yaml:"bulk,omitempty"`
}

// RetryOptions bounds the redelivery of a failed bulk submission. The backoff
// parameters are passed through to the retry driver untouched.
type RetryOptions struct {
	// Retries is the number of additional attempts after the first failed
	// submission. Zero disables retrying.
	Retries   uint          `yaml:"retries"`
	Delay     time.Duration `yaml:"delay" validate:"min=0"`
	MaxDelay  time.Duration `yaml:"maxDelay" validate:"min=0"`
	MaxJitter time.Duration `yaml:"maxJitter" validate:"min=0"`
}

// rawRetryOptions mirrors RetryOptions with the durations as strings, the way
// they are written in sink files.
type rawRetryOptions struct {
	Retries   uint   `yaml:"retries"`
	Delay     string `yaml:"delay"`
	MaxDelay  string `yaml:"maxDelay"`
	MaxJitter string `yaml:"maxJitter"`
}

// UnmarshalYAML decodes the retry options, parsing the backoff durations from
// their string form (e.g. "100ms").
func (r *RetryOptions) UnmarshalYAML(value *yaml.Node) error {
	var raw rawRetryOptions
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed := RetryOptions{Retries: raw.Retries}
	for _, duration := range []struct {
		value  string
		target *time.Duration
	}{
		{raw.Delay, &parsed.Delay},
		{raw.MaxDelay, &parsed.MaxDelay},
		{raw.MaxJitter, &parsed.MaxJitter},
	} {
		if duration.value == "" {
			continue
		}

		d, err := time.ParseDuration(duration.value)
		if err != nil {
			return err
		}
		*duration.target = d
	}

	*r = parsed
	return nil
}

// Options is the full configuration of an essink pipeline. It is validated
// once at pipeline construction and immutable afterwards. For the id, index,
// type and version concerns at most one resolution policy may be configured;
// Validate enforces the exclusions.
type Options struct {
	Elasticsearch Elasticsearch `yaml:"elasticsearch"`

	// IDField resolves the document id from record fields. When neither
	// IDField nor IDResolver is set the id falls back to the concatenation of
	// the record key field names.
	IDField    FieldPaths `yaml:"idField,omitempty" validate:"omitempty,dive,required"`
	IDResolver IDResolver `yaml:"-"`

	// Index is the literal target index; IndexField resolves it from record
	// fields, optionally prefixed by IndexPrefix.
	Index       string     `yaml:"index,omitempty"`
	IndexField  FieldPaths `yaml:"indexField,omitempty" validate:"omitempty,dive,required"`
	IndexPrefix string     `yaml:"indexPrefix,omitempty"`

	// DocType is the literal document type; DocTypeField resolves it from
	// record fields. A blank resolved type is omitted from the action.
	DocType      string     `yaml:"type,omitempty"`
	DocTypeField FieldPaths `yaml:"typeField,omitempty" validate:"omitempty,dive,required"`

	ParentField FieldPaths `yaml:"parentField,omitempty" validate:"omitempty,dive,required"`

	// PickFields projects the new image onto the listed dotted paths. The
	// projected document mirrors the source nesting.
	PickFields []string `yaml:"pickFields,omitempty" validate:"omitempty,dive,required"`

	VersionField    FieldPaths      `yaml:"versionField,omitempty" validate:"omitempty,dive,required"`
	VersionResolver VersionResolver `yaml:"-"`

	// Separator joins composite field values. Defaults to "."; the empty
	// string is a valid separator.
	Separator *string `yaml:"separator,omitempty"`

	Retry RetryOptions `yaml:"retryOptions,omitempty"`

	BeforeHook          BeforeHook          `yaml:"-"`
	AfterHook           AfterHook           `yaml:"-"`
	ErrorHook           ErrorHook           `yaml:"-"`
	RecordErrorHook     RecordErrorHook     `yaml:"-"`
	TransformRecordHook TransformRecordHook `yaml:"-"`
}

// FieldSeparator returns the configured separator, or the default "." when
// none is set.
func (o *Options) FieldSeparator() string {
	if o.Separator != nil {
		return *o.Separator
	}

	return source.DefaultSeparator
}
