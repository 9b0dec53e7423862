// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is the sentinel matched by every ValidationError.
var ErrValidation = errors.New("validation error")

var _ error = &ValidationError{}

// ValidationError carries every violation found while validating a value, not
// just the first one.
type ValidationError struct {
	Violations []string
}

// NewValidationError builds a ValidationError from the given violations.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// exclusiveOptions lists configuration concerns where at most one resolution
// policy may be set at a time.
type exclusiveOptions struct {
	concern string
	set     map[string]bool
}

// Validate checks the options against the configuration schema and returns a
// ValidationError enumerating every violation. It must pass before a pipeline
// is constructed; the pipeline never re-checks these invariants.
func (o *Options) Validate() error {
	violations := []string{}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(o); err != nil {
		var structErrs validator.ValidationErrors
		if !errors.As(err, &structErrs) {
			return err
		}

		for _, fieldErr := range structErrs {
			violations = append(violations, structViolation(fieldErr))
		}
	}

	violations = append(violations, o.exclusionViolations()...)

	if o.Index == "" && len(o.IndexField) == 0 {
		violations = append(violations, "one of index or indexField is required")
	}
	if o.IndexPrefix != "" && len(o.IndexField) == 0 {
		violations = append(violations, "indexPrefix requires indexField")
	}

	if len(violations) > 0 {
		return NewValidationError(violations...)
	}

	return nil
}

// exclusionViolations reports the id, index, type and version concerns where
// more than one resolution policy is configured.
func (o *Options) exclusionViolations() []string {
	exclusives := []exclusiveOptions{
		{concern: "document id", set: map[string]bool{
			"idField":    len(o.IDField) > 0,
			"idResolver": o.IDResolver != nil,
		}},
		{concern: "index name", set: map[string]bool{
			"index":      o.Index != "",
			"indexField": len(o.IndexField) > 0,
		}},
		{concern: "document type", set: map[string]bool{
			"type":      o.DocType != "",
			"typeField": len(o.DocTypeField) > 0,
		}},
		{concern: "document version", set: map[string]bool{
			"versionField":    len(o.VersionField) > 0,
			"versionResolver": o.VersionResolver != nil,
		}},
	}

	violations := []string{}
	for _, exclusive := range exclusives {
		configured := []string{}
		for name, isSet := range exclusive.set {
			if isSet {
				configured = append(configured, name)
			}
		}

		if len(configured) > 1 {
			slices.Sort(configured)
			violations = append(violations, fmt.Sprintf(
				"at most one %s option may be set, found: %s",
				exclusive.concern, strings.Join(configured, ", ")))
		}
	}

	return violations
}

func structViolation(fieldErr validator.FieldError) string {
	if fieldErr.Tag() == "required" {
		return fmt.Sprintf("%s is required", yamlNamespace(fieldErr.Namespace()))
	}

	return fmt.Sprintf("invalid value for %s: failed %q constraint", yamlNamespace(fieldErr.Namespace()), fieldErr.Tag())
}

// yamlNamespace rewrites a validator struct namespace (e.g.
// "Options.Elasticsearch.Client") into the configuration surface spelling.
func yamlNamespace(namespace string) string {
	trimmed := strings.TrimPrefix(namespace, "Options.")
	segments := strings.Split(trimmed, ".")
	for i, segment := range segments {
		segments[i] = strings.ToLower(segment[:1]) + segment[1:]
	}

	return strings.Join(segments, ".")
}
