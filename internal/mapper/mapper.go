// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package mapper

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mia-platform/essink/internal/bulk"
	"github.com/mia-platform/essink/internal/config"
	"github.com/mia-platform/essink/internal/logger"
	"github.com/mia-platform/essink/internal/source"
)

const loggerName = "essink:mapper"

// Mapper turns decoded change-stream records into bulk actions. The
// resolution policy of every configurable concern (id, index, type, parent,
// version) is compiled once at construction, so building an action never has
// to re-check which of the mutually exclusive options is set.
type Mapper struct {
	cfg       *config.Options
	separator string

	resolveID      func(record *source.Record, document map[string]any) (string, error)
	resolveIndex   func(record *source.Record) (string, error)
	resolveType    func(record *source.Record) (string, error)
	resolveParent  func(record *source.Record) (string, error)
	resolveVersion func(record *source.Record, document map[string]any) (*int64, error)
}

// New compiles the resolution policies of the given, already validated,
// options into a Mapper.
func New(options *config.Options) *Mapper {
	m := &Mapper{
		cfg:       options,
		separator: options.FieldSeparator(),
	}

	m.resolveID = m.idPolicy()
	m.resolveIndex = m.indexPolicy()
	m.resolveType = m.typePolicy()
	m.resolveParent = m.parentPolicy()
	m.resolveVersion = m.versionPolicy()
	return m
}

// BuildRequest folds the records of one incoming batch into a bulk request,
// preserving input order. Per-record failures are routed to the configured
// record error hook; without one the first failure aborts the whole batch.
func (m *Mapper) BuildRequest(ctx context.Context, event *events.DynamoDBEvent) (*bulk.Request, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	request := bulk.NewRequest()
	for _, raw := range event.Records {
		if err := m.appendRecord(request, raw); err != nil {
			if routed := m.routeRecordError(ctx, event, err); routed != nil {
				return nil, routed
			}

			log.Debug("record error handled by hook, record skipped", "eventId", raw.EventID, "error", err)
		}
	}

	return request, nil
}

// appendRecord maps one record and appends its action to the request. A nil
// document skips the record entirely: no action is emitted and no metadata is
// recorded.
func (m *Mapper) appendRecord(request *bulk.Request, raw events.DynamoDBEventRecord) error {
	record, err := source.ParseRecord(raw)
	if err != nil {
		return err
	}

	document := m.buildDocument(record)
	if document == nil {
		return nil
	}

	action, err := m.buildAction(record, document)
	if err != nil {
		return err
	}

	switch events.DynamoDBOperationType(raw.EventName) {
	case events.DynamoDBOperationTypeInsert, events.DynamoDBOperationTypeModify:
		action.Operation = bulk.OperationIndex
		request.Append(action, document, record)
	case events.DynamoDBOperationTypeRemove:
		// a REMOVE must invalidate a version one greater than the last known
		// live version
		if action.Version != nil {
			next := *action.Version + 1
			action.Version = &next
		}
		action.Operation = bulk.OperationDelete
		request.Append(action, nil, record)
	default:
		return &UnknownEventNameError{Record: raw}
	}

	return nil
}

// buildAction assembles the write-target metadata for one record.
func (m *Mapper) buildAction(record *source.Record, document map[string]any) (*bulk.Action, error) {
	id, err := m.resolveID(record, document)
	if err != nil {
		return nil, err
	}

	index, err := m.resolveIndex(record)
	if err != nil {
		return nil, err
	}

	docType, err := m.resolveType(record)
	if err != nil {
		return nil, err
	}

	parent, err := m.resolveParent(record)
	if err != nil {
		return nil, err
	}

	version, err := m.resolveVersion(record, document)
	if err != nil {
		return nil, err
	}

	action := &bulk.Action{
		Index:   index,
		DocType: docType,
		ID:      id,
		Parent:  parent,
		Version: version,
	}
	if version != nil {
		action.VersionType = bulk.VersionTypeExternal
	}

	return action, nil
}

func (m *Mapper) routeRecordError(ctx context.Context, event *events.DynamoDBEvent, recordErr error) error {
	if m.cfg.RecordErrorHook == nil {
		return recordErr
	}

	return m.cfg.RecordErrorHook(ctx, event, recordErr)
}

func (m *Mapper) idPolicy() func(*source.Record, map[string]any) (string, error) {
	switch {
	case m.cfg.IDResolver != nil:
		return func(record *source.Record, document map[string]any) (string, error) {
			return m.cfg.IDResolver(document, record.OldImage)
		}
	case len(m.cfg.IDField) > 0:
		return func(record *source.Record, _ map[string]any) (string, error) {
			value, err := source.AssembleField(record, m.cfg.IDField, m.separator)
			if err != nil {
				return "", err
			}
			return stringify(value), nil
		}
	default:
		// historical fallback: the id is the concatenation of the key field
		// names, not their values. Changing it would silently alter document
		// identity for existing indexes.
		return func(record *source.Record, _ map[string]any) (string, error) {
			names := slices.Sorted(maps.Keys(record.Keys))
			return strings.Join(names, m.separator), nil
		}
	}
}

func (m *Mapper) indexPolicy() func(*source.Record) (string, error) {
	if m.cfg.Index != "" {
		return func(*source.Record) (string, error) {
			return m.cfg.Index, nil
		}
	}

	return func(record *source.Record) (string, error) {
		value, err := source.AssembleField(record, m.cfg.IndexField, m.separator)
		if err != nil {
			return "", err
		}

		return m.cfg.IndexPrefix + stringify(value), nil
	}
}

func (m *Mapper) typePolicy() func(*source.Record) (string, error) {
	switch {
	case m.cfg.DocType != "":
		return func(*source.Record) (string, error) {
			return m.cfg.DocType, nil
		}
	case len(m.cfg.DocTypeField) > 0:
		return func(record *source.Record) (string, error) {
			value, err := source.AssembleField(record, m.cfg.DocTypeField, m.separator)
			if err != nil {
				return "", err
			}
			if value == nil {
				return "", nil
			}

			return stringify(value), nil
		}
	default:
		return func(*source.Record) (string, error) {
			return "", nil
		}
	}
}

func (m *Mapper) parentPolicy() func(*source.Record) (string, error) {
	if len(m.cfg.ParentField) == 0 {
		return func(*source.Record) (string, error) {
			return "", nil
		}
	}

	return func(record *source.Record) (string, error) {
		value, err := source.AssembleField(record, m.cfg.ParentField, m.separator)
		if err != nil {
			return "", err
		}

		return stringify(value), nil
	}
}

func (m *Mapper) versionPolicy() func(*source.Record, map[string]any) (*int64, error) {
	switch {
	case m.cfg.VersionResolver != nil:
		return func(record *source.Record, document map[string]any) (*int64, error) {
			version, err := m.cfg.VersionResolver(document, record.OldImage)
			if err != nil {
				return nil, err
			}
			return &version, nil
		}
	case len(m.cfg.VersionField) > 0:
		return func(record *source.Record, _ map[string]any) (*int64, error) {
			value, err := source.AssembleField(record, m.cfg.VersionField, m.separator)
			if err != nil {
				return nil, err
			}

			version, ok := numericVersion(value)
			if !ok {
				return nil, config.NewValidationError(fmt.Sprintf("version field %v resolved to non-numeric value %v", m.cfg.VersionField, value))
			}

			return &version, nil
		}
	default:
		return func(*source.Record, map[string]any) (*int64, error) {
			return nil, nil
		}
	}
}

// numericVersion converts the numeric representations produced by the stream
// decoder into an external version. Non-numeric values, including numeric
// strings, are rejected.
func numericVersion(value any) (int64, bool) {
	switch number := value.(type) {
	case int:
		return int64(number), true
	case int32:
		return int64(number), true
	case int64:
		return number, true
	case uint:
		return int64(number), true
	case uint32:
		return int64(number), true
	case uint64:
		return int64(number), true
	case float32:
		return numericVersion(float64(number))
	case float64:
		if number != math.Trunc(number) {
			return 0, false
		}
		return int64(number), true
	}

	return 0, false
}

func stringify(value any) string {
	return fmt.Sprintf("%v", value)
}
