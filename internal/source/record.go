// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodbstreams/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// Record is the canonical view of one change-stream record. Keys always
// identifies the changed item; NewImage is populated for INSERT and MODIFY
// events, OldImage for MODIFY and REMOVE events. Absent images are decoded to
// an empty map so field lookups against them are always safe.
type Record struct {
	Raw      events.DynamoDBEventRecord
	Keys     map[string]any
	NewImage map[string]any
	OldImage map[string]any
}

// ParseRecord decodes the wire-level attribute maps of a stream record into
// plain nested Go values.
func ParseRecord(raw events.DynamoDBEventRecord) (*Record, error) {
	keys, err := unmarshalImage(raw.Change.Keys)
	if err != nil {
		return nil, fmt.Errorf("decoding record keys: %w", err)
	}

	newImage, err := unmarshalImage(raw.Change.NewImage)
	if err != nil {
		return nil, fmt.Errorf("decoding record new image: %w", err)
	}

	oldImage, err := unmarshalImage(raw.Change.OldImage)
	if err != nil {
		return nil, fmt.Errorf("decoding record old image: %w", err)
	}

	return &Record{
		Raw:      raw,
		Keys:     keys,
		NewImage: newImage,
		OldImage: oldImage,
	}, nil
}

// unmarshalImage converts one attribute map into plain values. A missing
// image decodes to an empty map, never to nil.
func unmarshalImage(image map[string]events.DynamoDBAttributeValue) (map[string]any, error) {
	decoded := make(map[string]any, len(image))
	if len(image) == 0 {
		return decoded, nil
	}

	converted := make(map[string]types.AttributeValue, len(image))
	for name, value := range image {
		attribute, err := streamAttribute(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		converted[name] = attribute
	}

	if err := attributevalue.UnmarshalMap(converted, &decoded); err != nil {
		return nil, err
	}

	return decoded, nil
}

// streamAttribute converts a Lambda event attribute value into its SDK
// equivalent so the standard attributevalue unmarshaller can be used.
func streamAttribute(value events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch value.DataType() {
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: value.Binary()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: value.BinarySet()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: value.Boolean()}, nil
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(value.List()))
		for _, element := range value.List() {
			converted, err := streamAttribute(element)
			if err != nil {
				return nil, err
			}
			list = append(list, converted)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case events.DataTypeMap:
		attributes := make(map[string]types.AttributeValue, len(value.Map()))
		for name, element := range value.Map() {
			converted, err := streamAttribute(element)
			if err != nil {
				return nil, err
			}
			attributes[name] = converted
		}
		return &types.AttributeValueMemberM{Value: attributes}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: value.IsNull()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: value.Number()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: value.NumberSet()}, nil
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: value.String()}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: value.StringSet()}, nil
	}

	return nil, fmt.Errorf("unsupported attribute data type %v", value.DataType())
}
