package streams

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// ConvertEventAttributeValue converts a Lambda event attribute value to a
// DynamoDB service attribute value.
func ConvertEventAttributeValue(eventVal events.DynamoDBAttributeValue) (dynamodbtypes.AttributeValue, error) {
	switch eventVal.DataType() {
	case events.DataTypeString:
		return &dynamodbtypes.AttributeValueMemberS{Value: eventVal.String()}, nil
	case events.DataTypeNumber:
		return &dynamodbtypes.AttributeValueMemberN{Value: eventVal.Number()}, nil
	case events.DataTypeBinary:
		return &dynamodbtypes.AttributeValueMemberB{Value: eventVal.Binary()}, nil
	case events.DataTypeBoolean:
		return &dynamodbtypes.AttributeValueMemberBOOL{Value: eventVal.Boolean()}, nil
	case events.DataTypeMap:
		m, err := ConvertEventImage(eventVal.Map())
		if err != nil {
			return nil, err
		}
		return &dynamodbtypes.AttributeValueMemberM{Value: m}, nil
	case events.DataTypeList:
		list := make([]dynamodbtypes.AttributeValue, len(eventVal.List()))
		for i, item := range eventVal.List() {
			v, err := ConvertEventAttributeValue(item)
			if err != nil {
				return nil, fmt.Errorf("[Streams] list item %d: %w", i, err)
			}
			list[i] = v
		}
		return &dynamodbtypes.AttributeValueMemberL{Value: list}, nil
	case events.DataTypeNull:
		return &dynamodbtypes.AttributeValueMemberNULL{Value: eventVal.IsNull()}, nil
	case events.DataTypeStringSet:
		return &dynamodbtypes.AttributeValueMemberSS{Value: eventVal.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &dynamodbtypes.AttributeValueMemberNS{Value: eventVal.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &dynamodbtypes.AttributeValueMemberBS{Value: eventVal.BinarySet()}, nil
	default:
		return nil, fmt.Errorf("[Streams] unsupported attribute type: %v", eventVal.DataType())
	}
}

func ConvertEventImage(image map[string]events.DynamoDBAttributeValue) (map[string]dynamodbtypes.AttributeValue, error) {
	item := make(map[string]dynamodbtypes.AttributeValue, len(image))
	for k, v := range image {
		converted, err := ConvertEventAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("[Streams] attribute %s: %w", k, err)
		}
		item[k] = converted
	}
	return item, nil
}

// ConvertStreamAttributeValue converts a DynamoDB Streams API attribute value
// to its DynamoDB service twin. The two SDK packages model the same wire
// shape with distinct Go types.
func ConvertStreamAttributeValue(v streamtypes.AttributeValue) (dynamodbtypes.AttributeValue, error) {
	switch tv := v.(type) {
	case *streamtypes.AttributeValueMemberS:
		return &dynamodbtypes.AttributeValueMemberS{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberN:
		return &dynamodbtypes.AttributeValueMemberN{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberB:
		return &dynamodbtypes.AttributeValueMemberB{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberBOOL:
		return &dynamodbtypes.AttributeValueMemberBOOL{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberNULL:
		return &dynamodbtypes.AttributeValueMemberNULL{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberSS:
		return &dynamodbtypes.AttributeValueMemberSS{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberNS:
		return &dynamodbtypes.AttributeValueMemberNS{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberBS:
		return &dynamodbtypes.AttributeValueMemberBS{Value: tv.Value}, nil
	case *streamtypes.AttributeValueMemberM:
		m, err := ConvertStreamImage(tv.Value)
		if err != nil {
			return nil, err
		}
		return &dynamodbtypes.AttributeValueMemberM{Value: m}, nil
	case *streamtypes.AttributeValueMemberL:
		list := make([]dynamodbtypes.AttributeValue, len(tv.Value))
		for i, item := range tv.Value {
			converted, err := ConvertStreamAttributeValue(item)
			if err != nil {
				return nil, fmt.Errorf("[Streams] list item %d: %w", i, err)
			}
			list[i] = converted
		}
		return &dynamodbtypes.AttributeValueMemberL{Value: list}, nil
	default:
		return nil, fmt.Errorf("[Streams] unsupported attribute type %T", v)
	}
}

func ConvertStreamImage(image map[string]streamtypes.AttributeValue) (map[string]dynamodbtypes.AttributeValue, error) {
	item := make(map[string]dynamodbtypes.AttributeValue, len(image))
	for k, v := range image {
		converted, err := ConvertStreamAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("[Streams] attribute %s: %w", k, err)
		}
		item[k] = converted
	}
	return item, nil
}

func UnmarshalEventImage[T any](image map[string]events.DynamoDBAttributeValue, out *T) error {
	if image == nil {
		return fmt.Errorf("[Streams] event image is nil")
	}
	item, err := ConvertEventImage(image)
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalMap(item, out)
}

func UnmarshalStreamImage[T any](image map[string]streamtypes.AttributeValue, out *T) error {
	if image == nil {
		return fmt.Errorf("[Streams] stream image is nil")
	}
	item, err := ConvertStreamImage(image)
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalMap(item, out)
}
