package store

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for the DynamoDB client. It keys
// items by collection + "/" + id and understands the three condition
// expressions the store issues. Not production-grade.
type mockDynamo struct {
	mu      sync.Mutex
	created bool // table exists
	items   map[string]map[string]types.AttributeValue

	putCalls      int
	describeCalls int
	createCalls   int
	failPut       error // when set, PutItem returns this error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		items: map[string]map[string]types.AttributeValue{},
	}
}

func itemKey(attrs map[string]types.AttributeValue) (string, error) {
	c, ok := attrs["collection"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing collection attribute")
	}
	id, ok := attrs["id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing id attribute")
	}
	return c.Value + "/" + id.Value, nil
}

func (m *mockDynamo) DescribeTable(ctx context.Context, params *dyn.DescribeTableInput, optFns ...func(*dyn.Options)) (*dyn.DescribeTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.describeCalls++
	if !m.created {
		return nil, &types.ResourceNotFoundException{}
	}
	return &dyn.DescribeTableOutput{}, nil
}

func (m *mockDynamo) CreateTable(ctx context.Context, params *dyn.CreateTableInput, optFns ...func(*dyn.Options)) (*dyn.CreateTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.created {
		return nil, &types.ResourceInUseException{}
	}
	m.created = true
	return &dyn.CreateTableOutput{}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.failPut != nil {
		return nil, m.failPut
	}
	k, err := itemKey(params.Item)
	if err != nil {
		return nil, err
	}
	existing, exists := m.items[k]

	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(id)":
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "attribute_exists(id)":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "attribute_exists(id) AND etag = :expected":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
			expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
			current, ok := existing["etag"].(*types.AttributeValueMemberS)
			if !ok || current.Value != expected {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported condition: " + *params.ConditionExpression)
		}
	}

	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := itemKey(params.Key)
	if err != nil {
		return nil, err
	}
	delete(m.items, k)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	collection := params.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS).Value
	var out []map[string]types.AttributeValue
	for _, item := range m.items {
		if c, ok := item["collection"].(*types.AttributeValueMemberS); ok && c.Value == collection {
			out = append(out, item)
		}
	}
	return &dyn.QueryOutput{Items: out}, nil
}
