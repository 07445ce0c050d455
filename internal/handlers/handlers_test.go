package handlers

import (
	"context"
	"errors"
	"io"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"

	"github.com/MachogaKhumo/CLDV6212POE/internal/config"
)

// test doubles shared by the handler tests

type mockSQS struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, *params.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

type mockDynamo struct {
	mu      sync.Mutex
	created bool
	items   map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func dynKey(attrs map[string]types.AttributeValue) string {
	c := attrs["collection"].(*types.AttributeValueMemberS).Value
	id := attrs["id"].(*types.AttributeValueMemberS).Value
	return c + "/" + id
}

func (m *mockDynamo) DescribeTable(ctx context.Context, params *dyn.DescribeTableInput, optFns ...func(*dyn.Options)) (*dyn.DescribeTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.created {
		return nil, &types.ResourceNotFoundException{}
	}
	return &dyn.DescribeTableOutput{}, nil
}

func (m *mockDynamo) CreateTable(ctx context.Context, params *dyn.CreateTableInput, optFns ...func(*dyn.Options)) (*dyn.CreateTableOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	return &dyn.CreateTableOutput{}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dynKey(params.Item)
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
			if cur, ok := existing["etag"].(*types.AttributeValueMemberS); !ok || cur.Value != expected {
				return nil, &types.ConditionalCheckFailedException{}
			}
		default:
			return nil, errors.New("unsupported condition")
		}
	}
	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[dynKey(params.Key)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, dynKey(params.Key))
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

type mockS3 struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
}

func newMockS3() *mockS3 {
	return &mockS3{buckets: map[string]map[string][]byte{}}
}

func (m *mockS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[*params.Bucket]; ok {
		return nil, &s3types.BucketAlreadyOwnedByYou{}
	}
	m.buckets[*params.Bucket] = map[string][]byte{}
	return &s3.CreateBucketOutput{}, nil
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.buckets[*params.Bucket][*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, errors.New("not used in handler tests")
}

func testAppConfig() *config.Config {
	return &config.Config{
		Region:              "us-east-1",
		EntityTable:         "retail-entities",
		OrdersQueueURL:      "https://sqs.test/orders",
		PaymentProofsBucket: "payment-proofs",
		ProductImagesBucket: "product-images",
		ShareBucket:         "contracts",
		ShareDir:            "payments",
		MetricsNamespace:    "ABCRetail",
	}
}

func newTestRouter(dynamo *mockDynamo, q *mockSQS, blobs *mockS3) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, HandlerConfig{
		DynamoDBClient: dynamo,
		SQSClient:      q,
		S3Client:       blobs,
		App:            testAppConfig(),
	})
	return r
}
