package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/MachogaKhumo/CLDV6212POE/internal/aws"
)

// Store is the keyed durable store over the customer, product and order
// collections. All three live in one DynamoDB table keyed by
// (collection, id); the backing table is created lazily on first use.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time

	mu    sync.Mutex
	ready bool
}

// NewStore returns a Store bound to tableName.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// ensureTable creates the backing table if it does not exist yet. Safe to
// call on every operation; the result is cached after the first success.
func (s *Store) ensureTable(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	_, err := s.client.DescribeTable(ctx, &dyn.DescribeTableInput{TableName: &s.tableName})
	if err == nil {
		s.ready = true
		return nil
	}
	var nf *types.ResourceNotFoundException
	if !errors.As(err, &nf) {
		return fmt.Errorf("describe table: %w", err)
	}

	_, err = s.client.CreateTable(ctx, &dyn.CreateTableInput{
		TableName: &s.tableName,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: awsString("collection"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: awsString("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: awsString("collection"), KeyType: types.KeyTypeHash},
			{AttributeName: awsString("id"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		// another worker may have won the create race
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("create table: %w", err)
		}
	}

	s.ready = true
	return nil
}

// List fetches every entity in a collection. out must be a pointer to a
// slice of the concrete entity type, e.g. *[]Order.
func (s *Store) List(ctx context.Context, collection string, out interface{}) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		res, err := s.client.Query(ctx, &dyn.QueryInput{
			TableName:                 &s.tableName,
			KeyConditionExpression:    awsString("#c = :c"),
			ExpressionAttributeNames:  map[string]string{"#c": "collection"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: collection}},
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return fmt.Errorf("query %s: %w", collection, err)
		}
		items = append(items, res.Items...)
		if len(res.LastEvaluatedKey) == 0 {
			break
		}
		startKey = res.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("unmarshal %s items: %w", collection, err)
	}
	return nil
}

// Get loads the entity at (collection, id) into out. Returns ErrNotFound on
// a miss.
func (s *Store) Get(ctx context.Context, collection, id string, out Entity) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	res, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       entityKey(collection, id),
	})
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if len(res.Item) == 0 {
		return ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

// Create persists a new entity. The collection tag is forced to the type's
// canonical value, a uuid id is minted when the entity carries none, and a
// fresh etag and UTC timestamp are assigned. Returns ErrAlreadyExists when
// the id is already taken.
func (s *Store) Create(ctx context.Context, e Entity) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	m := e.meta()
	m.Collection = e.CollectionTag()
	if m.ID == "" {
		m.ID = NewID()
	}
	m.ETag = newETag()
	m.UpdatedAt = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Update replaces the stored entity. expectedETag must match the currently
// stored token unless it is the ETagAny wildcard; a mismatch returns
// ErrConcurrencyConflict and leaves the stored entity untouched. Every
// successful update rotates the etag and timestamp on e.
func (s *Store) Update(ctx context.Context, e Entity, expectedETag string) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	m := e.meta()
	if m.ID == "" {
		return ErrNotFound
	}
	m.Collection = e.CollectionTag()

	prevETag, prevUpdated := m.ETag, m.UpdatedAt
	m.ETag = newETag()
	m.UpdatedAt = s.nowFunc().UTC()

	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		m.ETag, m.UpdatedAt = prevETag, prevUpdated
		return fmt.Errorf("marshal entity: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_exists(id)"),
	}
	if expectedETag != ETagAny {
		input.ConditionExpression = awsString("attribute_exists(id) AND etag = :expected")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberS{Value: expectedETag},
		}
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		m.ETag, m.UpdatedAt = prevETag, prevUpdated
		if isConditionalCheckFailed(err) {
			if expectedETag == ETagAny {
				return ErrNotFound
			}
			// the row may be missing rather than stale
			res, gerr := s.client.GetItem(ctx, &dyn.GetItemInput{
				TableName: &s.tableName,
				Key:       entityKey(m.Collection, m.ID),
			})
			if gerr == nil && len(res.Item) == 0 {
				return ErrNotFound
			}
			return ErrConcurrencyConflict
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Delete removes the entity at (collection, id). Deleting an absent id is
// not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}

	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key:       entityKey(collection, id),
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func entityKey(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

// isConditionalCheckFailed detects a failed ConditionExpression either as the
// typed exception or via the smithy error code.
func isConditionalCheckFailed(err error) bool {
	var cc *types.ConditionalCheckFailedException
	if errors.As(err, &cc) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func awsString(s string) *string { return &s }
