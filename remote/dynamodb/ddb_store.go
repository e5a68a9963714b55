// Package dynamodb provides a remote.Store implementation backed by a
// DynamoDB table.
//
// The table's partition key is the agent id and its sort key is the cache
// key, so one agent's entries form a single item collection and DeleteAgent
// is a query-and-delete over that collection.
//
// Table schema:
//   - Partition key: agent_id (string)
//   - Sort key: cache_key (string)
//   - Attribute: payload (binary)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name semcache-results \
//	  --attribute-definitions AttributeName=agent_id,AttributeType=S AttributeName=cache_key,AttributeType=S \
//	  --key-schema AttributeName=agent_id,KeyType=HASH AttributeName=cache_key,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
//
// Pair the table with a TTL attribute if stale remote entries should age out
// server-side; the caching layer treats a missing entry as a normal miss
// either way.
package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/semcache/remote"
)

// Client is the interface for DynamoDB operations.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store implements remote.Store on a DynamoDB table.
type Store struct {
	client    Client
	tableName string
}

// NewStore creates a DynamoDB store with an existing client.
func NewStore(client Client, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// New creates a DynamoDB store using the ambient AWS configuration.
func New(ctx context.Context, tableName string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(dynamodb.NewFromConfig(cfg), tableName), nil
}

func itemKey(agentID, key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"agent_id":  &types.AttributeValueMemberS{Value: agentID},
		"cache_key": &types.AttributeValueMemberS{Value: key},
	}
}

// Get returns the stored entry, or remote.ErrNotFound.
func (s *Store) Get(ctx context.Context, agentID, key string) ([]byte, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(agentID, key),
	})
	if err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, remote.ErrNotFound
	}

	payload, ok := resp.Item["payload"].(*types.AttributeValueMemberB)
	if !ok {
		return nil, errors.New("dynamodb: invalid payload attribute")
	}
	return payload.Value, nil
}

// Put writes an entry, overwriting any previous value.
func (s *Store) Put(ctx context.Context, agentID, key string, data []byte) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"agent_id":  &types.AttributeValueMemberS{Value: agentID},
			"cache_key": &types.AttributeValueMemberS{Value: key},
			"payload":   &types.AttributeValueMemberB{Value: data},
		},
	})
	return err
}

// Delete removes a single entry.
func (s *Store) Delete(ctx context.Context, agentID, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       itemKey(agentID, key),
	})
	return err
}

// DeleteAgent removes every entry in the agent's item collection.
func (s *Store) DeleteAgent(ctx context.Context, agentID string) error {
	var startKey map[string]types.AttributeValue

	for {
		resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("agent_id = :agent"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":agent": &types.AttributeValueMemberS{Value: agentID},
			},
			ProjectionExpression: aws.String("agent_id, cache_key"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return err
		}

		for _, item := range resp.Items {
			cacheKey, ok := item["cache_key"].(*types.AttributeValueMemberS)
			if !ok {
				return errors.New("dynamodb: invalid cache_key attribute")
			}
			if err := s.Delete(ctx, agentID, cacheKey.Value); err != nil {
				return err
			}
		}

		if resp.LastEvaluatedKey == nil {
			return nil
		}
		startKey = resp.LastEvaluatedKey
	}
}
