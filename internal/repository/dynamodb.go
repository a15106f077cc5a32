package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// DynamoAPI is the subset of *dynamodb.Client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type credentialItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoStore keeps credentials in a single-table layout:
// PK = CREDENTIAL#<namespace>, SK = <key>.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	namespace string
	logger    *logrus.Logger
}

func NewDynamoStore(client DynamoAPI, tableName, namespace string, logger *logrus.Logger) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		namespace: namespace,
		logger:    logger,
	}
}

func (s *DynamoStore) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CREDENTIAL#%s", s.namespace)},
		"SK": &types.AttributeValueMemberS{Value: key},
	}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (string, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to get credential from DynamoDB")
		return "", fmt.Errorf("failed to get credential: %w", err)
	}

	if result.Item == nil {
		return "", ErrNotFound
	}

	var item credentialItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return item.Value, nil
}

func (s *DynamoStore) Set(ctx context.Context, key, value string) error {
	item, err := attributevalue.MarshalMap(credentialItem{
		PK:        fmt.Sprintf("CREDENTIAL#%s", s.namespace),
		SK:        key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to store credential in DynamoDB")
		return fmt.Errorf("failed to store credential: %w", err)
	}

	return nil
}

func (s *DynamoStore) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}

func (s *DynamoStore) Close() error {
	return nil
}
