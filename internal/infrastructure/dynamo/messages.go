package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitinder-api/internal/domain"
)

// MessageRepo stores chat messages.
// PK: conversation_id, SK: message_id (ULID, so range order is send order)
type MessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageRepo(client *dynamodb.Client, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

func (r *MessageRepo) Put(ctx context.Context, m *domain.Message) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByConversation returns all messages oldest first.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("conversation_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":c": strVal(conversationID)},
		ScanIndexForward:          aws.Bool(true),
	}, &msgs)
	return msgs, err
}
