package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitinder-api/internal/domain"
)

// ConversationRepo provides typed DynamoDB operations for the conversations table.
type ConversationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewConversationRepo(client *dynamodb.Client, tableName string) *ConversationRepo {
	return &ConversationRepo{client: client, tableName: tableName}
}

// Create writes c unless a conversation with the same id exists.
func (r *ConversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(conversation_id)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("conversation already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *ConversationRepo) Get(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("conversation_id", conversationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}
	var c domain.Conversation
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepo) GetByMatch(ctx context.Context, matchID string) (*domain.Conversation, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("match_id-index"),
		KeyConditionExpression:    aws.String("match_id = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":m": strVal(matchID)},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("conversation not found: %w", domain.ErrNotFound)
	}
	var c domain.Conversation
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns userID's conversations, most recent activity first.
func (r *ConversationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var all []domain.Conversation
	for _, side := range []string{"user1_id", "user2_id"} {
		var part []domain.Conversation
		err := queryAll(ctx, r.client, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(side + "-index"),
			KeyConditionExpression:    aws.String(side + " = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":u": strVal(userID)},
		}, &part)
		if err != nil {
			return nil, err
		}
		all = append(all, part...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	return all, nil
}

// TouchLastMessage records the latest message preview on the conversation.
func (r *ConversationRepo) TouchLastMessage(ctx context.Context, conversationID, content string, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldLastMessage:   content,
		fieldLastMessageAt: at,
		fieldUpdatedAt:     at,
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("conversation_id", conversationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
