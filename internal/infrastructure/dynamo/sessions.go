package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitinder-api/internal/domain"
)

// SessionRepo provides typed DynamoDB operations for the sessions table.
type SessionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSessionRepo(client *dynamodb.Client, tableName string) *SessionRepo {
	return &SessionRepo{client: client, tableName: tableName}
}

func (r *SessionRepo) Put(ctx context.Context, s *domain.Session) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("session_id", sessionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	var s domain.Session
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Revoke disables a session so its bearer token is rejected from now on.
func (r *SessionRepo) Revoke(ctx context.Context, sessionID string) error {
	now := time.Now().UTC()
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldEnable:    false,
		fieldRevokedAt: now,
		fieldUpdatedAt: now,
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("session_id", sessionID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(session_id)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return err
}

// RevokeByUser disables every session of a user. Failures are logged and the first one is returned.
func (r *SessionRepo) RevokeByUser(ctx context.Context, userID string) error {
	var sessions []domain.Session
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": strVal(userID)},
	}, &sessions)
	if err != nil {
		return err
	}
	var firstErr error
	for _, s := range sessions {
		if !s.Enable {
			continue
		}
		if err := r.Revoke(ctx, s.SessionID); err != nil {
			slog.Warn("failed to revoke session", "session_id", s.SessionID, "user_id", userID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
