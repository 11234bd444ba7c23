package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitinder-api/internal/domain"
)

// GameSessionRepo provides typed DynamoDB operations for the game_sessions table.
type GameSessionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewGameSessionRepo(client *dynamodb.Client, tableName string) *GameSessionRepo {
	return &GameSessionRepo{client: client, tableName: tableName}
}

func (r *GameSessionRepo) Put(ctx context.Context, g *domain.GameSession) error {
	item, err := attributevalue.MarshalMap(g)
	if err != nil {
		return fmt.Errorf("marshal game session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *GameSessionRepo) Get(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("session_id", sessionID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("game session not found: %w", domain.ErrNotFound)
	}
	var g domain.GameSession
	if err := attributevalue.UnmarshalMap(out.Item, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByMatch returns the sessions of a match, newest first.
func (r *GameSessionRepo) ListByMatch(ctx context.Context, matchID string) ([]domain.GameSession, error) {
	var sessions []domain.GameSession
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("match_id-created_at-index"),
		KeyConditionExpression:    aws.String("match_id = :m"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":m": strVal(matchID)},
		ScanIndexForward:          aws.Bool(false),
	}, &sessions)
	if err != nil {
		return nil, err
	}
	sortSessionsNewestFirst(sessions)
	return sessions, nil
}

// Transition moves a session from one of the from statuses to status `to`.
// It returns (false, nil) when the session is not in any of the from statuses.
func (r *GameSessionRepo) Transition(ctx context.Context, sessionID string, from []string, to string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		fieldStatus:    to,
		fieldUpdatedAt: at,
	}
	if to == domain.GameStatusCompleted {
		updates[fieldCompletedAt] = at
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return false, err
	}
	cond := statusCondition(ue, from)

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("session_id", sessionID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionalCheckFailed(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// statusCondition adds the placeholders for a "status IN (from...)" guard to ue and returns the condition.
func statusCondition(ue updateExpr, from []string) string {
	ue.Names["#st"] = fieldStatus
	cond := "attribute_exists(session_id) AND #st IN ("
	for i, s := range from {
		k := fmt.Sprintf(":from%d", i)
		ue.Values[k] = strVal(s)
		if i > 0 {
			cond += ", "
		}
		cond += k
	}
	return cond + ")"
}

// GameResponseRepo stores one response per (session, user).
// PK: session_id, SK: user_id
type GameResponseRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewGameResponseRepo(client *dynamodb.Client, tableName string) *GameResponseRepo {
	return &GameResponseRepo{client: client, tableName: tableName}
}

// Create inserts a response. Returns ErrAlreadyResponded if the user already answered.
func (r *GameResponseRepo) Create(ctx context.Context, resp *domain.GameResponse) error {
	item, err := attributevalue.MarshalMap(resp)
	if err != nil {
		return fmt.Errorf("marshal game response: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if isConditionalCheckFailed(err) {
		return domain.ErrAlreadyResponded
	}
	return err
}

// ListBySession returns responses oldest first.
func (r *GameResponseRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.GameResponse, error) {
	var resps []domain.GameResponse
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("session_id = :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":s": strVal(sessionID)},
		ConsistentRead:            aws.Bool(true),
	}, &resps)
	if err != nil {
		return nil, err
	}
	sortResponsesOldestFirst(resps)
	return resps, nil
}

func (r *GameResponseRepo) CountBySession(ctx context.Context, sessionID string) (int, error) {
	return countQuery(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("session_id = :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":s": strVal(sessionID)},
		ConsistentRead:            aws.Bool(true),
	})
}
