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

// MatchRepo stores matches keyed by the canonical pair so a pair can be matched at most once.
// PK: pair_key ("user1#user2"). Each match also has an id item (pair_key "match#<id>")
// pointing back at its pair, so lookups by id are consistent base-table reads.
type MatchRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMatchRepo(client *dynamodb.Client, tableName string) *MatchRepo {
	return &MatchRepo{client: client, tableName: tableName}
}

const matchIDPrefix = "match#"

type matchRef struct {
	PairKey   string `dynamodbav:"pair_key"`
	TargetKey string `dynamodbav:"target_pair_key"`
}

// Create inserts m and its id item in one transaction. Returns ErrConflict if the pair is already matched.
func (r *MatchRepo) Create(ctx context.Context, m *domain.Match) error {
	input, err := r.createInput(m)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, input)
	if isTransactionConditionFailed(err) {
		return fmt.Errorf("match already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *MatchRepo) createInput(m *domain.Match) (*dynamodb.TransactWriteItemsInput, error) {
	m.PairKey = domain.PairKey(m.User1ID, m.User2ID)
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return nil, fmt.Errorf("marshal match: %w", err)
	}
	ref, err := attributevalue.MarshalMap(matchRef{PairKey: matchIDPrefix + m.MatchID, TargetKey: m.PairKey})
	if err != nil {
		return nil, fmt.Errorf("marshal match ref: %w", err)
	}
	notExists := aws.String("attribute_not_exists(pair_key)")
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item, ConditionExpression: notExists}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: ref, ConditionExpression: notExists}},
		},
	}, nil
}

func (r *MatchRepo) GetByPair(ctx context.Context, userA, userB string) (*domain.Match, error) {
	return r.getByKey(ctx, domain.PairKey(userA, userB))
}

func (r *MatchRepo) getByKey(ctx context.Context, pairKey string) (*domain.Match, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("pair_key", pairKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("match not found: %w", domain.ErrNotFound)
	}
	var m domain.Match
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Get resolves the id item and then the match, both with consistent reads.
func (r *MatchRepo) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("pair_key", matchIDPrefix+matchID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("match not found: %w", domain.ErrNotFound)
	}
	var ref matchRef
	if err := attributevalue.UnmarshalMap(out.Item, &ref); err != nil {
		return nil, err
	}
	return r.getByKey(ctx, ref.TargetKey)
}

// ListByUser returns every match userID takes part in, newest first.
func (r *MatchRepo) ListByUser(ctx context.Context, userID string) ([]domain.Match, error) {
	var all []domain.Match
	for _, side := range []string{"user1_id", "user2_id"} {
		var part []domain.Match
		err := queryAll(ctx, r.client, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(side + "-created_at-index"),
			KeyConditionExpression:    aws.String(side + " = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":u": strVal(userID)},
		}, &part)
		if err != nil {
			return nil, err
		}
		all = append(all, part...)
	}
	sortMatchesNewestFirst(all)
	return all, nil
}
