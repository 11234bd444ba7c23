package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitinder-api/internal/domain"
)

// SwipeRepo provides typed DynamoDB operations for the swipes table.
// Every swipe also bumps a counter in the edges table, keyed "swiper#swipee#direction",
// so reciprocal lookups can be read consistently from a base table.
type SwipeRepo struct {
	client     *dynamodb.Client
	tableName  string
	edgesTable string
}

func NewSwipeRepo(client *dynamodb.Client, tableName, edgesTable string) *SwipeRepo {
	return &SwipeRepo{client: client, tableName: tableName, edgesTable: edgesTable}
}

func edgeKey(swiperID, swipeeID, direction string) string {
	return swiperID + "#" + swipeeID + "#" + direction
}

// Put writes the swipe and increments its edge counter in one transaction.
func (r *SwipeRepo) Put(ctx context.Context, s *domain.Swipe) error {
	input, err := r.putInput(s)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, input)
	return err
}

func (r *SwipeRepo) putInput(s *domain.Swipe) (*dynamodb.TransactWriteItemsInput, error) {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return nil, fmt.Errorf("marshal swipe: %w", err)
	}
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      item,
			}},
			{Update: r.edgeUpdate(s.SwiperID, s.SwipeeID, s.Direction, 1)},
		},
	}, nil
}

func (r *SwipeRepo) edgeUpdate(swiperID, swipeeID, direction string, delta int) *types.Update {
	return &types.Update{
		TableName:                 aws.String(r.edgesTable),
		Key:                       strKey("edge_key", edgeKey(swiperID, swipeeID, direction)),
		UpdateExpression:          aws.String("ADD swipe_count :n"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":n": &types.AttributeValueMemberN{Value: strconv.Itoa(delta)}},
	}
}

func (r *SwipeRepo) Get(ctx context.Context, swipeID string) (*domain.Swipe, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("swipe_id", swipeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("swipe not found: %w", domain.ErrNotFound)
	}
	var s domain.Swipe
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes the swipe and decrements its edge counter.
func (r *SwipeRepo) Delete(ctx context.Context, swipeID string) error {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          strKey("swipe_id", swipeID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil || len(out.Attributes) == 0 {
		return err
	}
	var old domain.Swipe
	if err := attributevalue.UnmarshalMap(out.Attributes, &old); err != nil {
		return fmt.Errorf("unmarshal deleted swipe: %w", err)
	}
	u := r.edgeUpdate(old.SwiperID, old.SwipeeID, old.Direction, -1)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 u.TableName,
		Key:                       u.Key,
		UpdateExpression:          u.UpdateExpression,
		ExpressionAttributeValues: u.ExpressionAttributeValues,
	})
	if err != nil {
		return fmt.Errorf("decrement swipe edge: %w", err)
	}
	return nil
}

// List returns swipes matching f, newest first. An empty filter scans the table.
func (r *SwipeRepo) List(ctx context.Context, f domain.SwipeFilter) ([]domain.Swipe, error) {
	var swipes []domain.Swipe
	var err error
	switch {
	case f.SwiperID != "":
		input := r.byIndex("swiper_id-created_at-index", "swiper_id", f.SwiperID)
		if f.SwipeeID != "" {
			input.FilterExpression = aws.String("swipee_id = :other")
			input.ExpressionAttributeValues[":other"] = strVal(f.SwipeeID)
		}
		err = queryAll(ctx, r.client, input, &swipes)
	case f.SwipeeID != "":
		err = queryAll(ctx, r.client, r.byIndex("swipee_id-created_at-index", "swipee_id", f.SwipeeID), &swipes)
	default:
		err = scanAll(ctx, r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)}, &swipes)
	}
	if err != nil {
		return nil, err
	}
	sortSwipesNewestFirst(swipes)
	return swipes, nil
}

// SwipedUserIDs returns the set of users swiperID has swiped in either direction.
func (r *SwipeRepo) SwipedUserIDs(ctx context.Context, swiperID string) (map[string]struct{}, error) {
	input := r.byIndex("swiper_id-created_at-index", "swiper_id", swiperID)
	input.ProjectionExpression = aws.String("swipee_id")
	var swipes []domain.Swipe
	if err := queryAll(ctx, r.client, input, &swipes); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(swipes))
	for _, s := range swipes {
		seen[s.SwipeeID] = struct{}{}
	}
	return seen, nil
}

// Exists reports whether swiperID has at least one swipe on swipeeID in direction.
// It reads the edge counter with a strongly consistent GetItem.
func (r *SwipeRepo) Exists(ctx context.Context, swiperID, swipeeID, direction string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.edgesTable),
		Key:            strKey("edge_key", edgeKey(swiperID, swipeeID, direction)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return false, err
	}
	return edgeCount(out.Item) > 0, nil
}

func edgeCount(item map[string]types.AttributeValue) int {
	n, ok := item["swipe_count"].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	c, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0
	}
	return c
}

func (r *SwipeRepo) byIndex(index, attr, value string) *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String(attr + " = :v"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": strVal(value)},
		ScanIndexForward:          aws.Bool(false),
	}
}
