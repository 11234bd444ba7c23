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

// OTPRepo manages email registration codes.
// PK: email, SK: otp_id
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

func (r *OTPRepo) Put(ctx context.Context, o *domain.EmailOTP) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// DeleteByEmail removes every code issued to email.
func (r *OTPRepo) DeleteByEmail(ctx context.Context, email string) error {
	var otps []domain.EmailOTP
	err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("email = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": strVal(email)},
		ProjectionExpression:      aws.String("email, otp_id"),
	}, &otps)
	if err != nil {
		return err
	}
	for _, o := range otps {
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       compositeKey("email", o.Email, "otp_id", o.OTPID),
		}); err != nil {
			return fmt.Errorf("delete otp %s: %w", o.OTPID, err)
		}
	}
	return nil
}

// LatestUnverified returns the newest code for email that has not been verified yet.
func (r *OTPRepo) LatestUnverified(ctx context.Context, email string) (*domain.EmailOTP, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("email = :e"),
		FilterExpression:          aws.String("attribute_not_exists(verified_at)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": strVal(email)},
		ScanIndexForward:          aws.Bool(false),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(page.Items) > 0 {
			var o domain.EmailOTP
			if err := attributevalue.UnmarshalMap(page.Items[0], &o); err != nil {
				return nil, err
			}
			return &o, nil
		}
	}
	return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
}

// IncrementAttempts atomically adds one failed attempt.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, email, otpID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("email", email, "otp_id", otpID),
		UpdateExpression:          aws.String("ADD #a :one"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldAttempts},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
	})
	return err
}

// MarkVerified stamps verified_at. It fails with ErrConflict if the code was verified concurrently.
func (r *OTPRepo) MarkVerified(ctx context.Context, email, otpID string, at time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldVerifiedAt: at})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("email", email, "otp_id", otpID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(otp_id) AND attribute_not_exists(verified_at)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("otp already used: %w", domain.ErrConflict)
	}
	return err
}
