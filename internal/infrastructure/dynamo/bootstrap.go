package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/nitinder-api/internal/config"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Safe to call on every startup; it skips tables that already exist.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, input := range tableDefinitions(tables) {
		createTable(ctx, client, input)
	}
	enableTTL(ctx, client, tables.EmailOTPs, "expires_at")
}

func tableDefinitions(tables config.DynamoTables) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		table(tables.Users, key("user_id"), attrs("user_id", "email"),
			gsi("email-index", "email", "")),
		table(tables.Sessions, key("session_id"), attrs("session_id", "user_id"),
			gsi("user_id-index", "user_id", "")),
		table(tables.EmailOTPs, key("email", "otp_id"), attrs("email", "otp_id")),
		table(tables.Profiles, key("profile_id"), attrs("profile_id", "user_id"),
			gsi("user_id-index", "user_id", "")),
		table(tables.Swipes, key("swipe_id"), attrs("swipe_id", "swiper_id", "swipee_id", "created_at"),
			gsi("swiper_id-created_at-index", "swiper_id", "created_at"),
			gsi("swipee_id-created_at-index", "swipee_id", "created_at")),
		table(tables.SwipeEdges, key("edge_key"), attrs("edge_key")),
		table(tables.Matches, key("pair_key"), attrs("pair_key", "user1_id", "user2_id", "created_at"),
			gsi("user1_id-created_at-index", "user1_id", "created_at"),
			gsi("user2_id-created_at-index", "user2_id", "created_at")),
		table(tables.Conversations, key("conversation_id"), attrs("conversation_id", "match_id", "user1_id", "user2_id"),
			gsi("match_id-index", "match_id", ""),
			gsi("user1_id-index", "user1_id", ""),
			gsi("user2_id-index", "user2_id", "")),
		table(tables.Messages, key("conversation_id", "message_id"), attrs("conversation_id", "message_id")),
		table(tables.GameSessions, key("session_id"), attrs("session_id", "match_id", "created_at"),
			gsi("match_id-created_at-index", "match_id", "created_at")),
		table(tables.GameResponses, key("session_id", "user_id"), attrs("session_id", "user_id")),
	}
}

func table(name string, keySchema []types.KeySchemaElement, defs []types.AttributeDefinition, gsis ...types.GlobalSecondaryIndex) *dynamodb.CreateTableInput {
	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(name),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: defs,
		KeySchema:            keySchema,
	}
	if len(gsis) > 0 {
		input.GlobalSecondaryIndexes = gsis
	}
	return input
}

// key builds a hash key, plus a range key when sortKey is given.
func key(hashKey string, sortKey ...string) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if len(sortKey) > 0 {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(sortKey[0]), KeyType: types.KeyTypeRange})
	}
	return ks
}

// attrs declares string attributes; every key attribute in this schema is a string.
func attrs(names ...string) []types.AttributeDefinition {
	defs := make([]types.AttributeDefinition, len(names))
	for i, n := range names {
		defs[i] = types.AttributeDefinition{AttributeName: aws.String(n), AttributeType: types.ScalarAttributeTypeS}
	}
	return defs
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := key(hashKey)
	if sortKey != "" {
		ks = key(hashKey, sortKey)
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
		return
	}
	slog.Info("created table", "table", *input.TableName)
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
