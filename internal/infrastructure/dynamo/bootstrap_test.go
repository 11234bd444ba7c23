package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/nitinder-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every key attribute used by a table or GSI must be declared, and nothing else may be.
func TestTableDefinitions_KeyAttributesDeclared(t *testing.T) {
	defs := tableDefinitions(config.Load().DynamoTables)
	require.Len(t, defs, 11)

	for _, in := range defs {
		declared := map[string]bool{}
		for _, a := range in.AttributeDefinitions {
			declared[aws.ToString(a.AttributeName)] = true
		}
		used := map[string]bool{}
		for _, k := range in.KeySchema {
			used[aws.ToString(k.AttributeName)] = true
		}
		for _, g := range in.GlobalSecondaryIndexes {
			for _, k := range g.KeySchema {
				used[aws.ToString(k.AttributeName)] = true
			}
		}
		assert.Equal(t, declared, used, "table %s", aws.ToString(in.TableName))
	}
}

func TestGSI_WithAndWithoutSortKey(t *testing.T) {
	g := gsi("match_id-index", "match_id", "")
	assert.Len(t, g.KeySchema, 1)

	g = gsi("swiper_id-created_at-index", "swiper_id", "created_at")
	require.Len(t, g.KeySchema, 2)
	assert.Equal(t, "created_at", aws.ToString(g.KeySchema[1].AttributeName))
}
