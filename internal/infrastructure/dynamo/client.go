package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/nitinder-api/internal/config"
	"github.com/nitinder-api/internal/infrastructure/awsconf"
)

// NewClient creates the DynamoDB client shared by every repository. When cfg.AWSEndpointURL is set
// (LocalStack) all traffic goes to the local instance.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconf.Load(ctx, cfg, "")
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = awsconf.Endpoint(cfg)
	}), nil
}
