// Package dynamo implements the catalog store contract on DynamoDB with a
// single-table layout: partition key = tenant key, sort key =
// "<entity>#<id>". The store offers get/put/delete plus Query by partition
// key; no multi-item transactions are used.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/systiva/accessctl/internal/config"
)

// Attribute names of the table's key schema.
const (
	attrTenantKey = "tenant_key"
	attrEntityKey = "entity_key"
)

// Client wraps the DynamoDB client with table configuration.
type Client struct {
	api   *dynamodb.Client
	table string
}

// New creates a new DynamoDB client from configuration.
func New(ctx context.Context, cfg *config.DynamoConfig) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &Client{api: api, table: cfg.Table}, nil
}

// HealthCheck verifies the table is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.table),
	})
	if err != nil {
		return fmt.Errorf("dynamodb table %s unreachable: %w", c.table, err)
	}
	return nil
}
