package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/systiva/accessctl/internal/metrics"
	"github.com/systiva/accessctl/pkg/domain/shared"
)

const driverName = "dynamodb"

// catalog provides typed single-table access for one entity kind. Records
// are attributevalue-marshaled as-is; the two key attributes are attached
// alongside the record's own fields.
type catalog[T any] struct {
	client *Client
	kind   string
}

func newCatalog[T any](client *Client, kind string) *catalog[T] {
	return &catalog[T]{client: client, kind: kind}
}

func (c *catalog[T]) entityKey(id string) string {
	return c.kind + "#" + id
}

// put writes a record behind a condition expression: creates require the
// entity key to be absent, updates require it to exist. A failed condition
// maps to ErrAlreadyExists or ErrNotFound accordingly.
func (c *catalog[T]) put(ctx context.Context, tenantKey, id string, value *T, mustExist bool) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation(driverName, "put_"+c.kind, start, err) }()

	item, err := attributevalue.MarshalMap(value)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", shared.ErrStore, c.kind, err)
	}
	item[attrTenantKey] = &types.AttributeValueMemberS{Value: tenantKey}
	item[attrEntityKey] = &types.AttributeValueMemberS{Value: c.entityKey(id)}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(c.client.table),
		Item:      item,
	}
	if mustExist {
		input.ConditionExpression = aws.String("attribute_exists(" + attrEntityKey + ")")
	} else {
		input.ConditionExpression = aws.String("attribute_not_exists(" + attrEntityKey + ")")
	}

	_, err = c.client.api.PutItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			if mustExist {
				return fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.kind, id)
			}
			return fmt.Errorf("%w: %s %s", shared.ErrAlreadyExists, c.kind, id)
		}
		return fmt.Errorf("%w: put %s: %v", shared.ErrStore, c.kind, err)
	}
	return nil
}

func (c *catalog[T]) get(ctx context.Context, tenantKey, id string) (value *T, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation(driverName, "get_"+c.kind, start, err) }()

	out, err := c.client.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.client.table),
		Key: map[string]types.AttributeValue{
			attrTenantKey: &types.AttributeValueMemberS{Value: tenantKey},
			attrEntityKey: &types.AttributeValueMemberS{Value: c.entityKey(id)},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", shared.ErrStore, c.kind, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.kind, id)
	}

	var record T
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("%w: unmarshal %s: %v", shared.ErrStore, c.kind, err)
	}
	return &record, nil
}

func (c *catalog[T]) delete(ctx context.Context, tenantKey, id string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation(driverName, "delete_"+c.kind, start, err) }()

	out, err := c.client.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(c.client.table),
		Key: map[string]types.AttributeValue{
			attrTenantKey: &types.AttributeValueMemberS{Value: tenantKey},
			attrEntityKey: &types.AttributeValueMemberS{Value: c.entityKey(id)},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", shared.ErrStore, c.kind, err)
	}
	if out.Attributes == nil {
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, c.kind, id)
	}
	return nil
}

// scan queries one tenant's partition for every record of this kind,
// paging through results. Ordering is not meaningful to callers.
func (c *catalog[T]) scan(ctx context.Context, tenantKey string) (results []*T, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreOperation(driverName, "query_"+c.kind, start, err) }()

	var startKey map[string]types.AttributeValue

	for {
		out, err := c.client.api.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(c.client.table),
			KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :prefix)"),
			ExpressionAttributeNames: map[string]string{
				"#pk": attrTenantKey,
				"#sk": attrEntityKey,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":     &types.AttributeValueMemberS{Value: tenantKey},
				":prefix": &types.AttributeValueMemberS{Value: c.kind + "#"},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: query %s: %v", shared.ErrStore, c.kind, err)
		}

		for _, item := range out.Items {
			var value T
			if err := attributevalue.UnmarshalMap(item, &value); err != nil {
				return nil, fmt.Errorf("%w: unmarshal %s: %v", shared.ErrStore, c.kind, err)
			}
			results = append(results, &value)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return results, nil
}
