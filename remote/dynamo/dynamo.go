// Package dynamo implements the remote store boundary over DynamoDB.
//
// Equality filters become scan filter expressions. Scans are unordered, so
// ordering and range are applied client-side after the scan drains.
// Constraint failures are translated into the boundary's shared code space
// (SQLSTATE-style), so the classifier treats both backends uniformly.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/opsgrid/tenantstore/remote"
)

// Config holds configuration for the Store.
type Config struct {
	// KeyAttribute is the partition key attribute on every table.
	// Default: "id"
	KeyAttribute string
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.KeyAttribute == "" {
		c.KeyAttribute = "id"
	}
}

// Store is a DynamoDB-backed remote.Store.
type Store struct {
	client *dynamodb.Client
	config Config
}

var _ remote.Store = (*Store)(nil)

// New creates a new Store instance.
func New(client *dynamodb.Client, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
	}
}

// NewFromDefaultConfig creates a Store with a client built from the default
// AWS configuration chain (environment, shared config, instance metadata).
func NewFromDefaultConfig(ctx context.Context, config Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(dynamodb.NewFromConfig(awsCfg), config), nil
}

// Select scans table for rows matching the equality filters, then applies
// ordering, offset and limit client-side.
func (s *Store) Select(ctx context.Context, table string, opts remote.SelectOptions) ([]remote.Row, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(table),
	}

	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if len(opts.Filters) > 0 {
		keys := sortedKeys(opts.Filters)
		exprs := make([]string, 0, len(keys))
		for i, k := range keys {
			av, err := attributevalue.Marshal(opts.Filters[k])
			if err != nil {
				return nil, wrapErr(err)
			}
			nameKey := fmt.Sprintf("#f%d", i)
			valueKey := fmt.Sprintf(":v%d", i)
			names[nameKey] = k
			values[valueKey] = av
			exprs = append(exprs, fmt.Sprintf("%s = %s", nameKey, valueKey))
		}
		input.FilterExpression = aws.String(strings.Join(exprs, " AND "))
	}

	if len(opts.Columns) > 0 {
		projected := make([]string, len(opts.Columns))
		for i, c := range opts.Columns {
			nameKey := fmt.Sprintf("#p%d", i)
			names[nameKey] = c
			projected[i] = nameKey
		}
		input.ProjectionExpression = aws.String(strings.Join(projected, ", "))
	}

	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	var rows []remote.Row
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapErr(err)
		}
		for _, item := range page.Items {
			var row remote.Row
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				return nil, wrapErr(err)
			}
			rows = append(rows, row)
		}
	}

	if opts.OrderBy != "" {
		sortRows(rows, opts.OrderBy, opts.Ascending)
	}
	return applyRange(rows, opts.Offset, opts.Limit), nil
}

// Insert stores row, failing with a unique-constraint code when the key
// already exists.
func (s *Store) Insert(ctx context.Context, table string, row remote.Row) (remote.Row, error) {
	item, err := attributevalue.MarshalMap(row)
	if err != nil {
		return nil, wrapErr(err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": s.config.KeyAttribute},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, &remote.Error{
				Message: "duplicate key value violates unique constraint",
				Code:    "23505",
			}
		}
		return nil, wrapErr(err)
	}

	// PutItem returns nothing; echo the row as written.
	return row, nil
}

// Update patches the row addressed by the key filter, with the remaining
// filters enforced as a condition. A failed condition means the predicate
// matched nothing.
func (s *Store) Update(ctx context.Context, table string, filters map[string]any, patch remote.Row) (remote.Row, error) {
	key, conditionExpr, names, values, err := s.splitFilters(filters)
	if err != nil {
		return nil, err
	}

	setClauses := make([]string, 0, len(patch))
	for i, k := range sortedKeys(patch) {
		if k == s.config.KeyAttribute {
			continue
		}
		av, merr := attributevalue.Marshal(patch[k])
		if merr != nil {
			return nil, wrapErr(merr)
		}
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		names[nameKey] = k
		values[valueKey] = av
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	if len(setClauses) == 0 {
		return nil, &remote.Error{Message: "empty update"}
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(table),
		Key:                      key,
		UpdateExpression:         aws.String("SET " + strings.Join(setClauses, ", ")),
		ConditionExpression:      aws.String(conditionExpr),
		ExpressionAttributeNames: names,
		ReturnValues:             types.ReturnValueAllNew,
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	result, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, remote.ErrNoRows
		}
		return nil, wrapErr(err)
	}

	var row remote.Row
	if err := attributevalue.UnmarshalMap(result.Attributes, &row); err != nil {
		return nil, wrapErr(err)
	}
	return row, nil
}

// Delete removes the row addressed by the key filter when the remaining
// filters hold, reporting zero removals when the predicate matched nothing.
func (s *Store) Delete(ctx context.Context, table string, filters map[string]any) (int64, error) {
	key, conditionExpr, names, values, err := s.splitFilters(filters)
	if err != nil {
		return 0, err
	}

	input := &dynamodb.DeleteItemInput{
		TableName:                aws.String(table),
		Key:                      key,
		ConditionExpression:      aws.String(conditionExpr),
		ExpressionAttributeNames: names,
	}
	if len(values) > 0 {
		input.ExpressionAttributeValues = values
	}

	_, err = s.client.DeleteItem(ctx, input)
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, nil
		}
		return 0, wrapErr(err)
	}
	return 1, nil
}

// splitFilters separates the key attribute from the remaining equality
// filters, which become a condition expression alongside an existence check
// on the key.
func (s *Store) splitFilters(filters map[string]any) (map[string]types.AttributeValue, string, map[string]string, map[string]types.AttributeValue, error) {
	keyValue, ok := filters[s.config.KeyAttribute]
	if !ok {
		return nil, "", nil, nil, &remote.Error{
			Message: fmt.Sprintf("predicate requires the %s attribute", s.config.KeyAttribute),
		}
	}
	keyAV, err := attributevalue.Marshal(keyValue)
	if err != nil {
		return nil, "", nil, nil, wrapErr(err)
	}
	key := map[string]types.AttributeValue{s.config.KeyAttribute: keyAV}

	names := map[string]string{"#pk": s.config.KeyAttribute}
	values := map[string]types.AttributeValue{}
	exprs := []string{"attribute_exists(#pk)"}

	i := 0
	for _, k := range sortedKeys(filters) {
		if k == s.config.KeyAttribute {
			continue
		}
		av, merr := attributevalue.Marshal(filters[k])
		if merr != nil {
			return nil, "", nil, nil, wrapErr(merr)
		}
		nameKey := fmt.Sprintf("#c%d", i)
		valueKey := fmt.Sprintf(":c%d", i)
		names[nameKey] = k
		values[valueKey] = av
		exprs = append(exprs, fmt.Sprintf("%s = %s", nameKey, valueKey))
		i++
	}

	return key, strings.Join(exprs, " AND "), names, values, nil
}

// sortRows orders rows by the given attribute. Strings and numbers compare
// natively, everything else by its printed form.
func sortRows(rows []remote.Row, orderBy string, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		less := compareValues(rows[i][orderBy], rows[j][orderBy])
		if ascending {
			return less < 0
		}
		return less > 0
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func applyRange(rows []remote.Row, offset, limit int) []remote.Row {
	if offset > 0 {
		if offset >= len(rows) {
			return []remote.Row{}
		}
		rows = rows[offset:]
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// wrapErr normalizes SDK errors into the boundary's fault shape.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &remote.Error{Message: fmt.Sprintf("network error: %v", err)}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &remote.Error{
			Message: apiErr.ErrorMessage(),
			Code:    apiErr.ErrorCode(),
		}
	}

	return &remote.Error{Message: err.Error()}
}
