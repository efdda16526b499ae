package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	ErrNotFound        = errors.New("item not found")
	ErrConditionFailed = errors.New("condition check failed")
)

// StringKey builds a single attribute string key.
func StringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func S(value string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: value}
}

func N(value int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", value)}
}

func B(value bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: value}
}

// UnmarshalItems decodes a raw result page into typed items.
func UnmarshalItems[T any](items []map[string]types.AttributeValue) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := attributevalue.UnmarshalMap(item, &v); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// IsIndexNotFound reports whether a query failed because the GSI does not exist.
func IsIndexNotFound(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ValidationException" {
		return strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "index")
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "specified index") ||
		(strings.Contains(msg, "index") && strings.Contains(msg, "not") && strings.Contains(msg, "found"))
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (c *DynamoDBClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put item %s: %w", tableName, err)
	}
	return nil
}

// GetItem loads one item into out. A missing item yields ErrNotFound.
func (c *DynamoDBClient) GetItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	out interface{},
) error {
	res, err := c.svc.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get item %s: %w", tableName, err)
	}
	if len(res.Item) == 0 {
		return fmt.Errorf("%s: %w", tableName, ErrNotFound)
	}

	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}

func (c *DynamoDBClient) UpdateItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	out interface{},
) error {
	return c.UpdateItemConditional(ctx, tableName, key, updateExpr, "", exprAttrValues, exprAttrNames, out)
}

// UpdateItemConditional applies updateExpr only when condExpr holds. A failed
// condition yields ErrConditionFailed. When out is non-nil it receives the
// item as it is after the update.
func (c *DynamoDBClient) UpdateItemConditional(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	updateExpr string,
	condExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	out interface{},
) error {
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       key,
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: exprAttrValues,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(exprAttrNames) > 0 {
		input.ExpressionAttributeNames = exprAttrNames
	}
	if condExpr != "" {
		input.ConditionExpression = aws.String(condExpr)
	}

	res, err := c.svc.UpdateItem(ctx, input)
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("update item %s: %w", tableName, ErrConditionFailed)
		}
		return fmt.Errorf("update item %s: %w", tableName, err)
	}

	if out != nil {
		if err := attributevalue.UnmarshalMap(res.Attributes, out); err != nil {
			return fmt.Errorf("unmarshal updated item: %w", err)
		}
	}
	return nil
}

// DeleteItem removes one item. With condExpr set, a failed condition yields
// ErrConditionFailed.
func (c *DynamoDBClient) DeleteItem(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	condExpr string,
) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	}
	if condExpr != "" {
		input.ConditionExpression = aws.String(condExpr)
	}

	_, err := c.svc.DeleteItem(ctx, input)
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("delete item %s: %w", tableName, ErrConditionFailed)
		}
		return fmt.Errorf("delete item %s: %w", tableName, err)
	}
	return nil
}

// QueryAll runs a query to completion, following LastEvaluatedKey.
func (c *DynamoDBClient) QueryAll(
	ctx context.Context,
	tableName string,
	indexName *string,
	keyCondExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	scanIndexForward *bool,
) ([]map[string]types.AttributeValue, error) {
	var allItems []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(tableName),
			IndexName:                 indexName,
			KeyConditionExpression:    aws.String(keyCondExpr),
			ExpressionAttributeValues: exprAttrValues,
			ScanIndexForward:          scanIndexForward,
			ExclusiveStartKey:         lastEvaluatedKey,
		}
		if len(exprAttrNames) > 0 {
			input.ExpressionAttributeNames = exprAttrNames
		}

		result, err := c.svc.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query all %s[%s]: %w", tableName, aws.ToString(indexName), err)
		}

		allItems = append(allItems, result.Items...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}

	return allItems, nil
}

// ScanAll performs a complete scan of the table, handling pagination internally.
func (c *DynamoDBClient) ScanAll(ctx context.Context, tableName string) ([]map[string]types.AttributeValue, error) {
	return c.scan(ctx, tableName, nil, nil, nil, nil)
}

func (c *DynamoDBClient) ScanAllWithFilter(
	ctx context.Context,
	tableName string,
	filterExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
) ([]map[string]types.AttributeValue, error) {
	return c.scan(ctx, tableName, aws.String(filterExpr), exprAttrValues, exprAttrNames, nil)
}

// ScanKeys returns only the key attributes of every item in the table.
func (c *DynamoDBClient) ScanKeys(ctx context.Context, tableName string, keyAttrs ...string) ([]map[string]types.AttributeValue, error) {
	names := make(map[string]string, len(keyAttrs))
	placeholders := make([]string, 0, len(keyAttrs))
	for i, attr := range keyAttrs {
		ph := fmt.Sprintf("#k%d", i)
		names[ph] = attr
		placeholders = append(placeholders, ph)
	}
	projection := strings.Join(placeholders, ", ")
	return c.scan(ctx, tableName, nil, nil, names, &projection)
}

func (c *DynamoDBClient) scan(
	ctx context.Context,
	tableName string,
	filterExpr *string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
	projectionExpr *string,
) ([]map[string]types.AttributeValue, error) {
	var allItems []map[string]types.AttributeValue
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:            aws.String(tableName),
			FilterExpression:     filterExpr,
			ProjectionExpression: projectionExpr,
			ExclusiveStartKey:    lastEvaluatedKey,
		}
		if len(exprAttrValues) > 0 {
			input.ExpressionAttributeValues = exprAttrValues
		}
		if len(exprAttrNames) > 0 {
			input.ExpressionAttributeNames = exprAttrNames
		}

		result, err := c.svc.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan all %s: %w", tableName, err)
		}

		allItems = append(allItems, result.Items...)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}
	return allItems, nil
}

// Count returns the number of items matching filterExpr, or every item when
// filterExpr is empty.
func (c *DynamoDBClient) Count(
	ctx context.Context,
	tableName string,
	filterExpr string,
	exprAttrValues map[string]types.AttributeValue,
	exprAttrNames map[string]string,
) (int, error) {
	total := 0
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(tableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: lastEvaluatedKey,
		}
		if filterExpr != "" {
			input.FilterExpression = aws.String(filterExpr)
			input.ExpressionAttributeValues = exprAttrValues
			if len(exprAttrNames) > 0 {
				input.ExpressionAttributeNames = exprAttrNames
			}
		}

		result, err := c.svc.Scan(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", tableName, err)
		}
		total += int(result.Count)

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = result.LastEvaluatedKey
	}
	return total, nil
}

// ConditionalPut is one put inside a PutItemsAtomic transaction.
type ConditionalPut struct {
	Table     string
	Item      interface{}
	Condition string
}

// PutItemsAtomic writes every put in a single transaction. If any condition
// fails, nothing is written and ErrConditionFailed is returned.
func (c *DynamoDBClient) PutItemsAtomic(ctx context.Context, puts ...ConditionalPut) error {
	items := make([]types.TransactWriteItem, 0, len(puts))
	for _, p := range puts {
		av, err := attributevalue.MarshalMap(p.Item)
		if err != nil {
			return fmt.Errorf("marshal item: %w", err)
		}
		put := &types.Put{
			TableName: aws.String(p.Table),
			Item:      av,
		}
		if p.Condition != "" {
			put.ConditionExpression = aws.String(p.Condition)
		}
		items = append(items, types.TransactWriteItem{Put: put})
	}

	_, err := c.svc.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if isTransactionConditionFailed(err) {
			return fmt.Errorf("transact write: %w", ErrConditionFailed)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

func isTransactionConditionFailed(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func (c *DynamoDBClient) BatchWriteItem(
	ctx context.Context,
	tableName string,
	putItems []interface{},
	deleteKeys []map[string]types.AttributeValue,
) error {
	if len(putItems) == 0 && len(deleteKeys) == 0 {
		return nil
	}

	writeRequests := make([]types.WriteRequest, 0, len(putItems)+len(deleteKeys))

	for _, item := range putItems {
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return fmt.Errorf("marshal put item: %w", err)
		}
		writeRequests = append(writeRequests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}

	for _, key := range deleteKeys {
		writeRequests = append(writeRequests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}

	const batchSize = 25
	for i := 0; i < len(writeRequests); i += batchSize {
		end := i + batchSize
		if end > len(writeRequests) {
			end = len(writeRequests)
		}

		requests := map[string][]types.WriteRequest{
			tableName: writeRequests[i:end],
		}

		if err := c.batchWriteWithRetry(ctx, requests); err != nil {
			return fmt.Errorf("batch write item %s: %w", tableName, err)
		}
	}

	return nil
}

func (c *DynamoDBClient) batchWriteWithRetry(ctx context.Context, requests map[string][]types.WriteRequest) error {
	const maxRetries = 5
	currentRequests := requests

	for attempt := 0; len(currentRequests) > 0; attempt++ {
		if attempt == maxRetries {
			return fmt.Errorf("%d items remain unprocessed after %d attempts", countUnprocessedItems(currentRequests), maxRetries)
		}
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		result, err := c.svc.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: currentRequests,
		})
		if err != nil {
			return fmt.Errorf("batch write (attempt %d): %w", attempt+1, err)
		}
		currentRequests = result.UnprocessedItems
	}

	return nil
}

func countUnprocessedItems(requests map[string][]types.WriteRequest) int {
	count := 0
	for _, reqs := range requests {
		count += len(reqs)
	}
	return count
}

func (c *DynamoDBClient) BatchDeleteItems(ctx context.Context, tableName string, keys []map[string]types.AttributeValue) error {
	return c.BatchWriteItem(ctx, tableName, nil, keys)
}

// SetExpression builds a "SET a = :a, b = :b" update from fields. Keys are
// sorted so the expression is stable.
func SetExpression(fields map[string]interface{}) (string, map[string]types.AttributeValue, map[string]string, error) {
	if len(fields) == 0 {
		return "", nil, nil, fmt.Errorf("set expression: no fields")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make(map[string]types.AttributeValue, len(keys))
	names := make(map[string]string, len(keys))
	parts := make([]string, 0, len(keys))
	for i, k := range keys {
		av, err := attributevalue.Marshal(fields[k])
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		name := fmt.Sprintf("#f%d", i)
		value := fmt.Sprintf(":f%d", i)
		names[name] = k
		values[value] = av
		parts = append(parts, name+" = "+value)
	}
	return "SET " + strings.Join(parts, ", "), values, names, nil
}
