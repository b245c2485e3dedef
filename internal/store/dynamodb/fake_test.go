package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo keeps tables in memory and understands the handful of
// condition and update expressions the store issues.
type fakeDynamo struct {
	mu       sync.Mutex
	keys     map[string]string // table -> key attribute
	tables   map[string]map[string]map[string]types.AttributeValue
	pageSize int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keys: map[string]string{"employees": "id", "admins": "email"},
		tables: map[string]map[string]map[string]types.AttributeValue{
			"employees": {},
			"admins":    {},
		},
		pageSize: 3,
	}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) keyValue(table string, item map[string]types.AttributeValue) string {
	return str(item[f.keys[table]])
}

// conditionHolds evaluates attribute_exists / attribute_not_exists on the
// table key.
func conditionHolds(cond *string, exists bool) bool {
	if cond == nil {
		return true
	}
	c := aws.ToString(cond)
	switch {
	case strings.Contains(c, "attribute_not_exists"):
		return !exists
	case strings.Contains(c, "attribute_exists"):
		return exists
	}
	return true
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	item, ok := f.tables[table][f.keyValue(table, in.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	key := f.keyValue(table, in.Item)
	_, exists := f.tables[table][key]
	if !conditionHolds(in.ConditionExpression, exists) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
	}
	f.tables[table][key] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)
	key := f.keyValue(table, in.Key)
	item, exists := f.tables[table][key]
	if !conditionHolds(in.ConditionExpression, exists) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
	}
	if !exists {
		item = copyItem(in.Key)
	}

	update := strings.TrimPrefix(strings.TrimSpace(aws.ToString(in.UpdateExpression)), "SET ")
	for _, assignment := range strings.Split(update, ",") {
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("unsupported update %q", assignment)
		}
		name := in.ExpressionAttributeNames[strings.TrimSpace(parts[0])]
		item[name] = in.ExpressionAttributeValues[strings.TrimSpace(parts[1])]
	}
	f.tables[table][key] = item
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := aws.ToString(in.TableName)

	// filters are a single equality: one name, one value
	var field, want string
	for _, n := range in.ExpressionAttributeNames {
		field = n
	}
	for _, v := range in.ExpressionAttributeValues {
		want = str(v)
	}

	keys := make([]string, 0, len(f.tables[table]))
	for k := range f.tables[table] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := f.keyValue(table, in.ExclusiveStartKey)
		start = sort.SearchStrings(keys, after) + 1
	}
	end := start + f.pageSize
	out := &dynamodb.ScanOutput{}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{f.keys[table]: &types.AttributeValueMemberS{Value: keys[end-1]}}
	} else {
		end = len(keys)
	}
	for _, k := range keys[start:end] {
		item := f.tables[table][k]
		if want == "" || str(item[field]) == want {
			out.Items = append(out.Items, copyItem(item))
		}
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, ti := range in.TransactItems {
		reasons[i].Code = aws.String("None")
		var table, key string
		var cond *string
		switch {
		case ti.Put != nil:
			table = aws.ToString(ti.Put.TableName)
			key, cond = f.keyValue(table, ti.Put.Item), ti.Put.ConditionExpression
		case ti.Delete != nil:
			table = aws.ToString(ti.Delete.TableName)
			key, cond = f.keyValue(table, ti.Delete.Key), ti.Delete.ConditionExpression
		default:
			return nil, errors.New("unsupported transaction item")
		}
		_, exists := f.tables[table][key]
		if !conditionHolds(cond, exists) {
			reasons[i].Code = aws.String("ConditionalCheckFailed")
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, ti := range in.TransactItems {
		if ti.Put != nil {
			table := aws.ToString(ti.Put.TableName)
			f.tables[table][f.keyValue(table, ti.Put.Item)] = copyItem(ti.Put.Item)
			continue
		}
		table := aws.ToString(ti.Delete.TableName)
		delete(f.tables[table], f.keyValue(table, ti.Delete.Key))
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if _, ok := f.tables[aws.ToString(in.TableName)]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("table not found")}
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
