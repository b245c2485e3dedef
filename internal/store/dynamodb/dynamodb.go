// Package dynamodb stores employees and admins in DynamoDB.
//
// The employees table is keyed by "id". Email uniqueness is enforced with
// guard items ("email#<address>") written in the same transaction as the
// employee they belong to. The admins table is keyed by "email".
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
)

const (
	kindEmployee   = "employee"
	kindEmailGuard = "email-guard"
	guardPrefix    = "email#"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type Options struct {
	Region         string
	Endpoint       string // set for DynamoDB Local
	EmployeesTable string
	AdminsTable    string
}

type Store struct {
	client         API
	employeesTable string
	adminsTable    string
	now            func() time.Time
}

var _ store.Store = (*Store)(nil)

// New loads the AWS configuration and returns a store on top of it. With an
// Endpoint set, static local credentials are used.
func New(ctx context.Context, opts Options) (*Store, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewWithClient(client, opts.EmployeesTable, opts.AdminsTable), nil
}

func NewWithClient(client API, employeesTable, adminsTable string) *Store {
	return &Store{
		client:         client,
		employeesTable: employeesTable,
		adminsTable:    adminsTable,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

type employeeItem struct {
	ID          string `dynamodbav:"id"`
	Kind        string `dynamodbav:"kind"`
	FullName    string `dynamodbav:"fullName"`
	Email       string `dynamodbav:"email"`
	DOB         string `dynamodbav:"dob"`
	JoiningDate string `dynamodbav:"joiningDate"`
	Address     string `dynamodbav:"address"`
	CreatedAt   string `dynamodbav:"createdAt"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

type guardItem struct {
	ID    string `dynamodbav:"id"`
	Kind  string `dynamodbav:"kind"`
	Owner string `dynamodbav:"owner"`
}

type adminItem struct {
	Email        string `dynamodbav:"email"`
	ID           string `dynamodbav:"id"`
	FullName     string `dynamodbav:"fullName"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
	UpdatedAt    string `dynamodbav:"updatedAt"`
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func toEmployeeItem(e *models.Employee) employeeItem {
	return employeeItem{
		ID:          e.ID,
		Kind:        kindEmployee,
		FullName:    e.FullName,
		Email:       e.Email,
		DOB:         formatTime(e.DOB),
		JoiningDate: formatTime(e.JoiningDate),
		Address:     e.Address,
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
	}
}

func toEmployee(item employeeItem) (*models.Employee, error) {
	e := &models.Employee{ID: item.ID, FullName: item.FullName, Email: item.Email, Address: item.Address}
	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&e.DOB, item.DOB},
		{&e.JoiningDate, item.JoiningDate},
		{&e.CreatedAt, item.CreatedAt},
		{&e.UpdatedAt, item.UpdatedAt},
	} {
		t, err := time.Parse(time.RFC3339Nano, f.src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse employee %s time: %w", item.ID, err)
		}
		*f.dst = t
	}
	return e, nil
}

func guardKey(email string) string { return guardPrefix + email }

func keyOf(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func (s *Store) putGuard(email, owner string) (types.TransactWriteItem, error) {
	av, err := attributevalue.MarshalMap(guardItem{ID: guardKey(email), Kind: kindEmailGuard, Owner: owner})
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("failed to marshal email guard: %w", err)
	}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(s.employeesTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}}, nil
}

func (s *Store) deleteGuard(email string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(s.employeesTable),
		Key:       keyOf("id", guardKey(email)),
	}}
}

func (s *Store) CreateEmployee(ctx context.Context, e *models.Employee) error {
	now := s.now()
	e.ID = uuid.NewString()
	e.Email = store.NormalizeEmail(e.Email)
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.JoiningDate.IsZero() {
		e.JoiningDate = now
	}

	av, err := attributevalue.MarshalMap(toEmployeeItem(e))
	if err != nil {
		return fmt.Errorf("failed to marshal employee item: %w", err)
	}
	guard, err := s.putGuard(e.Email, e.ID)
	if err != nil {
		return err
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.employeesTable),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
			guard,
		},
	})
	if err != nil {
		return translate(err, store.ErrDuplicateEmail)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.employeesTable),
		Key:            keyOf("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if out.Item == nil {
		return nil, store.ErrNotFound
	}

	var item employeeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee item: %w", err)
	}
	if item.Kind != kindEmployee {
		return nil, store.ErrNotFound
	}
	return toEmployee(item)
}

// ListEmployees scans every employee item. Ordering by creation time needs
// the whole set, so paging happens after the scan.
func (s *Store) ListEmployees(ctx context.Context, page models.PageRequest) ([]models.Employee, int, error) {
	filter := expression.Name("kind").Equal(expression.Value(kindEmployee))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build expression: %w", err)
	}

	var all []models.Employee
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.employeesTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employees: %w", err)
		}
		var items []employeeItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal employee items: %w", err)
		}
		for _, item := range items {
			e, err := toEmployee(item)
			if err != nil {
				return nil, 0, err
			}
			all = append(all, *e)
		}
	}

	return paginate(all, page), len(all), nil
}

func paginate(all []models.Employee, page models.PageRequest) []models.Employee {
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	start, end := page.Normalize().Bounds(len(all))
	if start == end {
		return []models.Employee{}
	}
	return all[start:end]
}

func (s *Store) UpdateEmployee(ctx context.Context, id string, u models.EmployeeUpdate) (*models.Employee, error) {
	current, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsEmpty() {
		return current, nil
	}
	if u.Email != nil {
		email := store.NormalizeEmail(*u.Email)
		u.Email = &email
	}

	oldEmail := current.Email
	u.Apply(current)
	current.UpdatedAt = s.now()
	item := toEmployeeItem(current)

	exists := expression.AttributeExists(expression.Name("id"))
	if current.Email == oldEmail {
		update := expression.Set(expression.Name("fullName"), expression.Value(item.FullName))
		update.Set(expression.Name("dob"), expression.Value(item.DOB))
		update.Set(expression.Name("joiningDate"), expression.Value(item.JoiningDate))
		update.Set(expression.Name("address"), expression.Value(item.Address))
		update.Set(expression.Name("updatedAt"), expression.Value(item.UpdatedAt))

		expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(exists).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build expression: %w", err)
		}
		_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(s.employeesTable),
			Key:                       keyOf("id", id),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			return nil, translate(err, store.ErrNotFound)
		}
		return current, nil
	}

	// email changed: move the guard together with the record
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal employee item: %w", err)
	}
	guard, err := s.putGuard(current.Email, id)
	if err != nil {
		return nil, err
	}
	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.employeesTable),
				Item:                av,
				ConditionExpression: aws.String("attribute_exists(id)"),
			}},
			guard,
			s.deleteGuard(oldEmail),
		},
	})
	if err != nil {
		return nil, translateUpdate(err)
	}
	return current, nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	current, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(s.employeesTable),
				Key:                 keyOf("id", id),
				ConditionExpression: aws.String("attribute_exists(id)"),
			}},
			s.deleteGuard(current.Email),
		},
	})
	if err != nil {
		return translate(err, store.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateAdmin(ctx context.Context, a *models.Admin) error {
	now := s.now()
	a.ID = uuid.NewString()
	a.Email = store.NormalizeEmail(a.Email)
	a.CreatedAt = now
	a.UpdatedAt = now

	av, err := attributevalue.MarshalMap(adminItem{
		Email:        a.Email,
		ID:           a.ID,
		FullName:     a.FullName,
		PasswordHash: a.PasswordHash,
		CreatedAt:    formatTime(now),
		UpdatedAt:    formatTime(now),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal admin item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.adminsTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		return translate(err, store.ErrDuplicateEmail)
	}
	return nil
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.adminsTable),
		Key:            keyOf("email", store.NormalizeEmail(email)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if out.Item == nil {
		return nil, store.ErrNotFound
	}

	var item adminItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal admin item: %w", err)
	}
	return toAdmin(item)
}

// GetAdminByID scans the admins table, which is keyed by email.
func (s *Store) GetAdminByID(ctx context.Context, id string) (*models.Admin, error) {
	filter := expression.Name("id").Equal(expression.Value(id))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.adminsTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admins: %w", err)
		}
		if len(out.Items) == 0 {
			continue
		}
		var item adminItem
		if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal admin item: %w", err)
		}
		return toAdmin(item)
	}
	return nil, store.ErrNotFound
}

func toAdmin(item adminItem) (*models.Admin, error) {
	a := &models.Admin{ID: item.ID, FullName: item.FullName, Email: item.Email, PasswordHash: item.PasswordHash}
	var err error
	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, item.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse admin createdAt: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse admin updatedAt: %w", err)
	}
	return a, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.employeesTable)})
	return err
}

func (s *Store) Close() {}

// translate maps a failed condition onto conflict; other errors pass through.
func translate(err error, conflict error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return conflict
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, r := range tce.CancellationReasons {
			if aws.ToString(r.Code) == "ConditionalCheckFailed" {
				return conflict
			}
		}
	}
	return err
}

// translateUpdate tells a vanished record (first item) apart from a taken
// email (second item) in an email-changing update.
func translateUpdate(err error) error {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for i, r := range tce.CancellationReasons {
			if aws.ToString(r.Code) != "ConditionalCheckFailed" {
				continue
			}
			if i == 0 {
				return store.ErrNotFound
			}
			return store.ErrDuplicateEmail
		}
	}
	return err
}
