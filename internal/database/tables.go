package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type IndexSpec struct {
	Name     string
	HashKey  string
	RangeKey string
}

// TableSpec describes a table with a single string partition key and
// optional global secondary indexes keyed by string attributes.
type TableSpec struct {
	Name    string
	HashKey string
	Indexes []IndexSpec
}

var Tables = []TableSpec{
	{Name: model.UsersTable, HashKey: "userId", Indexes: []IndexSpec{{Name: model.IndexByEmail, HashKey: "email"}}},
	{Name: model.UserEmailsTable, HashKey: "email"},
	{Name: model.DesignRequestsTable, HashKey: "requestId", Indexes: []IndexSpec{{Name: model.IndexByUser, HashKey: "userId", RangeKey: "createdAt"}}},
	{Name: model.ContactMessagesTable, HashKey: "messageId"},
	{Name: model.BannersTable, HashKey: "bannerId"},
	{Name: model.NotificationsTable, HashKey: "notificationId", Indexes: []IndexSpec{{Name: model.IndexByUser, HashKey: "userId", RangeKey: "createdAt"}}},
	{Name: model.AnnouncementsTable, HashKey: "announcementId"},
	{Name: model.AnnouncementReadsTable, HashKey: "readId", Indexes: []IndexSpec{{Name: model.IndexByUser, HashKey: "userId"}}},
	{Name: model.SupportSessionsTable, HashKey: "sessionId", Indexes: []IndexSpec{{Name: model.IndexByUser, HashKey: "userId"}}},
	{Name: model.SupportMessagesTable, HashKey: "pk", Indexes: []IndexSpec{{Name: model.IndexBySession, HashKey: "sessionId", RangeKey: "timestamp"}}},
	{Name: model.VisitorsTable, HashKey: "deviceId"},
}

func LookupTable(name string) (TableSpec, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}

func (t TableSpec) createInput() *dynamodb.CreateTableInput {
	attrs := map[string]struct{}{t.HashKey: {}}
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(t.Name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(t.HashKey), KeyType: types.KeyTypeHash},
		},
	}

	for _, idx := range t.Indexes {
		schema := []types.KeySchemaElement{
			{AttributeName: aws.String(idx.HashKey), KeyType: types.KeyTypeHash},
		}
		attrs[idx.HashKey] = struct{}{}
		if idx.RangeKey != "" {
			schema = append(schema, types.KeySchemaElement{AttributeName: aws.String(idx.RangeKey), KeyType: types.KeyTypeRange})
			attrs[idx.RangeKey] = struct{}{}
		}
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.Name),
			KeySchema:  schema,
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	for name := range attrs {
		input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}
	return input
}

// CreateTable creates the table and waits until it is active. It returns
// created=false when the table already exists.
func (c *DynamoDBClient) CreateTable(ctx context.Context, spec TableSpec) (bool, error) {
	_, err := c.svc.CreateTable(ctx, spec.createInput())
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return false, nil
		}
		return false, fmt.Errorf("create table %s: %w", spec.Name, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(c.svc)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.Name)}, 2*time.Minute); err != nil {
		return true, fmt.Errorf("wait for table %s: %w", spec.Name, err)
	}
	return true, nil
}
