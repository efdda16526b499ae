package notification

import (
	"context"
	"errors"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("notification repository: not found")

type Repository interface {
	Create(ctx context.Context, item model.NotificationItem) error
	Get(ctx context.Context, notificationID string) (model.NotificationItem, error)
	ListByUser(ctx context.Context, userID string) ([]model.NotificationItem, error)
	MarkRead(ctx context.Context, notificationID string) error
	// PutAll writes items in batches.
	PutAll(ctx context.Context, items []model.NotificationItem) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Create(ctx context.Context, item model.NotificationItem) error {
	return r.db.Client.PutItem(ctx, model.NotificationsTable, item)
}

func (r *DynamoRepository) Get(ctx context.Context, notificationID string) (model.NotificationItem, error) {
	var item model.NotificationItem
	err := r.db.Client.GetItem(ctx, model.NotificationsTable, database.StringKey("notificationId", notificationID), &item)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.NotificationItem{}, ErrNotFound
		}
		return model.NotificationItem{}, err
	}
	return item, nil
}

func (r *DynamoRepository) ListByUser(ctx context.Context, userID string) ([]model.NotificationItem, error) {
	values := map[string]types.AttributeValue{":userId": database.S(userID)}
	names := map[string]string{"#userId": "userId"}

	items, err := r.db.Client.QueryAll(
		ctx,
		model.NotificationsTable,
		aws.String(model.IndexByUser),
		"#userId = :userId",
		values,
		names,
		aws.Bool(false),
	)
	if err != nil {
		if !database.IsIndexNotFound(err) {
			return nil, err
		}
		items, err = r.db.Client.ScanAllWithFilter(ctx, model.NotificationsTable, "#userId = :userId", values, names)
		if err != nil {
			return nil, err
		}
	}
	return database.UnmarshalItems[model.NotificationItem](items)
}

func (r *DynamoRepository) MarkRead(ctx context.Context, notificationID string) error {
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.NotificationsTable,
		database.StringKey("notificationId", notificationID),
		"SET #isRead = :true",
		"attribute_exists(notificationId)",
		map[string]types.AttributeValue{":true": database.B(true)},
		map[string]string{"#isRead": "isRead"},
		nil,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoRepository) PutAll(ctx context.Context, items []model.NotificationItem) error {
	puts := make([]interface{}, 0, len(items))
	for _, item := range items {
		puts = append(puts, item)
	}
	return r.db.Client.BatchWriteItem(ctx, model.NotificationsTable, puts, nil)
}
