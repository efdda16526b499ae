package contact

import (
	"context"
	"errors"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("contact repository: not found")

type Repository interface {
	Create(ctx context.Context, item model.ContactMessageItem) error
	List(ctx context.Context) ([]model.ContactMessageItem, error)
	MarkRead(ctx context.Context, messageID string) (model.ContactMessageItem, error)
	Delete(ctx context.Context, messageID string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Create(ctx context.Context, item model.ContactMessageItem) error {
	return r.db.Client.PutItem(ctx, model.ContactMessagesTable, item)
}

func (r *DynamoRepository) List(ctx context.Context) ([]model.ContactMessageItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.ContactMessagesTable)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.ContactMessageItem](items)
}

func (r *DynamoRepository) MarkRead(ctx context.Context, messageID string) (model.ContactMessageItem, error) {
	var item model.ContactMessageItem
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.ContactMessagesTable,
		database.StringKey("messageId", messageID),
		"SET #read = :read",
		"attribute_exists(messageId)",
		map[string]types.AttributeValue{":read": database.B(true)},
		map[string]string{"#read": "read"},
		&item,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return model.ContactMessageItem{}, ErrNotFound
	}
	return item, err
}

func (r *DynamoRepository) Delete(ctx context.Context, messageID string) error {
	err := r.db.Client.DeleteItem(ctx, model.ContactMessagesTable, database.StringKey("messageId", messageID), "attribute_exists(messageId)")
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	return err
}
