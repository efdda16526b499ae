package request

import (
	"context"
	"errors"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("request repository: not found")

type Repository interface {
	Create(ctx context.Context, item model.DesignRequestItem) error
	ListByUser(ctx context.Context, userID string) ([]model.DesignRequestItem, error)
	ListAll(ctx context.Context) ([]model.DesignRequestItem, error)
	UpdateStatus(ctx context.Context, requestID string, status model.RequestStatus) (model.DesignRequestItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Create(ctx context.Context, item model.DesignRequestItem) error {
	return r.db.Client.PutItem(ctx, model.DesignRequestsTable, item)
}

func (r *DynamoRepository) ListByUser(ctx context.Context, userID string) ([]model.DesignRequestItem, error) {
	values := map[string]types.AttributeValue{":userId": database.S(userID)}
	names := map[string]string{"#userId": "userId"}

	items, err := r.db.Client.QueryAll(ctx, model.DesignRequestsTable, aws.String(model.IndexByUser), "#userId = :userId", values, names, aws.Bool(false))
	if err != nil {
		if !database.IsIndexNotFound(err) {
			return nil, err
		}
		items, err = r.db.Client.ScanAllWithFilter(ctx, model.DesignRequestsTable, "#userId = :userId", values, names)
		if err != nil {
			return nil, err
		}
	}
	return database.UnmarshalItems[model.DesignRequestItem](items)
}

func (r *DynamoRepository) ListAll(ctx context.Context) ([]model.DesignRequestItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.DesignRequestsTable)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.DesignRequestItem](items)
}

func (r *DynamoRepository) UpdateStatus(ctx context.Context, requestID string, status model.RequestStatus) (model.DesignRequestItem, error) {
	var item model.DesignRequestItem
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.DesignRequestsTable,
		database.StringKey("requestId", requestID),
		"SET #status = :status",
		"attribute_exists(requestId)",
		map[string]types.AttributeValue{":status": database.S(string(status))},
		map[string]string{"#status": "status"},
		&item,
	)
	if err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			return model.DesignRequestItem{}, ErrNotFound
		}
		return model.DesignRequestItem{}, err
	}
	return item, nil
}
