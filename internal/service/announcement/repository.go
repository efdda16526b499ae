package announcement

import (
	"context"
	"errors"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("announcement repository: not found")

type Repository interface {
	Create(ctx context.Context, item model.AnnouncementItem) error
	Get(ctx context.Context, announcementID string) (model.AnnouncementItem, error)
	List(ctx context.Context) ([]model.AnnouncementItem, error)
	Delete(ctx context.Context, announcementID string) error
	PutRead(ctx context.Context, read model.AnnouncementReadItem) error
	ListReads(ctx context.Context, userID string) ([]model.AnnouncementReadItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Create(ctx context.Context, item model.AnnouncementItem) error {
	return r.db.Client.PutItem(ctx, model.AnnouncementsTable, item)
}

func (r *DynamoRepository) Get(ctx context.Context, announcementID string) (model.AnnouncementItem, error) {
	var item model.AnnouncementItem
	err := r.db.Client.GetItem(ctx, model.AnnouncementsTable, database.StringKey("announcementId", announcementID), &item)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.AnnouncementItem{}, ErrNotFound
		}
		return model.AnnouncementItem{}, err
	}
	return item, nil
}

func (r *DynamoRepository) List(ctx context.Context) ([]model.AnnouncementItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.AnnouncementsTable)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.AnnouncementItem](items)
}

func (r *DynamoRepository) Delete(ctx context.Context, announcementID string) error {
	err := r.db.Client.DeleteItem(ctx, model.AnnouncementsTable, database.StringKey("announcementId", announcementID), "attribute_exists(announcementId)")
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoRepository) PutRead(ctx context.Context, read model.AnnouncementReadItem) error {
	return r.db.Client.PutItem(ctx, model.AnnouncementReadsTable, read)
}

func (r *DynamoRepository) ListReads(ctx context.Context, userID string) ([]model.AnnouncementReadItem, error) {
	values := map[string]types.AttributeValue{":userId": database.S(userID)}
	names := map[string]string{"#userId": "userId"}

	items, err := r.db.Client.QueryAll(ctx, model.AnnouncementReadsTable, aws.String(model.IndexByUser), "#userId = :userId", values, names, nil)
	if err != nil {
		if !database.IsIndexNotFound(err) {
			return nil, err
		}
		items, err = r.db.Client.ScanAllWithFilter(ctx, model.AnnouncementReadsTable, "#userId = :userId", values, names)
		if err != nil {
			return nil, err
		}
	}
	return database.UnmarshalItems[model.AnnouncementReadItem](items)
}
