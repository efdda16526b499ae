package banner

import (
	"context"
	"errors"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var ErrNotFound = errors.New("banner repository: not found")

type Repository interface {
	Create(ctx context.Context, item model.BannerItem) error
	Get(ctx context.Context, bannerID string) (model.BannerItem, error)
	List(ctx context.Context) ([]model.BannerItem, error)
	SetActive(ctx context.Context, bannerID string, active bool) (model.BannerItem, error)
	Delete(ctx context.Context, bannerID string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Create(ctx context.Context, item model.BannerItem) error {
	return r.db.Client.PutItem(ctx, model.BannersTable, item)
}

func (r *DynamoRepository) Get(ctx context.Context, bannerID string) (model.BannerItem, error) {
	var item model.BannerItem
	err := r.db.Client.GetItem(ctx, model.BannersTable, database.StringKey("bannerId", bannerID), &item)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.BannerItem{}, ErrNotFound
		}
		return model.BannerItem{}, err
	}
	return item, nil
}

func (r *DynamoRepository) List(ctx context.Context) ([]model.BannerItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.BannersTable)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.BannerItem](items)
}

func (r *DynamoRepository) SetActive(ctx context.Context, bannerID string, active bool) (model.BannerItem, error) {
	var item model.BannerItem
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.BannersTable,
		database.StringKey("bannerId", bannerID),
		"SET #isActive = :active",
		"attribute_exists(bannerId)",
		map[string]types.AttributeValue{":active": database.B(active)},
		map[string]string{"#isActive": "isActive"},
		&item,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return model.BannerItem{}, ErrNotFound
	}
	return item, err
}

func (r *DynamoRepository) Delete(ctx context.Context, bannerID string) error {
	err := r.db.Client.DeleteItem(ctx, model.BannersTable, database.StringKey("bannerId", bannerID), "attribute_exists(bannerId)")
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	return err
}
