package visitor

import (
	"context"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Repository interface {
	// Record upserts the visit of deviceID at ts. An empty userID leaves the
	// stored account link untouched.
	Record(ctx context.Context, deviceID, userAgent, userID, ts string) (model.VisitorItem, error)
	List(ctx context.Context) ([]model.VisitorItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) Record(ctx context.Context, deviceID, userAgent, userID, ts string) (model.VisitorItem, error) {
	update := "SET #userAgent = :ua, #lastVisit = :ts, #firstVisit = if_not_exists(#firstVisit, :ts)"
	values := map[string]types.AttributeValue{
		":ua":  database.S(userAgent),
		":ts":  database.S(ts),
		":one": database.N(1),
	}
	names := map[string]string{
		"#userAgent":    "userAgent",
		"#lastVisit":    "lastVisit",
		"#firstVisit":   "firstVisit",
		"#visitCount":   "visitCount",
		"#isRegistered": "isRegistered",
	}
	if userID != "" {
		update += ", #userId = :userId, #isRegistered = :registered"
		values[":userId"] = database.S(userID)
		values[":registered"] = database.B(true)
		names["#userId"] = "userId"
	} else {
		update += ", #isRegistered = if_not_exists(#isRegistered, :registered)"
		values[":registered"] = database.B(false)
	}
	update += " ADD #visitCount :one"

	var item model.VisitorItem
	err := r.db.Client.UpdateItem(ctx, model.VisitorsTable, database.StringKey("deviceId", deviceID), update, values, names, &item)
	return item, err
}

func (r *DynamoRepository) List(ctx context.Context) ([]model.VisitorItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.VisitorsTable)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.VisitorItem](items)
}
