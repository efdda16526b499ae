package auth

import (
	"context"
	"errors"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound   = errors.New("auth repository: not found")
	ErrEmailTaken = errors.New("auth repository: email already registered")
)

type Repository interface {
	CreateUser(ctx context.Context, user model.UserItem) error
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
	FindUserByEmail(ctx context.Context, email string) (model.UserItem, error)
	ListUsers(ctx context.Context) ([]model.UserItem, error)
	UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (model.UserItem, error)
	DeleteUser(ctx context.Context, userID string) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func userKey(userID string) map[string]types.AttributeValue {
	return database.StringKey("userId", userID)
}

// CreateUser writes the user together with its email reservation. A second
// account for the same address fails with ErrEmailTaken.
func (r *DynamoRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	err := r.db.Client.PutItemsAtomic(ctx,
		database.ConditionalPut{
			Table:     model.UserEmailsTable,
			Item:      model.UserEmailItem{Email: user.Email, UserID: user.UserID},
			Condition: "attribute_not_exists(email)",
		},
		database.ConditionalPut{
			Table:     model.UsersTable,
			Item:      user,
			Condition: "attribute_not_exists(userId)",
		},
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrEmailTaken
	}
	return err
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	var user model.UserItem
	if err := r.db.Client.GetItem(ctx, model.UsersTable, userKey(userID), &user); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}
	return user, nil
}

func (r *DynamoRepository) FindUserByEmail(ctx context.Context, email string) (model.UserItem, error) {
	values := map[string]types.AttributeValue{":email": database.S(email)}
	names := map[string]string{"#email": "email"}

	items, err := r.db.Client.QueryAll(
		ctx,
		model.UsersTable,
		aws.String(model.IndexByEmail),
		"#email = :email",
		values,
		names,
		nil,
	)
	if err != nil {
		if !database.IsIndexNotFound(err) {
			return model.UserItem{}, err
		}
		items, err = r.db.Client.ScanAllWithFilter(ctx, model.UsersTable, "#email = :email", values, names)
		if err != nil {
			return model.UserItem{}, err
		}
	}
	if len(items) == 0 {
		return model.UserItem{}, ErrNotFound
	}

	users, err := database.UnmarshalItems[model.UserItem](items)
	if err != nil {
		return model.UserItem{}, err
	}
	return users[0], nil
}

func (r *DynamoRepository) ListUsers(ctx context.Context) ([]model.UserItem, error) {
	items, err := r.db.Client.ScanAll(ctx, model.UsersTable)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.UserItem](items)
}

func (r *DynamoRepository) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (model.UserItem, error) {
	expr, values, names, err := database.SetExpression(fields)
	if err != nil {
		return model.UserItem{}, err
	}

	var updated model.UserItem
	err = r.db.Client.UpdateItemConditional(
		ctx,
		model.UsersTable,
		userKey(userID),
		expr,
		"attribute_exists(userId)",
		values,
		names,
		&updated,
	)
	if err != nil {
		if errors.Is(err, database.ErrConditionFailed) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}
	return updated, nil
}

func (r *DynamoRepository) DeleteUser(ctx context.Context, userID string) error {
	user, err := r.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	err = r.db.Client.DeleteItem(ctx, model.UsersTable, userKey(userID), "attribute_exists(userId)")
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return r.db.Client.DeleteItem(ctx, model.UserEmailsTable, database.StringKey("email", user.Email), "")
}
