package support

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"flex-design-backend/internal/database"
	"flex-design-backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound       = errors.New("support repository: not found")
	ErrSessionClosed  = errors.New("support repository: session closed")
	ErrAlreadyClaimed = errors.New("support repository: session already claimed")
)

type Repository interface {
	CreateSession(ctx context.Context, session model.SupportSessionItem) error
	GetSession(ctx context.Context, sessionID string) (model.SupportSessionItem, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]model.SupportSessionItem, error)
	ListOpenSessions(ctx context.Context) ([]model.SupportSessionItem, error)
	// ClaimSession sets status ACTIVE and adminId. With onlyWaiting the write
	// succeeds only while the session is WAITING.
	ClaimSession(ctx context.Context, sessionID, adminID string, onlyWaiting bool) (model.SupportSessionItem, error)
	CloseSession(ctx context.Context, sessionID string) (model.SupportSessionItem, error)
	AppendMessage(ctx context.Context, message model.SupportMessageItem) error
	TouchSession(ctx context.Context, sessionID, lastMessageAt string, incrementUnreadByAdmin bool) error
	ResetUnread(ctx context.Context, sessionID string, byAdmin bool) error
	ListMessages(ctx context.Context, sessionID string) ([]model.SupportMessageItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func sessionKey(sessionID string) map[string]types.AttributeValue {
	return database.StringKey("sessionId", sessionID)
}

func (r *DynamoRepository) CreateSession(ctx context.Context, session model.SupportSessionItem) error {
	return r.db.Client.PutItem(ctx, model.SupportSessionsTable, session)
}

func (r *DynamoRepository) GetSession(ctx context.Context, sessionID string) (model.SupportSessionItem, error) {
	var session model.SupportSessionItem
	if err := r.db.Client.GetItem(ctx, model.SupportSessionsTable, sessionKey(sessionID), &session); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return model.SupportSessionItem{}, ErrNotFound
		}
		return model.SupportSessionItem{}, err
	}
	return session, nil
}

func (r *DynamoRepository) ListSessionsByUser(ctx context.Context, userID string) ([]model.SupportSessionItem, error) {
	values := map[string]types.AttributeValue{":userId": database.S(userID)}
	names := map[string]string{"#userId": "userId"}

	items, err := r.db.Client.QueryAll(
		ctx,
		model.SupportSessionsTable,
		aws.String(model.IndexByUser),
		"#userId = :userId",
		values,
		names,
		nil,
	)
	if err != nil {
		if !database.IsIndexNotFound(err) {
			return nil, err
		}
		items, err = r.db.Client.ScanAllWithFilter(ctx, model.SupportSessionsTable, "#userId = :userId", values, names)
		if err != nil {
			return nil, err
		}
	}
	return database.UnmarshalItems[model.SupportSessionItem](items)
}

func (r *DynamoRepository) ListOpenSessions(ctx context.Context) ([]model.SupportSessionItem, error) {
	items, err := r.db.Client.ScanAllWithFilter(
		ctx,
		model.SupportSessionsTable,
		"#status IN (:waiting, :active)",
		map[string]types.AttributeValue{
			":waiting": database.S(string(model.SupportStatusWaiting)),
			":active":  database.S(string(model.SupportStatusActive)),
		},
		map[string]string{"#status": "status"},
	)
	if err != nil {
		return nil, err
	}
	return database.UnmarshalItems[model.SupportSessionItem](items)
}

func (r *DynamoRepository) ClaimSession(ctx context.Context, sessionID, adminID string, onlyWaiting bool) (model.SupportSessionItem, error) {
	values := map[string]types.AttributeValue{
		":active":  database.S(string(model.SupportStatusActive)),
		":adminId": database.S(adminID),
	}
	names := map[string]string{
		"#status":  "status",
		"#adminId": "adminId",
	}

	var cond string
	if onlyWaiting {
		cond = "#status = :waiting"
		values[":waiting"] = database.S(string(model.SupportStatusWaiting))
	} else {
		cond = "attribute_exists(sessionId) AND #status <> :closed"
		values[":closed"] = database.S(string(model.SupportStatusClosed))
	}

	var updated model.SupportSessionItem
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.SupportSessionsTable,
		sessionKey(sessionID),
		"SET #status = :active, #adminId = :adminId",
		cond,
		values,
		names,
		&updated,
	)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, database.ErrConditionFailed) {
		return model.SupportSessionItem{}, err
	}

	current, getErr := r.GetSession(ctx, sessionID)
	if getErr != nil {
		return model.SupportSessionItem{}, getErr
	}
	if current.Status == model.SupportStatusClosed {
		return current, ErrSessionClosed
	}
	return current, ErrAlreadyClaimed
}

// CloseSession returns ErrSessionClosed, with the stored session, when the
// session was already CLOSED.
func (r *DynamoRepository) CloseSession(ctx context.Context, sessionID string) (model.SupportSessionItem, error) {
	var updated model.SupportSessionItem
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.SupportSessionsTable,
		sessionKey(sessionID),
		"SET #status = :closed",
		"attribute_exists(sessionId) AND #status <> :closed",
		map[string]types.AttributeValue{":closed": database.S(string(model.SupportStatusClosed))},
		map[string]string{"#status": "status"},
		&updated,
	)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, database.ErrConditionFailed) {
		return model.SupportSessionItem{}, err
	}

	current, getErr := r.GetSession(ctx, sessionID)
	if getErr != nil {
		return model.SupportSessionItem{}, getErr
	}
	return current, ErrSessionClosed
}

func (r *DynamoRepository) AppendMessage(ctx context.Context, message model.SupportMessageItem) error {
	return r.db.Client.PutItem(ctx, model.SupportMessagesTable, message)
}

func (r *DynamoRepository) TouchSession(ctx context.Context, sessionID, lastMessageAt string, incrementUnreadByAdmin bool) error {
	counter := "unreadByUser"
	if incrementUnreadByAdmin {
		counter = "unreadByAdmin"
	}
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.SupportSessionsTable,
		sessionKey(sessionID),
		"SET #lastMessageAt = :lastMessageAt ADD #counter :one",
		"attribute_exists(sessionId)",
		map[string]types.AttributeValue{
			":lastMessageAt": database.S(lastMessageAt),
			":one":           database.N(1),
		},
		map[string]string{
			"#lastMessageAt": "lastMessageAt",
			"#counter":       counter,
		},
		nil,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoRepository) ResetUnread(ctx context.Context, sessionID string, byAdmin bool) error {
	counter := "unreadByUser"
	if byAdmin {
		counter = "unreadByAdmin"
	}
	err := r.db.Client.UpdateItemConditional(
		ctx,
		model.SupportSessionsTable,
		sessionKey(sessionID),
		"SET #counter = :zero",
		"attribute_exists(sessionId)",
		map[string]types.AttributeValue{":zero": database.N(0)},
		map[string]string{"#counter": counter},
		nil,
	)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrNotFound
	}
	return err
}

func (r *DynamoRepository) ListMessages(ctx context.Context, sessionID string) ([]model.SupportMessageItem, error) {
	values := map[string]types.AttributeValue{":sessionId": database.S(sessionID)}
	names := map[string]string{"#sessionId": "sessionId"}

	items, err := r.db.Client.QueryAll(
		ctx,
		model.SupportMessagesTable,
		aws.String(model.IndexBySession),
		"#sessionId = :sessionId",
		values,
		names,
		aws.Bool(true),
	)
	if err != nil {
		if !database.IsIndexNotFound(err) {
			return nil, fmt.Errorf("list support messages: %w", err)
		}
		items, err = r.db.Client.ScanAllWithFilter(ctx, model.SupportMessagesTable, "#sessionId = :sessionId", values, names)
		if err != nil {
			return nil, fmt.Errorf("scan support messages: %w", err)
		}
	}

	messages, err := database.UnmarshalItems[model.SupportMessageItem](items)
	if err != nil {
		return nil, err
	}
	sortMessages(messages)
	return messages, nil
}

func sortMessages(messages []model.SupportMessageItem) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})
}
