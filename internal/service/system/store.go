package system

import (
	"context"
	"fmt"
	"strings"

	"flex-design-backend/internal/database"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Filter matches items whose Attribute equals any of OneOf.
type Filter struct {
	Attribute string
	OneOf     []interface{}
}

type Store interface {
	// Clear deletes every item of table and returns how many were removed.
	Clear(ctx context.Context, table string) (int, error)
	// Count returns the number of items in table, restricted by filter when
	// it is non-nil.
	Count(ctx context.Context, table string, filter *Filter) (int, error)
}

type DynamoStore struct {
	db *database.Database
}

func NewDynamoStore(db *database.Database) Store {
	return &DynamoStore{db: db}
}

func (s *DynamoStore) Clear(ctx context.Context, table string) (int, error) {
	spec, ok := database.LookupTable(table)
	if !ok {
		return 0, fmt.Errorf("unknown table %s", table)
	}
	keys, err := s.db.Client.ScanKeys(ctx, table, spec.HashKey)
	if err != nil {
		return 0, err
	}
	if err := s.db.Client.BatchDeleteItems(ctx, table, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *DynamoStore) Count(ctx context.Context, table string, filter *Filter) (int, error) {
	if filter == nil {
		return s.db.Client.Count(ctx, table, "", nil, nil)
	}
	values := make(map[string]types.AttributeValue, len(filter.OneOf))
	placeholders := make([]string, 0, len(filter.OneOf))
	for i, v := range filter.OneOf {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return 0, fmt.Errorf("marshal filter value: %w", err)
		}
		ph := fmt.Sprintf(":v%d", i)
		values[ph] = av
		placeholders = append(placeholders, ph)
	}
	expr := fmt.Sprintf("#attr IN (%s)", strings.Join(placeholders, ", "))
	return s.db.Client.Count(ctx, table, expr, values, map[string]string{"#attr": filter.Attribute})
}
