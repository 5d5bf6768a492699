package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
)

// systemKV is a row of the system_kv table, keyed by Key.
type systemKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SystemStore holds small operational facts (last run date, last refresh)
// as string key/values.
type SystemStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewSystemStore creates a new SystemStore.
func NewSystemStore(db *surrealdb.DB, logger *common.Logger) *SystemStore {
	return &SystemStore{
		db:     db,
		logger: logger,
	}
}

// GetSystemKV returns the stored value for key, or "" when the key is unknown.
func (s *SystemStore) GetSystemKV(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[systemKV](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil {
		return "", fmt.Errorf("failed to select system KV %s: %w", key, err)
	}
	if kv == nil {
		return "", nil
	}
	return kv.Value, nil
}

// SetSystemKV writes a key/value pair, overwriting any previous value.
func (s *SystemStore) SetSystemKV(ctx context.Context, key, value string) error {
	kv := systemKV{Key: key, Value: value}

	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kv}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]systemKV](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set system KV %s after retries: %w", key, err)
		}
	}
	return nil
}

// Ensure SystemStore implements SystemStorage
var _ interfaces.SystemStorage = (*SystemStore)(nil)
