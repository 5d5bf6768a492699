// Package surrealdb implements storage on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/surrealdb/surrealdb.go"

	"github.com/jwchung/apexrank/internal/common"
	"github.com/jwchung/apexrank/internal/interfaces"
)

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db       *surrealdb.DB
	logger   *common.Logger
	dataPath string

	companyStore *CompanyStore
	rankingStore *RankingStore
	trendStore   *TrendStore
	systemStore  *SystemStore
}

// NewManager creates a new StorageManager connected to SurrealDB.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Storage.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Storage.Username,
		"pass": config.Storage.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Storage.Namespace, config.Storage.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	// Define tables up front (SurrealDB v3 errors on querying non-existent tables)
	tables := []string{"company", "ranking", "price", "sector_trend", "system_kv"}
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return nil, fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}

	dataPath := config.Storage.DataPath
	if dataPath == "" {
		dataPath = "data"
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data path: %w", err)
	}

	m := &Manager{
		db:       db,
		logger:   logger,
		dataPath: dataPath,
	}

	m.companyStore = NewCompanyStore(db, logger)
	m.rankingStore = NewRankingStore(db, m.companyStore, logger)
	m.trendStore = NewTrendStore(db, logger)
	m.systemStore = NewSystemStore(db, logger)

	logger.Info().
		Str("address", config.Storage.Address).
		Str("namespace", config.Storage.Namespace).
		Str("database", config.Storage.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

func (m *Manager) CompanyStorage() interfaces.CompanyStorage {
	return m.companyStore
}

func (m *Manager) RankingStorage() interfaces.RankingStorage {
	return m.rankingStore
}

func (m *Manager) PriceStorage() interfaces.PriceStorage {
	return m.rankingStore
}

func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.rankingStore
}

func (m *Manager) TrendStorage() interfaces.TrendStorage {
	return m.trendStore
}

func (m *Manager) SystemStorage() interfaces.SystemStorage {
	return m.systemStore
}

// WriteRaw writes a raw artifact (e.g. a rendered chart) under the data path.
func (m *Manager) WriteRaw(subdir, key string, data []byte) error {
	dir := filepath.Join(m.dataPath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// DataPath returns the root for raw artifact writes.
func (m *Manager) DataPath() string {
	return m.dataPath
}

// Close closes the database connection.
func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
