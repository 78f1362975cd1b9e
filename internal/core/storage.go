package core

import (
	"fmt"

	"shopcore/internal/infra/persistence/memory"
	"shopcore/internal/infra/persistence/postgres"
	"shopcore/internal/infra/persistence/sqlite"
	"shopcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file, the on-device default
	StoragePostgres StorageDriver = "postgres" // shared back-office PostgreSQL
)

// StorageConfig selects and parameterizes a store backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenStore constructs the selected backend. It is called once at application
// start and the returned store is injected into every component that needs
// it; there is no process-wide singleton and no lazy initialization to race.
func OpenStore(cfg StorageConfig, engine *domain.RulesEngine) (PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
