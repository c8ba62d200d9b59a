package config

import (
	"fmt"
	"log"

	migration "kalorikollen/cmd/database/migrate"
	"kalorikollen/internal/utils"
	"kalorikollen/pkg/store"
)

// NewStore opens the ledger store selected by STORE_DRIVER. The returned
// close func releases the underlying database and is never nil.
func NewStore() (store.Provider, func() error, error) {
	switch driver := utils.GetConfig("STORE_DRIVER"); driver {
	case "memory":
		return store.NewMemory(), func() error { return nil }, nil
	case "sqlite":
		s, err := store.OpenSQLite(utils.GetConfig("SQLITE_PATH"))
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		db, err := ConnectDB()
		if err != nil {
			return nil, nil, err
		}
		if err := migration.Migrate(db); err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return store.NewGorm(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q (use memory, sqlite or postgres)", driver)
	}
}

// MustStore is NewStore for main: it exits on failure.
func MustStore() (store.Provider, func() error) {
	provider, closeFn, err := NewStore()
	if err != nil {
		log.Fatalf("error opening ledger store: %v", err)
	}
	return provider, closeFn
}
