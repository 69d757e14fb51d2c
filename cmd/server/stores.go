package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vitalpath/VitalPath/internal/api"
	dbstore "github.com/vitalpath/VitalPath/internal/db"
	"github.com/vitalpath/VitalPath/internal/services"
)

// openStore picks the assessment store: SQLite when a path is configured,
// the in-process store otherwise. Migrations run on every start; they are
// idempotent.
func openStore(sqlitePath, migrationsDir string) (api.Store, func(), error) {
	if sqlitePath == "" {
		log.Printf("no sqlite path configured, using in-memory store")
		return api.NewMemoryStore(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := dbstore.RunMigrations(sqliteDB, migrationsDir); err != nil {
		_ = sqliteDB.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	store, err := dbstore.NewStore(sqliteDB)
	if err != nil {
		_ = sqliteDB.Close()
		return nil, nil, fmt.Errorf("init sqlite store: %w", err)
	}
	closeFn := func() {
		if cerr := sqliteDB.Close(); cerr != nil {
			log.Printf("warning: failed to close sqlite db: %v", cerr)
		}
	}
	return store, closeFn, nil
}

// openSubmitterStore picks the per-client submitter store: Redis when an
// address is configured, in-process otherwise.
func openSubmitterStore(redisAddr string) (services.SubmitterStore, func(), error) {
	if redisAddr == "" {
		return services.NewMemorySubmitterStore(), func() {}, nil
	}
	rdb, err := dbstore.NewRedisClient(redisAddr)
	if err != nil {
		return nil, nil, err
	}
	store, err := dbstore.NewRedisSubmitterStore(rdb)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Printf("warning: failed to close redis client: %v", cerr)
		}
	}
	return store, closeFn, nil
}
