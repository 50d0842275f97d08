package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/ethaccount/dats/src/utils"
	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB connects to TEST_DB_URL and applies the migrations. The tables are dropped
// again when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := RequireEnv(t, "TEST_DB_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	migration, err := migrate.New(utils.MigrationSource(), dsn)
	if err != nil {
		t.Fatalf("failed to create migrate: %v", err)
	}
	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if err := migration.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			t.Logf("Warning: failed to roll back test database: %v", err)
		}
		migration.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// SetupTestRedis connects to TEST_REDIS_URL and flushes the selected database on cleanup.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := RequireEnv(t, "TEST_REDIS_URL")

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("Invalid TEST_REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to connect to test redis: %v", err)
	}

	t.Cleanup(func() {
		rdb.FlushDB(context.Background())
		rdb.Close()
	})

	return rdb
}
