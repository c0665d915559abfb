// Package testing provides the postgres harness and fixtures for integration tests.
package testing

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/Thien222/ManageCustomerInBank-BE/models"
	_ "github.com/lib/pq" // PostgreSQL driver for database/sql
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDBConfig points the harness at a postgres server. Each test run creates
// and drops its own database there, so parallel runs never collide.
type TestDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	SSLMode  string
}

func configFromEnv() *TestDBConfig {
	return &TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envIntOr("TEST_DB_PORT", 5432),
		User:     envOr("TEST_DB_USER", "postgres"),
		Password: envOr("TEST_DB_PASSWORD", "postgres"),
		SSLMode:  envOr("TEST_DB_SSL_MODE", "disable"),
	}
}

func (c *TestDBConfig) dsn(dbName string) string {
	base := fmt.Sprintf("host=%s port=%d user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.SSLMode)
	if dbName == "" {
		return base
	}
	return base + " dbname=" + dbName
}

func (c *TestDBConfig) connect(dbName string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(c.dsn(dbName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// TestDB is one throwaway database created for a single test
type TestDB struct {
	DB     *gorm.DB
	Name   string
	config *TestDBConfig
}

// SetupTestDB creates a uniquely named database and migrates the schema into
// it. Callers must TeardownTestDB when done.
func SetupTestDB() (*TestDB, error) {
	config := configFromEnv()
	dbName := fmt.Sprintf("bank_cases_test_%d_%d", time.Now().Unix(), rand.Intn(10000))

	adminDB, err := config.connect("")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	err = adminDB.Exec("CREATE DATABASE " + dbName).Error
	closeDB(adminDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create test database %s: %w", dbName, err)
	}

	testDB, err := config.connect(dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database %s: %w", dbName, err)
	}

	// The production binary migrates the same way on startup
	if err := testDB.AutoMigrate(&models.Account{}, &models.CaseRecord{}); err != nil {
		closeDB(testDB)
		dropDatabase(config, dbName)
		return nil, fmt.Errorf("failed to migrate test database %s: %w", dbName, err)
	}

	return &TestDB{DB: testDB, Name: dbName, config: config}, nil
}

// TeardownTestDB closes the connection and drops the database
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.DB == nil {
		return nil
	}
	closeDB(tdb.DB)
	return dropDatabase(tdb.config, tdb.Name)
}

// ClearAllTables truncates all data while keeping the schema, for tests that
// share one database across subtests
func (tdb *TestDB) ClearAllTables() error {
	for _, table := range []string{"case_records", "accounts"} {
		if err := tdb.DB.Exec("TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func dropDatabase(config *TestDBConfig, dbName string) error {
	adminDB, err := config.connect("")
	if err != nil {
		log.Printf("warning: failed to connect for cleanup of %s: %v", dbName, err)
		return err
	}
	defer closeDB(adminDB)

	// Kick out lingering connections first or the drop blocks
	if err := adminDB.Exec(fmt.Sprintf(
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid()",
		dbName)).Error; err != nil {
		log.Printf("warning: failed to terminate connections to %s: %v", dbName, err)
	}

	if err := adminDB.Exec("DROP DATABASE IF EXISTS " + dbName).Error; err != nil {
		log.Printf("warning: failed to drop test database %s: %v", dbName, err)
		return err
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
