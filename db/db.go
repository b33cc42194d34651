// db/db.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/evspresso/walter/config"
	logger "github.com/evspresso/walter/logging"
)

var SQLite *sql.DB

func InitSQLite() error {
	path := config.GetString("paths.database")
	logger.Info("Opening whitelist database", zap.String("path", path))

	// WAL keeps a half-written transaction out of the main file if the
	// process dies mid-commit; busy_timeout covers the ops API and the bot
	// hitting the file at the same time.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

	var err error
	SQLite, err = sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer at a time; database/sql otherwise opens extra
	// connections and SQLITE_BUSY shows up under concurrent grants.
	SQLite.SetMaxOpenConns(1)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := SQLite.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	logger.Info("Successfully connected to whitelist database")
	return nil
}

func CloseSQLite() {
	if SQLite != nil {
		if err := SQLite.Close(); err != nil {
			logger.Error("Error closing whitelist database", zap.Error(err))
		} else {
			logger.Info("Whitelist database closed successfully")
		}
	}
}

// ExecuteWriteTransaction runs work inside a committed transaction. The
// transaction is rolled back when work returns an error, so callers never see
// a half-applied mutation.
func ExecuteWriteTransaction(ctx context.Context, sqlDB *sql.DB, work func(tx *sql.Tx) error) error {
	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := work(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
