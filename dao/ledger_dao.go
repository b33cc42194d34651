// dao/ledger_dao.go
package dao

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/evspresso/walter/db"
	walter_errors "github.com/evspresso/walter/errors"
	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
)

// LedgerDAO owns the two whitelist tables: whitelist_tokens holds one row per
// Discord user that has spent their token, whitelisted_players one row per
// player name believed to be on the server whitelist.
type LedgerDAO struct {
	DB *sql.DB

	// Serializes check-then-record across concurrent grant requests; the
	// primary key on whitelist_tokens is the backstop if two requests for
	// the same user still race past the check.
	mu sync.Mutex
}

func NewLedgerDAO(sqlDB *sql.DB) *LedgerDAO {
	dao := &LedgerDAO{DB: sqlDB}
	ctx := context.Background()
	if err := dao.ensureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure whitelist schema", zap.Error(err))
	}
	return dao
}

func (dao *LedgerDAO) ensureSchema(ctx context.Context) error {
	logger.Info("Ensuring whitelist tables exist")

	_, err := dao.DB.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS whitelist_tokens (
            discord_id   TEXT PRIMARY KEY,
            discord_name TEXT NOT NULL DEFAULT '',
            player_name  TEXT NOT NULL DEFAULT '',
            created_at   TEXT NOT NULL
        )`)
	if err != nil {
		logger.Error("Failed to create whitelist_tokens table", zap.Error(err))
		return err
	}

	_, err = dao.DB.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS whitelisted_players (
            player_name TEXT PRIMARY KEY,
            created_at  TEXT NOT NULL
        )`)
	if err != nil {
		logger.Error("Failed to create whitelisted_players table", zap.Error(err))
		return err
	}

	logger.Info("Whitelist tables OK")
	return nil
}

// HasConsumed reports whether the Discord user has already spent their token.
func (dao *LedgerDAO) HasConsumed(ctx context.Context, discordID string) (bool, error) {
	var one int
	err := dao.DB.QueryRowContext(ctx,
		`SELECT 1 FROM whitelist_tokens WHERE discord_id = ?`, discordID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to query whitelist_tokens",
			zap.Error(err),
			zap.String("discordID", discordID))
		return false, walter_errors.ErrDatabaseOperation
	}
	return true, nil
}

// IsGranted reports whether the player name already has a grant record.
// Matching is case-sensitive, same as the server's own whitelist file.
func (dao *LedgerDAO) IsGranted(ctx context.Context, playerName string) (bool, error) {
	var one int
	err := dao.DB.QueryRowContext(ctx,
		`SELECT 1 FROM whitelisted_players WHERE player_name = ?`, playerName).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to query whitelisted_players",
			zap.Error(err),
			zap.String("playerName", playerName))
		return false, walter_errors.ErrDatabaseOperation
	}
	return true, nil
}

// RecordResolution durably spends the requester's token and records the
// player as whitelisted, in one committed transaction. Returns
// ErrTokenAlreadyUsed if a record for the same Discord ID already exists,
// leaving the stored state untouched.
func (dao *LedgerDAO) RecordResolution(ctx context.Context, record model.ConsumptionRecord) error {
	start := time.Now()

	dao.mu.Lock()
	defer dao.mu.Unlock()

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := db.ExecuteWriteTransaction(ctx, dao.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO whitelist_tokens (discord_id, discord_name, player_name, created_at)
			 VALUES (?, ?, ?, ?)`,
			record.DiscordID, record.DiscordName, record.PlayerName,
			createdAt.UTC().Format(time.RFC3339))
		if err != nil {
			if isUniqueViolation(err) {
				return walter_errors.ErrTokenAlreadyUsed
			}
			return err
		}

		// The grant record may already exist when the server reported
		// the player as whitelisted before we ever recorded it.
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO whitelisted_players (player_name, created_at)
			 VALUES (?, ?)`,
			record.PlayerName, createdAt.UTC().Format(time.RFC3339))
		return err
	})

	duration := time.Since(start)
	if err != nil {
		if errors.Is(err, walter_errors.ErrTokenAlreadyUsed) {
			return err
		}
		logger.Error("Failed to record whitelist resolution",
			zap.Error(err),
			zap.String("discordID", record.DiscordID),
			zap.String("playerName", record.PlayerName),
			zap.Duration("duration", duration))
		return walter_errors.ErrDatabaseOperation
	}

	logger.Info("Whitelist token spent",
		zap.String("discordID", record.DiscordID),
		zap.String("playerName", record.PlayerName),
		zap.Duration("duration", duration))
	return nil
}

// ListConsumptions returns spent tokens ordered by creation time, newest first.
func (dao *LedgerDAO) ListConsumptions(ctx context.Context, limit, offset int) ([]*model.ConsumptionRecord, error) {
	rows, err := dao.DB.QueryContext(ctx,
		`SELECT discord_id, discord_name, player_name, created_at
		 FROM whitelist_tokens
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		logger.Error("Failed to list whitelist tokens", zap.Error(err))
		return nil, walter_errors.ErrDatabaseOperation
	}
	defer rows.Close()

	var records []*model.ConsumptionRecord
	for rows.Next() {
		var rec model.ConsumptionRecord
		var createdAt string
		if err := rows.Scan(&rec.DiscordID, &rec.DiscordName, &rec.PlayerName, &createdAt); err != nil {
			return nil, walter_errors.ErrDatabaseOperation
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, walter_errors.ErrDatabaseOperation
	}

	return records, nil
}

func isUniqueViolation(err error) bool {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY ||
		serr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
}
