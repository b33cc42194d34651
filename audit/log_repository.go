// audit/log_repository.go
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	walter_errors "github.com/evspresso/walter/errors"
	logger "github.com/evspresso/walter/logging"
)

// LogRepository is the audit sink used when no Elasticsearch instance is
// configured: decisions still land in the structured log, but historical
// queries are unavailable.
type LogRepository struct{}

func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

func (r *LogRepository) LogAccess(ctx context.Context, log AuditLog) error {
	logger.Info("AUDIT: whitelist decision",
		zap.String("requestID", log.RequestID),
		zap.String("discordID", log.DiscordID),
		zap.String("discordName", log.DiscordName),
		zap.String("action", log.Action),
		zap.String("playerName", log.PlayerName),
		zap.String("outcome", log.Outcome),
		zap.Bool("accessGranted", log.AccessGranted))
	return nil
}

func (r *LogRepository) QueryLogs(ctx context.Context, from, to time.Time, discordID, playerName string) ([]AuditLog, error) {
	return nil, walter_errors.ErrAuditUnavailable
}
