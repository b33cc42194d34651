// util/notification_service.go

package util

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a Discord webhook client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyGrant surfaces a completed whitelist grant to the operators.
func (n *NotificationService) NotifyGrant(ctx context.Context, record model.ConsumptionRecord) error {
	logger.Info("NOTIFICATION: Player whitelisted",
		zap.String("discordID", record.DiscordID),
		zap.String("discordName", record.DiscordName),
		zap.String("playerName", record.PlayerName))
	return nil
}

// NotifyAdmins is for conditions an operator should look at, like the RCON
// session dropping mid-request.
func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Warn("Notifying admins", zap.String("message", message))
	return nil
}
