// service/whitelist_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evspresso/walter/audit"
	walter_errors "github.com/evspresso/walter/errors"
	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/model"
	"github.com/evspresso/walter/rcon"
	"github.com/evspresso/walter/util"
)

// Status is the terminal outcome of one whitelist request. The four policy
// outcomes map one-to-one onto user-facing replies; StatusInternalError
// covers infrastructure faults and always travels with a non-nil error.
type Status int

const (
	StatusOK Status = iota
	StatusDiscordAlreadyUsed
	StatusAlreadyWhitelisted
	StatusMinecraftUserNotValid
	StatusInternalError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusDiscordAlreadyUsed:
		return "DISCORD_ALREADY_USED"
	case StatusAlreadyWhitelisted:
		return "ALREADY_WHITELISTED"
	case StatusMinecraftUserNotValid:
		return "MINECRAFT_USER_NOT_VALID"
	default:
		return "INTERNAL_ERROR"
	}
}

// Ledger is the durable record of spent tokens and granted players.
type Ledger interface {
	HasConsumed(ctx context.Context, discordID string) (bool, error)
	IsGranted(ctx context.Context, playerName string) (bool, error)
	RecordResolution(ctx context.Context, record model.ConsumptionRecord) error
	ListConsumptions(ctx context.Context, limit, offset int) ([]*model.ConsumptionRecord, error)
}

// IdentityValidator confirms a username belongs to a real Mojang account.
type IdentityValidator interface {
	IsValidPlayer(ctx context.Context, username string) bool
}

// AccessChannel issues the whitelist command to the Minecraft server.
type AccessChannel interface {
	IssueGrant(ctx context.Context, playerName string) (rcon.GrantOutcome, error)
}

// IWhitelistService defines the interface for whitelist operations
type IWhitelistService interface {
	AddToWhitelist(ctx context.Context, req model.GrantRequest) (Status, error)
	ListTokens(ctx context.Context, limit, offset int) ([]*model.ConsumptionRecord, error)
}

// WhitelistService enforces the one-token-per-Discord-user rule across the
// ledger, the Mojang lookup and the RCON session.
type WhitelistService struct {
	ledger          Ledger
	validator       IdentityValidator
	console         AccessChannel
	validationUtil  *util.ValidationUtil
	auditService    audit.Service
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IWhitelistService = &WhitelistService{}

// NewWhitelistService creates a new instance of WhitelistService
func NewWhitelistService(
	ledger Ledger,
	validator IdentityValidator,
	console AccessChannel,
	validationUtil *util.ValidationUtil,
	auditService audit.Service,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) *WhitelistService {
	service := &WhitelistService{
		ledger:          ledger,
		validator:       validator,
		console:         console,
		validationUtil:  validationUtil,
		auditService:    auditService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("whitelist.granted", service.handleWhitelistGranted)

	return service
}

func (s *WhitelistService) handleWhitelistGranted(ctx context.Context, event util.Event) error {
	record := event.Payload.(model.ConsumptionRecord)
	logger.Info("Whitelist granted event received",
		zap.String("discordID", record.DiscordID),
		zap.String("playerName", record.PlayerName))

	if err := s.notificationSvc.NotifyGrant(ctx, record); err != nil {
		logger.Warn("Failed to send grant notification",
			zap.Error(err),
			zap.String("discordID", record.DiscordID))
	}

	return nil
}

// AddToWhitelist runs one grant request to a terminal status.
//
// Checks run in an order that keeps externally visible side effects as late
// as possible: spent token, then the player-side ledger, then Mojang, and
// only then the RCON command. Once a request resolves past validation the
// requester's token is spent even when the server reports the player as
// already whitelisted; making a request that got as far as the server is
// what the token buys.
func (s *WhitelistService) AddToWhitelist(ctx context.Context, req model.GrantRequest) (Status, error) {
	start := time.Now()
	requestID := uuid.New().String()

	log := logger.WithContext(
		zap.String("requestID", requestID),
		zap.String("discordID", req.RequesterID),
		zap.String("playerName", req.PlayerName))
	log.Info("Whitelist request received")

	if err := s.validationUtil.ValidateGrantRequest(req); err != nil {
		log.Info("Whitelist request rejected: bad username syntax", zap.Error(err))
		s.writeAudit(ctx, requestID, req, StatusMinecraftUserNotValid)
		return StatusMinecraftUserNotValid, nil
	}

	consumed, err := s.ledger.HasConsumed(ctx, req.RequesterID)
	if err != nil {
		s.writeAudit(ctx, requestID, req, StatusInternalError)
		return StatusInternalError, err
	}
	if consumed {
		log.Info("Whitelist request rejected: token already spent")
		s.writeAudit(ctx, requestID, req, StatusDiscordAlreadyUsed)
		return StatusDiscordAlreadyUsed, nil
	}

	granted, err := s.ledger.IsGranted(ctx, req.PlayerName)
	if err != nil {
		s.writeAudit(ctx, requestID, req, StatusInternalError)
		return StatusInternalError, err
	}
	if granted {
		// Token not spent here: the request never got past the local
		// ledger, so the user keeps their one grant.
		log.Info("Whitelist request rejected: player already granted")
		s.writeAudit(ctx, requestID, req, StatusAlreadyWhitelisted)
		return StatusAlreadyWhitelisted, nil
	}

	if !s.validator.IsValidPlayer(ctx, req.PlayerName) {
		log.Info("Whitelist request rejected: Mojang lookup failed")
		s.writeAudit(ctx, requestID, req, StatusMinecraftUserNotValid)
		return StatusMinecraftUserNotValid, nil
	}

	outcome, err := s.console.IssueGrant(ctx, req.PlayerName)
	if err != nil {
		if notifyErr := s.notificationSvc.NotifyAdmins(ctx, "RCON whitelist command failed: "+err.Error()); notifyErr != nil {
			log.Warn("Failed to notify admins", zap.Error(notifyErr))
		}
		s.writeAudit(ctx, requestID, req, StatusInternalError)
		return StatusInternalError, err
	}

	record := model.ConsumptionRecord{
		DiscordID:   req.RequesterID,
		DiscordName: req.RequesterName,
		PlayerName:  req.PlayerName,
		CreatedAt:   time.Now(),
	}

	// The commit happens before any status is returned, so a success reply
	// is never observable without a durable record behind it.
	if err := s.ledger.RecordResolution(ctx, record); err != nil {
		if errors.Is(err, walter_errors.ErrTokenAlreadyUsed) {
			// A concurrent request for the same user won the insert.
			log.Info("Whitelist request lost a token race")
			s.writeAudit(ctx, requestID, req, StatusDiscordAlreadyUsed)
			return StatusDiscordAlreadyUsed, nil
		}
		// The grant may have been applied on the server without a ledger
		// record; surfacing the error keeps the failure loud.
		log.Error("Grant issued but ledger write failed", zap.Error(err))
		s.writeAudit(ctx, requestID, req, StatusInternalError)
		return StatusInternalError, err
	}

	if outcome == rcon.AlreadyWhitelisted {
		log.Info("Whitelist request resolved: server already had player",
			zap.Duration("duration", time.Since(start)))
		s.writeAudit(ctx, requestID, req, StatusAlreadyWhitelisted)
		return StatusAlreadyWhitelisted, nil
	}

	log.Info("Whitelist request resolved: player added",
		zap.Duration("duration", time.Since(start)))
	s.writeAudit(ctx, requestID, req, StatusOK)
	s.eventBus.Publish(ctx, "whitelist.granted", record)

	return StatusOK, nil
}

// ListTokens exposes the consumption ledger to the ops API.
func (s *WhitelistService) ListTokens(ctx context.Context, limit, offset int) ([]*model.ConsumptionRecord, error) {
	return s.ledger.ListConsumptions(ctx, limit, offset)
}

func (s *WhitelistService) writeAudit(ctx context.Context, requestID string, req model.GrantRequest, status Status) {
	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		RequestID:     requestID,
		DiscordID:     req.RequesterID,
		DiscordName:   req.RequesterName,
		Action:        "WHITELIST_ADD",
		PlayerName:    req.PlayerName,
		Outcome:       status.String(),
		AccessGranted: status == StatusOK,
	}
	if err := s.auditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log",
			zap.Error(err),
			zap.String("requestID", requestID))
	}
}
