// controller/whitelist_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evspresso/walter/audit"
	walter_errors "github.com/evspresso/walter/errors"
	"github.com/evspresso/walter/model"
	"github.com/evspresso/walter/service"
	"github.com/evspresso/walter/util"
	helper_util "github.com/evspresso/walter/util/helper"
)

type WhitelistController struct {
	whitelistService service.IWhitelistService
	auditService     audit.Service
}

func NewWhitelistController(whitelistService service.IWhitelistService, auditService audit.Service) *WhitelistController {
	return &WhitelistController{
		whitelistService: whitelistService,
		auditService:     auditService,
	}
}

// RegisterRoutes registers the ops API routes for whitelist management
func (wc *WhitelistController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tokens", wc.ListTokens)
	r.GET("/audit", wc.QueryAudit)
	r.POST("/whitelist", wc.AddToWhitelist)
}

// ListTokens returns the spent whitelist tokens, newest first.
func (wc *WhitelistController) ListTokens(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", walter_errors.ErrInvalidPagination)
		return
	}

	records, err := wc.whitelistService.ListTokens(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list whitelist tokens", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": records, "count": len(records)})
}

// QueryAudit passes a time-bounded query through to the audit backend.
func (wc *WhitelistController) QueryAudit(c *gin.Context) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if raw := c.Query("from"); raw != "" {
		parsed, err := helper_util.ParseTime(raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp", err)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := helper_util.ParseTime(raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp", err)
			return
		}
		to = parsed
	}

	logs, err := wc.auditService.QueryLogs(c, from, to, c.Query("discord_id"), c.Query("player"))
	if err != nil {
		if errors.Is(err, walter_errors.ErrAuditUnavailable) {
			util.RespondWithError(c, http.StatusServiceUnavailable, "Audit backend not configured", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit logs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// AddToWhitelist lets an admin run the grant workflow on a user's behalf,
// under the same one-token rule the slash command enforces.
func (wc *WhitelistController) AddToWhitelist(c *gin.Context) {
	var req model.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant request data", walter_errors.ErrInvalidRequest)
		return
	}
	if req.RequesterID == "" {
		// Fallback: attribute the grant to the authenticated admin.
		adminID, _ := c.Get("requestingUserID")
		if id, ok := adminID.(string); ok {
			req.RequesterID = id
		}
	}

	status, err := wc.whitelistService.AddToWhitelist(c, req)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to process grant request", err)
		return
	}

	switch status {
	case service.StatusOK:
		c.JSON(http.StatusCreated, gin.H{"status": status.String()})
	case service.StatusDiscordAlreadyUsed, service.StatusAlreadyWhitelisted:
		c.JSON(http.StatusConflict, gin.H{"status": status.String()})
	case service.StatusMinecraftUserNotValid:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": status.String()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": status.String()})
	}
}
