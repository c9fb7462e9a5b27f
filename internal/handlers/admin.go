package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"property-catalog/internal/cleanup"
	"property-catalog/internal/logger"
	"property-catalog/internal/models"
	"property-catalog/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	scheduler      *scheduler.Scheduler
	cleanupService *cleanup.Service
	log            *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc *cleanup.Service, sched *scheduler.Scheduler, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		scheduler:      sched,
		cleanupService: svc,
		log:            log.With("handler", "admin"),
	}
}

// GetStats returns catalog and purge statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	cfg := h.scheduler.PurgeConfig()
	if days, err := strconv.Atoi(c.Query("retention_days")); err == nil && days >= 0 {
		cfg.RetentionDays = days
	}

	stats, err := h.cleanupService.Stats(c.Request.Context(), cfg.RetentionDays)
	if err != nil {
		h.log.Error("failed to get stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RunCleanup purges expired soft-deleted properties. The JSON body is optional.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int   `json:"retention_days"`     // Days to keep (default: config)
		MaxDeletionCount int   `json:"max_deletion_count"` // Safety limit (default: config)
		DryRun           *bool `json:"dry_run"`            // Dry run mode (default: config)
	}

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	cfg := h.scheduler.PurgeConfig()
	cfg.Reason = models.PurgeReasonManual
	if req.RetentionDays > 0 {
		cfg.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		cfg.MaxDeletionCount = req.MaxDeletionCount
	}
	if req.DryRun != nil {
		cfg.DryRun = *req.DryRun
	}

	h.log.Info("running cleanup",
		"retention_days", cfg.RetentionDays, "max", cfg.MaxDeletionCount, "dry_run", cfg.DryRun)

	result, err := h.scheduler.RunWith(c.Request.Context(), cfg)
	switch {
	case errors.Is(err, scheduler.ErrAlreadyRunning), errors.Is(err, cleanup.ErrSafetyLimit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.log.Error("cleanup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPurgeLogs returns recent purge log entries
func (h *AdminHandler) GetPurgeLogs(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, _ := strconv.Atoi(limitStr)

	logs, err := h.cleanupService.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("failed to get purge logs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}
