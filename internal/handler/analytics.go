package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"antispam/internal/repository"
)

type AnalyticsHandler interface {
	GetGroupStats(c *gin.Context)
	GetRecentLogs(c *gin.Context)
}

type analyticsHandler struct {
	stats  repository.StatsRepository
	logs   repository.DetectionLogRepository
	logger *zap.Logger
}

func NewAnalyticsHandler(stats repository.StatsRepository, logs repository.DetectionLogRepository, logger *zap.Logger) AnalyticsHandler {
	return &analyticsHandler{stats: stats, logs: logs, logger: logger}
}

func groupIDParam(c *gin.Context) (int64, bool) {
	groupID, err := strconv.ParseInt(c.Param("group_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, false
	}
	return groupID, true
}

// GetGroupStats handles GET /api/groups/:group_id/stats?days=7
func (h *analyticsHandler) GetGroupStats(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	stats, err := h.stats.GetGroupStats(groupID, days)
	if err != nil {
		h.logger.Error("Failed to get group stats", zap.Int64("group_id", groupID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "days": days, "stats": stats})
}

// GetRecentLogs handles GET /api/groups/:group_id/logs?limit=50
func (h *analyticsHandler) GetRecentLogs(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}

	logs, err := h.logs.GetRecent(groupID, limit)
	if err != nil {
		h.logger.Error("Failed to get recent logs", zap.Int64("group_id", groupID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "logs": logs})
}
