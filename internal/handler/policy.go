package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"antispam/internal/models"
	"antispam/internal/repository"
)

type PolicyHandler interface {
	ListEnabledGroups(c *gin.Context)
	GetPolicy(c *gin.Context)
	UpdatePolicy(c *gin.Context)
}

type policyHandler struct {
	policies repository.GroupPolicyRepository
	logger   *zap.Logger
}

func NewPolicyHandler(policies repository.GroupPolicyRepository, logger *zap.Logger) PolicyHandler {
	return &policyHandler{policies: policies, logger: logger}
}

// ListEnabledGroups handles GET /api/groups
func (h *policyHandler) ListEnabledGroups(c *gin.Context) {
	groups, err := h.policies.GetAllEnabledGroups()
	if err != nil {
		h.logger.Error("Failed to list enabled groups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetPolicy handles GET /api/groups/:group_id/policy
func (h *policyHandler) GetPolicy(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	policy, err := h.policies.GetPolicy(groupID)
	if err != nil {
		h.logger.Error("Failed to get policy", zap.Int64("group_id", groupID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve policy"})
		return
	}
	if policy == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group has never been enabled"})
		return
	}

	c.JSON(http.StatusOK, policy)
}

type updatePolicyRequest struct {
	CheckText                  *bool `json:"check_text"`
	CheckPhoto                 *bool `json:"check_photo"`
	SpamScoreThreshold         *int  `json:"spam_score_threshold"`
	JoinedTimeThresholdDays    *int  `json:"joined_time_threshold_days"`
	SpeechCountThreshold       *int  `json:"speech_count_threshold"`
	VerificationTimesThreshold *int  `json:"verification_times_threshold"`
	AutoDeleteDelaySeconds     *int  `json:"auto_delete_delay_seconds"`
}

// UpdatePolicy handles PUT /api/groups/:group_id/policy. Only the fields
// present in the body change; the enabled flag is owned by the chat
// commands and never touched here.
func (h *policyHandler) UpdatePolicy(c *gin.Context) {
	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	var req updatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	policy, err := h.policies.GetPolicy(groupID)
	if err != nil {
		h.logger.Error("Failed to get policy", zap.Int64("group_id", groupID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve policy"})
		return
	}
	if policy == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group has never been enabled"})
		return
	}

	applyPolicyUpdate(policy, &req)

	if err := validatePolicy(policy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.policies.UpdatePolicy(policy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group has never been enabled"})
			return
		}
		h.logger.Error("Failed to update policy", zap.Int64("group_id", groupID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update policy"})
		return
	}

	c.JSON(http.StatusOK, policy)
}

// validatePolicy mirrors the table's CHECK constraints so a bad request
// fails here instead of surfacing as a database error.
func validatePolicy(policy *models.GroupPolicy) error {
	if policy.SpamScoreThreshold < 0 || policy.SpamScoreThreshold > 100 {
		return errors.New("spam_score_threshold must be between 0 and 100")
	}
	if policy.JoinedTimeThresholdDays < 0 {
		return errors.New("joined_time_threshold_days must not be negative")
	}
	if policy.SpeechCountThreshold < 0 {
		return errors.New("speech_count_threshold must not be negative")
	}
	if policy.VerificationTimesThreshold < 0 {
		return errors.New("verification_times_threshold must not be negative")
	}
	if policy.AutoDeleteDelaySeconds < 0 {
		return errors.New("auto_delete_delay_seconds must not be negative")
	}
	return nil
}

func applyPolicyUpdate(policy *models.GroupPolicy, req *updatePolicyRequest) {
	if req.CheckText != nil {
		policy.CheckText = *req.CheckText
	}
	if req.CheckPhoto != nil {
		policy.CheckPhoto = *req.CheckPhoto
	}
	if req.SpamScoreThreshold != nil {
		policy.SpamScoreThreshold = *req.SpamScoreThreshold
	}
	if req.JoinedTimeThresholdDays != nil {
		policy.JoinedTimeThresholdDays = *req.JoinedTimeThresholdDays
	}
	if req.SpeechCountThreshold != nil {
		policy.SpeechCountThreshold = *req.SpeechCountThreshold
	}
	if req.VerificationTimesThreshold != nil {
		policy.VerificationTimesThreshold = *req.VerificationTimesThreshold
	}
	if req.AutoDeleteDelaySeconds != nil {
		policy.AutoDeleteDelaySeconds = *req.AutoDeleteDelaySeconds
	}
}
