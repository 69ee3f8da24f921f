// Package guard wires intake, the eligibility gate, the detector, the
// enforcement engine and the stats aggregator together. Classification and
// everything downstream of it run on detached background tasks so message
// handling never waits on model latency.
package guard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"antispam/internal/cache"
	"antispam/internal/callback"
	"antispam/internal/detector"
	"antispam/internal/enforcer"
	"antispam/internal/gate"
	"antispam/internal/models"
	"antispam/internal/repository"
	"antispam/internal/tasks"
)

// MessageEvent is one inbound group message.
type MessageEvent struct {
	GroupID      int64
	UserID       int64
	Username     string
	FirstName    string
	MessageID    int
	Text         string
	PhotoURL     string // set for photo messages
	Caption      string
	MediaGroupID string // set for album members; caption may ride a sibling
	FromBot      bool
}

// JoinEvent is one member joining a group.
type JoinEvent struct {
	GroupID   int64
	UserID    int64
	Username  string
	FirstName string
	FromBot   bool
}

// CallbackEvent is one inline-button press on a pipeline notification.
type CallbackEvent struct {
	GroupID        int64
	ActorID        int64
	ActorFirstName string
	Data           string
	MessageID      int
	MessageText    string
}

// CallbackResult is what the platform adapter shows the pressing user.
type CallbackResult struct {
	Text      string
	ShowAlert bool
}

// Guard is the pipeline orchestrator.
type Guard struct {
	policies   repository.GroupPolicyRepository
	profiles   repository.RiskProfileRepository
	logs       repository.DetectionLogRepository
	stats      repository.StatsRepository
	detector   detector.Detector
	engine     *enforcer.Engine
	platform   enforcer.Platform
	supervisor *tasks.Supervisor
	captions   *cache.CaptionCache
	logger     *zap.Logger
}

func New(
	policies repository.GroupPolicyRepository,
	profiles repository.RiskProfileRepository,
	logs repository.DetectionLogRepository,
	stats repository.StatsRepository,
	det detector.Detector,
	platform enforcer.Platform,
	supervisor *tasks.Supervisor,
	captions *cache.CaptionCache,
	logger *zap.Logger,
) *Guard {
	return &Guard{
		policies:   policies,
		profiles:   profiles,
		logs:       logs,
		stats:      stats,
		detector:   det,
		engine:     enforcer.NewEngine(platform, profiles, logger),
		platform:   platform,
		supervisor: supervisor,
		captions:   captions,
		logger:     logger,
	}
}

func isAdminRole(role string) bool {
	return role == "administrator" || role == "creator"
}

// isAdmin does a fresh role lookup; roles change, so no caching. A failed
// lookup counts as non-admin.
func (g *Guard) isAdmin(groupID, userID int64) bool {
	role, err := g.platform.GetMemberRole(groupID, userID)
	if err != nil {
		g.logger.Error("Failed to check admin status",
			zap.Int64("group_id", groupID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return false
	}
	return isAdminRole(role)
}

// OnMemberJoin creates the risk profile eagerly so the join time is exact.
func (g *Guard) OnMemberJoin(event JoinEvent) {
	if event.FromBot {
		return
	}

	if _, err := g.profiles.GetOrCreateProfile(event.UserID, event.GroupID, event.Username, event.FirstName); err != nil {
		g.logger.Error("Failed to handle new member",
			zap.Int64("user_id", event.UserID),
			zap.Int64("group_id", event.GroupID),
			zap.Error(err))
		return
	}
	g.logger.Info("New member joined group",
		zap.Int64("user_id", event.UserID),
		zap.Int64("group_id", event.GroupID))
}

// OnMessage runs the synchronous part of the pipeline: counters and the
// eligibility gate. When the gate fires, detection is dispatched onto a
// detached task and the handler returns immediately.
func (g *Guard) OnMessage(event MessageEvent) {
	if event.FromBot {
		return
	}

	enabled, err := g.policies.IsGroupEnabled(event.GroupID)
	if err != nil {
		g.logger.Error("Failed to check group enablement", zap.Int64("group_id", event.GroupID), zap.Error(err))
		return
	}
	if !enabled {
		return
	}

	if g.isAdmin(event.GroupID, event.UserID) {
		return
	}

	if event.Caption != "" && event.MediaGroupID != "" {
		g.captions.Put(event.GroupID, event.MediaGroupID, event.Caption)
	}

	profile, err := g.profiles.GetOrCreateProfile(event.UserID, event.GroupID, event.Username, event.FirstName)
	if err != nil {
		g.logger.Error("Failed to load risk profile",
			zap.Int64("user_id", event.UserID),
			zap.Int64("group_id", event.GroupID),
			zap.Error(err))
		return
	}

	// Failure is logged by the repository; the check still proceeds.
	_ = g.profiles.IncrementSpeechCount(event.UserID, event.GroupID)

	policy, err := g.policies.GetPolicy(event.GroupID)
	if err != nil || policy == nil {
		if err != nil {
			g.logger.Error("Failed to load group policy", zap.Int64("group_id", event.GroupID), zap.Error(err))
		}
		return
	}

	if !gate.ShouldCheck(profile, policy, time.Now()) {
		return
	}

	// No per-user lock is held between the gate and the task's effects; two
	// rapid messages from one user may both be classified. Accepted race.
	g.supervisor.Spawn(int64(event.MessageID), func(ctx context.Context) {
		g.detectAndProcess(ctx, event, profile, policy)
	})
}

// riskFactors lists account-shape flags the model should weigh.
func riskFactors(event MessageEvent) []string {
	var factors []string
	if event.Username == "" {
		factors = append(factors, "no username")
	}
	return factors
}

// detectAndProcess is the detached half of the pipeline: classify, enforce,
// log, count, notify.
func (g *Guard) detectAndProcess(ctx context.Context, event MessageEvent, profile *models.RiskProfile, policy *models.GroupPolicy) {
	summary := detector.NewSummary(profile, time.Now(), riskFactors(event))

	var (
		result      *models.DetectionResult
		elapsedMs   int64
		err         error
		messageType string
		messageText string
	)

	switch {
	case event.Text != "" && policy.CheckText:
		messageType = "text"
		messageText = event.Text
		result, elapsedMs, err = g.detector.DetectText(ctx, event.Text, summary)
	case event.PhotoURL != "" && policy.CheckPhoto:
		messageType = "photo"
		caption := event.Caption
		if caption == "" && event.MediaGroupID != "" {
			caption, _ = g.captions.Get(event.GroupID, event.MediaGroupID)
		}
		messageText = fmt.Sprintf("[photo] %s", caption)
		result, elapsedMs, err = g.detector.DetectPhoto(ctx, event.PhotoURL, summary, caption)
	default:
		return
	}

	// Detection failure: no log row, no stats, no enforcement.
	if err != nil || result == nil {
		g.logger.Error("Detection failed, skipping enforcement",
			zap.Int64("user_id", event.UserID),
			zap.Int64("group_id", event.GroupID),
			zap.Error(err))
		return
	}

	outcome := g.engine.Enforce(result, policy, profile, event.MessageID, elapsedMs)

	logRow := &models.DetectionLog{
		UserID:          event.UserID,
		GroupID:         event.GroupID,
		Username:        profile.DisplayName(),
		MessageType:     messageType,
		MessageText:     messageText,
		SpamScore:       result.SpamScore,
		SpamReason:      result.Reason,
		SpamMockText:    result.MockText,
		IsSpam:          result.IsSpam(),
		IsBanned:        outcome.UserBanned,
		DetectionTimeMs: elapsedMs,
	}
	// Store failures are logged by the repositories; the remaining steps
	// still run.
	_ = g.logs.SaveLog(logRow)
	_ = g.stats.RecordCheck(event.GroupID, result.IsSpam(), outcome.UserBanned)

	if outcome.NotificationText == "" {
		return
	}

	notificationID, err := g.platform.SendMessage(event.GroupID, outcome.NotificationText, outcome.UnbanControl)
	if err != nil {
		g.logger.Error("Failed to send enforcement notification",
			zap.Int64("group_id", event.GroupID),
			zap.Error(err))
		return
	}

	delay := time.Duration(policy.AutoDeleteDelaySeconds) * time.Second
	g.supervisor.SpawnAfter(int64(notificationID), delay, func() {
		// The notification may already be gone; a failed delete is expected.
		if err := g.platform.DeleteMessage(event.GroupID, notificationID); err != nil {
			g.logger.Debug("Failed to auto-delete notification",
				zap.Int64("group_id", event.GroupID),
				zap.Int("message_id", notificationID),
				zap.Error(err))
		}
	})
}

// OnCallback handles the admin override flow: Banned -> Unbanned, with a
// fresh privilege check per press and no stats mutation unless the platform
// unban succeeds.
func (g *Guard) OnCallback(event CallbackEvent) CallbackResult {
	cmd, userID, err := callback.Parse(event.Data)
	if err != nil {
		g.logger.Error("Failed to parse callback data", zap.String("data", event.Data), zap.Error(err))
		return CallbackResult{}
	}
	if cmd != callback.Unban {
		return CallbackResult{}
	}

	if !g.isAdmin(event.GroupID, event.ActorID) {
		return CallbackResult{Text: "⚠️ Only administrators can do this", ShowAlert: true}
	}

	if err := g.platform.UnbanMember(event.GroupID, userID); err != nil {
		g.logger.Error("Failed to unban user",
			zap.Int64("user_id", userID),
			zap.Int64("group_id", event.GroupID),
			zap.Error(err))
		return CallbackResult{Text: "❌ Unban failed", ShowAlert: true}
	}
	g.logger.Info("Unbanned user",
		zap.Int64("user_id", userID),
		zap.Int64("group_id", event.GroupID),
		zap.Int64("admin_id", event.ActorID))

	_ = g.stats.RecordFalsePositive(event.GroupID)

	amended := fmt.Sprintf("%s\n\n✅ Unbanned by admin %s at %s",
		event.MessageText, event.ActorFirstName, time.Now().Format("2006-01-02 15:04"))
	if err := g.platform.EditMessage(event.GroupID, event.MessageID, amended); err != nil {
		g.logger.Error("Failed to amend ban notification",
			zap.Int64("group_id", event.GroupID),
			zap.Int("message_id", event.MessageID),
			zap.Error(err))
	}

	return CallbackResult{Text: "✅ User unbanned", ShowAlert: true}
}
