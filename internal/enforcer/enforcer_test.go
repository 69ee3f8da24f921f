package enforcer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"antispam/internal/models"
)

type fakePlatform struct {
	deleteErr error
	banErr    error

	deleteCalls int
	banCalls    int
	sendCalls   int
}

func (f *fakePlatform) DeleteMessage(groupID int64, messageID int) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakePlatform) BanMember(groupID, userID int64) error {
	f.banCalls++
	return f.banErr
}

func (f *fakePlatform) UnbanMember(groupID, userID int64) error { return nil }

func (f *fakePlatform) GetMemberRole(groupID, userID int64) (string, error) { return "member", nil }

func (f *fakePlatform) SendMessage(groupID int64, text string, control *Control) (int, error) {
	f.sendCalls++
	return 1, nil
}

func (f *fakePlatform) EditMessage(groupID int64, messageID int, text string) error { return nil }

type fakeProfiles struct {
	verified      map[int64]bool
	markErr       error
	markCalls     int
	lastMarkedUID int64
}

func (f *fakeProfiles) GetOrCreateProfile(userID, groupID int64, username, firstName string) (*models.RiskProfile, error) {
	return nil, errors.New("not used")
}

func (f *fakeProfiles) IncrementSpeechCount(userID, groupID int64) error { return nil }

func (f *fakeProfiles) MarkVerified(userID, groupID int64) error {
	f.markCalls++
	f.lastMarkedUID = userID
	return f.markErr
}

func testProfile() *models.RiskProfile {
	return &models.RiskProfile{UserID: 42, GroupID: -100, Username: "suspect"}
}

func testPolicy(threshold int) *models.GroupPolicy {
	p := models.DefaultGroupPolicy(-100)
	p.SpamScoreThreshold = threshold
	return p
}

func TestEnforce_NilResultIsNoOp(t *testing.T) {
	platform := &fakePlatform{}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	outcome := engine.Enforce(nil, testPolicy(80), testProfile(), 7, 100)

	assert.Equal(t, Outcome{}, outcome)
	assert.Zero(t, platform.deleteCalls)
	assert.Zero(t, platform.banCalls)
	assert.Zero(t, profiles.markCalls)
}

func TestEnforce_CleanVerdictMarksVerified(t *testing.T) {
	platform := &fakePlatform{}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	result := &models.DetectionResult{State: models.StateBenign, SpamScore: 3}
	outcome := engine.Enforce(result, testPolicy(80), testProfile(), 7, 100)

	assert.Equal(t, 1, profiles.markCalls)
	assert.Equal(t, int64(42), profiles.lastMarkedUID)
	assert.Zero(t, platform.deleteCalls)
	assert.Zero(t, platform.banCalls)
	assert.Empty(t, outcome.NotificationText)
}

func TestEnforce_SpamBelowPolicyThresholdTakesNoPlatformAction(t *testing.T) {
	platform := &fakePlatform{}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	// state=1, score 83: spam by the model's fixed cutoff, but the group's
	// own threshold is higher.
	result := &models.DetectionResult{State: models.StateSpam, SpamScore: 83, Reason: "ad"}
	outcome := engine.Enforce(result, testPolicy(90), testProfile(), 7, 100)

	assert.Zero(t, platform.deleteCalls)
	assert.Zero(t, platform.banCalls)
	assert.Zero(t, profiles.markCalls, "spam verdict must never verify the user")
	assert.Empty(t, outcome.NotificationText)
}

func TestEnforce_FullSuccessAttachesUnbanControl(t *testing.T) {
	platform := &fakePlatform{}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	result := &models.DetectionResult{State: models.StateSpam, SpamScore: 92, Reason: "payment ad", MockText: "bold move"}
	outcome := engine.Enforce(result, testPolicy(80), testProfile(), 7, 1234)

	require.True(t, outcome.MessageDeleted)
	require.True(t, outcome.UserBanned)
	assert.Contains(t, outcome.NotificationText, "banned")
	assert.Contains(t, outcome.NotificationText, "92/100")
	assert.Contains(t, outcome.NotificationText, "1234ms")
	require.NotNil(t, outcome.UnbanControl)
	assert.Equal(t, "antispam_unban:42", outcome.UnbanControl.Data)
}

func TestEnforce_BanFailureDegradesNotification(t *testing.T) {
	platform := &fakePlatform{banErr: errors.New("not enough rights")}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	result := &models.DetectionResult{State: models.StateSpam, SpamScore: 92, Reason: "ad"}
	outcome := engine.Enforce(result, testPolicy(80), testProfile(), 7, 100)

	require.True(t, outcome.MessageDeleted)
	require.False(t, outcome.UserBanned)
	assert.Nil(t, outcome.UnbanControl, "nothing to reverse when the ban failed")
	assert.Contains(t, outcome.NotificationText, "Could not ban")
	// The degraded text must not claim the ban happened.
	assert.False(t, strings.Contains(outcome.NotificationText, "user banned"))
}

func TestEnforce_DeleteFailureDoesNotAbortBan(t *testing.T) {
	platform := &fakePlatform{deleteErr: errors.New("message is too old")}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	result := &models.DetectionResult{State: models.StateSpam, SpamScore: 92}
	outcome := engine.Enforce(result, testPolicy(80), testProfile(), 7, 100)

	assert.Equal(t, 1, platform.banCalls, "ban must be attempted even when deletion failed")
	assert.True(t, outcome.UserBanned)
	assert.False(t, outcome.MessageDeleted)
	assert.NotNil(t, outcome.UnbanControl)
}

func TestEnforce_TotalFailureSendsNothing(t *testing.T) {
	platform := &fakePlatform{
		deleteErr: errors.New("no permission"),
		banErr:    errors.New("no permission"),
	}
	profiles := &fakeProfiles{}
	engine := NewEngine(platform, profiles, zap.NewNop())

	result := &models.DetectionResult{State: models.StateSpam, SpamScore: 99}
	outcome := engine.Enforce(result, testPolicy(80), testProfile(), 7, 100)

	assert.Empty(t, outcome.NotificationText, "no notification may claim actions that did not happen")
	assert.Nil(t, outcome.UnbanControl)
}
