package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"firstbites/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeSNS struct {
	mu          sync.Mutex
	published   []*awssns.PublishInput
	endpointErr error
	publishErr  error
}

func (f *fakeSNS) CreatePlatformEndpoint(_ context.Context, in *awssns.CreatePlatformEndpointInput, _ ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error) {
	if f.endpointErr != nil {
		return nil, f.endpointErr
	}
	return &awssns.CreatePlatformEndpointOutput{EndpointArn: aws.String("arn:endpoint/" + aws.ToString(in.Token))}, nil
}

func (f *fakeSNS) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, in)
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	return &awssns.PublishOutput{MessageId: aws.String("m")}, nil
}

func newTestPushService(t *testing.T) (*PushService, *fakeSNS, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	u := defaultUser()
	require.NoError(t, db.Create(&u).Error)
	sns := &fakeSNS{}
	return &PushService{db: db, sns: sns, fcmPlatformArn: "arn:app/fcm", log: zap.NewNop().Sugar()}, sns, db
}

func TestPushService_RegisterDevice(t *testing.T) {
	ps, sns, db := newTestPushService(t)
	ctx := context.Background()

	dev, err := ps.RegisterDevice(ctx, testUser, "Android", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "arn:endpoint/tok-1", dev.EndpointARN)
	assert.Equal(t, "android", dev.Platform)
	assert.Equal(t, tokenHash("tok-1"), dev.TokenHash)

	// same token again refreshes the row
	_, err = ps.RegisterDevice(ctx, testUser, "ios", "tok-1")
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.UserDevice{}).Where("user_id = ?", testUser).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = ps.RegisterDevice(ctx, testUser, "windows", "tok-2")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	sns.endpointErr = errBoom
	_, err = ps.RegisterDevice(ctx, testUser, "android", "tok-3")
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
}

func TestPushService_DispatchToEnabledDevices(t *testing.T) {
	ps, sns, db := newTestPushService(t)
	ctx := context.Background()

	_, err := ps.RegisterDevice(ctx, testUser, "android", "on")
	require.NoError(t, err)
	off, err := ps.RegisterDevice(ctx, testUser, "android", "off")
	require.NoError(t, err)
	require.NoError(t, db.Model(off).Update("enabled", false).Error)

	err = ps.Dispatch(ctx, Notification{
		UserID:      testUser,
		Title:       "10 foods tried! 🎉",
		Body:        "Mia just tried Mango.",
		Type:        models.NotificationMilestone,
		ReferenceID: "5",
	})
	require.NoError(t, err)

	require.Len(t, sns.published, 1)
	assert.Equal(t, "arn:endpoint/on", aws.ToString(sns.published[0].TargetArn))
	var msg struct {
		Default string `json:"default"`
		GCM     struct {
			Data map[string]string `json:"data"`
		} `json:"GCM"`
	}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(sns.published[0].Message)), &msg))
	assert.Equal(t, "Mia just tried Mango.", msg.Default)
	assert.Equal(t, "milestone", msg.GCM.Data["type"])

	history, err := ps.History(ctx, testUser, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Delivered)
	assert.Equal(t, "5", history[0].ReferenceID)
}

func TestPushService_DispatchRespectsPreferences(t *testing.T) {
	ps, sns, db := newTestPushService(t)
	ctx := context.Background()

	_, err := ps.RegisterDevice(ctx, testUser, "android", "tok")
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{ID: testUser}).Update("milestone_alerts", false).Error)

	require.NoError(t, ps.Dispatch(ctx, Notification{UserID: testUser, Type: models.NotificationMilestone}))
	assert.Empty(t, sns.published)

	require.NoError(t, ps.Dispatch(ctx, Notification{UserID: testUser, Type: models.NotificationMaintenance}))
	assert.Len(t, sns.published, 1)
}

func TestPushService_DispatchFailureIsRecorded(t *testing.T) {
	ps, sns, _ := newTestPushService(t)
	ctx := context.Background()

	_, err := ps.RegisterDevice(ctx, testUser, "android", "tok")
	require.NoError(t, err)
	sns.publishErr = errBoom

	err = ps.Dispatch(ctx, Notification{UserID: testUser, Type: models.NotificationMaintenance})
	require.ErrorIs(t, err, errBoom)

	history, err := ps.History(ctx, testUser, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Delivered)
}

func TestPushService_SetEnabled(t *testing.T) {
	ps, sns, _ := newTestPushService(t)
	ctx := context.Background()

	_, err := ps.RegisterDevice(ctx, testUser, "ios", "tok")
	require.NoError(t, err)
	require.NoError(t, ps.SetEnabled(ctx, testUser, false))

	require.NoError(t, ps.Dispatch(ctx, Notification{UserID: testUser, Type: models.NotificationMaintenance}))
	assert.Empty(t, sns.published)

	require.NoError(t, ps.SetEnabled(ctx, testUser, true))
	require.NoError(t, ps.Dispatch(ctx, Notification{UserID: testUser, Type: models.NotificationMaintenance}))
	assert.Len(t, sns.published, 1)
}
