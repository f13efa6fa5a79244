package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"firstbites/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type snsAPI interface {
	CreatePlatformEndpoint(ctx context.Context, in *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// PushService delivers notifications to the user's registered devices
// through SNS mobile push.
type PushService struct {
	db             *gorm.DB
	sns            snsAPI
	fcmPlatformArn string
	log            *zap.SugaredLogger
}

func NewPushService(ctx context.Context, db *gorm.DB, region, fcmPlatformArn string, log *zap.SugaredLogger) (*PushService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &PushService{
		db:             db,
		sns:            awssns.NewFromConfig(cfg),
		fcmPlatformArn: fcmPlatformArn,
		log:            log,
	}, nil
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required"` // "android" | "ios"
	Token    string `json:"token" binding:"required"`
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

func (p *PushService) platformArn(platform string) (string, error) {
	switch strings.ToLower(platform) {
	case "android", "ios":
		if p.fcmPlatformArn == "" {
			return "", errors.New("SNS_FCM_ARN not set")
		}
		return p.fcmPlatformArn, nil
	default:
		return "", &ValidationError{Field: "platform", Reason: "must be android or ios"}
	}
}

// RegisterDevice creates (or refreshes) the SNS endpoint for a device token.
func (p *PushService) RegisterDevice(ctx context.Context, userID uint, platform, token string) (*models.UserDevice, error) {
	appArn, err := p.platformArn(platform)
	if err != nil {
		return nil, err
	}

	out, err := p.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(appArn),
		Token:                  aws.String(token),
	})
	if err != nil {
		return nil, &PersistenceError{Op: "create platform endpoint", Err: err}
	}

	dev := &models.UserDevice{
		UserID:      userID,
		Platform:    strings.ToLower(platform),
		TokenHash:   tokenHash(token),
		EndpointARN: aws.ToString(out.EndpointArn),
		Enabled:     true,
	}
	var existing models.UserDevice
	err = p.db.WithContext(ctx).Where("user_id = ? AND token_hash = ?", userID, dev.TokenHash).First(&existing).Error
	switch {
	case err == nil:
		existing.EndpointARN = dev.EndpointARN
		existing.Platform = dev.Platform
		existing.UpdatedAt = time.Now()
		if err := p.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, &PersistenceError{Op: "save device", Err: err}
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := p.db.WithContext(ctx).Create(dev).Error; err != nil {
			return nil, &PersistenceError{Op: "create device", Err: err}
		}
		return dev, nil
	default:
		return nil, &PersistenceError{Op: "find device", Err: err}
	}
}

// SetEnabled switches push delivery on or off for all of the user's devices.
func (p *PushService) SetEnabled(ctx context.Context, userID uint, enabled bool) error {
	err := p.db.WithContext(ctx).Model(&models.UserDevice{}).
		Where("user_id = ?", userID).
		Update("enabled", enabled).Error
	if err != nil {
		return &PersistenceError{Op: "toggle devices", Err: err}
	}
	return nil
}

func wantsNotification(u models.User, typ string) bool {
	switch typ {
	case models.NotificationMilestone:
		return u.MilestoneAlerts
	case models.NotificationMaintenance:
		return u.ReminderAlerts
	}
	return true
}

// Dispatch records the notification and publishes it to every enabled device.
// Users who switched the notification type off are skipped silently.
func (p *PushService) Dispatch(ctx context.Context, n Notification) error {
	db := p.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, n.UserID).Error; err != nil {
		return fmt.Errorf("load user %d: %w", n.UserID, err)
	}
	if !wantsNotification(user, n.Type) {
		p.log.Debugw("notification type disabled by user", "user_id", n.UserID, "type", n.Type)
		return nil
	}

	var endpoints []models.UserDevice
	if err := db.Where("user_id = ? AND enabled = ?", n.UserID, true).Find(&endpoints).Error; err != nil {
		return fmt.Errorf("load devices: %w", err)
	}

	msg := map[string]any{
		"default": n.Body,
		"GCM": map[string]any{
			"notification": map[string]string{
				"title": n.Title,
				"body":  n.Body,
			},
			"data": map[string]string{
				"type":         n.Type,
				"reference_id": n.ReferenceID,
			},
		},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var errs []error
	for _, d := range endpoints {
		_, err := p.sns.Publish(ctx, &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("publish to device %d: %w", d.ID, err))
		}
	}
	sendErr := errors.Join(errs...)

	record := &models.Notification{
		UserID:      n.UserID,
		Type:        n.Type,
		ReferenceID: n.ReferenceID,
		Title:       n.Title,
		Body:        n.Body,
		Delivered:   len(endpoints) > 0 && sendErr == nil,
	}
	if err := db.Create(record).Error; err != nil {
		p.log.Warnw("could not record notification", "user_id", n.UserID, "error", err)
	}
	return sendErr
}

// History returns the most recent notifications sent to the user.
func (p *PushService) History(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []models.Notification
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
