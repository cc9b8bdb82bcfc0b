package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/swarajb-778/StockPilot/models"
)

// DefaultNotificationLimit caps List when the caller gives no limit.
const DefaultNotificationLimit = 50

// UnreadCountBroadcaster pushes the current unread count to connected dashboards.
type UnreadCountBroadcaster interface {
	BroadcastUnreadCount(count int64)
}

// NotificationFilter narrows List. A zero Limit means DefaultNotificationLimit,
// a negative Limit means no cap.
type NotificationFilter struct {
	Type   models.NotificationType
	IsRead *bool
	Limit  int
}

type CreateNotificationInput struct {
	Type            models.NotificationType
	Title           string
	Message         string
	UserID          *string
	RelatedEntityID *string
}

type NotificationService struct {
	db    *gorm.DB
	badge UnreadCountBroadcaster
	now   func() time.Time
}

func NewNotificationService(db *gorm.DB, badge UnreadCountBroadcaster) *NotificationService {
	return &NotificationService{
		db:    db,
		badge: badge,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for dedup windows.
func (s *NotificationService) SetClock(now func() time.Time) {
	s.now = now
}

// List returns notifications newest first.
func (s *NotificationService) List(ctx context.Context, f NotificationFilter) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("notification_id DESC")

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}

	limit := f.Limit
	if limit == 0 {
		limit = DefaultNotificationLimit
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	list := []models.Notification{}
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) Create(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	n, err := s.insert(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publishUnread(ctx)
	return n, nil
}

func (s *NotificationService) insert(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	in.Type = models.NotificationType(strings.TrimSpace(string(in.Type)))

	switch {
	case in.Type == "":
		return nil, invalid("type", "is required")
	case !in.Type.Valid():
		return nil, invalid("type", "must be stock_alert, user_activity or system")
	case in.Title == "":
		return nil, invalid("title", "is required")
	case in.Message == "":
		return nil, invalid("message", "is required")
	}

	userID := nonEmpty(in.UserID)
	if userID != nil {
		var users int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", *userID).Count(&users).Error; err != nil {
			return nil, fmt.Errorf("look up notification user: %w", err)
		}
		if users == 0 {
			return nil, invalid("userId", "unknown user %q", *userID)
		}
	}

	n := &models.Notification{
		Type:            in.Type,
		Title:           in.Title,
		Message:         in.Message,
		UserID:          userID,
		RelatedEntityID: nonEmpty(in.RelatedEntityID),
		IsRead:          false,
		CreatedAt:       s.now(),
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

// MarkRead is idempotent: an already-read notification is returned unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("notification_id = ? AND is_read = ?", id, false).
		Update("is_read", true).Error
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true

	s.publishUnread(ctx)
	return n, nil
}

// MarkAllRead flips every unread notification in one statement and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", res.Error)
	}
	s.publishUnread(ctx)
	return res.RowsAffected, nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Where("notification_id = ?", id).
		Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("notification", id)
	}
	s.publishUnread(ctx)
	return nil
}

// DeleteAllRead removes read notifications only and returns how many were removed.
func (s *NotificationService) DeleteAllRead(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_read = ?", true).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete read notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *NotificationService) get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).First(&n, "notification_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("notification", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// publishUnread is best-effort; the badge is refreshed on the next poll anyway.
func (s *NotificationService) publishUnread(ctx context.Context) {
	if s.badge == nil {
		return
	}
	count, err := s.UnreadCount(ctx)
	if err != nil {
		slog.Warn("unread badge refresh failed", "error", err)
		return
	}
	s.badge.BroadcastUnreadCount(count)
}

func nonEmpty(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
