package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationStockAlert   NotificationType = "stock_alert"
	NotificationUserActivity NotificationType = "user_activity"
	NotificationSystem       NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationStockAlert, NotificationUserActivity, NotificationSystem:
		return true
	}
	return false
}

// Notification rows are immutable after creation except for IsRead, which only moves to true.
type Notification struct {
	NotificationID string           `gorm:"type:varchar(36);primaryKey" json:"notificationId"`
	UserID         *string          `gorm:"type:varchar(36);index" json:"userId,omitempty"` // nil = broadcast
	Type           NotificationType `gorm:"size:50;not null;index" json:"type"`
	Title          string           `gorm:"size:255;not null" json:"title"`
	Message        string           `gorm:"type:text;not null" json:"message"`
	IsRead         bool             `gorm:"default:false;not null;index" json:"isRead"`

	// Product id for stock alerts.
	RelatedEntityID *string `gorm:"type:varchar(36);index" json:"relatedEntityId,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:SET NULL;" json:"user,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == "" {
		n.NotificationID = uuid.NewString()
	}
	return nil
}
