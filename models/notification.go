package models

import "time"

type NotificationType string

const (
	NotifyTurnReserved    NotificationType = "TURN_RESERVED"
	NotifyTurnCancelled   NotificationType = "TURN_CANCELLED"
	NotifyTurnCompleted   NotificationType = "TURN_COMPLETED"
	NotifyTurnNoShow      NotificationType = "TURN_NO_SHOW"
	NotifyModifyRequested NotificationType = "MODIFY_REQUESTED"
	NotifyModifyApproved  NotificationType = "MODIFY_APPROVED"
	NotifyModifyRejected  NotificationType = "MODIFY_REJECTED"
	NotifyRatingReceived  NotificationType = "RATING_RECEIVED"
	NotifyAccountApproved NotificationType = "ACCOUNT_APPROVED"
	NotifyAccountRejected NotificationType = "ACCOUNT_REJECTED"
	NotifyTurnReminder    NotificationType = "TURN_REMINDER"
)

type Notification struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	UserID          uint             `json:"user_id" gorm:"not null;index"`
	Type            NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	RelatedEntityID uint             `json:"related_entity_id"`
	Message         string           `json:"message"`
	Read            bool             `json:"read" gorm:"default:false"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
