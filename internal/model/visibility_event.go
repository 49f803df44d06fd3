package model

import (
	"time"
)

// VisibilityEvent 可见性变更流水，只追加不修改
type VisibilityEvent struct {
	ID             uint64      `gorm:"primaryKey" json:"id"`
	ContentID      uint64      `gorm:"not null;index:idx_content_reply_time,priority:1" json:"contentId"`
	ReplyID        uint64      `gorm:"not null;default:0;index:idx_content_reply_time,priority:2" json:"replyId"`
	ContentType    ContentType `gorm:"type:varchar(8);not null" json:"contentType"`
	VisibilityType Visibility  `gorm:"type:varchar(16);not null" json:"visibilityType"`
	EventType      EventType   `gorm:"type:varchar(16);not null" json:"eventType"`
	Actor          string      `gorm:"type:varchar(42)" json:"actor,omitempty"`
	CreatedAt      time.Time   `gorm:"type:datetime(3);not null;index:idx_content_reply_time,priority:3" json:"createdAt"`
}

func (VisibilityEvent) TableName() string {
	return "visibility_events"
}
