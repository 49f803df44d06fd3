package model

import (
	"time"
)

// Engagement 同一 (content, viewer) 至多一条记录
type Engagement struct {
	ID             uint64         `gorm:"primaryKey" json:"id"`
	ContentID      uint64         `gorm:"not null;uniqueIndex:uk_content_viewer,priority:1" json:"contentId"`
	ViewerID       string         `gorm:"type:varchar(42);not null;uniqueIndex:uk_content_viewer,priority:2" json:"viewerId"`
	EngagementType EngagementType `gorm:"type:varchar(8);not null" json:"engagementType"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (Engagement) TableName() string {
	return "engagement"
}
