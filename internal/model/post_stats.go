package model

import (
	"time"
)

// PostStats 投票与回复数的物化投影，可随时由源数据重建
type PostStats struct {
	ContentID     uint64    `gorm:"primaryKey;autoIncrement:false" json:"contentId"`
	UpvoteCount   int64     `gorm:"not null;default:0" json:"upvoteCount"`
	DownvoteCount int64     `gorm:"not null;default:0" json:"downvoteCount"`
	ReplyCount    int64     `gorm:"not null;default:0" json:"replyCount"`
	LastUpdated   time.Time `gorm:"not null" json:"lastUpdated"`
}

func (PostStats) TableName() string {
	return "post_stats"
}
