package model

import (
	"time"
)

// ContentAccess 解锁/打赏流水，记录某 viewer 已获得的访问权
type ContentAccess struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	ContentID     uint64     `gorm:"not null;uniqueIndex:uk_access,priority:1" json:"contentId"`
	ReplyID       uint64     `gorm:"not null;default:0;uniqueIndex:uk_access,priority:2" json:"replyId"`
	ViewerAddress string     `gorm:"type:varchar(42);not null;uniqueIndex:uk_access,priority:3" json:"viewerAddress"`
	AccessType    AccessType `gorm:"type:varchar(8);not null" json:"accessType"`
	Amount        uint64     `gorm:"not null" json:"amount"`
	TxHash        string     `gorm:"type:char(66)" json:"txHash"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (ContentAccess) TableName() string {
	return "content_access"
}
