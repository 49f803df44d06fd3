package model

import (
	"time"
)

// Content 帖子记录，ledger_id 由链上事件分配，分配后不可变
type Content struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	LedgerID         uint64     `gorm:"not null;uniqueIndex:uk_ledger_id" json:"ledgerId"`
	ContentHash      string     `gorm:"type:char(66);not null;index:idx_content_hash" json:"contentHash"`
	PreviewHash      string     `gorm:"type:char(66);not null" json:"previewHash"`
	EncryptedContent string     `gorm:"type:text;not null" json:"-"`
	EncryptedPreview string     `gorm:"type:text;not null" json:"-"`
	AuthorAddress    string     `gorm:"type:varchar(42);not null;index:idx_author" json:"-"`
	AuthorIdentity   string     `gorm:"type:varchar(132);not null" json:"-"`
	Visibility       Visibility `gorm:"type:varchar(16);not null" json:"visibility"`
	MinTipAmount     uint64     `gorm:"not null;default:0" json:"minTipAmount"`
	TxHash           string     `gorm:"type:char(66)" json:"txHash"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Content) TableName() string {
	return "content"
}
