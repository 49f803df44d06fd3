package model

import (
	"time"
)

// Reply 回复记录，UnlockPrice 即回复的最低打赏门槛
type Reply struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	LedgerID         uint64     `gorm:"not null;uniqueIndex:uk_reply_ledger_id" json:"ledgerId"`
	PostID           uint64     `gorm:"not null;index:idx_post_id" json:"postId"`
	ContentHash      string     `gorm:"type:char(66);not null" json:"contentHash"`
	PreviewHash      string     `gorm:"type:char(66);not null" json:"previewHash"`
	EncryptedContent string     `gorm:"type:text;not null" json:"-"`
	EncryptedPreview string     `gorm:"type:text;not null" json:"-"`
	AuthorAddress    string     `gorm:"type:varchar(42);not null" json:"-"`
	AuthorIdentity   string     `gorm:"type:varchar(132);not null" json:"-"`
	Visibility       Visibility `gorm:"type:varchar(16);not null" json:"visibility"`
	UnlockPrice      uint64     `gorm:"not null;default:0" json:"unlockPrice"`
	TxHash           string     `gorm:"type:char(66)" json:"txHash"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (Reply) TableName() string {
	return "replies"
}
