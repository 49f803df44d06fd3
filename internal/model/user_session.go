package model

import (
	"time"
)

// UserSession 钱包地址与其加密身份的绑定
type UserSession struct {
	Address           string    `gorm:"primaryKey;type:varchar(42)" json:"address"`
	EncryptedIdentity string    `gorm:"type:varchar(132);not null" json:"-"`
	Proof             string    `gorm:"type:text" json:"-"`
	TxHash            string    `gorm:"type:char(66)" json:"txHash"`
	RegisteredAt      time.Time `json:"registeredAt"`
	LastSeenAt        time.Time `json:"lastSeenAt"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}
