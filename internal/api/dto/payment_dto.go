package dto

// PaymentReq 解锁或打赏，ReplyID 为 0 表示帖子本身
type PaymentReq struct {
	ContentID uint64 `json:"content_id" binding:"required"`
	ReplyID   uint64 `json:"reply_id"`
	Amount    uint64 `json:"amount" binding:"required" validate:"gt=0"`
}

type PaymentResultDTO struct {
	TxHash   string    `json:"tx_hash"`
	Status   string    `json:"status"`
	Access   AccessDTO `json:"access"`
	Warnings []string  `json:"warnings"`
}

type TxDTO struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}
