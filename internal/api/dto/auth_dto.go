package dto

// NonceReq 申请登录随机数
type NonceReq struct {
	Address string `form:"address" binding:"required" validate:"eth_addr"`
}

type NonceDTO struct {
	Address string `json:"address"`
	Message string `json:"message"`
}

// AuthReq 注册和登录共用，Signature 为钱包对 NonceDTO.Message 的 personal_sign
type AuthReq struct {
	Address   string `json:"address" binding:"required" validate:"eth_addr"`
	Signature string `json:"signature" binding:"required" validate:"hexadecimal,min=130"`
}

type SessionDTO struct {
	Token             string `json:"token"`
	Address           string `json:"address"`
	TxHash            string `json:"tx_hash,omitempty"`
	AlreadyRegistered bool   `json:"already_registered"`
}

type ViewerDTO struct {
	Address      string `json:"address"`
	Registered   bool   `json:"registered"`
	RegisteredAt string `json:"registered_at,omitempty"`
}
