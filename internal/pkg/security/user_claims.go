package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims Token 中携带的会话信息，加密身份本身不进入 Token
type SessionClaims struct {
	Address   string `json:"address"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}
