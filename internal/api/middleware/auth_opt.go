package middleware

import (
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 Viewer，失败或缺失则按未连接处理
func AuthOptionalMiddleware(tokens *security.TokenIssuer, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		viewer, claims, err := authenticate(c.Request.Context(), tokens, users, token)
		if err != nil {
			log.DebugContext(c.Request.Context(), "optional auth ignored", "err", err)
			c.Next()
			return
		}

		c.Set(consts.CtxViewer, viewer)
		c.Set(consts.CtxAddress, claims.Address)
		c.Set(consts.CtxClaims, claims)
		c.Set(consts.CtxToken, token)
		c.Next()
	}
}
