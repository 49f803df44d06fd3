package middleware

import (
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/redis"
	"Tipwall/internal/pkg/response"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/service"
	"context"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

// authenticate 校验 Token、吊销状态并加载会话对应的 Viewer
func authenticate(ctx context.Context, tokens *security.TokenIssuer, users service.UserService, token string) (*service.Viewer, *security.SessionClaims, error) {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return nil, nil, service.UnauthorizedError
	}

	revoked, err := redis.GetValue(ctx, consts.SessionRevokedKeyPrefix+signature)
	if err != nil {
		return nil, nil, err
	}
	if revoked != "" {
		return nil, nil, service.UnauthorizedError
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return nil, nil, service.UnauthorizedError
	}

	viewer, err := users.GetViewer(ctx, claims.Address)
	if err != nil {
		return nil, nil, err
	}
	return viewer, claims, nil
}

// AuthMiddleware 负责验证 JWT 并将 Viewer 注入 Context
func AuthMiddleware(tokens *security.TokenIssuer, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		viewer, claims, err := authenticate(c.Request.Context(), tokens, users, token)
		if err != nil {
			if err == service.UnauthorizedError {
				response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			} else {
				log.ErrorContext(c.Request.Context(), "load session error", "err", err)
				response.Fail(c, response.InternalServerError, "未知错误")
			}
			c.Abort()
			return
		}

		c.Set(consts.CtxViewer, viewer)
		c.Set(consts.CtxAddress, claims.Address)
		c.Set(consts.CtxClaims, claims)
		c.Set(consts.CtxToken, token)
		c.Next()
	}
}
