package api

import (
	"Tipwall/internal/api/middleware"
	"Tipwall/internal/pkg/logger"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, allowedOrigins []string, tokens *security.TokenIssuer, users service.UserService) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(allowedOrigins))
	logger.SetupGin(r)

	auth := middleware.AuthMiddleware(tokens, users)
	authOpt := middleware.AuthOptionalMiddleware(tokens, users)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			userGroup.GET("/nonce", group.UserHandler.Nonce)
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)

			authGroup := userGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/me", group.UserHandler.Me)
			}
		}

		// 浏览接口，登录后可解锁正文
		readGroup := apiGroup.Group("")
		readGroup.Use(authOpt)
		{
			readGroup.GET("/feed", group.ContentHandler.Feed)
			readGroup.GET("/posts/:post_id", group.ContentHandler.GetPost)
			readGroup.GET("/posts/:post_id/replies", group.ContentHandler.GetReplies)
			readGroup.GET("/posts/:post_id/stats", group.EngagementHandler.GetStats)
			readGroup.GET("/visibility", group.VisibilityHandler.GetVisibility)
			readGroup.GET("/visibility/history", group.VisibilityHandler.History)
			readGroup.GET("/access", group.VisibilityHandler.GetAccess)
		}

		apiGroup.GET("/visibility/ws", group.WsHandler.Connect)

		writeGroup := apiGroup.Group("")
		writeGroup.Use(auth)
		{
			writeGroup.POST("/posts", group.ContentHandler.CreatePost)
			writeGroup.POST("/replies", group.ContentHandler.CreateReply)
			writeGroup.POST("/vote", group.EngagementHandler.Vote)
			writeGroup.POST("/unlock", group.PaymentHandler.Unlock)
			writeGroup.POST("/tip", group.PaymentHandler.Tip)
			writeGroup.POST("/earnings/claim", group.PaymentHandler.ClaimEarnings)
		}
	}

	return r
}
