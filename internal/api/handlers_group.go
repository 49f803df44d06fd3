package api

import "Tipwall/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler       *handler.UserHandler
	ContentHandler    *handler.ContentHandler
	VisibilityHandler *handler.VisibilityHandler
	EngagementHandler *handler.EngagementHandler
	PaymentHandler    *handler.PaymentHandler
	WsHandler         *handler.WsHandler
}
