package handler

import (
	"Tipwall/internal/service"
	log "log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	bus *service.VisibilityBus
}

func NewWsHandler(bus *service.VisibilityBus) *WsHandler {
	return &WsHandler{bus: bus}
}

// Connect 推送可见性变化，content_id 缺省时订阅全部内容
func (s *WsHandler) Connect(c *gin.Context) {
	var contentID uint64
	if raw := c.Query("content_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		contentID = id
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	var sub *service.Subscription
	if contentID == 0 {
		sub = s.bus.SubscribeAll()
	} else {
		sub = s.bus.Subscribe(contentID)
	}
	defer sub.Unsubscribe()

	log.Info("可见性 WS 连接已建立", "contentID", contentID)

	stopChan := make(chan struct{})

	// 读循环：监听客户端主动断开
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(stopChan)
				return
			}
		}
	}()

	// 写循环：把总线通知推送至客户端
	for {
		select {
		case change, ok := <-sub.C():
			if !ok {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				log.Error("WS 序列化失败", "err", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err = conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Warn("WS 推送失败", "contentID", contentID, "err", err)
				return
			}
		case <-stopChan:
			log.Info("可见性 WS 连接已断开", "contentID", contentID)
			return
		}
	}
}
