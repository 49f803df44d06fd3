package handler

import (
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/service"

	"github.com/gin-gonic/gin"
)

// viewerFrom 取出鉴权中间件注入的 Viewer，未登录时为 nil
func viewerFrom(c *gin.Context) *service.Viewer {
	v, ok := c.Get(consts.CtxViewer)
	if !ok {
		return nil
	}
	viewer, _ := v.(*service.Viewer)
	return viewer
}
