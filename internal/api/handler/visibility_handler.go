package handler

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/pkg/response"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

const historyLimit = 50

type VisibilityHandler struct {
	visibilitySvc service.VisibilityService
	accessSvc     service.AccessService
	contentSvc    service.ContentService
}

func NewVisibilityHandler(visibilitySvc service.VisibilityService, accessSvc service.AccessService, contentSvc service.ContentService) *VisibilityHandler {
	return &VisibilityHandler{
		visibilitySvc: visibilitySvc,
		accessSvc:     accessSvc,
		contentSvc:    contentSvc,
	}
}

func bindVisibilityReq(c *gin.Context) (*dto.VisibilityReq, bool) {
	var req dto.VisibilityReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return nil, false
	}
	return &req, true
}

// GetVisibility 查询当前可见性，存储异常时仍返回锁定的默认值
func (s *VisibilityHandler) GetVisibility(c *gin.Context) {
	req, ok := bindVisibilityReq(c)
	if !ok {
		return
	}

	result, err := s.visibilitySvc.GetVisibility(c.Request.Context(), req.ContentID, req.ReplyID)
	if result == nil {
		response.Error(c, err)
		return
	}
	if err != nil {
		log.WarnContext(c.Request.Context(), "visibility lookup degraded", "contentID", req.ContentID, "err", err)
	}
	response.Success(c, &dto.VisibilityDTO{
		ContentID:  req.ContentID,
		ReplyID:    req.ReplyID,
		Visibility: string(result.Visibility),
		EventType:  string(result.EventType),
		IsCached:   result.IsCached,
		Found:      result.Found,
	})
}

func (s *VisibilityHandler) GetAccess(c *gin.Context) {
	req, ok := bindVisibilityReq(c)
	if !ok {
		return
	}

	target, err := s.contentSvc.LoadTarget(c.Request.Context(), req.ContentID, req.ReplyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	decision, err := s.accessSvc.ResolveAccess(c.Request.Context(), target, viewerFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.AccessDTO{
		HasAccess: decision.HasAccess,
		Reason:    string(decision.Reason),
	})
}

func (s *VisibilityHandler) History(c *gin.Context) {
	req, ok := bindVisibilityReq(c)
	if !ok {
		return
	}

	events, err := s.visibilitySvc.History(c.Request.Context(), req.ContentID, req.ReplyID, historyLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]*dto.VisibilityEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, &dto.VisibilityEventDTO{
			ID:             e.ID,
			ContentID:      e.ContentID,
			ReplyID:        e.ReplyID,
			ContentType:    string(e.ContentType),
			VisibilityType: string(e.VisibilityType),
			EventType:      string(e.EventType),
			Actor:          e.Actor,
			CreatedAt:      util.FormatTime(e.CreatedAt),
		})
	}
	response.Success(c, out)
}
