package handler

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/response"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/service"
	log "log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagementSvc service.EngagementService
}

func NewEngagementHandler(engagementSvc service.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		engagementSvc: engagementSvc,
	}
}

// Vote 切换投票，返回投票后的状态与最新统计
func (s *EngagementHandler) Vote(c *gin.Context) {
	var req dto.VoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	viewer := viewerFrom(c)
	if !viewer.Connected() {
		response.Error(c, service.ErrNotConnected)
		return
	}

	ctx := c.Request.Context()
	active, err := s.engagementSvc.ToggleVote(ctx, req.ContentID, viewer.Address, model.EngagementType(req.Type))
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := s.engagementSvc.GetStats(ctx, req.ContentID)
	if err != nil {
		log.WarnContext(ctx, "load stats after vote failed", "contentID", req.ContentID, "err", err)
		stats = &model.PostStats{ContentID: req.ContentID}
	}
	response.Success(c, &dto.VoteResultDTO{
		Active: active,
		Stats:  service.ToStatsDTO(stats),
	})
}

func (s *EngagementHandler) GetStats(c *gin.Context) {
	contentID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	stats, err := s.engagementSvc.GetStats(c.Request.Context(), contentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, service.ToStatsDTO(stats))
}
