package handler

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/pkg/response"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/service"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentSvc service.ContentService
	feedSvc    service.FeedService
}

func NewContentHandler(contentSvc service.ContentService, feedSvc service.FeedService) *ContentHandler {
	return &ContentHandler{
		contentSvc: contentSvc,
		feedSvc:    feedSvc,
	}
}

// stageRecorder 收集创建流程的阶段进度，随结果一并返回
type stageRecorder struct {
	mu     sync.Mutex
	stages []*dto.StageProgressDTO
}

func (r *stageRecorder) observe(stage service.Stage, status service.StageStatus, err error) {
	item := &dto.StageProgressDTO{Stage: string(stage), Status: string(status)}
	if err != nil {
		item.Error = err.Error()
	}
	r.mu.Lock()
	r.stages = append(r.stages, item)
	r.mu.Unlock()
}

func (s *ContentHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	recorder := &stageRecorder{}
	result, err := s.contentSvc.CreatePost(c.Request.Context(), viewerFrom(c), &req, recorder.observe)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.Stages = recorder.stages
	response.Success(c, result)
}

func (s *ContentHandler) CreateReply(c *gin.Context) {
	var req dto.CreateReplyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	recorder := &stageRecorder{}
	result, err := s.contentSvc.CreateReply(c.Request.Context(), viewerFrom(c), &req, recorder.observe)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.Stages = recorder.stages
	response.Success(c, result)
}

func (s *ContentHandler) GetPost(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	post, err := s.contentSvc.GetPost(c.Request.Context(), postID, viewerFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *ContentHandler) GetReplies(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	var req dto.FeedReq
	if err = c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	replies, err := s.contentSvc.GetReplies(c.Request.Context(), postID, viewerFrom(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, replies)
}

func (s *ContentHandler) Feed(c *gin.Context) {
	var req dto.FeedReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	feed, err := s.feedSvc.ListFeed(c.Request.Context(), viewerFrom(c), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feed)
}
