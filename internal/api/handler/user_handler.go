package handler

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/response"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

// Nonce 下发待签名的登录消息
func (s *UserHandler) Nonce(c *gin.Context) {
	var req dto.NonceReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	nonce, err := s.userSvc.IssueNonce(c.Request.Context(), req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nonce)
}

func (s *UserHandler) Register(c *gin.Context) {
	var req dto.AuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	session, err := s.userSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session)
}

func (s *UserHandler) Login(c *gin.Context) {
	var req dto.AuthReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	session, err := s.userSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session)
}

func (s *UserHandler) Logout(c *gin.Context) {
	claims, ok := c.MustGet(consts.CtxClaims).(*security.SessionClaims)
	if !ok {
		response.Error(c, service.UnauthorizedError)
		return
	}
	signature, err := security.ExtractSignature(c.GetString(consts.CtxToken))
	if err != nil {
		response.Error(c, service.UnauthorizedError)
		return
	}

	if err = s.userSvc.Logout(c.Request.Context(), claims, signature); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) Me(c *gin.Context) {
	profile, err := s.userSvc.GetProfile(c.Request.Context(), c.GetString(consts.CtxAddress))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}
