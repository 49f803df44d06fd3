package handler

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/pkg/response"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentSvc service.PaymentService
}

func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
	}
}

func bindPaymentReq(c *gin.Context) (*dto.PaymentReq, bool) {
	var req dto.PaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return nil, false
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return nil, false
	}
	return &req, true
}

func (s *PaymentHandler) Unlock(c *gin.Context) {
	req, ok := bindPaymentReq(c)
	if !ok {
		return
	}

	result, err := s.paymentSvc.Unlock(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PaymentHandler) Tip(c *gin.Context) {
	req, ok := bindPaymentReq(c)
	if !ok {
		return
	}

	result, err := s.paymentSvc.Tip(c.Request.Context(), viewerFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PaymentHandler) ClaimEarnings(c *gin.Context) {
	tx, err := s.paymentSvc.ClaimEarnings(c.Request.Context(), viewerFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tx)
}
