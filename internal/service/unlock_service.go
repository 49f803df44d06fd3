package service

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/encrypt"
	"Tipwall/internal/pkg/ledger"
	"Tipwall/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

type PaymentService interface {
	Unlock(ctx context.Context, viewer *Viewer, req *dto.PaymentReq) (*dto.PaymentResultDTO, error)
	Tip(ctx context.Context, viewer *Viewer, req *dto.PaymentReq) (*dto.PaymentResultDTO, error)
	ClaimEarnings(ctx context.Context, viewer *Viewer) (*dto.TxDTO, error)
}

type PaymentServiceImpl struct {
	content    ContentService
	access     AccessService
	visibility VisibilityService
	accessRepo repository.AccessRepo
	encryptor  encrypt.Client
	ledger     ledger.Client
	now        func() time.Time
}

func NewPaymentService(content ContentService, access AccessService, visibility VisibilityService,
	accessRepo repository.AccessRepo, encryptor encrypt.Client, ledgerClient ledger.Client) PaymentService {
	return &PaymentServiceImpl{
		content:    content,
		access:     access,
		visibility: visibility,
		accessRepo: accessRepo,
		encryptor:  encryptor,
		ledger:     ledgerClient,
		now:        time.Now,
	}
}

func contentTypeOf(target LockTarget) model.ContentType {
	if target.ReplyID == 0 {
		return model.ContentTypePost
	}
	return model.ContentTypeReply
}

// Unlock 支付不低于门槛的金额解锁内容，合约报告已解锁时同样补写授权
func (s *PaymentServiceImpl) Unlock(ctx context.Context, viewer *Viewer, req *dto.PaymentReq) (*dto.PaymentResultDTO, error) {
	if !viewer.Registered() {
		return nil, ErrNotRegistered
	}
	target, err := s.content.LoadTarget(ctx, req.ContentID, req.ReplyID)
	if err != nil {
		return nil, err
	}
	locked, err := s.access.IsLocked(ctx, target)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrNotLocked
	}
	if req.Amount < target.MinTipAmount {
		return nil, ErrTipTooLow
	}

	amount, err := s.encryptor.EncryptNumber(ctx, req.Amount, viewer.Address)
	if err != nil {
		return nil, err
	}
	res, err := s.ledger.UnlockTippableContent(ctx, ledger.PaymentInput{
		ContentID: target.ContentID,
		ReplyID:   target.ReplyID,
		Amount:    *amount,
	})
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, &TransactionRevertedError{Method: "unlockTippableContent", Reason: res.Reason}
	}

	warnings := s.recordAccess(ctx, viewer, target, model.AccessUnlock, model.EventUnlocked, req.Amount, res.Tx.Hash)
	return s.result(ctx, viewer, target, res, warnings), nil
}

// Tip 打赏任意内容，金额达到门槛的打赏同时获得访问权
func (s *PaymentServiceImpl) Tip(ctx context.Context, viewer *Viewer, req *dto.PaymentReq) (*dto.PaymentResultDTO, error) {
	if !viewer.Registered() {
		return nil, ErrNotRegistered
	}
	if req.Amount == 0 {
		return nil, ErrParamInvalid
	}
	target, err := s.content.LoadTarget(ctx, req.ContentID, req.ReplyID)
	if err != nil {
		return nil, err
	}

	amount, err := s.encryptor.EncryptNumber(ctx, req.Amount, viewer.Address)
	if err != nil {
		return nil, err
	}
	in := ledger.PaymentInput{ContentID: target.ContentID, ReplyID: target.ReplyID, Amount: *amount}
	var res *ledger.Result
	method := "tipPost"
	if target.ReplyID == 0 {
		res, err = s.ledger.TipPost(ctx, in)
	} else {
		method = "tipReply"
		res, err = s.ledger.TipReply(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, &TransactionRevertedError{Method: method, Reason: res.Reason}
	}

	var warnings []string
	if target.MinTipAmount > 0 && req.Amount >= target.MinTipAmount {
		warnings = s.recordAccess(ctx, viewer, target, model.AccessTip, model.EventRevealed, req.Amount, res.Tx.Hash)
	}
	return s.result(ctx, viewer, target, res, warnings), nil
}

// recordAccess 账本已确认，后续写入失败只记为警告
func (s *PaymentServiceImpl) recordAccess(ctx context.Context, viewer *Viewer, target LockTarget,
	accessType model.AccessType, eventType model.EventType, amount uint64, txHash string) []string {
	var warnings []string
	actor := strings.ToLower(viewer.Address)

	err := s.accessRepo.Grant(ctx, &model.ContentAccess{
		ContentID:     target.ContentID,
		ReplyID:       target.ReplyID,
		ViewerAddress: actor,
		AccessType:    accessType,
		Amount:        amount,
		TxHash:        txHash,
		CreatedAt:     s.now(),
	})
	if err != nil {
		pw := &PartialWriteError{Stage: StageStoreWrite, Err: err}
		log.WarnContext(ctx, "grant access failed", "content_id", target.ContentID, "reply_id", target.ReplyID, "err", pw)
		warnings = append(warnings, pw.Error())
	}

	current, err := s.visibility.GetVisibility(ctx, target.ContentID, target.ReplyID)
	if err != nil {
		log.WarnContext(ctx, "load visibility before append failed", "content_id", target.ContentID, "err", err)
	}
	err = s.visibility.AppendEvent(ctx, &model.VisibilityEvent{
		ContentID:      target.ContentID,
		ReplyID:        target.ReplyID,
		ContentType:    contentTypeOf(target),
		VisibilityType: current.Visibility,
		EventType:      eventType,
		Actor:          actor,
	})
	if err != nil {
		log.WarnContext(ctx, "append access event failed", "content_id", target.ContentID, "err", err)
		warnings = append(warnings, fmt.Sprintf("%s: %v", StageVisibilityEvent, err))
	}
	return warnings
}

func (s *PaymentServiceImpl) result(ctx context.Context, viewer *Viewer, target LockTarget, res *ledger.Result, warnings []string) *dto.PaymentResultDTO {
	out := &dto.PaymentResultDTO{
		TxHash:   res.Tx.Hash,
		Status:   res.Status.String(),
		Warnings: warnings,
	}
	decision, err := s.access.ResolveAccess(ctx, target, viewer)
	if err != nil {
		log.WarnContext(ctx, "resolve access after payment failed", "content_id", target.ContentID, "err", err)
		return out
	}
	out.Access = dto.AccessDTO{HasAccess: decision.HasAccess, Reason: string(decision.Reason)}
	return out
}

func (s *PaymentServiceImpl) ClaimEarnings(ctx context.Context, viewer *Viewer) (*dto.TxDTO, error) {
	if !viewer.Registered() {
		return nil, ErrNotRegistered
	}
	res, err := s.ledger.ClaimEarnings(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, &TransactionRevertedError{Method: "claimEarnings", Reason: res.Reason}
	}
	return &dto.TxDTO{TxHash: res.Tx.Hash, Status: res.Status.String()}, nil
}
