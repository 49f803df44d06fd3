package service

import (
	"Tipwall/internal/model"
	"Tipwall/internal/repository"
	"context"
	log "log/slog"
	"strings"
)

// AccessReason 访问判定的依据
type AccessReason string

const (
	ReasonPublic          AccessReason = "public"
	ReasonAuthor          AccessReason = "author"
	ReasonUnlock          AccessReason = "unlock"
	ReasonNotConnected    AccessReason = "not_connected"
	ReasonRequiresPayment AccessReason = "requires_payment"
)

type AccessDecision struct {
	HasAccess bool         `json:"hasAccess"`
	Reason    AccessReason `json:"reason"`
}

// Viewer 请求方身份。Address 为空表示未连接钱包，IdentityToken 为空表示未注册
type Viewer struct {
	Address       string
	IdentityToken string
}

func (v *Viewer) Connected() bool {
	return v != nil && v.Address != ""
}

func (v *Viewer) Registered() bool {
	return v.Connected() && v.IdentityToken != ""
}

// LockTarget 判定访问所需的内容属性
type LockTarget struct {
	ContentID      uint64
	ReplyID        uint64
	AuthorIdentity string
	MinTipAmount   uint64
}

func PostTarget(post *model.Content) LockTarget {
	return LockTarget{
		ContentID:      post.LedgerID,
		AuthorIdentity: post.AuthorIdentity,
		MinTipAmount:   post.MinTipAmount,
	}
}

func ReplyTarget(reply *model.Reply) LockTarget {
	return LockTarget{
		ContentID:      reply.PostID,
		ReplyID:        reply.LedgerID,
		AuthorIdentity: reply.AuthorIdentity,
		MinTipAmount:   reply.UnlockPrice,
	}
}

type AccessService interface {
	ResolveAccess(ctx context.Context, target LockTarget, viewer *Viewer) (*AccessDecision, error)
	IsLocked(ctx context.Context, target LockTarget) (bool, error)
}

type AccessServiceImpl struct {
	visibility VisibilityService
	accessRepo repository.AccessRepo
}

func NewAccessService(visibility VisibilityService, accessRepo repository.AccessRepo) AccessService {
	return &AccessServiceImpl{
		visibility: visibility,
		accessRepo: accessRepo,
	}
}

// IsLocked 门槛为 0 永远公开；门槛大于 0 时，事件为 Tippable 或尚无事件都视为锁定
func (s *AccessServiceImpl) IsLocked(ctx context.Context, target LockTarget) (bool, error) {
	if target.MinTipAmount == 0 {
		return false, nil
	}
	result, err := s.visibility.GetVisibility(ctx, target.ContentID, target.ReplyID)
	if err != nil {
		log.WarnContext(ctx, "visibility lookup failed, treating as locked",
			"content_id", target.ContentID, "reply_id", target.ReplyID, "err", err)
	}
	return result.Visibility == model.VisibilityTippable || !result.Found, nil
}

func (s *AccessServiceImpl) ResolveAccess(ctx context.Context, target LockTarget, viewer *Viewer) (*AccessDecision, error) {
	locked, err := s.IsLocked(ctx, target)
	if err != nil {
		return nil, err
	}
	if !locked {
		return &AccessDecision{HasAccess: true, Reason: ReasonPublic}, nil
	}
	if !viewer.Connected() {
		return &AccessDecision{HasAccess: false, Reason: ReasonNotConnected}, nil
	}
	if viewer.IdentityToken != "" && viewer.IdentityToken == target.AuthorIdentity {
		return &AccessDecision{HasAccess: true, Reason: ReasonAuthor}, nil
	}

	paid, err := s.accessRepo.HasAccess(ctx, target.ContentID, target.ReplyID, strings.ToLower(viewer.Address))
	if err != nil {
		return &AccessDecision{HasAccess: false, Reason: ReasonRequiresPayment}, err
	}
	if paid {
		return &AccessDecision{HasAccess: true, Reason: ReasonUnlock}, nil
	}
	return &AccessDecision{HasAccess: false, Reason: ReasonRequiresPayment}, nil
}
