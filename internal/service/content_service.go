package service

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/encrypt"
	"Tipwall/internal/pkg/ledger"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/pkg/util"
	"Tipwall/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

type ContentService interface {
	CreatePost(ctx context.Context, author *Viewer, req *dto.CreatePostReq, progress ProgressFunc) (*dto.CreateResultDTO, error)
	CreateReply(ctx context.Context, author *Viewer, req *dto.CreateReplyReq, progress ProgressFunc) (*dto.CreateResultDTO, error)
	GetPost(ctx context.Context, ledgerID uint64, viewer *Viewer) (*dto.ContentDTO, error)
	GetReplies(ctx context.Context, postID uint64, viewer *Viewer, page, pageSize int) ([]*dto.ContentDTO, error)
	LoadTarget(ctx context.Context, contentID, replyID uint64) (LockTarget, error)
	SyncReplyCount(ctx context.Context, postID uint64) error
}

type ContentServiceImpl struct {
	contentRepo repository.ContentRepo
	cipher      *security.ContentCipher
	encryptor   encrypt.Client
	ledger      ledger.Client
	visibility  VisibilityService
	engagement  EngagementService
	presenter   *contentPresenter
	opts        PipelineOptions
}

func NewContentService(
	contentRepo repository.ContentRepo,
	cipher *security.ContentCipher,
	encryptor encrypt.Client,
	ledgerClient ledger.Client,
	visibility VisibilityService,
	access AccessService,
	engagement EngagementService,
	opts PipelineOptions,
) ContentService {
	return &ContentServiceImpl{
		contentRepo: contentRepo,
		cipher:      cipher,
		encryptor:   encryptor,
		ledger:      ledgerClient,
		visibility:  visibility,
		engagement:  engagement,
		presenter:   &contentPresenter{cipher: cipher, access: access},
		opts:        opts,
	}
}

// sealedContent 正文和预览各自的哈希与密文
type sealedContent struct {
	contentHash      string
	previewHash      string
	encryptedContent string
	encryptedPreview string
}

func (s *ContentServiceImpl) seal(content, preview string) (*sealedContent, error) {
	out := &sealedContent{
		contentHash: s.cipher.Hash(content),
		previewHash: s.cipher.Hash(preview),
	}
	var err error
	if out.encryptedContent, err = s.cipher.Encrypt(content); err != nil {
		return nil, fmt.Errorf("encrypt content: %w", err)
	}
	if out.encryptedPreview, err = s.cipher.Encrypt(preview); err != nil {
		return nil, fmt.Errorf("encrypt preview: %w", err)
	}
	return out, nil
}

// normalizeGate Public 内容门槛强制为 0，Tippable 内容必须设置门槛
func normalizeGate(visibility model.Visibility, minTip uint64) (uint64, error) {
	if !visibility.Valid() {
		return 0, ErrParamInvalid
	}
	if visibility == model.VisibilityPublic {
		return 0, nil
	}
	if minTip == 0 {
		return 0, ErrParamInvalid
	}
	return minTip, nil
}

// submit 提交上链并确定内容编号，事件缺失时仅在允许回退时推导编号
func (s *ContentServiceImpl) submit(ctx context.Context, runner *stageRunner, method string,
	call func() (*ledger.Result, error)) (*ledger.Result, uint64, bool, error) {
	var (
		res      *ledger.Result
		id       uint64
		fallback bool
	)
	err := runner.run(ctx, StageLedgerSubmission, false, func() error {
		var err error
		res, err = call()
		if err != nil {
			return err
		}
		if res.Status != ledger.StatusSuccess {
			return &TransactionRevertedError{Method: method, Reason: res.Reason}
		}
		if res.Created != nil {
			id = res.Created.ID
			return nil
		}
		if !s.opts.AllowFallbackID {
			log.ErrorContext(ctx, "content event missing from confirmed tx",
				"method", method, "tx", res.Tx.Hash, "err", res.ParseErr)
			return fmt.Errorf("%w: tx %s: %v", ErrContentEventMissing, res.Tx.Hash, res.ParseErr)
		}
		id = ledger.FallbackID(res.Tx)
		fallback = true
		return nil
	})
	if err != nil {
		return nil, 0, false, err
	}
	if fallback {
		runner.warn(ctx, StageLedgerSubmission,
			fmt.Errorf("content id %d derived from tx %s position, event missing: %v", id, res.Tx.Hash, res.ParseErr))
	}
	return res, id, fallback, nil
}

func (s *ContentServiceImpl) CreatePost(ctx context.Context, author *Viewer, req *dto.CreatePostReq, progress ProgressFunc) (*dto.CreateResultDTO, error) {
	if !author.Registered() {
		return nil, ErrNotRegistered
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrParamInvalid
	}
	visibility := model.Visibility(req.Visibility)
	minTip, err := normalizeGate(visibility, req.MinTipAmount)
	if err != nil {
		return nil, err
	}

	runner := newStageRunner(s.opts, progress)

	var sealed *sealedContent
	err = runner.run(ctx, StageContentEncryption, true, func() (err error) {
		sealed, err = s.seal(req.Content, req.Preview)
		return err
	})
	if err != nil {
		return nil, err
	}

	var visParam *encrypt.EncryptedValue
	err = runner.run(ctx, StageParameterEncryption, true, func() (err error) {
		visParam, err = s.encryptor.EncryptNumber(ctx, visibility.Selector(), author.Address)
		return err
	})
	if err != nil {
		return nil, err
	}

	res, ledgerID, fallback, err := s.submit(ctx, runner, "createPost", func() (*ledger.Result, error) {
		return s.ledger.CreatePost(ctx, ledger.CreatePostInput{
			ContentHash: sealed.contentHash,
			PreviewHash: sealed.previewHash,
			Visibility:  *visParam,
		})
	})
	if err != nil {
		return nil, err
	}

	post := &model.Content{
		LedgerID:         ledgerID,
		ContentHash:      sealed.contentHash,
		PreviewHash:      sealed.previewHash,
		EncryptedContent: sealed.encryptedContent,
		EncryptedPreview: sealed.encryptedPreview,
		AuthorAddress:    strings.ToLower(author.Address),
		AuthorIdentity:   author.IdentityToken,
		Visibility:       visibility,
		MinTipAmount:     minTip,
		TxHash:           res.Tx.Hash,
	}
	runner.tryStage(ctx, StageStoreWrite, func() error {
		err := s.contentRepo.CreatePost(ctx, post)
		if errors.Is(err, repository.ErrDuplicate) {
			log.InfoContext(ctx, "content already indexed", "ledgerID", ledgerID)
			return nil
		}
		if err != nil {
			return &PartialWriteError{Stage: StageStoreWrite, Err: err}
		}
		return nil
	})

	runner.tryStage(ctx, StageVisibilityEvent, func() error {
		return s.visibility.AppendEvent(ctx, &model.VisibilityEvent{
			ContentID:      ledgerID,
			ContentType:    model.ContentTypePost,
			VisibilityType: visibility,
			EventType:      model.EventCreated,
		})
	})

	log.InfoContext(ctx, "post created", "ledger_id", ledgerID, "tx", res.Tx.Hash, "warnings", len(runner.warnings))
	return &dto.CreateResultDTO{
		LedgerID:   ledgerID,
		TxHash:     res.Tx.Hash,
		FallbackID: fallback,
		Warnings:   runner.warnings,
	}, nil
}

func (s *ContentServiceImpl) CreateReply(ctx context.Context, author *Viewer, req *dto.CreateReplyReq, progress ProgressFunc) (*dto.CreateResultDTO, error) {
	if !author.Registered() {
		return nil, ErrNotRegistered
	}
	if req.PostID == 0 || strings.TrimSpace(req.Content) == "" {
		return nil, ErrParamInvalid
	}
	visibility := model.Visibility(req.Visibility)
	price, err := normalizeGate(visibility, req.UnlockPrice)
	if err != nil {
		return nil, err
	}

	runner := newStageRunner(s.opts, progress)

	var sealed *sealedContent
	err = runner.run(ctx, StageContentEncryption, true, func() (err error) {
		sealed, err = s.seal(req.Content, req.Preview)
		return err
	})
	if err != nil {
		return nil, err
	}

	var visParam, priceParam *encrypt.EncryptedValue
	err = runner.run(ctx, StageParameterEncryption, true, func() (err error) {
		if visParam, err = s.encryptor.EncryptNumber(ctx, visibility.Selector(), author.Address); err != nil {
			return err
		}
		priceParam, err = s.encryptor.EncryptNumber(ctx, price, author.Address)
		return err
	})
	if err != nil {
		return nil, err
	}

	res, ledgerID, fallback, err := s.submit(ctx, runner, "replyToPost", func() (*ledger.Result, error) {
		return s.ledger.ReplyToPost(ctx, ledger.ReplyInput{
			PostID:      req.PostID,
			ContentHash: sealed.contentHash,
			PreviewHash: sealed.previewHash,
			Visibility:  *visParam,
			UnlockPrice: *priceParam,
		})
	})
	if err != nil {
		return nil, err
	}

	reply := &model.Reply{
		LedgerID:         ledgerID,
		PostID:           req.PostID,
		ContentHash:      sealed.contentHash,
		PreviewHash:      sealed.previewHash,
		EncryptedContent: sealed.encryptedContent,
		EncryptedPreview: sealed.encryptedPreview,
		AuthorAddress:    strings.ToLower(author.Address),
		AuthorIdentity:   author.IdentityToken,
		Visibility:       visibility,
		UnlockPrice:      price,
		TxHash:           res.Tx.Hash,
	}
	stored := runner.tryStage(ctx, StageStoreWrite, func() error {
		err := s.contentRepo.CreateReply(ctx, reply)
		if errors.Is(err, repository.ErrDuplicate) {
			log.InfoContext(ctx, "content already indexed", "ledgerID", ledgerID)
			return nil
		}
		if err != nil {
			return &PartialWriteError{Stage: StageStoreWrite, Err: err}
		}
		return nil
	})
	if stored {
		if err = s.SyncReplyCount(ctx, req.PostID); err != nil {
			runner.warn(ctx, StageStoreWrite, fmt.Errorf("refresh reply count of post %d: %w", req.PostID, err))
		}
	}

	runner.tryStage(ctx, StageVisibilityEvent, func() error {
		return s.visibility.AppendEvent(ctx, &model.VisibilityEvent{
			ContentID:      req.PostID,
			ReplyID:        ledgerID,
			ContentType:    model.ContentTypeReply,
			VisibilityType: visibility,
			EventType:      model.EventCreated,
		})
	})

	log.InfoContext(ctx, "reply created", "post_id", req.PostID, "ledger_id", ledgerID, "tx", res.Tx.Hash)
	return &dto.CreateResultDTO{
		LedgerID:   ledgerID,
		TxHash:     res.Tx.Hash,
		FallbackID: fallback,
		Warnings:   runner.warnings,
	}, nil
}

// SyncReplyCount 以回复表为准刷新帖子的回复数
func (s *ContentServiceImpl) SyncReplyCount(ctx context.Context, postID uint64) error {
	count, err := s.contentRepo.CountRepliesByPostID(ctx, postID)
	if err != nil {
		return err
	}
	return s.engagement.UpdateReplyCount(ctx, postID, count)
}

func (s *ContentServiceImpl) GetPost(ctx context.Context, ledgerID uint64, viewer *Viewer) (*dto.ContentDTO, error) {
	post, err := s.contentRepo.GetPostByLedgerID(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrContentNotFound
	}

	out, err := s.presenter.presentPost(ctx, post, viewer)
	if err != nil {
		return nil, err
	}
	stats, err := s.engagement.GetStats(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	out.Stats = ToStatsDTO(stats)
	if viewer.Connected() {
		vote, err := s.engagement.GetViewerVote(ctx, ledgerID, viewer.Address)
		if err != nil {
			log.WarnContext(ctx, "load viewer vote failed", "content_id", ledgerID, "err", err)
		}
		out.ViewerVote = string(vote)
	}
	return out, nil
}

func (s *ContentServiceImpl) GetReplies(ctx context.Context, postID uint64, viewer *Viewer, page, pageSize int) ([]*dto.ContentDTO, error) {
	limit, offset := util.NormalizePage(page, pageSize)
	replies, err := s.contentRepo.GetRepliesByPostID(ctx, postID, limit, offset)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ContentDTO, 0, len(replies))
	for _, reply := range replies {
		item, err := s.presenter.presentReply(ctx, reply, viewer)
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return res, nil
}

// LoadTarget replyID 为 0 时加载帖子本身
func (s *ContentServiceImpl) LoadTarget(ctx context.Context, contentID, replyID uint64) (LockTarget, error) {
	if replyID == 0 {
		post, err := s.contentRepo.GetPostByLedgerID(ctx, contentID)
		if err != nil {
			return LockTarget{}, err
		}
		if post == nil {
			return LockTarget{}, ErrContentNotFound
		}
		return PostTarget(post), nil
	}

	reply, err := s.contentRepo.GetReplyByLedgerID(ctx, replyID)
	if err != nil {
		return LockTarget{}, err
	}
	if reply == nil || reply.PostID != contentID {
		return LockTarget{}, ErrReplyNotFound
	}
	return ReplyTarget(reply), nil
}

// contentPresenter 根据访问判定决定是否解密正文
type contentPresenter struct {
	cipher *security.ContentCipher
	access AccessService
}

func (p *contentPresenter) presentPost(ctx context.Context, post *model.Content, viewer *Viewer) (*dto.ContentDTO, error) {
	out := &dto.ContentDTO{}
	_ = copier.Copy(out, post)
	out.CreatedAt = util.FormatTime(post.CreatedAt)
	return out, p.reveal(ctx, out, PostTarget(post), viewer, post.EncryptedPreview, post.PreviewHash, post.EncryptedContent)
}

func (p *contentPresenter) presentReply(ctx context.Context, reply *model.Reply, viewer *Viewer) (*dto.ContentDTO, error) {
	out := &dto.ContentDTO{}
	_ = copier.Copy(out, reply)
	out.MinTipAmount = reply.UnlockPrice
	out.CreatedAt = util.FormatTime(reply.CreatedAt)
	return out, p.reveal(ctx, out, ReplyTarget(reply), viewer, reply.EncryptedPreview, reply.PreviewHash, reply.EncryptedContent)
}

func (p *contentPresenter) reveal(ctx context.Context, out *dto.ContentDTO, target LockTarget, viewer *Viewer,
	encryptedPreview, previewHash, encryptedContent string) error {
	decision, err := p.access.ResolveAccess(ctx, target, viewer)
	if err != nil {
		return err
	}
	out.Access = dto.AccessDTO{HasAccess: decision.HasAccess, Reason: string(decision.Reason)}

	if out.Preview, err = p.cipher.Decrypt(encryptedPreview, previewHash); err != nil {
		log.ErrorContext(ctx, "decrypt preview failed", "content_id", target.ContentID, "reply_id", target.ReplyID, "err", err)
		out.Preview = ""
	}
	if !decision.HasAccess {
		return nil
	}
	if out.Content, err = p.cipher.Decrypt(encryptedContent, out.ContentHash); err != nil {
		log.ErrorContext(ctx, "decrypt content failed", "content_id", target.ContentID, "reply_id", target.ReplyID, "err", err)
		out.Content = ""
	}
	return nil
}

// ToStatsDTO 统计转为 DTO 并附带排序分数
func ToStatsDTO(stats *model.PostStats) *dto.StatsDTO {
	out := &dto.StatsDTO{}
	_ = copier.Copy(out, stats)
	out.Score = Score(stats)
	return out
}
