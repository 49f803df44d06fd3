package service

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/pkg/encrypt"
	"Tipwall/internal/pkg/ledger"
	"Tipwall/internal/pkg/redis"
	"Tipwall/internal/pkg/security"
	"Tipwall/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const nonceTTL = 5 * time.Minute

// NonceStore 登录随机数的一次性存储
type NonceStore interface {
	Save(ctx context.Context, address, nonce string, ttl time.Duration) error
	Take(ctx context.Context, address string) (string, error)
}

// RedisNonceStore 随机数存放在 redis，读取即删除
type RedisNonceStore struct{}

func (RedisNonceStore) Save(ctx context.Context, address, nonce string, ttl time.Duration) error {
	return redis.SetWithExpiration(ctx, consts.LoginNonceKeyPrefix+address, nonce, ttl)
}

func (RedisNonceStore) Take(ctx context.Context, address string) (string, error) {
	return redis.TakeValue(ctx, consts.LoginNonceKeyPrefix+address)
}

type UserService interface {
	IssueNonce(ctx context.Context, address string) (*dto.NonceDTO, error)
	Register(ctx context.Context, req *dto.AuthReq) (*dto.SessionDTO, error)
	Login(ctx context.Context, req *dto.AuthReq) (*dto.SessionDTO, error)
	Logout(ctx context.Context, claims *security.SessionClaims, signature string) error
	GetViewer(ctx context.Context, address string) (*Viewer, error)
	GetProfile(ctx context.Context, address string) (*dto.ViewerDTO, error)
}

type UserServiceImpl struct {
	sessionRepo repository.UserSessionRepo
	encryptor   encrypt.Client
	ledger      ledger.Client
	tokens      *security.TokenIssuer
	nonces      NonceStore
	now         func() time.Time
}

func NewUserService(sessionRepo repository.UserSessionRepo, encryptor encrypt.Client, ledgerClient ledger.Client,
	tokens *security.TokenIssuer, nonces NonceStore) UserService {
	return &UserServiceImpl{
		sessionRepo: sessionRepo,
		encryptor:   encryptor,
		ledger:      ledgerClient,
		tokens:      tokens,
		nonces:      nonces,
		now:         time.Now,
	}
}

func normalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrParamInvalid
	}
	return strings.ToLower(address), nil
}

func (s *UserServiceImpl) IssueNonce(ctx context.Context, address string) (*dto.NonceDTO, error) {
	addr, err := normalizeAddress(address)
	if err != nil {
		return nil, err
	}
	nonce := uuid.NewString()
	if err = s.nonces.Save(ctx, addr, nonce, nonceTTL); err != nil {
		return nil, err
	}
	return &dto.NonceDTO{Address: addr, Message: security.LoginMessage(addr, nonce)}, nil
}

// verifyOwnership 消费随机数并校验签名，随机数只能使用一次
func (s *UserServiceImpl) verifyOwnership(ctx context.Context, req *dto.AuthReq) (string, error) {
	addr, err := normalizeAddress(req.Address)
	if err != nil {
		return "", err
	}
	nonce, err := s.nonces.Take(ctx, addr)
	if err != nil {
		return "", err
	}
	if nonce == "" {
		return "", ErrNonceExpired
	}
	if err = security.VerifyPersonalSign(addr, security.LoginMessage(addr, nonce), req.Signature); err != nil {
		log.WarnContext(ctx, "wallet signature rejected", "address", addr, "err", err)
		return "", ErrSignatureInvalid
	}
	return addr, nil
}

// Register 加密身份后登记上链，合约报告已登记时按成功处理。
// 已登记且本地已有会话时保留原加密身份，旧内容的作者判定依赖它
func (s *UserServiceImpl) Register(ctx context.Context, req *dto.AuthReq) (*dto.SessionDTO, error) {
	addr, err := s.verifyOwnership(ctx, req)
	if err != nil {
		return nil, err
	}

	identity, err := s.encryptor.EncryptAddress(ctx, addr, addr)
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.RegisterUser(ctx, *identity)
	if err != nil {
		return nil, err
	}
	if !res.Succeeded() {
		return nil, &TransactionRevertedError{Method: "registerUser", Reason: res.Reason}
	}
	alreadyDone := res.Status == ledger.StatusAlreadyDone

	existing, err := s.sessionRepo.GetByAddress(ctx, addr)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case existing != nil && alreadyDone:
		if err = s.sessionRepo.Touch(ctx, addr); err != nil {
			log.WarnContext(ctx, "touch session failed", "address", addr, "err", err)
		}
	default:
		session := &model.UserSession{
			Address:           addr,
			EncryptedIdentity: identity.Handle,
			Proof:             identity.Proof,
			TxHash:            res.Tx.Hash,
			RegisteredAt:      now,
			LastSeenAt:        now,
		}
		if existing != nil {
			session.RegisteredAt = existing.RegisteredAt
		}
		if err = s.sessionRepo.Upsert(ctx, session); err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.GenerateToken(addr)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "user registered", "address", addr, "status", res.Status.String())
	return &dto.SessionDTO{
		Token:             token,
		Address:           addr,
		TxHash:            res.Tx.Hash,
		AlreadyRegistered: alreadyDone,
	}, nil
}

func (s *UserServiceImpl) Login(ctx context.Context, req *dto.AuthReq) (*dto.SessionDTO, error) {
	addr, err := s.verifyOwnership(ctx, req)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotRegistered
	}
	if err = s.sessionRepo.Touch(ctx, addr); err != nil {
		log.WarnContext(ctx, "touch session failed", "address", addr, "err", err)
	}

	token, err := s.tokens.GenerateToken(addr)
	if err != nil {
		return nil, err
	}
	return &dto.SessionDTO{Token: token, Address: addr, AlreadyRegistered: true}, nil
}

// Logout 将 Token 签名拉黑到其过期为止
func (s *UserServiceImpl) Logout(ctx context.Context, claims *security.SessionClaims, signature string) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return redis.SetWithExpiration(ctx, consts.SessionRevokedKeyPrefix+signature, claims.SessionID, ttl)
}

// GetViewer 未注册的地址返回没有身份令牌的 Viewer
func (s *UserServiceImpl) GetViewer(ctx context.Context, address string) (*Viewer, error) {
	addr := strings.ToLower(address)
	session, err := s.sessionRepo.GetByAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	viewer := &Viewer{Address: addr}
	if session != nil {
		viewer.IdentityToken = session.EncryptedIdentity
	}
	return viewer, nil
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, address string) (*dto.ViewerDTO, error) {
	session, err := s.sessionRepo.GetByAddress(ctx, strings.ToLower(address))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &dto.ViewerDTO{Address: strings.ToLower(address)}, nil
	}
	return &dto.ViewerDTO{
		Address:      session.Address,
		Registered:   true,
		RegisteredAt: session.RegisteredAt.Format(time.RFC3339),
	}, nil
}

