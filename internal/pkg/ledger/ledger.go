package ledger

import (
	"Tipwall/internal/pkg/encrypt"
	"context"
	"errors"
	"strings"
)

// ErrEventNotFound 回执中没有 ContentCreated 事件
var ErrEventNotFound = errors.New("ContentCreated event not found in receipt")

// Status 链上提交的结果分类
type Status int

const (
	StatusSuccess Status = iota
	// StatusAlreadyDone 幂等操作已执行过，调用方按成功处理
	StatusAlreadyDone
	StatusReverted
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAlreadyDone:
		return "already_done"
	case StatusReverted:
		return "reverted"
	}
	return "unknown"
}

// TxInfo 已上链交易的定位信息
type TxInfo struct {
	Hash        string
	BlockNumber uint64
	Index       uint
}

// ContentCreated 合约在创建帖子/回复时发出的事件
type ContentCreated struct {
	ID         uint64
	Author     string
	Visibility uint64
	IsReply    bool
}

// Result 一次提交的结果。Created 仅在创建类调用且事件解析成功时非空，
// 解析失败的原因放在 ParseErr 中，交易本身仍是成功的
type Result struct {
	Status   Status
	Reason   string
	Tx       TxInfo
	Created  *ContentCreated
	ParseErr error
}

func (r *Result) Succeeded() bool {
	return r.Status == StatusSuccess || r.Status == StatusAlreadyDone
}

type CreatePostInput struct {
	ContentHash string
	PreviewHash string
	Visibility  encrypt.EncryptedValue
}

type ReplyInput struct {
	PostID      uint64
	ContentHash string
	PreviewHash string
	Visibility  encrypt.EncryptedValue
	UnlockPrice encrypt.EncryptedValue
}

type PaymentInput struct {
	ContentID uint64
	ReplyID   uint64
	Amount    encrypt.EncryptedValue
}

// Client 合约的全部写操作。网络类错误以 error 返回，合约层面的拒绝以 Result.Status 表示
type Client interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*Result, error)
	ReplyToPost(ctx context.Context, in ReplyInput) (*Result, error)
	TipPost(ctx context.Context, in PaymentInput) (*Result, error)
	TipReply(ctx context.Context, in PaymentInput) (*Result, error)
	UnlockTippableContent(ctx context.Context, in PaymentInput) (*Result, error)
	RegisterUser(ctx context.Context, identity encrypt.EncryptedValue) (*Result, error)
	ClaimEarnings(ctx context.Context) (*Result, error)
}

var alreadyDoneSignatures = []string{
	"already registered",
	"already unlocked",
	"already has access",
	"nothing changed",
}

// Classify 将 revert 原因归类为 AlreadyDone 或 Reverted
func Classify(reason string) *Result {
	lower := strings.ToLower(reason)
	for _, sig := range alreadyDoneSignatures {
		if strings.Contains(lower, sig) {
			return &Result{Status: StatusAlreadyDone, Reason: reason}
		}
	}
	return &Result{Status: StatusReverted, Reason: reason}
}

// FallbackID 事件解析失败时由区块号、交易序号和哈希尾部推导的编号。
// 不保证全局唯一，仅在配置允许时使用
func FallbackID(tx TxInfo) uint64 {
	var suffix uint64
	h := strings.TrimPrefix(strings.ToLower(tx.Hash), "0x")
	if len(h) >= 4 {
		for _, c := range h[len(h)-4:] {
			suffix <<= 4
			switch {
			case c >= '0' && c <= '9':
				suffix |= uint64(c - '0')
			case c >= 'a' && c <= 'f':
				suffix |= uint64(c-'a') + 10
			}
		}
	}
	return tx.BlockNumber*1_000_000 + uint64(tx.Index)*1_000 + suffix%1_000
}
