package service

import (
	"Tipwall/internal/pkg/encrypt"
	"errors"
	"fmt"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	PaymentRequired     = 402
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid        = errors.New("参数错误")
	ErrContentNotFound     = errors.New("内容不存在")
	ErrReplyNotFound       = errors.New("回复不存在")
	ErrNotConnected        = errors.New("未连接钱包")
	ErrNotRegistered       = errors.New("用户未注册")
	ErrSignatureInvalid    = errors.New("签名校验失败")
	ErrNonceExpired        = errors.New("登录随机数已过期")
	ErrTipTooLow           = errors.New("金额低于解锁门槛")
	ErrNotLocked           = errors.New("内容无需解锁")
	ErrTransactionReverted = errors.New("交易被合约拒绝")
	ErrPartialWrite        = errors.New("链上成功但索引写入失败")
	ErrContentEventMissing = errors.New("未能从交易回执中解析内容编号")
	UnauthorizedError      = errors.New("权限不足")
	UnExpectedError        = errors.New("系统异常，请稍后重试")
)

// TransactionRevertedError 合约拒绝了操作，Reason 为模拟调用得到的 revert 原因
type TransactionRevertedError struct {
	Method string
	Reason string
}

func (e *TransactionRevertedError) Error() string {
	return fmt.Sprintf("%s reverted: %s", e.Method, e.Reason)
}

func (e *TransactionRevertedError) Is(target error) bool {
	return target == ErrTransactionReverted
}

// PartialWriteError 账本已确认但持久化失败，只作为警告上报
type PartialWriteError struct {
	Stage Stage
	Err   error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write at %s: %v", e.Stage, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

func (e *PartialWriteError) Is(target error) bool {
	return target == ErrPartialWrite
}

var ErrorMap = map[error]int{
	ErrParamInvalid:        BadRequest,
	ErrContentNotFound:     NotFound,
	ErrReplyNotFound:       NotFound,
	ErrNotConnected:        Unauthorized,
	ErrNotRegistered:       Unauthorized,
	ErrSignatureInvalid:    Unauthorized,
	ErrNonceExpired:        Unauthorized,
	ErrTipTooLow:           PaymentRequired,
	ErrNotLocked:           BadRequest,
	ErrTransactionReverted: Conflict,
	ErrContentEventMissing: InternalServerError,
	encrypt.ErrNotReady:    ServiceUnavailable,
	UnauthorizedError:      Unauthorized,
	UnExpectedError:        InternalServerError,
}

// CodeOf 查找错误对应的业务码，支持被包装的错误
func CodeOf(err error) (int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return 0, false
}
