package encrypt

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotReady 加密服务前置条件未满足（网络或初始化）
var ErrNotReady = errors.New("加密服务未就绪")

// NotReadyError 描述未就绪的具体原因，errors.Is(err, ErrNotReady) 可匹配
type NotReadyError struct {
	Reason string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("encryption service not ready: %s", e.Reason)
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}

// Status relayer 自检结果，网络和初始化都满足才可加密
type Status struct {
	NetworkReady bool `json:"networkReady"`
	Initialized  bool `json:"initialized"`
}

func (s Status) Ready() bool {
	return s.NetworkReady && s.Initialized
}

// EncryptedValue 不透明的密文句柄及其输入证明，均为 0x 前缀 hex
type EncryptedValue struct {
	Handle string `json:"handle"`
	Proof  string `json:"proof"`
}

// Client 外部加密服务
type Client interface {
	Status(ctx context.Context) (*Status, error)
	EncryptNumber(ctx context.Context, value uint64, viewer string) (*EncryptedValue, error)
	EncryptAddress(ctx context.Context, identity string, viewer string) (*EncryptedValue, error)
}
