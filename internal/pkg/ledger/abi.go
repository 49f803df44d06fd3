package ledger

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const contentCreatedEvent = "ContentCreated"

const contractABI = `[
  {"type":"function","name":"createPost","stateMutability":"nonpayable","inputs":[
    {"name":"contentHash","type":"bytes32"},{"name":"previewHash","type":"bytes32"},
    {"name":"encVisibility","type":"bytes32"},{"name":"visibilityProof","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"replyToPost","stateMutability":"nonpayable","inputs":[
    {"name":"postId","type":"uint256"},{"name":"contentHash","type":"bytes32"},{"name":"previewHash","type":"bytes32"},
    {"name":"encVisibility","type":"bytes32"},{"name":"visibilityProof","type":"bytes"},
    {"name":"encUnlockPrice","type":"bytes32"},{"name":"priceProof","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"tipPost","stateMutability":"nonpayable","inputs":[
    {"name":"postId","type":"uint256"},{"name":"encAmount","type":"bytes32"},{"name":"inputProof","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"tipReply","stateMutability":"nonpayable","inputs":[
    {"name":"replyId","type":"uint256"},{"name":"encAmount","type":"bytes32"},{"name":"inputProof","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"unlockTippableContent","stateMutability":"nonpayable","inputs":[
    {"name":"contentId","type":"uint256"},{"name":"isReply","type":"bool"},
    {"name":"encAmount","type":"bytes32"},{"name":"inputProof","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"registerUser","stateMutability":"nonpayable","inputs":[
    {"name":"encIdentity","type":"bytes32"},{"name":"inputProof","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"claimEarnings","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"ContentCreated","anonymous":false,"inputs":[
    {"name":"contentId","type":"uint256","indexed":true},{"name":"author","type":"address","indexed":true},
    {"name":"visibility","type":"uint8","indexed":false},{"name":"isReply","type":"bool","indexed":false}]}
]`

// ParsedABI 解析内置的合约 ABI
func ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(contractABI))
}

type contentCreatedLog struct {
	ContentId  *big.Int
	Author     common.Address
	Visibility uint8
	IsReply    bool
}

// ParseContentCreated 在回执日志中查找本合约发出的 ContentCreated 事件
func ParseContentCreated(parsed abi.ABI, contract common.Address, logs []*types.Log) (*ContentCreated, error) {
	ev, ok := parsed.Events[contentCreatedEvent]
	if !ok {
		return nil, fmt.Errorf("abi has no %s event", contentCreatedEvent)
	}

	var indexed abi.Arguments
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}

	for _, lg := range logs {
		if lg == nil || lg.Address != contract || len(lg.Topics) == 0 || lg.Topics[0] != ev.ID {
			continue
		}
		var out contentCreatedLog
		if err := parsed.UnpackIntoInterface(&out, contentCreatedEvent, lg.Data); err != nil {
			return nil, fmt.Errorf("unpack %s data: %w", contentCreatedEvent, err)
		}
		if err := abi.ParseTopics(&out, indexed, lg.Topics[1:]); err != nil {
			return nil, fmt.Errorf("unpack %s topics: %w", contentCreatedEvent, err)
		}
		if out.ContentId == nil || !out.ContentId.IsUint64() {
			return nil, fmt.Errorf("%s id out of range", contentCreatedEvent)
		}
		return &ContentCreated{
			ID:         out.ContentId.Uint64(),
			Author:     out.Author.Hex(),
			Visibility: uint64(out.Visibility),
			IsReply:    out.IsReply,
		}, nil
	}
	return nil, ErrEventNotFound
}
