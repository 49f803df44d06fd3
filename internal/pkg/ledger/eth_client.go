package ledger

import (
	"Tipwall/internal/api/config"
	"Tipwall/internal/pkg/encrypt"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EthClient 基于 go-ethereum 绑定合约实现 Client
type EthClient struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	address  common.Address
	auth     *bind.TransactOpts
}

func NewEthClient(ctx context.Context, cfg config.LedgerConfig) (*EthClient, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}

	parsed, err := ParsedABI()
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("load ledger key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	return &EthClient{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		abi:      parsed,
		address:  address,
		auth:     auth,
	}, nil
}

func (l *EthClient) Close() {
	l.client.Close()
}

func (l *EthClient) CreatePost(ctx context.Context, in CreatePostInput) (*Result, error) {
	res, receipt, err := l.submit(ctx, "createPost",
		toBytes32(in.ContentHash),
		toBytes32(in.PreviewHash),
		toBytes32(in.Visibility.Handle),
		common.FromHex(in.Visibility.Proof),
	)
	if err != nil || receipt == nil {
		return res, err
	}
	res.Created, res.ParseErr = ParseContentCreated(l.abi, l.address, receipt.Logs)
	return res, nil
}

func (l *EthClient) ReplyToPost(ctx context.Context, in ReplyInput) (*Result, error) {
	res, receipt, err := l.submit(ctx, "replyToPost",
		new(big.Int).SetUint64(in.PostID),
		toBytes32(in.ContentHash),
		toBytes32(in.PreviewHash),
		toBytes32(in.Visibility.Handle),
		common.FromHex(in.Visibility.Proof),
		toBytes32(in.UnlockPrice.Handle),
		common.FromHex(in.UnlockPrice.Proof),
	)
	if err != nil || receipt == nil {
		return res, err
	}
	res.Created, res.ParseErr = ParseContentCreated(l.abi, l.address, receipt.Logs)
	return res, nil
}

func (l *EthClient) TipPost(ctx context.Context, in PaymentInput) (*Result, error) {
	res, _, err := l.submit(ctx, "tipPost",
		new(big.Int).SetUint64(in.ContentID),
		toBytes32(in.Amount.Handle),
		common.FromHex(in.Amount.Proof),
	)
	return res, err
}

func (l *EthClient) TipReply(ctx context.Context, in PaymentInput) (*Result, error) {
	res, _, err := l.submit(ctx, "tipReply",
		new(big.Int).SetUint64(in.ReplyID),
		toBytes32(in.Amount.Handle),
		common.FromHex(in.Amount.Proof),
	)
	return res, err
}

func (l *EthClient) UnlockTippableContent(ctx context.Context, in PaymentInput) (*Result, error) {
	id, isReply := in.ContentID, false
	if in.ReplyID != 0 {
		id, isReply = in.ReplyID, true
	}
	res, _, err := l.submit(ctx, "unlockTippableContent",
		new(big.Int).SetUint64(id),
		isReply,
		toBytes32(in.Amount.Handle),
		common.FromHex(in.Amount.Proof),
	)
	return res, err
}

func (l *EthClient) RegisterUser(ctx context.Context, identity encrypt.EncryptedValue) (*Result, error) {
	res, _, err := l.submit(ctx, "registerUser",
		toBytes32(identity.Handle),
		common.FromHex(identity.Proof),
	)
	return res, err
}

func (l *EthClient) ClaimEarnings(ctx context.Context) (*Result, error) {
	res, _, err := l.submit(ctx, "claimEarnings")
	return res, err
}

// submit 发送交易并等待确认。被合约拒绝时返回分类后的 Result 且 receipt 为 nil
func (l *EthClient) submit(ctx context.Context, method string, params ...interface{}) (*Result, *types.Receipt, error) {
	opts := *l.auth
	opts.Context = ctx

	tx, err := l.contract.Transact(&opts, method, params...)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			log.WarnContext(ctx, "ledger call rejected before send", "method", method, "reason", reason)
			return Classify(reason), nil, nil
		}
		return nil, nil, fmt.Errorf("%s: send: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, l.client, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: wait mined: %w", method, err)
	}

	info := TxInfo{
		Hash:        tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		Index:       receipt.TransactionIndex,
	}

	if receipt.Status == types.ReceiptStatusFailed {
		reason := l.simulate(ctx, tx, receipt.BlockNumber)
		log.WarnContext(ctx, "ledger transaction reverted", "method", method, "tx", info.Hash, "reason", reason)
		res := Classify(reason)
		res.Tx = info
		return res, nil, nil
	}

	return &Result{Status: StatusSuccess, Tx: info}, receipt, nil
}

// simulate 在失败区块上重放调用以取得 revert 原因
func (l *EthClient) simulate(ctx context.Context, tx *types.Transaction, block *big.Int) string {
	msg := ethereum.CallMsg{
		From:  l.auth.From,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err := l.client.CallContract(ctx, msg, block)
	if err == nil {
		return "unknown revert"
	}
	if reason, ok := revertReason(err); ok {
		return reason
	}
	return err.Error()
}

func revertReason(err error) (string, bool) {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if s, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(s); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason, true
				}
			}
		}
	}

	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx:], "execution reverted")
		return strings.TrimSpace(strings.TrimPrefix(reason, ":")), true
	}
	return "", false
}

func toBytes32(hexStr string) [32]byte {
	return common.HexToHash(hexStr)
}
