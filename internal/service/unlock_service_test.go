package service

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/ledger"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func paid(hash string, status ledger.Status) *ledger.Result {
	return &ledger.Result{Status: status, Tx: ledger.TxInfo{Hash: hash}}
}

func TestUnlockGrantsOnlyThePayer(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 42, model.VisibilityTippable, 10)
	ctx := context.Background()
	v, w := viewer(viewerAddr), viewer(otherAddr)

	before, err := env.contentSvc.GetPost(ctx, 42, v)
	require.NoError(t, err)
	assert.Equal(t, "requires_payment", before.Access.Reason)

	env.encryptor.On("EncryptNumber", mock.Anything, uint64(10), viewerAddr).Return(handle("amount"), nil)
	env.ledger.On("UnlockTippableContent", mock.Anything, mock.MatchedBy(func(in ledger.PaymentInput) bool {
		return in.ContentID == 42 && in.ReplyID == 0
	})).Return(paid("0xunlock", ledger.StatusSuccess), nil)

	res, err := env.paymentSvc.Unlock(ctx, v, &dto.PaymentReq{ContentID: 42, Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, dto.AccessDTO{HasAccess: true, Reason: "unlock"}, res.Access)
	assert.Empty(t, res.Warnings)

	after, err := env.contentSvc.GetPost(ctx, 42, v)
	require.NoError(t, err)
	assert.Equal(t, "full text 42", after.Content)

	still, err := env.contentSvc.GetPost(ctx, 42, w)
	require.NoError(t, err)
	assert.Equal(t, "requires_payment", still.Access.Reason)
	assert.Empty(t, still.Content)

	latest, err := env.events.GetLatest(ctx, 42, 0)
	require.NoError(t, err)
	assert.Equal(t, model.EventUnlocked, latest.EventType)
	assert.Equal(t, model.VisibilityTippable, latest.VisibilityType)
	assert.Equal(t, viewerAddr, latest.Actor)
}

func TestUnlockAlreadyDoneStillGrants(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 42, model.VisibilityTippable, 10)
	env.encryptor.On("EncryptNumber", mock.Anything, mock.Anything, viewerAddr).Return(handle("amount"), nil)
	env.ledger.On("UnlockTippableContent", mock.Anything, mock.Anything).
		Return(paid("0xagain", ledger.StatusAlreadyDone), nil)

	res, err := env.paymentSvc.Unlock(context.Background(), viewer(viewerAddr), &dto.PaymentReq{ContentID: 42, Amount: 12})
	require.NoError(t, err)
	assert.Equal(t, "already_done", res.Status)
	assert.True(t, res.Access.HasAccess)
}

func TestUnlockRejections(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 42, model.VisibilityTippable, 10)
	env.seedPost(t, 50, model.VisibilityPublic, 0)
	ctx := context.Background()

	_, err := env.paymentSvc.Unlock(ctx, viewer(viewerAddr), &dto.PaymentReq{ContentID: 42, Amount: 9})
	assert.ErrorIs(t, err, ErrTipTooLow)

	_, err = env.paymentSvc.Unlock(ctx, viewer(viewerAddr), &dto.PaymentReq{ContentID: 50, Amount: 9})
	assert.ErrorIs(t, err, ErrNotLocked)

	_, err = env.paymentSvc.Unlock(ctx, &Viewer{Address: viewerAddr}, &dto.PaymentReq{ContentID: 42, Amount: 10})
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = env.paymentSvc.Unlock(ctx, viewer(viewerAddr), &dto.PaymentReq{ContentID: 404, Amount: 10})
	assert.ErrorIs(t, err, ErrContentNotFound)

	env.ledger.AssertNotCalled(t, "UnlockTippableContent", mock.Anything, mock.Anything)
}

func TestUnlockRevertedSurfacesReason(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 42, model.VisibilityTippable, 10)
	env.encryptor.On("EncryptNumber", mock.Anything, mock.Anything, viewerAddr).Return(handle("amount"), nil)
	env.ledger.On("UnlockTippableContent", mock.Anything, mock.Anything).
		Return(&ledger.Result{Status: ledger.StatusReverted, Reason: "insufficient balance"}, nil)

	_, err := env.paymentSvc.Unlock(context.Background(), viewer(viewerAddr), &dto.PaymentReq{ContentID: 42, Amount: 10})
	var reverted *TransactionRevertedError
	require.ErrorAs(t, err, &reverted)
	assert.Equal(t, "insufficient balance", reverted.Reason)

	d, err := env.accessSvc.ResolveAccess(context.Background(), LockTarget{ContentID: 42, MinTipAmount: 10}, viewer(viewerAddr))
	require.NoError(t, err)
	assert.False(t, d.HasAccess)
}

func TestTipGrantsAccessAtThreshold(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 42, model.VisibilityTippable, 10)
	ctx := context.Background()
	env.encryptor.On("EncryptNumber", mock.Anything, mock.Anything, mock.Anything).Return(handle("amount"), nil)
	env.ledger.On("TipPost", mock.Anything, mock.Anything).Return(paid("0xtip", ledger.StatusSuccess), nil)

	small, err := env.paymentSvc.Tip(ctx, viewer(otherAddr), &dto.PaymentReq{ContentID: 42, Amount: 3})
	require.NoError(t, err)
	assert.False(t, small.Access.HasAccess)

	big, err := env.paymentSvc.Tip(ctx, viewer(viewerAddr), &dto.PaymentReq{ContentID: 42, Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, dto.AccessDTO{HasAccess: true, Reason: "unlock"}, big.Access)

	latest, err := env.events.GetLatest(ctx, 42, 0)
	require.NoError(t, err)
	assert.Equal(t, model.EventRevealed, latest.EventType)
	env.ledger.AssertNumberOfCalls(t, "TipPost", 2)
}

func TestPaymentWriteFailureIsWarning(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{MaxAttempts: 1})
	env.seedPost(t, 42, model.VisibilityTippable, 10)
	env.access.err = errStoreDown
	env.encryptor.On("EncryptNumber", mock.Anything, mock.Anything, mock.Anything).Return(handle("amount"), nil)
	env.ledger.On("UnlockTippableContent", mock.Anything, mock.Anything).Return(paid("0xunlock", ledger.StatusSuccess), nil)

	res, err := env.paymentSvc.Unlock(context.Background(), viewer(viewerAddr), &dto.PaymentReq{ContentID: 42, Amount: 10})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "partial write")
}

func TestClaimEarnings(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{})
	env.ledger.On("ClaimEarnings", mock.Anything).Return(paid("0xclaim", ledger.StatusSuccess), nil)

	res, err := env.paymentSvc.ClaimEarnings(context.Background(), author())
	require.NoError(t, err)
	assert.Equal(t, "0xclaim", res.TxHash)

	_, err = env.paymentSvc.ClaimEarnings(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotRegistered)
}
