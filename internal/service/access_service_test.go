package service

import (
	"Tipwall/internal/model"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAccessZeroThresholdIsPublic(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{})
	ctx := context.Background()
	target := LockTarget{ContentID: 1, AuthorIdentity: "0xauthor-identity"}

	for _, v := range []*Viewer{nil, {}, viewer(viewerAddr), author()} {
		d, err := env.accessSvc.ResolveAccess(ctx, target, v)
		require.NoError(t, err)
		assert.Equal(t, AccessDecision{HasAccess: true, Reason: ReasonPublic}, *d)
	}

	require.NoError(t, env.visibility.AppendEvent(ctx, &model.VisibilityEvent{
		ContentID: 1, VisibilityType: model.VisibilityTippable, EventType: model.EventCreated,
	}))
	d, err := env.accessSvc.ResolveAccess(ctx, target, nil)
	require.NoError(t, err)
	assert.True(t, d.HasAccess)
}

func TestResolveAccessWithoutEventUsesThreshold(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{})
	ctx := context.Background()
	target := LockTarget{ContentID: 2, AuthorIdentity: "0xauthor-identity", MinTipAmount: 10}

	d, err := env.accessSvc.ResolveAccess(ctx, target, nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotConnected, d.Reason)

	d, err = env.accessSvc.ResolveAccess(ctx, target, viewer(viewerAddr))
	require.NoError(t, err)
	assert.Equal(t, AccessDecision{HasAccess: false, Reason: ReasonRequiresPayment}, *d)

	d, err = env.accessSvc.ResolveAccess(ctx, target, author())
	require.NoError(t, err)
	assert.Equal(t, AccessDecision{HasAccess: true, Reason: ReasonAuthor}, *d)
}

func TestResolveAccessPublicEventOverridesThreshold(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{})
	ctx := context.Background()
	require.NoError(t, env.visibility.AppendEvent(ctx, &model.VisibilityEvent{
		ContentID: 3, VisibilityType: model.VisibilityPublic, EventType: model.EventUpdated,
	}))

	d, err := env.accessSvc.ResolveAccess(ctx, LockTarget{ContentID: 3, MinTipAmount: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonPublic, d.Reason)
}

func TestResolveAccessNeverLeaksLockedContent(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{})
	ctx := context.Background()
	require.NoError(t, env.visibility.AppendEvent(ctx, &model.VisibilityEvent{
		ContentID: 4, VisibilityType: model.VisibilityTippable, EventType: model.EventCreated,
	}))
	target := LockTarget{ContentID: 4, AuthorIdentity: "0xauthor-identity", MinTipAmount: 1}

	for i := 0; i < 50; i++ {
		v := &Viewer{Address: fmt.Sprintf("0x%040x", i+1), IdentityToken: fmt.Sprintf("0xid-%d", i)}
		d, err := env.accessSvc.ResolveAccess(ctx, target, v)
		require.NoError(t, err)
		assert.False(t, d.HasAccess, "viewer %s", v.Address)
	}

	d, err := env.accessSvc.ResolveAccess(ctx, target, &Viewer{Address: viewerAddr})
	require.NoError(t, err)
	assert.False(t, d.HasAccess)
}

func TestResolveAccessFailsClosedOnStoreError(t *testing.T) {
	env := newTestEnv(t, PipelineOptions{})
	env.events.err = errStoreDown

	d, err := env.accessSvc.ResolveAccess(context.Background(), LockTarget{ContentID: 5, MinTipAmount: 3}, viewer(viewerAddr))
	require.NoError(t, err)
	assert.False(t, d.HasAccess)
}
