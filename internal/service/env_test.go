package service

import (
	"Tipwall/internal/pkg/encrypt"
	"Tipwall/internal/pkg/security"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testContentKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	authorAddr     = "0x1111111111111111111111111111111111111111"
	viewerAddr     = "0x2222222222222222222222222222222222222222"
	otherAddr      = "0x3333333333333333333333333333333333333333"
)

// testEnv 用内存实现装配出的完整服务集合
type testEnv struct {
	events     *memEventRepo
	access     *memAccessRepo
	votes      *memEngagementRepo
	stats      *memStatsRepo
	contents   *memContentRepo
	sessions   *memSessionRepo
	ledger     *MockLedgerClient
	encryptor  *MockEncryptClient
	cipher     *security.ContentCipher
	cache      *VisibilityCache
	bus        *VisibilityBus
	visibility VisibilityService
	accessSvc  AccessService
	engagement EngagementService
	contentSvc ContentService
	feedSvc    FeedService
	paymentSvc PaymentService
	opts       PipelineOptions
}

func newTestEnv(t *testing.T, opts PipelineOptions) *testEnv {
	t.Helper()
	cipher, err := security.NewContentCipher(testContentKey)
	require.NoError(t, err)

	env := &testEnv{
		events:    &memEventRepo{},
		access:    newMemAccessRepo(),
		votes:     newMemEngagementRepo(),
		stats:     newMemStatsRepo(),
		contents:  &memContentRepo{},
		sessions:  newMemSessionRepo(),
		ledger:    &MockLedgerClient{},
		encryptor: &MockEncryptClient{},
		cipher:    cipher,
		opts:      opts,
	}
	env.cache = NewVisibilityCache(5 * time.Minute)
	env.bus = NewVisibilityBus(env.cache)
	env.visibility = NewVisibilityService(env.events, env.cache, env.bus)
	env.accessSvc = NewAccessService(env.visibility, env.access)
	env.engagement = NewEngagementService(env.votes, env.stats)
	env.contentSvc = NewContentService(env.contents, cipher, env.encryptor, env.ledger,
		env.visibility, env.accessSvc, env.engagement, opts)
	env.feedSvc = NewFeedService(env.contents, env.engagement, env.accessSvc, cipher)
	env.paymentSvc = NewPaymentService(env.contentSvc, env.accessSvc, env.visibility, env.access, env.encryptor, env.ledger)
	return env
}

func handle(tag string) *encrypt.EncryptedValue {
	return &encrypt.EncryptedValue{Handle: "0x" + tag, Proof: "0xproof"}
}

func author() *Viewer {
	return &Viewer{Address: authorAddr, IdentityToken: "0xauthor-identity"}
}

func viewer(addr string) *Viewer {
	return &Viewer{Address: addr, IdentityToken: "0xidentity-" + addr[2:6]}
}
