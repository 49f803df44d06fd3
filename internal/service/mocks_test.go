package service

import (
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/encrypt"
	"Tipwall/internal/pkg/ledger"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockLedgerClient is a mock implementation of ledger.Client
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) result(args mock.Arguments) (*ledger.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Result), args.Error(1)
}

func (m *MockLedgerClient) CreatePost(ctx context.Context, in ledger.CreatePostInput) (*ledger.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockLedgerClient) ReplyToPost(ctx context.Context, in ledger.ReplyInput) (*ledger.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockLedgerClient) TipPost(ctx context.Context, in ledger.PaymentInput) (*ledger.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockLedgerClient) TipReply(ctx context.Context, in ledger.PaymentInput) (*ledger.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockLedgerClient) UnlockTippableContent(ctx context.Context, in ledger.PaymentInput) (*ledger.Result, error) {
	return m.result(m.Called(ctx, in))
}

func (m *MockLedgerClient) RegisterUser(ctx context.Context, identity encrypt.EncryptedValue) (*ledger.Result, error) {
	return m.result(m.Called(ctx, identity))
}

func (m *MockLedgerClient) ClaimEarnings(ctx context.Context) (*ledger.Result, error) {
	return m.result(m.Called(ctx))
}

// MockEncryptClient is a mock implementation of encrypt.Client
type MockEncryptClient struct {
	mock.Mock
}

func (m *MockEncryptClient) Status(ctx context.Context) (*encrypt.Status, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*encrypt.Status), args.Error(1)
}

func (m *MockEncryptClient) EncryptNumber(ctx context.Context, value uint64, viewer string) (*encrypt.EncryptedValue, error) {
	args := m.Called(ctx, value, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*encrypt.EncryptedValue), args.Error(1)
}

func (m *MockEncryptClient) EncryptAddress(ctx context.Context, identity string, viewer string) (*encrypt.EncryptedValue, error) {
	args := m.Called(ctx, identity, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*encrypt.EncryptedValue), args.Error(1)
}

var errStoreDown = errors.New("store unavailable")

// fakeClock 手动推进的时间源
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memEventRepo struct {
	mu     sync.Mutex
	events []*model.VisibilityEvent
	reads  int
	err    error
}

func (r *memEventRepo) Append(_ context.Context, event *model.VisibilityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	event.ID = uint64(len(r.events) + 1)
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *memEventRepo) GetLatest(_ context.Context, contentID, replyID uint64) (*model.VisibilityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	var latest *model.VisibilityEvent
	for _, e := range r.events {
		if e.ContentID != contentID || e.ReplyID != replyID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) ||
			(e.CreatedAt.Equal(latest.CreatedAt) && e.ID > latest.ID) {
			latest = e
		}
	}
	return latest, nil
}

func (r *memEventRepo) ListByContent(_ context.Context, contentID, replyID uint64, limit int) ([]*model.VisibilityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*model.VisibilityEvent
	for i := len(r.events) - 1; i >= 0 && len(res) < limit; i-- {
		if e := r.events[i]; e.ContentID == contentID && e.ReplyID == replyID {
			res = append(res, e)
		}
	}
	return res, nil
}

type accessKey struct {
	contentID uint64
	replyID   uint64
	viewer    string
}

type memAccessRepo struct {
	mu     sync.Mutex
	grants map[accessKey]*model.ContentAccess
	err    error
}

func newMemAccessRepo() *memAccessRepo {
	return &memAccessRepo{grants: make(map[accessKey]*model.ContentAccess)}
}

func (r *memAccessRepo) Grant(_ context.Context, access *model.ContentAccess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	key := accessKey{access.ContentID, access.ReplyID, access.ViewerAddress}
	if _, ok := r.grants[key]; !ok {
		r.grants[key] = access
	}
	return nil
}

func (r *memAccessRepo) HasAccess(_ context.Context, contentID, replyID uint64, viewer string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.grants[accessKey{contentID, replyID, viewer}]
	return ok, nil
}

type voteKey struct {
	contentID uint64
	viewer    string
}

type memEngagementRepo struct {
	mu    sync.Mutex
	votes map[voteKey]*model.Engagement
}

func newMemEngagementRepo() *memEngagementRepo {
	return &memEngagementRepo{votes: make(map[voteKey]*model.Engagement)}
}

func (r *memEngagementRepo) CheckExists(_ context.Context, contentID uint64, viewerID string, t model.EngagementType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.votes[voteKey{contentID, viewerID}]
	return ok && v.EngagementType == t, nil
}

func (r *memEngagementRepo) GetVote(_ context.Context, contentID uint64, viewerID string) (*model.Engagement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.votes[voteKey{contentID, viewerID}], nil
}

func (r *memEngagementRepo) Delete(_ context.Context, contentID uint64, viewerID string, t model.EngagementType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := voteKey{contentID, viewerID}
	if v, ok := r.votes[key]; ok && v.EngagementType == t {
		delete(r.votes, key)
	}
	return nil
}

func (r *memEngagementRepo) Upsert(_ context.Context, e *model.Engagement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes[voteKey{e.ContentID, e.ViewerID}] = e
	return nil
}

func (r *memEngagementRepo) CountByType(_ context.Context, contentID uint64) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var up, down int64
	for k, v := range r.votes {
		if k.contentID != contentID {
			continue
		}
		if v.EngagementType == model.Upvote {
			up++
		} else {
			down++
		}
	}
	return up, down, nil
}

func (r *memEngagementRepo) GetActiveContentIDs(_ context.Context) ([]uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uint64]struct{})
	var ids []uint64
	for k := range r.votes {
		if _, ok := seen[k.contentID]; !ok {
			seen[k.contentID] = struct{}{}
			ids = append(ids, k.contentID)
		}
	}
	return ids, nil
}

func (r *memEngagementRepo) count(contentID uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.votes {
		if k.contentID == contentID {
			n++
		}
	}
	return n
}

type memStatsRepo struct {
	mu    sync.Mutex
	stats map[uint64]*model.PostStats
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{stats: make(map[uint64]*model.PostStats)}
}

func (r *memStatsRepo) Get(_ context.Context, contentID uint64) (*model.PostStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.stats[contentID]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (r *memStatsRepo) GetBatch(_ context.Context, contentIDs []uint64) (map[uint64]*model.PostStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[uint64]*model.PostStats)
	for _, id := range contentIDs {
		if st, ok := r.stats[id]; ok {
			cp := *st
			res[id] = &cp
		}
	}
	return res, nil
}

func (r *memStatsRepo) row(contentID uint64) *model.PostStats {
	st, ok := r.stats[contentID]
	if !ok {
		st = &model.PostStats{ContentID: contentID}
		r.stats[contentID] = st
	}
	return st
}

func (r *memStatsRepo) UpsertVotes(_ context.Context, contentID uint64, up, down int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.row(contentID)
	st.UpvoteCount, st.DownvoteCount = up, down
	return nil
}

func (r *memStatsRepo) UpsertReplyCount(_ context.Context, contentID uint64, replyCount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.row(contentID).ReplyCount = replyCount
	return nil
}

type memContentRepo struct {
	mu       sync.Mutex
	posts    []*model.Content
	replies  []*model.Reply
	writeErr error
}

func (r *memContentRepo) CreatePost(_ context.Context, post *model.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	post.ID = uint64(len(r.posts) + 1)
	r.posts = append(r.posts, post)
	return nil
}

func (r *memContentRepo) GetPostByLedgerID(_ context.Context, ledgerID uint64) (*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.LedgerID == ledgerID {
			return p, nil
		}
	}
	return nil, nil
}

func (r *memContentRepo) GetPostsByLedgerIDs(_ context.Context, ledgerIDs []uint64) ([]*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*model.Content
	for _, p := range r.posts {
		for _, id := range ledgerIDs {
			if p.LedgerID == id {
				res = append(res, p)
			}
		}
	}
	return res, nil
}

func (r *memContentRepo) ListPosts(_ context.Context, limit, offset int) ([]*model.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset >= len(r.posts) {
		return nil, nil
	}
	return r.posts[offset:min(offset+limit, len(r.posts))], nil
}

func (r *memContentRepo) CreateReply(_ context.Context, reply *model.Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writeErr != nil {
		return r.writeErr
	}
	reply.ID = uint64(len(r.replies) + 1)
	r.replies = append(r.replies, reply)
	return nil
}

func (r *memContentRepo) GetReplyByLedgerID(_ context.Context, ledgerID uint64) (*model.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rp := range r.replies {
		if rp.LedgerID == ledgerID {
			return rp, nil
		}
	}
	return nil, nil
}

func (r *memContentRepo) GetRepliesByPostID(_ context.Context, postID uint64, limit, offset int) ([]*model.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*model.Reply
	for _, rp := range r.replies {
		if rp.PostID == postID {
			res = append(res, rp)
		}
	}
	if offset >= len(res) {
		return nil, nil
	}
	return res[offset:min(offset+limit, len(res))], nil
}

func (r *memContentRepo) CountRepliesByPostID(_ context.Context, postID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, rp := range r.replies {
		if rp.PostID == postID {
			n++
		}
	}
	return n, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.UserSession
	touched  int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*model.UserSession)}
}

func (r *memSessionRepo) Upsert(_ context.Context, session *model.UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.Address] = &cp
	return nil
}

func (r *memSessionRepo) GetByAddress(_ context.Context, address string) (*model.UserSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[address]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSessionRepo) Touch(_ context.Context, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched++
	return nil
}

type memNonceStore struct {
	mu     sync.Mutex
	nonces map[string]string
}

func newMemNonceStore() *memNonceStore {
	return &memNonceStore{nonces: make(map[string]string)}
}

func (s *memNonceStore) Save(_ context.Context, address, nonce string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[address] = nonce
	return nil
}

func (s *memNonceStore) Take(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nonces[address]
	delete(s.nonces, address)
	return n, nil
}
