package job

import (
	"Tipwall/internal/model"
	"Tipwall/internal/service"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeEngagement struct {
	service.EngagementService
	recomputed []uint64
	failOn     uint64
}

func (f *fakeEngagement) RecomputeStats(_ context.Context, id uint64) (*model.PostStats, error) {
	if id == f.failOn {
		return nil, errors.New("db down")
	}
	f.recomputed = append(f.recomputed, id)
	return &model.PostStats{ContentID: id}, nil
}

type fakeContent struct {
	service.ContentService
	synced []uint64
}

func (f *fakeContent) SyncReplyCount(_ context.Context, id uint64) error {
	f.synced = append(f.synced, id)
	return nil
}

func TestStatsSyncSkipsFailedPosts(t *testing.T) {
	eng := &fakeEngagement{failOn: 2}
	content := &fakeContent{}
	job := NewStatsSyncJob(eng, content)

	synced := job.sync(context.Background(), []uint64{1, 2, 3})
	assert.Equal(t, 2, synced)
	assert.Equal(t, []uint64{1, 3}, eng.recomputed)
	assert.Equal(t, []uint64{1, 3}, content.synced)
}

type memDirtySet struct {
	dirty      map[string]struct{}
	processing map[string]struct{}
	released   int
}

func (m *memDirtySet) Claim(_ context.Context) ([]string, error) {
	for id := range m.processing {
		m.dirty[id] = struct{}{}
	}
	m.processing = m.dirty
	m.dirty = map[string]struct{}{}
	ids := make([]string, 0, len(m.processing))
	for id := range m.processing {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memDirtySet) Release(_ context.Context) error {
	m.processing = map[string]struct{}{}
	m.released++
	return nil
}

func TestStatsSyncPicksUpInterruptedRun(t *testing.T) {
	eng := &fakeEngagement{}
	content := &fakeContent{}
	job := NewStatsSyncJob(eng, content)
	set := &memDirtySet{
		dirty:      map[string]struct{}{"3": {}},
		processing: map[string]struct{}{"1": {}, "2": {}},
	}
	job.dirty = set

	job.Run()

	assert.ElementsMatch(t, []uint64{1, 2, 3}, eng.recomputed)
	assert.ElementsMatch(t, []uint64{1, 2, 3}, content.synced)
	assert.Equal(t, 1, set.released)
	assert.Empty(t, set.processing)
}

func TestStatsSyncNothingClaimed(t *testing.T) {
	eng := &fakeEngagement{}
	job := NewStatsSyncJob(eng, &fakeContent{})
	set := &memDirtySet{dirty: map[string]struct{}{}, processing: map[string]struct{}{}}
	job.dirty = set

	job.Run()

	assert.Empty(t, eng.recomputed)
	assert.Equal(t, 0, set.released)
}
