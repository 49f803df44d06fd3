package handler

import (
	"Tipwall/internal/api/dto"
	"Tipwall/internal/model"
	"Tipwall/internal/pkg/consts"
	"Tipwall/internal/service"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubContentService struct {
	service.ContentService
	gotAuthor *service.Viewer
}

func (s *stubContentService) CreatePost(ctx context.Context, author *service.Viewer, req *dto.CreatePostReq, progress service.ProgressFunc) (*dto.CreateResultDTO, error) {
	s.gotAuthor = author
	progress(service.StageContentEncryption, service.StageStarted, nil)
	progress(service.StageContentEncryption, service.StageDone, nil)
	return &dto.CreateResultDTO{LedgerID: 7, TxHash: "0xabc"}, nil
}

type stubVisibilityService struct {
	service.VisibilityService
}

func (stubVisibilityService) GetVisibility(ctx context.Context, contentID, replyID uint64) (*service.VisibilityResult, error) {
	return &service.VisibilityResult{
		Visibility: model.VisibilityTippable,
		EventType:  model.EventCreated,
	}, assert.AnError
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) dto.Response {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func withViewer(viewer *service.Viewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(consts.CtxViewer, viewer)
		c.Next()
	}
}

func TestCreatePostReturnsStages(t *testing.T) {
	svc := &stubContentService{}
	h := NewContentHandler(svc, nil)
	viewer := &service.Viewer{Address: "0x111", IdentityToken: "tok"}
	r := gin.New()
	r.POST("/posts", withViewer(viewer), h.CreatePost)

	resp := do(t, r, http.MethodPost, "/posts", dto.CreatePostReq{Content: "hi", Visibility: "Public"})
	require.Equal(t, 200, resp.Code)
	assert.Same(t, viewer, svc.gotAuthor)

	data, _ := json.Marshal(resp.Data)
	var result dto.CreateResultDTO
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, uint64(7), result.LedgerID)
	require.Len(t, result.Stages, 2)
	assert.Equal(t, string(service.StageDone), result.Stages[1].Status)
}

func TestCreatePostRejectsBadVisibility(t *testing.T) {
	h := NewContentHandler(&stubContentService{}, nil)
	r := gin.New()
	r.POST("/posts", h.CreatePost)

	resp := do(t, r, http.MethodPost, "/posts", dto.CreatePostReq{Content: "hi", Visibility: "Secret"})
	assert.Equal(t, 400, resp.Code)
}

func TestVoteRequiresWallet(t *testing.T) {
	h := NewEngagementHandler(nil)
	r := gin.New()
	r.POST("/vote", h.Vote)

	resp := do(t, r, http.MethodPost, "/vote", dto.VoteReq{ContentID: 1, Type: "upvote"})
	assert.Equal(t, service.Unauthorized, resp.Code)
}

func TestGetVisibilityFailsClosedOnStoreError(t *testing.T) {
	h := NewVisibilityHandler(stubVisibilityService{}, nil, nil)
	r := gin.New()
	r.GET("/visibility", h.GetVisibility)

	resp := do(t, r, http.MethodGet, "/visibility?content_id=9", nil)
	require.Equal(t, 200, resp.Code)
	data, _ := json.Marshal(resp.Data)
	var out dto.VisibilityDTO
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Tippable", out.Visibility)
	assert.False(t, out.Found)
}

func TestWsStreamsChangesForContent(t *testing.T) {
	bus := service.NewVisibilityBus(service.NewVisibilityCache(time.Minute))
	r := gin.New()
	r.GET("/ws", NewWsHandler(bus).Connect)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?content_id=5"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return bus.SubscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	bus.Publish(ctx, service.VisibilityChange{ContentID: 4, Visibility: model.VisibilityPublic, EventType: model.EventUpdated})
	bus.Publish(ctx, service.VisibilityChange{ContentID: 5, Visibility: model.VisibilityPublic, EventType: model.EventUnlocked, Actor: "0x222"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var change service.VisibilityChange
	require.NoError(t, json.Unmarshal(payload, &change))
	assert.Equal(t, uint64(5), change.ContentID)
	assert.Equal(t, model.EventUnlocked, change.EventType)

	_ = conn.Close()
	require.Eventually(t, func() bool { return bus.SubscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}
