package encrypt

import (
	"Tipwall/internal/api/config"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelayer(t *testing.T, st Status) (*RelayerClient, *int) {
	t.Helper()
	encryptCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/status":
			_ = json.NewEncoder(w).Encode(st)
		case "/v1/encrypt":
			encryptCalls++
			var req encryptReq
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(EncryptedValue{Handle: "0x" + req.Type, Proof: "0x01"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return NewRelayerClient(config.EncryptionConfig{URL: srv.URL, TimeoutSeconds: 5}), &encryptCalls
}

func TestEncryptNumberReady(t *testing.T) {
	c, calls := newRelayer(t, Status{NetworkReady: true, Initialized: true})

	v, err := c.EncryptNumber(context.Background(), 7, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "0xuint64", v.Handle)
	assert.Equal(t, 1, *calls)
}

func TestEncryptFailsWhenNotInitialized(t *testing.T) {
	c, calls := newRelayer(t, Status{NetworkReady: true, Initialized: false})

	_, err := c.EncryptAddress(context.Background(), "0xabc", "0xabc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.Contains(t, err.Error(), "not initialized")
	assert.Equal(t, 0, *calls)
}

func TestEncryptFailsOnWrongNetwork(t *testing.T) {
	c, _ := newRelayer(t, Status{NetworkReady: false, Initialized: true})

	_, err := c.EncryptNumber(context.Background(), 1, "0xabc")
	var nre *NotReadyError
	require.True(t, errors.As(err, &nre))
	assert.Contains(t, nre.Reason, "network")
}
