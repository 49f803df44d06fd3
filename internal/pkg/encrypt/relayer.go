package encrypt

import (
	"Tipwall/internal/api/config"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

type encryptReq struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	User  string `json:"user"`
}

// RelayerClient 通过 HTTP 调用 relayer 完成同态加密输入
type RelayerClient struct {
	http *resty.Client
}

func NewRelayerClient(cfg config.EncryptionConfig) *RelayerClient {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second).
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.ApiKey != "" {
		client.SetHeader("X-Api-Key", cfg.ApiKey)
	}
	return &RelayerClient{http: client}
}

func (c *RelayerClient) Status(ctx context.Context) (*Status, error) {
	var st Status
	resp, err := c.http.R().SetContext(ctx).SetResult(&st).Get("/v1/status")
	if err != nil {
		return nil, fmt.Errorf("relayer status: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("relayer status: http %d", resp.StatusCode())
	}
	return &st, nil
}

func (c *RelayerClient) EncryptNumber(ctx context.Context, value uint64, viewer string) (*EncryptedValue, error) {
	return c.encrypt(ctx, encryptReq{Type: "uint64", Value: strconv.FormatUint(value, 10), User: viewer})
}

func (c *RelayerClient) EncryptAddress(ctx context.Context, identity string, viewer string) (*EncryptedValue, error) {
	return c.encrypt(ctx, encryptReq{Type: "address", Value: identity, User: viewer})
}

func (c *RelayerClient) encrypt(ctx context.Context, req encryptReq) (*EncryptedValue, error) {
	if err := c.ensureReady(ctx); err != nil {
		return nil, err
	}

	var out EncryptedValue
	resp, err := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out).Post("/v1/encrypt")
	if err != nil {
		return nil, fmt.Errorf("encrypt %s: %w", req.Type, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("encrypt %s: http %d: %s", req.Type, resp.StatusCode(), resp.String())
	}
	if out.Handle == "" {
		return nil, fmt.Errorf("encrypt %s: empty handle", req.Type)
	}
	return &out, nil
}

func (c *RelayerClient) ensureReady(ctx context.Context) error {
	st, err := c.Status(ctx)
	if err != nil {
		return &NotReadyError{Reason: err.Error()}
	}
	if !st.NetworkReady {
		return &NotReadyError{Reason: "wrong or unreachable network"}
	}
	if !st.Initialized {
		return &NotReadyError{Reason: "encryption instance not initialized"}
	}
	return nil
}
