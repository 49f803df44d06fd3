package kafka

import (
	"strconv"
	"strings"
	"time"
)

// Canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

const canalTimeLayout = "2006-01-02 15:04:05"

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据
	Old []map[string]interface{} `json:"old"`
}

// StrToUint64 canal 的列值一律是字符串，解析失败返回 0
func StrToUint64(v interface{}) uint64 {
	switch val := v.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0
		}
		return n
	case float64:
		return uint64(val)
	case nil:
		return 0
	}
	return 0
}

func Str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ParseCanalTime 解析 datetime 列，失败时退回到消息时间戳
func ParseCanalTime(v interface{}, fallbackMillis int64) time.Time {
	s := Str(v)
	if len(s) >= len(canalTimeLayout) {
		if t, err := time.ParseInLocation(canalTimeLayout, s[:len(canalTimeLayout)], time.Local); err == nil {
			return t
		}
	}
	if fallbackMillis > 0 {
		return time.UnixMilli(fallbackMillis)
	}
	return time.Now()
}
