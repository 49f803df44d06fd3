package util

import (
	"fmt"
	"strconv"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
	timeLayout      = "2006-01-02 15:04:05"
)

// NormalizePage 页码从 0 开始，返回 limit 和 offset
func NormalizePage(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageSize, page * pageSize
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// StrSliceToUint64Slice 任一元素非法时返回错误
func StrSliceToUint64Slice(in []string) ([]uint64, error) {
	out := make([]uint64, 0, len(in))
	for _, s := range in {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}
