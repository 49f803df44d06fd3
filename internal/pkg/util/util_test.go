package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Visibility string `validate:"oneof=Public Tippable"`
}

func TestValidateDTO(t *testing.T) {
	assert.NoError(t, ValidateDTO(&sample{Visibility: "Public"}))

	err := ValidateDTO(&sample{Visibility: "Hidden"})
	assert.EqualError(t, err, "字段 [Visibility] 校验失败，规则 [oneof]")
}

func TestNormalizePage(t *testing.T) {
	limit, offset := NormalizePage(-1, 0)
	assert.Equal(t, DefaultPageSize, limit)
	assert.Equal(t, 0, offset)

	limit, offset = NormalizePage(2, 500)
	assert.Equal(t, MaxPageSize, limit)
	assert.Equal(t, 100, offset)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", FormatTime(time.Time{}))
	assert.Equal(t, "2026-01-02 03:04:05", FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestStrSliceToUint64Slice(t *testing.T) {
	ids, err := StrSliceToUint64Slice([]string{"1", "42"})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 42}, ids)

	_, err = StrSliceToUint64Slice([]string{"1", "x"})
	assert.Error(t, err)
}
