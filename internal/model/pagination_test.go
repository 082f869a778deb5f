package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        PageRequest
	}{
		{"defaults", 0, 0, PageRequest{Page: 1, Limit: 10}},
		{"negative page", -3, 5, PageRequest{Page: 1, Limit: 5}},
		{"limit clamped", 2, 500, PageRequest{Page: 2, Limit: 50}},
		{"limit lower bound", 1, -1, PageRequest{Page: 1, Limit: 10}},
		{"unchanged", 3, 25, PageRequest{Page: 3, Limit: 25}},
		{"page clamped", math.MaxInt, 50, PageRequest{Page: MaxPage, Limit: 50}},
		{"last page kept", MaxPage, 50, PageRequest{Page: MaxPage, Limit: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPageRequest(tt.page, tt.limit))
		})
	}
}

func TestParsePageRequest(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Limit: 10}, ParsePageRequest("", ""))
	assert.Equal(t, PageRequest{Page: 1, Limit: 10}, ParsePageRequest("abc", "1.5"))
	assert.Equal(t, PageRequest{Page: 4, Limit: 50}, ParsePageRequest("4", "99"))
	assert.Equal(t, PageRequest{Page: MaxPage, Limit: 50}, ParsePageRequest("9223372036854775807", "50"))
}

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, NewPageRequest(1, 10).Offset())
	assert.Equal(t, 20, NewPageRequest(3, 10).Offset())

	for _, page := range []string{"9223372036854775807", "2147483647", "42949673"} {
		off := ParsePageRequest(page, "50").Offset()
		assert.GreaterOrEqual(t, off, 0, page)
		assert.LessOrEqual(t, off, math.MaxInt32, page)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2}, NewPageRequest(1, 2), 5)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3}, p.Pagination)

	empty := NewPage[int](nil, NewPageRequest(1, 10), 0)
	assert.Equal(t, 0, empty.Pagination.TotalPages)

	body, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"pagination":{"page":1,"limit":10,"total":0,"totalPages":0}}`, string(body))
}
