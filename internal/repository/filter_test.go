package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shivanand-hulikatti/event-booking/internal/model"
)

func TestBuildEventFilter_Empty(t *testing.T) {
	where, args := buildEventFilter(model.EventFilter{Query: "   "})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildEventFilter_CombinesWithAnd(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)
	minP, maxP := 50.0, 100.0

	where, args := buildEventFilter(model.EventFilter{
		Category: "Music",
		Tag:      "jazz",
		DateFrom: &from,
		DateTo:   &to,
		MinPrice: &minP,
		MaxPrice: &maxP,
	})

	assert.True(t, strings.HasPrefix(where, " WHERE "))
	assert.Equal(t, 5, strings.Count(where, " AND "), "six criteria joined by AND")
	assert.NotContains(t, where, ") OR (")
	assert.Contains(t, where, "event_date >= $3")
	assert.Contains(t, where, "event_date <= $4")
	assert.Contains(t, where, "price >= $5")
	assert.Contains(t, where, "price <= $6")
	assert.Equal(t, []any{"Music", "jazz", from, to, 50.0, 100.0}, args)
}

func TestBuildEventFilter_QueryEscapesWildcards(t *testing.T) {
	where, args := buildEventFilter(model.EventFilter{Query: `50%_off\`})

	assert.Contains(t, where, "title_ar ILIKE $1")
	assert.Contains(t, where, "jsonb_array_elements(tags)")
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestBuildEventFilter_ReusesPlaceholder(t *testing.T) {
	where, args := buildEventFilter(model.EventFilter{Query: "rock", Category: "عام"})

	assert.Len(t, args, 2)
	assert.Equal(t, 8, strings.Count(where, "$1"), "q is matched against eight columns")
	assert.Contains(t, where, "lower(category_ar) = lower($2)")
}
