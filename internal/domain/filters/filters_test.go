package filters

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 1, 12},
		{"explicit", "3", "5", 3, 5},
		{"not numeric", "abc", "x", 1, 12},
		{"zero and negative", "0", "-4", 1, 12},
		{"limit clamped", "1", "1000000000000000", 1, MaxLimit},
		{"limit beyond int range", "1", "99999999999999999999999", 1, 12},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := MovieQuery{RawPage: tc.page, RawLimit: tc.limit}
			q.Normalize()
			assert.Equal(t, tc.wantPage, q.Page)
			assert.Equal(t, tc.wantLimit, q.Limit)
		})
	}
}

func TestNormalizeDropsBlankGenres(t *testing.T) {
	q := MovieQuery{Genres: []string{"Adventure", " ", "", "Animation"}}
	q.Normalize()
	assert.Equal(t, []string{"Adventure", "Animation"}, q.Genres)
}

func TestSort(t *testing.T) {
	q := MovieQuery{}
	assert.Equal(t, SortByTitle, q.SortColumn())
	assert.Equal(t, AscSort, q.SortDirection())

	q.Sort = Sort{Type: "Budget", Descending: "true"}
	assert.Equal(t, SortByBudget, q.SortColumn())
	assert.Equal(t, DescSort, q.SortDirection())

	q.Sort = Sort{Type: "duration", Descending: "yes"}
	assert.Equal(t, AscSort, q.SortDirection())

	q.Sort = Sort{Type: "release_date", Descending: "true"}
	assert.Equal(t, SortByTitle, q.SortColumn())
	assert.Equal(t, AscSort, q.SortDirection())
}

func TestPagination(t *testing.T) {
	q := MovieQuery{RawPage: "3", RawLimit: "12"}
	q.Normalize()
	assert.Equal(t, 24, q.Offset())
	assert.Equal(t, 0, q.TotalPages(0))
	assert.Equal(t, 1, q.TotalPages(12))
	assert.Equal(t, 2, q.TotalPages(13))
}

func TestOffsetSaturates(t *testing.T) {
	q := MovieQuery{RawPage: strconv.Itoa(math.MaxInt), RawLimit: "2"}
	q.Normalize()
	assert.Equal(t, math.MaxInt, q.Page)
	assert.Equal(t, math.MaxInt, q.Offset())

	q = MovieQuery{Page: 0, Limit: 12}
	assert.Equal(t, 0, q.Offset())
}

func TestRangeContains(t *testing.T) {
	gt, lt := 90.0, 120.0
	r := Range{Gt: &gt, Lt: &lt}
	assert.True(t, r.IsSet())
	assert.True(t, r.Contains(100))
	assert.False(t, r.Contains(90))
	assert.False(t, r.Contains(120))
	assert.True(t, Range{}.Contains(5))
	assert.True(t, Range{Gt: &gt}.Contains(1000))
}
