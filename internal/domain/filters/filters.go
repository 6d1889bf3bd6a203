package filters

import (
	"math"
	"strconv"
	"strings"
)

const (
	AscSort  = "ASC"
	DescSort = "DESC"

	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 1000
)

const (
	SortByTitle    = "title"
	SortByDuration = "duration"
	SortByBudget   = "budget"
)

var SortSafelist = []string{SortByTitle, SortByDuration, SortByBudget}

// Range is an exclusive numeric interval. A nil bound is open.
type Range struct {
	Gt *float64 `schema:"gt"`
	Lt *float64 `schema:"lt"`
}

func (r Range) IsSet() bool {
	return r.Gt != nil || r.Lt != nil
}

// Contains reports whether v lies strictly inside the range.
func (r Range) Contains(v float64) bool {
	if r.Gt != nil && !(v > *r.Gt) {
		return false
	}
	if r.Lt != nil && !(v < *r.Lt) {
		return false
	}
	return true
}

type Sort struct {
	Type       string `schema:"type"`
	Descending string `schema:"descending"`
}

// MovieQuery describes one page of a filtered, sorted movie listing.
// Page and Limit are kept as raw strings until Normalize so that garbage
// input falls back to defaults instead of failing the request.
type MovieQuery struct {
	Q        string   `schema:"q"`
	Genres   []string `schema:"genre"`
	Duration Range    `schema:"duration"`
	Budget   Range    `schema:"budget"`
	Sort     Sort     `schema:"sort"`
	RawPage  string   `schema:"page"`
	RawLimit string   `schema:"limit"`

	Page  int `schema:"-"`
	Limit int `schema:"-"`
}

func (q *MovieQuery) Normalize() {
	q.Page = parsePositive(q.RawPage, DefaultPage)
	q.Limit = min(parsePositive(q.RawLimit, DefaultLimit), MaxLimit)
	genres := q.Genres[:0]
	for _, g := range q.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	q.Genres = genres
}

func parsePositive(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (q *MovieQuery) SortColumn() string {
	for _, safeValue := range SortSafelist {
		if strings.EqualFold(q.Sort.Type, safeValue) {
			return safeValue
		}
	}
	return SortByTitle
}

// IsDescending is true only when a known sort column was requested with descending=true.
func (q *MovieQuery) IsDescending() bool {
	if q.SortColumn() != strings.ToLower(q.Sort.Type) {
		return false
	}
	return q.Sort.Descending == "true"
}

func (q *MovieQuery) SortDirection() string {
	if q.IsDescending() {
		return DescSort
	}
	return AscSort
}

// Offset saturates at math.MaxInt instead of overflowing on huge page numbers.
func (q *MovieQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

func (q *MovieQuery) TotalPages(count int) int {
	return int(math.Ceil(float64(count) / float64(q.Limit)))
}
