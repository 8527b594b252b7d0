package dashboard

import (
	"strings"
	"time"

	"github.com/minetrack/minetrack-backend-go/pkg/client"
)

// Filter is the in-memory predicate the tables apply on top of whatever the
// backend returned. Pure: no network, no mutation of the rows.
type Filter struct {
	// Query is free text, whitespace-tokenized. Every term must appear
	// somewhere in the row's searchable fields; term order is irrelevant.
	Query string
	// From/To bound the row's activity timestamp, inclusive. Either may be
	// nil for an open end.
	From *time.Time
	To   *time.Time
}

// MatchText reports whether every query term is a substring of the
// concatenated fields, case-insensitively. An empty query matches all.
func (f Filter) MatchText(fields ...string) bool {
	terms := strings.Fields(strings.ToLower(f.Query))
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(strings.Join(fields, " "))
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// MatchTime checks the inclusive date bounds. A row without a timestamp
// passes only when no bound is set.
func (f Filter) MatchTime(ts *time.Time) bool {
	if f.From == nil && f.To == nil {
		return true
	}
	if ts == nil {
		return false
	}
	if f.From != nil && ts.Before(*f.From) {
		return false
	}
	if f.To != nil && ts.After(*f.To) {
		return false
	}
	return true
}

// MatchRow applies both predicates to an attendance row: free text over full
// name and employee number, date bounds over the latest activity.
func (f Filter) MatchRow(row client.DailySummaryRow) bool {
	return f.MatchText(row.FullName, row.EmployeeNo) && f.MatchTime(activityTime(row))
}

// FilterRows returns the rows matching f, preserving order.
func FilterRows(rows []client.DailySummaryRow, f Filter) []client.DailySummaryRow {
	out := make([]client.DailySummaryRow, 0, len(rows))
	for _, row := range rows {
		if f.MatchRow(row) {
			out = append(out, row)
		}
	}
	return out
}

// key is a canonical form of the filter for change detection: tokenized
// query (so extra whitespace is not a change) plus the bounds.
func (f Filter) key() string {
	var b strings.Builder
	b.WriteString(strings.Join(strings.Fields(strings.ToLower(f.Query)), " "))
	if f.From != nil {
		b.WriteString("|" + f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		b.WriteString("|" + f.To.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// Pager tracks the current page and resets to the first page whenever the
// filter changes, so a narrowed result set is never shown from a page that
// no longer exists.
type Pager struct {
	PerPage int

	page int
	key  string
}

// Apply records the active filter and returns the current page, resetting
// to the first page when the filter changed since the last call.
func (p *Pager) Apply(f Filter) int {
	if k := f.key(); k != p.key {
		p.key = k
		p.page = 0
	}
	return p.page
}

func (p *Pager) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	p.page = page
}

func (p *Pager) Page() int { return p.page }

// PageCount for a total row count; at least 1 so an empty table still has a
// current page.
func (p *Pager) PageCount(total int) int {
	if p.PerPage <= 0 || total <= 0 {
		return 1
	}
	n := (total + p.PerPage - 1) / p.PerPage
	if n < 1 {
		n = 1
	}
	return n
}

// Bounds returns the [lo, hi) slice offsets of the current page, clamped to
// total. The page itself is clamped into range first.
func (p *Pager) Bounds(total int) (int, int) {
	if p.PerPage <= 0 {
		return 0, total
	}
	if max := p.PageCount(total) - 1; p.page > max {
		p.page = max
	}
	lo := p.page * p.PerPage
	if lo > total {
		lo = total
	}
	hi := lo + p.PerPage
	if hi > total {
		hi = total
	}
	return lo, hi
}
