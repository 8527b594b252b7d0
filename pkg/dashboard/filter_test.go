package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minetrack/minetrack-backend-go/pkg/client"
)

func TestMatchTextTermsInAnyOrder(t *testing.T) {
	fields := []string{"Karimov Aziz Bakhtiyorovich", "1042"}

	assert.True(t, Filter{Query: "aziz karimov"}.MatchText(fields...))
	assert.True(t, Filter{Query: "karimov aziz"}.MatchText(fields...))
	assert.True(t, Filter{Query: "KARIMOV 1042"}.MatchText(fields...))
	assert.True(t, Filter{Query: "  aziz   "}.MatchText(fields...))
	assert.True(t, Filter{Query: ""}.MatchText(fields...))

	assert.False(t, Filter{Query: "aziz tosheva"}.MatchText(fields...))
	assert.False(t, Filter{Query: "1043"}.MatchText(fields...))
}

func TestMatchTextIdempotent(t *testing.T) {
	f := Filter{Query: "karimov 1042"}
	first := f.MatchText("Karimov Aziz", "1042")
	assert.Equal(t, first, f.MatchText("Karimov Aziz", "1042"))
}

func TestMatchTimeInclusiveBounds(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)

	inside := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, Filter{From: &from, To: &to}.MatchTime(&inside))

	// Bounds themselves match.
	assert.True(t, Filter{From: &from, To: &to}.MatchTime(&from))
	assert.True(t, Filter{From: &from, To: &to}.MatchTime(&to))

	before := from.Add(-time.Second)
	after := to.Add(time.Second)
	assert.False(t, Filter{From: &from, To: &to}.MatchTime(&before))
	assert.False(t, Filter{From: &from, To: &to}.MatchTime(&after))

	// Open ends.
	assert.True(t, Filter{From: &from}.MatchTime(&after))
	assert.True(t, Filter{To: &to}.MatchTime(&before))

	// A row without a timestamp only matches an unbounded filter.
	assert.True(t, Filter{}.MatchTime(nil))
	assert.False(t, Filter{From: &from}.MatchTime(nil))
}

func TestFilterRowsPreservesOrder(t *testing.T) {
	rows := []client.DailySummaryRow{
		{EmployeeNo: "1042", FullName: "Karimov Aziz"},
		{EmployeeNo: "1043", FullName: "Rashidova Nilufar"},
		{EmployeeNo: "1044", FullName: "Karimova Dilnoza"},
	}
	got := FilterRows(rows, Filter{Query: "karimov"})

	assert.Len(t, got, 2)
	assert.Equal(t, "1042", got[0].EmployeeNo)
	assert.Equal(t, "1044", got[1].EmployeeNo)
}

func TestPagerResetsOnFilterChange(t *testing.T) {
	p := &Pager{PerPage: 10}

	p.Apply(Filter{Query: "karimov"})
	p.SetPage(3)
	assert.Equal(t, 3, p.Apply(Filter{Query: "karimov"}))

	// Equivalent queries (whitespace, case) are not a change.
	assert.Equal(t, 3, p.Apply(Filter{Query: "  KARIMOV "}))

	// A real change goes back to the first page.
	assert.Equal(t, 0, p.Apply(Filter{Query: "rashidova"}))
}

func TestPagerBounds(t *testing.T) {
	p := &Pager{PerPage: 10}

	assert.Equal(t, 1, p.PageCount(0))
	assert.Equal(t, 3, p.PageCount(25))

	p.SetPage(2)
	lo, hi := p.Bounds(25)
	assert.Equal(t, 20, lo)
	assert.Equal(t, 25, hi)

	// Page beyond the end clamps to the last page.
	p.SetPage(9)
	lo, hi = p.Bounds(25)
	assert.Equal(t, 20, lo)
	assert.Equal(t, 25, hi)
	assert.Equal(t, 2, p.Page())
}
