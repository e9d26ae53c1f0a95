package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rms-backend/internal/domain"
)

var refTime = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func tm(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 10, 0, 0, 0, time.UTC)
}

func completedOrder(id int64, client string, month time.Month, day int, grand, net int64) domain.JobOrder {
	done := tm(month, day)
	return domain.JobOrder{
		ID:          id,
		ClientName:  client,
		Status:      domain.StatusCompleted,
		GrandTotal:  dec(grand),
		NetSales:    dec(net),
		CreatedAt:   done.AddDate(0, 0, -3),
		CompletedAt: &done,
	}
}

func assertDec(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %d, got %s", want, got)
}

func TestMonthlyGrossSumsToTotalRevenue(t *testing.T) {
	orders := []domain.JobOrder{
		completedOrder(1, "alice", time.January, 10, 1200, 1000),
		completedOrder(2, "bob", time.April, 2, 800, 700),
		completedOrder(3, "carol", time.November, 28, 2500, 2100),
		{
			ID:          4,
			ClientName:  "dave",
			Status:      domain.StatusRepairing,
			GrandTotal:  dec(5000),
			Downpayment: dec(750),
			CreatedAt:   tm(time.July, 7),
		},
	}
	expenses := []domain.Expense{
		{ID: 1, BillName: "rent", Amount: dec(300), Date: tm(time.January, 5)},
		{ID: 2, BillName: "power", Amount: dec(150), Date: tm(time.August, 19)},
	}

	snap := Compute(orders, expenses, Options{Now: refTime})

	sum := decimal.Zero
	for _, m := range snap.Monthly {
		sum = sum.Add(m.Gross)
	}
	assert.True(t, sum.Equal(snap.Totals.Revenue), "monthly gross %s != total revenue %s", sum, snap.Totals.Revenue)
	assertDec(t, 1200+800+2500+750, snap.Totals.Revenue)

	expSum := decimal.Zero
	for _, m := range snap.Monthly {
		expSum = expSum.Add(m.Expenses)
	}
	assert.True(t, expSum.Equal(snap.Totals.Expenses))
}

func TestNonCompletedWithoutDownpaymentContributesNothing(t *testing.T) {
	orders := []domain.JobOrder{
		{
			ID:         1,
			ClientName: "alice",
			Status:     domain.StatusWaitingParts,
			GrandTotal: dec(9999),
			NetSales:   dec(9000),
			CreatedAt:  tm(time.May, 1),
		},
	}

	snap := Compute(orders, nil, Options{Now: refTime})

	assertDec(t, 0, snap.Totals.Revenue)
	assertDec(t, 0, snap.Totals.Net)
	for _, m := range snap.Monthly {
		assertDec(t, 0, m.Gross)
		assertDec(t, 0, m.Net)
	}
	for _, w := range snap.Weekly {
		assertDec(t, 0, w.Gross)
	}
	// The order still counts toward clients and status counts.
	assert.Equal(t, 1, snap.Totals.Clients)
	assert.Equal(t, 1, snap.StatusCounts[domain.StatusWaitingParts])
}

func TestUsedMaterialsReduceCompletedRevenue(t *testing.T) {
	o := completedOrder(1, "alice", time.February, 20, 500, 450)
	o.Materials = []domain.Material{
		{Material: "compressor", Quantity: 2, UnitPrice: dec(100), Used: true},
		{Material: "capacitor", Quantity: 1, UnitPrice: dec(50), Used: false},
	}

	snap := Compute([]domain.JobOrder{o}, nil, Options{Now: refTime})

	assertDec(t, 300, snap.Totals.Revenue)
	assertDec(t, 300, snap.Monthly[int(time.February)-1].Gross)
	assertDec(t, 250, snap.Totals.Net)
}

func TestCompletedOrderWithDownpaymentCountsOnce(t *testing.T) {
	o := completedOrder(1, "alice", time.March, 3, 1000, 900)
	o.Downpayment = dec(400)

	snap := Compute([]domain.JobOrder{o}, nil, Options{Now: refTime})

	// Adjusted grand total only; the downpayment is neither added on top nor
	// counted as a second contribution.
	assertDec(t, 1000, snap.Totals.Revenue)
	assertDec(t, 1000, snap.Monthly[int(time.March)-1].Gross)
	weekly := decimal.Zero
	for _, w := range snap.Weekly {
		weekly = weekly.Add(w.Gross)
	}
	assertDec(t, 1000, weekly)
}

func TestPeriodComparisonPercentage(t *testing.T) {
	assert.Equal(t, 0.0, pcp(dec(0), dec(0)))
	assert.Equal(t, 100.0, pcp(dec(50), dec(0)))
	assert.Equal(t, -20.0, pcp(dec(80), dec(100)))
	assert.Equal(t, 50.0, pcp(dec(150), dec(100)))
}

func TestPeriodChangeAgainstPreviousMonth(t *testing.T) {
	orders := []domain.JobOrder{
		completedOrder(1, "alice", time.May, 10, 1000, 1000),
		completedOrder(2, "bob", time.June, 5, 1500, 1500),
	}

	snap := Compute(orders, nil, Options{Now: refTime})

	assert.InDelta(t, 50.0, snap.Change.Revenue, 0.0001)
	assert.Equal(t, 0, snap.Change.Sales)
	assert.Equal(t, 0, snap.Change.Clients)
}

func TestPeriodChangeJanuaryRollsOverToPreviousDecember(t *testing.T) {
	decDone := time.Date(2023, time.December, 20, 0, 0, 0, 0, time.UTC)
	orders := []domain.JobOrder{
		{
			ID:          1,
			ClientName:  "alice",
			Status:      domain.StatusCompleted,
			GrandTotal:  dec(1000),
			NetSales:    dec(1000),
			CreatedAt:   decDone.AddDate(0, 0, -2),
			CompletedAt: &decDone,
		},
		{
			ID:          2,
			ClientName:  "bob",
			Status:      domain.StatusCompleted,
			GrandTotal:  dec(500),
			NetSales:    dec(500),
			CreatedAt:   time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC),
			CompletedAt: timePtr(time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)),
		},
	}

	snap := Compute(orders, nil, Options{Now: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)})

	assert.InDelta(t, -50.0, snap.Change.Revenue, 0.0001)
}

func TestWeeklyBucketsAreDisjointAndContiguous(t *testing.T) {
	snap := Compute(nil, nil, Options{Now: refTime})

	require.Len(t, snap.Weekly, 52)
	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	first := snap.Weekly[0]
	assert.Equal(t, time.Sunday, first.Start.Weekday())
	assert.False(t, first.Start.After(jan1), "first week must start on/before Jan 1")
	assert.True(t, first.End.After(jan1), "first week must contain Jan 1")

	for i, w := range snap.Weekly {
		assert.Equal(t, i+1, w.Week)
		assert.Equal(t, w.Start.AddDate(0, 0, 7), w.End, "week %d must be a 7-day stride", w.Week)
		if i > 0 {
			assert.Equal(t, snap.Weekly[i-1].End, w.Start, "week %d must begin where week %d ends", w.Week, w.Week-1)
		}
	}
}

func TestWeeklyRangeDropsWeeksOutsideWindow(t *testing.T) {
	rng := &DateRange{
		From: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	snap := Compute(nil, nil, Options{Now: refTime, Range: rng})

	require.NotEmpty(t, snap.Weekly)
	assert.Less(t, len(snap.Weekly), 52)
	for _, w := range snap.Weekly {
		overlaps := w.Start.Before(rng.To.AddDate(0, 0, 1)) && w.End.After(rng.From)
		assert.True(t, overlaps, "week %d (%s..%s) is wholly outside the range", w.Week, w.Start, w.End)
	}
}

func TestRangeFiltersTotals(t *testing.T) {
	orders := []domain.JobOrder{
		completedOrder(1, "alice", time.February, 10, 1000, 1000),
		completedOrder(2, "bob", time.September, 10, 2000, 2000),
	}
	rng := &DateRange{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}

	snap := Compute(orders, nil, Options{Now: refTime, Range: rng})

	assertDec(t, 1000, snap.Totals.Revenue)
	assert.Equal(t, 1, snap.Totals.Sales)
	assert.Equal(t, 1, snap.Totals.Clients)
}

func TestComputeIsIdempotent(t *testing.T) {
	orders := []domain.JobOrder{
		completedOrder(1, "alice", time.March, 15, 1000, 900),
		{
			ID:          2,
			ClientName:  "bob",
			Status:      domain.StatusForApproval,
			Downpayment: dec(250),
			CreatedAt:   tm(time.April, 4),
		},
	}
	expenses := []domain.Expense{
		{ID: 1, BillName: "rent", Amount: dec(300), Date: tm(time.March, 1)},
	}

	first := Compute(orders, expenses, Options{Now: refTime})
	second := Compute(orders, expenses, Options{Now: refTime})
	assert.Equal(t, first, second)
}

func TestSingleCompletedOrderScenario(t *testing.T) {
	done := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	orders := []domain.JobOrder{
		{
			ID:          1,
			ClientName:  "alice",
			Status:      domain.StatusCompleted,
			GrandTotal:  dec(1000),
			CreatedAt:   done.AddDate(0, 0, -5),
			CompletedAt: &done,
		},
	}

	snap := Compute(orders, nil, Options{Now: refTime})

	assertDec(t, 1000, snap.Totals.Revenue)
	assertDec(t, 1000, snap.Monthly[2].Gross) // March, 0-indexed
	for i, m := range snap.Monthly {
		if i == 2 {
			continue
		}
		assert.True(t, m.Gross.IsZero(), "month %s should be zero, got %s", m.Month, m.Gross)
	}
	// Missing net_sales is treated as zero, not as grand total.
	assertDec(t, 0, snap.Totals.Net)
	assert.Equal(t, 1, snap.Totals.Sales)
}

func TestAverageOrderValue(t *testing.T) {
	orders := []domain.JobOrder{
		completedOrder(1, "alice", time.May, 2, 1000, 900),
		completedOrder(2, "bob", time.May, 9, 500, 300),
	}

	snap := Compute(orders, nil, Options{Now: refTime})

	assertDec(t, 600, snap.Totals.AverageOrderValue)
	assertDec(t, 600, snap.Monthly[int(time.May)-1].AverageOrderValue)
}

func timePtr(t time.Time) *time.Time { return &t }
