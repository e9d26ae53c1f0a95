package metrics

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"rms-backend/internal/domain"
)

// DateRange bounds a computation to [From, To]. A zero From or To leaves that
// side unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Options tunes a Compute call. Now is the reference time used to pick the
// calendar year and the current month for period comparisons; a zero Now
// means time.Now(). Range optionally restricts totals and weekly buckets.
type Options struct {
	Range *DateRange
	Now   time.Time
}

// Totals are the headline figures across the whole (range-filtered) input.
type Totals struct {
	Revenue           decimal.Decimal
	Net               decimal.Decimal
	Expenses          decimal.Decimal
	Profit            decimal.Decimal
	Sales             int
	Clients           int
	AverageOrderValue decimal.Decimal
}

// MonthBucket is one calendar month of the reference year.
type MonthBucket struct {
	Month             time.Month
	Gross             decimal.Decimal
	Net               decimal.Decimal
	Expenses          decimal.Decimal
	Profit            decimal.Decimal
	Sales             int
	Clients           int
	AverageOrderValue decimal.Decimal
}

// WeekBucket is one 7-day stride of the reference year's week grid.
// Start is inclusive, End exclusive.
type WeekBucket struct {
	Week     int
	Start    time.Time
	End      time.Time
	Gross    decimal.Decimal
	Net      decimal.Decimal
	Expenses decimal.Decimal
	Profit   decimal.Decimal
	Sales    int
}

// Deltas compares the current calendar month against the one before it.
// Monetary figures are percentage changes; Sales and Clients are absolute
// differences.
type Deltas struct {
	Revenue           float64
	Net               float64
	Expenses          float64
	Profit            float64
	AverageOrderValue float64
	Sales             int
	Clients           int
}

// Snapshot is the aggregator output consumed by the dashboard, the report
// exporter and the daily snapshot worker.
type Snapshot struct {
	Totals       Totals
	Monthly      [12]MonthBucket
	Weekly       []WeekBucket
	Change       Deltas
	StatusCounts map[domain.JobOrderStatus]int
}

// weeksPerYear is the fixed number of 7-day strides walked from the Sunday
// on or before January 1.
const weeksPerYear = 52

// contribution is the revenue a single order carries, pre-resolved to its
// attribution date.
type contribution struct {
	at        time.Time
	gross     decimal.Decimal
	net       decimal.Decimal
	completed bool
	client    string
}

// Compute aggregates job orders and expenses into a metrics snapshot. It is
// pure: no I/O, no retained state, and identical inputs always produce an
// identical snapshot. Monetary zero values stand in for absent figures.
func Compute(orders []domain.JobOrder, expenses []domain.Expense, opts Options) Snapshot {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	year := now.Year()

	contribs := make([]contribution, 0, len(orders))
	for _, o := range orders {
		if c, ok := contributionOf(o); ok {
			contribs = append(contribs, c)
		}
	}

	snap := Snapshot{
		Totals:       computeTotals(orders, contribs, expenses, opts.Range),
		StatusCounts: statusCounts(orders),
	}
	for i := 0; i < 12; i++ {
		month := time.Month(i + 1)
		snap.Monthly[i] = monthBucket(contribs, expenses, year, month)
	}
	snap.Weekly = weeklyBuckets(contribs, expenses, year, opts.Range)
	snap.Change = periodChange(contribs, expenses, year, now.Month())
	return snap
}

// contributionOf resolves the revenue attribution rule for one order:
// a Completed order counts its adjusted totals at its completion date; a
// non-completed order counts its downpayment at its creation date; anything
// else contributes nothing. A Completed order that also carries a downpayment
// counts exactly once, at its adjusted totals.
func contributionOf(o domain.JobOrder) (contribution, bool) {
	switch {
	case o.Status == domain.StatusCompleted:
		at := o.CreatedAt
		if o.CompletedAt != nil {
			at = *o.CompletedAt
		}
		used := o.UsedMaterialValue()
		return contribution{
			at:        at,
			gross:     o.GrandTotal.Sub(used),
			net:       o.NetSales.Sub(used),
			completed: true,
			client:    clientKey(o),
		}, true
	case o.Downpayment.IsPositive():
		return contribution{
			at:     o.CreatedAt,
			gross:  o.Downpayment,
			net:    o.Downpayment,
			client: clientKey(o),
		}, true
	default:
		return contribution{}, false
	}
}

func clientKey(o domain.JobOrder) string {
	if o.ClientName != "" {
		return o.ClientName
	}
	if o.ClientID != nil {
		return "#" + strconv.FormatInt(*o.ClientID, 10)
	}
	return "#order-" + strconv.FormatInt(o.ID, 10)
}

func computeTotals(orders []domain.JobOrder, contribs []contribution, expenses []domain.Expense, rng *DateRange) Totals {
	t := Totals{
		Revenue:           decimal.Zero,
		Net:               decimal.Zero,
		Expenses:          decimal.Zero,
		Profit:            decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	for _, c := range contribs {
		if rng != nil && !rng.contains(c.at) {
			continue
		}
		t.Revenue = t.Revenue.Add(c.gross)
		t.Net = t.Net.Add(c.net)
		if c.completed {
			t.Sales++
		}
	}

	for _, e := range expenses {
		if rng != nil && !rng.contains(e.Date) {
			continue
		}
		t.Expenses = t.Expenses.Add(e.Amount)
	}

	// Every order counts toward the client set, revenue-bearing or not.
	clients := make(map[string]struct{})
	for _, o := range orders {
		if rng != nil && !rng.contains(o.CreatedAt) {
			continue
		}
		clients[clientKey(o)] = struct{}{}
	}
	t.Clients = len(clients)

	t.Profit = t.Net.Sub(t.Expenses)
	if t.Sales > 0 {
		t.AverageOrderValue = t.Net.Div(decimal.NewFromInt(int64(t.Sales)))
	}
	return t
}

func statusCounts(orders []domain.JobOrder) map[domain.JobOrderStatus]int {
	counts := make(map[domain.JobOrderStatus]int, len(domain.JobOrderStatuses))
	for _, s := range domain.JobOrderStatuses {
		counts[s] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

// periodStats are the rollups for one arbitrary month window, shared by the
// monthly breakdown and the period-over-period comparison.
type periodStats struct {
	gross    decimal.Decimal
	net      decimal.Decimal
	expenses decimal.Decimal
	sales    int
	clients  int
}

func monthStats(contribs []contribution, expenses []domain.Expense, year int, month time.Month) periodStats {
	s := periodStats{gross: decimal.Zero, net: decimal.Zero, expenses: decimal.Zero}
	clients := make(map[string]struct{})
	for _, c := range contribs {
		if c.at.Year() != year || c.at.Month() != month {
			continue
		}
		s.gross = s.gross.Add(c.gross)
		s.net = s.net.Add(c.net)
		if c.completed {
			s.sales++
		}
		clients[c.client] = struct{}{}
	}
	for _, e := range expenses {
		if e.Date.Year() != year || e.Date.Month() != month {
			continue
		}
		s.expenses = s.expenses.Add(e.Amount)
	}
	s.clients = len(clients)
	return s
}

func monthBucket(contribs []contribution, expenses []domain.Expense, year int, month time.Month) MonthBucket {
	s := monthStats(contribs, expenses, year, month)
	b := MonthBucket{
		Month:             month,
		Gross:             s.gross,
		Net:               s.net,
		Expenses:          s.expenses,
		Profit:            s.net.Sub(s.expenses),
		Sales:             s.sales,
		Clients:           s.clients,
		AverageOrderValue: decimal.Zero,
	}
	if s.sales > 0 {
		b.AverageOrderValue = s.net.Div(decimal.NewFromInt(int64(s.sales)))
	}
	return b
}

// weekAnchor returns the Sunday on or before January 1 of the given year.
func weekAnchor(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return jan1.AddDate(0, 0, -int(jan1.Weekday()))
}

// weeklyBuckets walks the year in fixed 7-day strides from the week anchor,
// ignoring month boundaries. A week wholly outside rng is dropped.
func weeklyBuckets(contribs []contribution, expenses []domain.Expense, year int, rng *DateRange) []WeekBucket {
	anchor := weekAnchor(year)
	buckets := make([]WeekBucket, 0, weeksPerYear)

	for week := 0; week < weeksPerYear; week++ {
		start := anchor.AddDate(0, 0, week*7)
		end := start.AddDate(0, 0, 7)
		if rng != nil && (!rng.To.IsZero() && start.After(rng.To) || !rng.From.IsZero() && !end.After(rng.From)) {
			continue
		}

		b := WeekBucket{
			Week:     week + 1,
			Start:    start,
			End:      end,
			Gross:    decimal.Zero,
			Net:      decimal.Zero,
			Expenses: decimal.Zero,
			Profit:   decimal.Zero,
		}
		for _, c := range contribs {
			if c.at.Before(start) || !c.at.Before(end) {
				continue
			}
			b.Gross = b.Gross.Add(c.gross)
			b.Net = b.Net.Add(c.net)
			if c.completed {
				b.Sales++
			}
		}
		for _, e := range expenses {
			if e.Date.Before(start) || !e.Date.Before(end) {
				continue
			}
			b.Expenses = b.Expenses.Add(e.Amount)
		}
		b.Profit = b.Net.Sub(b.Expenses)
		buckets = append(buckets, b)
	}
	return buckets
}

func periodChange(contribs []contribution, expenses []domain.Expense, year int, month time.Month) Deltas {
	prevYear, prevMonth := year, month-1
	if month == time.January {
		prevYear, prevMonth = year-1, time.December
	}

	cur := monthStats(contribs, expenses, year, month)
	prev := monthStats(contribs, expenses, prevYear, prevMonth)

	curAOV, prevAOV := decimal.Zero, decimal.Zero
	if cur.sales > 0 {
		curAOV = cur.net.Div(decimal.NewFromInt(int64(cur.sales)))
	}
	if prev.sales > 0 {
		prevAOV = prev.net.Div(decimal.NewFromInt(int64(prev.sales)))
	}

	return Deltas{
		Revenue:           pcp(cur.gross, prev.gross),
		Net:               pcp(cur.net, prev.net),
		Expenses:          pcp(cur.expenses, prev.expenses),
		Profit:            pcp(cur.net.Sub(cur.expenses), prev.net.Sub(prev.expenses)),
		AverageOrderValue: pcp(curAOV, prevAOV),
		Sales:             cur.sales - prev.sales,
		Clients:           cur.clients - prev.clients,
	}
}

// pcp is the period-comparison percentage: a zero previous period maps to
// +100% when the current period has value and 0% when it does not.
func pcp(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).InexactFloat64()
}
