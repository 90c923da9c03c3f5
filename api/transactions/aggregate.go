package transactions

import (
	"sort"

	"PeteSystem/api/auth"

	"github.com/shopspring/decimal"
)

// Group keys substituted for blank cells, only for the dimensions where the
// original data is known to have gaps.
const (
	UncategorizedGroup = "Uncategorized"
	UnknownGroup       = "Unknown"
	UnknownPerson      = "Unknown User"
)

// FilterAll is the sentinel meaning "predicate disabled".
const FilterAll = "all"

// Filters are combined by logical AND; a predicate set to FilterAll (or left
// empty for the dates) is skipped.
type Filters struct {
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
	Person    string `json:"person_name"`
	GroupHead string `json:"group_head"`
	Mode      string `json:"mode"`
	Reason    string `json:"reason"`
}

func (f Filters) match(t Transaction) bool {
	if f.DateFrom != "" && t.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && t.Date > f.DateTo {
		return false
	}
	if f.Person != "" && f.Person != FilterAll && t.Person != f.Person {
		return false
	}
	if f.GroupHead != "" && f.GroupHead != FilterAll && t.GroupHead != f.GroupHead {
		return false
	}
	if f.Mode != "" && f.Mode != FilterAll && t.Mode != f.Mode {
		return false
	}
	if f.Reason != "" && f.Reason != FilterAll && t.Reason != f.Reason {
		return false
	}
	return true
}

// VisibleTo applies role-based visibility: admin sees every row, a user sees
// only rows whose person name equals their display name exactly.
func VisibleTo(session *auth.UserSession, all []Transaction) []Transaction {
	if session.IsAdmin() {
		return all
	}
	out := make([]Transaction, 0, len(all))
	for _, t := range all {
		if t.Person == session.Name {
			out = append(out, t)
		}
	}
	return out
}

// Apply returns the subset of ts matching every enabled predicate.
func Apply(f Filters, ts []Transaction) []Transaction {
	out := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Summary holds the dashboard headline figures.
type Summary struct {
	TotalIncoming decimal.Decimal `json:"total_incoming"`
	TotalOutgoing decimal.Decimal `json:"total_outgoing"`
	Balance       decimal.Decimal `json:"balance"`
	Count         int             `json:"count"`
}

func Summarize(ts []Transaction) Summary {
	s := Summary{TotalIncoming: decimal.Zero, TotalOutgoing: decimal.Zero}
	for _, t := range ts {
		s.TotalIncoming = s.TotalIncoming.Add(t.Incoming)
		s.TotalOutgoing = s.TotalOutgoing.Add(t.Outgoing)
	}
	s.Balance = s.TotalIncoming.Sub(s.TotalOutgoing)
	s.Count = len(ts)
	return s
}

// DailyPoint is one day of the dashboard trend chart: that day's income and
// expense plus the running balance up to and including it.
type DailyPoint struct {
	Date    string          `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// TimeSeries groups transactions per distinct day, sorted ascending, and
// accumulates income minus expense into a running balance.
func TimeSeries(ts []Transaction) []DailyPoint {
	byDay := make(map[string]*DailyPoint)
	var days []string
	for _, t := range ts {
		p, ok := byDay[t.Date]
		if !ok {
			p = &DailyPoint{Date: t.Date, Income: decimal.Zero, Expense: decimal.Zero}
			byDay[t.Date] = p
			days = append(days, t.Date)
		}
		p.Income = p.Income.Add(t.Incoming)
		p.Expense = p.Expense.Add(t.Outgoing)
	}
	sort.Strings(days)
	out := make([]DailyPoint, 0, len(days))
	running := decimal.Zero
	for _, day := range days {
		p := byDay[day]
		running = running.Add(p.Income).Sub(p.Expense)
		p.Balance = running
		out = append(out, *p)
	}
	return out
}

// GroupTotal is one bucket of a grouped breakdown.
type GroupTotal struct {
	Key      string          `json:"key"`
	Incoming decimal.Decimal `json:"incoming"`
	Outgoing decimal.Decimal `json:"outgoing"`
	Count    int             `json:"count"`
}

// Dimensions accepted by GroupBy and the report endpoints.
const (
	DimGroupHead = "groupHead"
	DimMode      = "mode"
	DimMonth     = "month"
	DimPerson    = "person"
)

// GroupKey resolves the bucket key of t for a dimension, substituting the
// dimension's placeholder for blank cells.
func GroupKey(dim string, t Transaction) (string, bool) {
	switch dim {
	case DimGroupHead:
		if t.GroupHead == "" {
			return UncategorizedGroup, true
		}
		return t.GroupHead, true
	case DimMode:
		if t.Mode == "" {
			return UnknownGroup, true
		}
		return t.Mode, true
	case DimMonth:
		return t.MonthLabel(), true
	case DimPerson:
		if t.Person == "" {
			return UnknownPerson, true
		}
		return t.Person, true
	}
	return "", false
}

// GroupBy buckets ts by the chosen dimension, summing amounts and counting
// rows per key. Buckets come back in first-seen order.
func GroupBy(dim string, ts []Transaction) ([]GroupTotal, bool) {
	byKey := make(map[string]*GroupTotal)
	var order []string
	for _, t := range ts {
		key, ok := GroupKey(dim, t)
		if !ok {
			return nil, false
		}
		g, exists := byKey[key]
		if !exists {
			g = &GroupTotal{Key: key, Incoming: decimal.Zero, Outgoing: decimal.Zero}
			byKey[key] = g
			order = append(order, key)
		}
		g.Incoming = g.Incoming.Add(t.Incoming)
		g.Outgoing = g.Outgoing.Add(t.Outgoing)
		g.Count++
	}
	out := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out, true
}

// Members returns the exact member rows of one bucket, the subset a report
// detail view shows when a group is clicked.
func Members(dim, key string, ts []Transaction) []Transaction {
	out := make([]Transaction, 0)
	for _, t := range ts {
		if k, ok := GroupKey(dim, t); ok && k == key {
			out = append(out, t)
		}
	}
	return out
}

// ExpenseByGroupHead feeds the dashboard pie: outgoing totals per group head,
// counting only rows that actually carry an expense and a group head.
func ExpenseByGroupHead(ts []Transaction) []GroupTotal {
	byKey := make(map[string]*GroupTotal)
	var order []string
	for _, t := range ts {
		if !t.Outgoing.IsPositive() || t.GroupHead == "" {
			continue
		}
		g, ok := byKey[t.GroupHead]
		if !ok {
			g = &GroupTotal{Key: t.GroupHead, Incoming: decimal.Zero, Outgoing: decimal.Zero}
			byKey[t.GroupHead] = g
			order = append(order, t.GroupHead)
		}
		g.Outgoing = g.Outgoing.Add(t.Outgoing)
		g.Count++
	}
	out := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

// SortByDateDesc orders newest first, the order every listing screen uses.
func SortByDateDesc(ts []Transaction) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Date > ts[j].Date })
}
