package transactions

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"PeteSystem/internal/sheetstore"

	"github.com/shopspring/decimal"
)

// Data sheet column layout (one header row).
const (
	colTimestamp = 0
	colPerson    = 1
	colDate      = 2
	colIncoming  = 3
	colOutgoing  = 4
	colMode      = 5
	colGroupHead = 6
	colReason    = 7
	colPhotoLink = 8
	colMonth     = 9
)

// Transaction is one Data row. Dates are carried as ISO strings (yyyy-mm-dd)
// so filter comparisons can be plain string comparisons.
type Transaction struct {
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Person    string          `json:"person_name"`
	Date      string          `json:"date"`
	Incoming  decimal.Decimal `json:"incoming"`
	Outgoing  decimal.Decimal `json:"outgoing"`
	Mode      string          `json:"mode"`
	GroupHead string          `json:"group_head"`
	Reason    string          `json:"reason"`
	PhotoLink string          `json:"photo_link,omitempty"`
	Month     string          `json:"month"`
}

// serialDatePattern matches the spreadsheet-serialized form Date(2024,0,15).
// Its month field is zero-based.
var serialDatePattern = regexp.MustCompile(`Date\((\d+),(\d+),(\d+)`)

var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
}

// ParseSheetDate accepts both natively parseable date strings and the
// serialized Date(y,m,d) literal. Returns the zero time when nothing matches.
func ParseSheetDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if m := serialDatePattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount reads a money cell; blanks and junk become zero, matching how the
// sheet has always been consumed.
func ParseAmount(value string) decimal.Decimal {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseRows turns Data sheet rows (header already skipped) into Transactions,
// discarding rows whose date fails to parse.
func ParseRows(rows []sheetstore.Row) []Transaction {
	out := make([]Transaction, 0, len(rows))
	for i, row := range rows {
		date, ok := ParseSheetDate(row.Cell(colDate))
		if !ok {
			continue
		}
		out = append(out, Transaction{
			ID:        row.Cell(colTimestamp) + "-" + strconv.Itoa(i),
			Timestamp: row.Cell(colTimestamp),
			Person:    row.Cell(colPerson),
			Date:      date.Format("2006-01-02"),
			Incoming:  ParseAmount(row.Cell(colIncoming)),
			Outgoing:  ParseAmount(row.Cell(colOutgoing)),
			Mode:      row.Cell(colMode),
			GroupHead: row.Cell(colGroupHead),
			Reason:    row.Cell(colReason),
			PhotoLink: row.Cell(colPhotoLink),
			Month:     row.Cell(colMonth),
		})
	}
	return out
}

// MonthLabel derives the "January 2006" style label of a transaction's date,
// falling back to the stored month cell when the date is unparseable.
func (t Transaction) MonthLabel() string {
	if d, ok := ParseSheetDate(t.Date); ok {
		return d.Format("January 2006")
	}
	return t.Month
}
