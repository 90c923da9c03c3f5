package transactions

import (
	"testing"

	"PeteSystem/internal/sheetstore"
)

func TestParseSheetDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"15/01/2024", "2024-01-15", true},
		{"2024-01-15", "2024-01-15", true},
		{"Date(2024,0,15)", "2024-01-15", true},
		{"Date(2023,11,31)", "2023-12-31", true},
		{"2024-01-15T10:30:00", "2024-01-15", true},
		{"", "", false},
		{"not a date", "", false},
	}
	for _, c := range cases {
		got, ok := ParseSheetDate(c.in)
		if ok != c.ok {
			t.Errorf("ParseSheetDate(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != c.want {
			t.Errorf("ParseSheetDate(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1200", "1200"},
		{"1,200.50", "1200.5"},
		{" 99 ", "99"},
		{"", "0"},
		{"n/a", "0"},
	}
	for _, c := range cases {
		if got := ParseAmount(c.in); got.String() != c.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParseRowsDiscardsBadDates(t *testing.T) {
	rows := []sheetstore.Row{
		{"01/02/2024 10:00:00", "Ravi", "01/02/2024", "500", "", "Cash", "Travel", "taxi", "", "February 2024"},
		{"01/02/2024 10:05:00", "Ravi", "garbage", "100", "", "Cash", "Travel", "", "", ""},
		{"01/02/2024 10:10:00", "Meena", "Date(2024,1,2)", "", "250", "UPI", "Food", "lunch", "", ""},
	}
	ts := ParseRows(rows)
	if len(ts) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(ts))
	}
	if ts[0].Date != "2024-02-01" {
		t.Errorf("first date = %s", ts[0].Date)
	}
	if ts[1].Date != "2024-02-02" {
		t.Errorf("second date = %s", ts[1].Date)
	}
	if ts[1].Outgoing.String() != "250" {
		t.Errorf("outgoing = %s", ts[1].Outgoing)
	}
	if ts[0].ID == ts[1].ID {
		t.Errorf("IDs should differ: %s", ts[0].ID)
	}
}

func TestMonthLabel(t *testing.T) {
	tr := Transaction{Date: "2024-02-01", Month: "stored"}
	if got := tr.MonthLabel(); got != "February 2024" {
		t.Errorf("MonthLabel = %q", got)
	}
	tr = Transaction{Date: "", Month: "stored"}
	if got := tr.MonthLabel(); got != "stored" {
		t.Errorf("fallback MonthLabel = %q", got)
	}
}
