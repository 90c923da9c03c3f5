package requests

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"PeteSystem/internal/sheetstore"
)

// Request sheet column layout. The sheet starts with six header rows of
// banner and column titles before the first data row.
const (
	colTimestamp  = 0
	colRequestNo  = 1
	colGroupHead  = 2
	colPayTo      = 3
	colAmount     = 4
	colRemarks    = 5
	colAttachment = 6
	colName       = 7
	colDepartment = 8
	colPlanned    = 9
	colActual     = 10
	colDelay      = 11
	colStatus     = 12
	colRemarks1   = 13
)

const requestRowWidth = 14

// Request is one payment request row. RowIndex is the absolute 1-based sheet
// row, which update calls need back.
type Request struct {
	RowIndex   int    `json:"row_index"`
	Timestamp  string `json:"timestamp"`
	RequestNo  string `json:"request_no"`
	GroupHead  string `json:"group_head"`
	PayTo      string `json:"pay_to"`
	Amount     string `json:"amount"`
	Remarks    string `json:"remarks"`
	Attachment string `json:"attachment,omitempty"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Planned    string `json:"planned"`
	Actual     string `json:"actual"`
	Delay      string `json:"delay"`
	Status     string `json:"status"`
	Remarks1   string `json:"approver_remarks"`
}

// IsPending reports whether the request still awaits an approval decision. A
// request is pending once its planned date is stamped and leaves the pending
// list the moment the actual date is written.
func (r Request) IsPending() bool {
	return r.Planned != "" && r.Actual == ""
}

var requestNoPattern = regexp.MustCompile(`^REQ-(\d+)$`)

// RequestNumber extracts the numeric suffix of a REQ-NNN identifier, or 0.
func RequestNumber(requestNo string) int {
	m := requestNoPattern.FindStringSubmatch(strings.TrimSpace(requestNo))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// NextRequestNo scans the existing requests and returns the next identifier,
// one past the highest numeric suffix seen. Gaps from deleted rows are never
// reused backwards.
func NextRequestNo(existing []Request) string {
	max := 0
	for _, r := range existing {
		if n := RequestNumber(r.RequestNo); n > max {
			max = n
		}
	}
	return fmt.Sprintf("REQ-%03d", max+1)
}

// ParseRows converts raw data rows into Requests. firstRowIndex is the
// absolute 1-based sheet row of rows[0].
func ParseRows(rows []sheetstore.Row, firstRowIndex int) []Request {
	out := make([]Request, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.Cell(colRequestNo)) == "" {
			continue
		}
		out = append(out, Request{
			RowIndex:   firstRowIndex + i,
			Timestamp:  row.Cell(colTimestamp),
			RequestNo:  strings.TrimSpace(row.Cell(colRequestNo)),
			GroupHead:  row.Cell(colGroupHead),
			PayTo:      row.Cell(colPayTo),
			Amount:     row.Cell(colAmount),
			Remarks:    row.Cell(colRemarks),
			Attachment: row.Cell(colAttachment),
			Name:       row.Cell(colName),
			Department: row.Cell(colDepartment),
			Planned:    row.Cell(colPlanned),
			Actual:     row.Cell(colActual),
			Delay:      row.Cell(colDelay),
			Status:     row.Cell(colStatus),
			Remarks1:   row.Cell(colRemarks1),
		})
	}
	return out
}

// SortByNumberDesc orders requests newest first by their numeric suffix.
func SortByNumberDesc(rs []Request) {
	sort.SliceStable(rs, func(i, j int) bool {
		return RequestNumber(rs[i].RequestNo) > RequestNumber(rs[j].RequestNo)
	})
}

// Partition splits requests into the pending queue and the decided history.
// Rows that never got a planned stamp belong to neither list.
func Partition(rs []Request) (pending, history []Request) {
	for _, r := range rs {
		switch {
		case r.IsPending():
			pending = append(pending, r)
		case r.Planned != "" && r.Actual != "":
			history = append(history, r)
		}
	}
	return pending, history
}
