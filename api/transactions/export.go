package transactions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"PeteSystem/api"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/sheetstore"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Timestamp", "Person", "Date", "Incoming", "Outgoing",
	"Mode", "Group Head", "Reason", "Photo Link", "Month",
}

// ExportTransactionsHandler streams the caller's visible, filtered
// transactions as an .xlsx workbook.
func ExportTransactionsHandler(store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID  string  `json:"user_id"`
			Filters Filters `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		all, err := fetchTransactions(r, store)
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		filtered := Apply(req.Filters, VisibleTo(session, all))
		SortByDateDesc(filtered)

		f := excelize.NewFile()
		defer f.Close()
		sheet := f.GetSheetName(0)

		for col, title := range exportHeader {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, title)
		}
		for i, t := range filtered {
			values := []interface{}{
				t.Timestamp, t.Person, t.Date, t.Incoming.String(), t.Outgoing.String(),
				t.Mode, t.GroupHead, t.Reason, t.PhotoLink, t.Month,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("20060102-150405"))
		w.Header().Set(constants.ContentTypeText, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
		if err := f.Write(w); err != nil {
			api.LogError("xlsx export write failed: %v", err)
		}
	}
}
