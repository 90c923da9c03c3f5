package transactions

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"PeteSystem/api"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/api/constants"
	"PeteSystem/internal/config"
	"PeteSystem/internal/sheetstore"
)

func fetchTransactions(r *http.Request, store *sheetstore.Client) ([]Transaction, error) {
	rows, err := store.Fetch(r.Context(), config.DataSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= config.DataHeaderRows {
		return []Transaction{}, nil
	}
	return ParseRows(rows[config.DataHeaderRows:]), nil
}

// DashboardHandler returns the headline summary, daily trend with running
// balance, expense-by-group-head breakdown and the recent slice, all computed
// over the caller's visible and filtered transaction set.
func DashboardHandler(store *sheetstore.Client) http.HandlerFunc {
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

		recent := filtered
		if len(recent) > 5 {
			recent = recent[:5]
		}

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"summary":              Summarize(filtered),
			"total_rows":           len(all),
			"time_series":          TimeSeries(filtered),
			"expense_by_group":     ExpenseByGroupHead(filtered),
			"recent":               recent,
			"transactions":         filtered,
		})
	}
}

// ReportsHandler returns the grouped breakdown for every report card in one
// call: group head, payment mode, month, and (admin only) person.
func ReportsHandler(store *sheetstore.Client) http.HandlerFunc {
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

		groupHead, _ := GroupBy(DimGroupHead, filtered)
		mode, _ := GroupBy(DimMode, filtered)
		month, _ := GroupBy(DimMonth, filtered)

		resp := map[string]interface{}{
			constants.ValueSuccess: true,
			"group_head":           groupHead,
			"mode":                 mode,
			"month":                month,
		}
		if session.IsAdmin() {
			person, _ := GroupBy(DimPerson, filtered)
			resp["person"] = person
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(resp)
	}
}

// ReportDetailHandler returns the exact member rows of one report bucket plus
// their totals, the drill-down behind a clicked report card.
func ReportDetailHandler(store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    string  `json:"user_id"`
			Dimension string  `json:"dimension"`
			Key       string  `json:"key"`
			Filters   Filters `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Dimension == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if _, ok := GroupKey(req.Dimension, Transaction{}); !ok {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnknownDimension)
			return
		}

		all, err := fetchTransactions(r, store)
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		members := Members(req.Dimension, req.Key, Apply(req.Filters, VisibleTo(session, all)))
		SortByDateDesc(members)

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"summary":              Summarize(members),
			"transactions":         members,
		})
	}
}

// AddTransactionRequest carries one transaction entry form submission. The
// attachment travels as base64 the same way the proxy expects it.
type AddTransactionRequest struct {
	UserID     string `json:"user_id"`
	PersonName string `json:"person_name"`
	Date       string `json:"date"` // yyyy-mm-dd
	Incoming   string `json:"incoming"`
	Outgoing   string `json:"outgoing"`
	Mode       string `json:"mode"`
	GroupHead  string `json:"group_head"`
	Reason     string `json:"reason"`
	FileName   string `json:"file_name,omitempty"`
	FileData   string `json:"file_data,omitempty"` // base64
	MimeType   string `json:"mime_type,omitempty"`
}

// AddTransactionHandler validates the form, uploads the optional attachment,
// and appends the fixed ten-column Data row. Non-admin callers always write
// their own name regardless of what the form carried.
func AddTransactionHandler(store *sheetstore.Client, folderID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if !session.IsAdmin() {
			req.PersonName = session.Name
		}
		if strings.TrimSpace(req.PersonName) == "" {
			api.RespondWithResult(w, false, constants.ErrPersonRequired)
			return
		}
		day, ok := ParseSheetDate(req.Date)
		if !ok {
			api.RespondWithResult(w, false, constants.ErrDateRequired)
			return
		}
		if strings.TrimSpace(req.Mode) == "" {
			api.RespondWithResult(w, false, constants.ErrModeRequired)
			return
		}
		if strings.TrimSpace(req.GroupHead) == "" {
			api.RespondWithResult(w, false, constants.ErrGroupRequired)
			return
		}
		incoming := ParseAmount(req.Incoming)
		outgoing := ParseAmount(req.Outgoing)
		if incoming.IsZero() && outgoing.IsZero() {
			api.RespondWithResult(w, false, constants.ErrAmountRequired)
			return
		}

		photoLink := ""
		if req.FileData != "" {
			url, err := store.UploadFile(r.Context(), req.FileName, req.FileData, req.MimeType, folderID)
			if err != nil {
				api.RespondWithResult(w, false, constants.ErrUploadFailed+": "+err.Error())
				return
			}
			photoLink = url
		}

		now := time.Now()
		row := sheetstore.Row{
			now.Format(constants.TimestampFormat),
			req.PersonName,
			day.Format(constants.SheetDateFormat),
			incoming.String(),
			outgoing.String(),
			req.Mode,
			req.GroupHead,
			req.Reason,
			photoLink,
			now.Format(constants.MonthLabelFormat),
		}
		if err := store.Insert(r.Context(), config.DataSheet, row); err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"photo_link":           photoLink,
		})
	}
}
