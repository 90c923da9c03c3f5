package requests

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"PeteSystem/api"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/config"
	"PeteSystem/internal/sheetstore"

	"github.com/shopspring/decimal"
)

// Status values as the sheet has always stored them; "Reject" is not a typo.
const (
	StatusApproved = "Approved"
	StatusRejected = "Reject"
)

// createMu serializes request creation so two concurrent submissions can
// never read the same highest request number and mint duplicate identifiers.
var createMu sync.Mutex

func fetchRequests(r *http.Request, store *sheetstore.Client) ([]Request, error) {
	rows, err := store.Fetch(r.Context(), config.RequestSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= config.RequestHeaderRows {
		return []Request{}, nil
	}
	return ParseRows(rows[config.RequestHeaderRows:], config.RequestHeaderRows+1), nil
}

// ListRequestsHandler returns the pending queue and decided history, newest
// first. Non-admin callers only see their own requests.
func ListRequestsHandler(store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		all, err := fetchRequests(r, store)
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		if !session.IsAdmin() {
			own := all[:0]
			for _, req := range all {
				if req.Name == session.Name {
					own = append(own, req)
				}
			}
			all = own
		}
		pending, history := Partition(all)
		SortByNumberDesc(pending)
		SortByNumberDesc(history)

		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"pending":              pending,
			"history":              history,
		})
	}
}

// CreateRequestRequest is one payment request submission.
type CreateRequestRequest struct {
	UserID     string `json:"user_id"`
	GroupHead  string `json:"group_head"`
	PayTo      string `json:"pay_to"`
	Amount     string `json:"amount"`
	Remarks    string `json:"remarks"`
	Department string `json:"department"`
	FileName   string `json:"file_name,omitempty"`
	FileData   string `json:"file_data,omitempty"` // base64
	MimeType   string `json:"mime_type,omitempty"`
}

// CreateRequestHandler validates the submission, assigns the next REQ-NNN
// identifier and appends the request row with today's planned date stamped.
func CreateRequestHandler(store *sheetstore.Client, folderID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if strings.TrimSpace(req.GroupHead) == "" {
			api.RespondWithResult(w, false, constants.ErrGroupRequired)
			return
		}
		if strings.TrimSpace(req.PayTo) == "" {
			api.RespondWithResult(w, false, constants.ErrPayToRequired)
			return
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(req.Amount), ",", ""))
		if err != nil || !amount.IsPositive() {
			api.RespondWithResult(w, false, constants.FormatFieldError("Amount", "must be a positive number"))
			return
		}

		attachment := ""
		if req.FileData != "" {
			url, err := store.UploadFile(r.Context(), req.FileName, req.FileData, req.MimeType, folderID)
			if err != nil {
				api.RespondWithResult(w, false, constants.ErrUploadFailed+": "+err.Error())
				return
			}
			attachment = url
		}

		createMu.Lock()
		defer createMu.Unlock()

		existing, err := fetchRequests(r, store)
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		requestNo := NextRequestNo(existing)

		now := time.Now()
		row := make(sheetstore.Row, requestRowWidth)
		row[colTimestamp] = now.Format(constants.RequestStampFormat)
		row[colRequestNo] = requestNo
		row[colGroupHead] = req.GroupHead
		row[colPayTo] = req.PayTo
		row[colAmount] = amount.String()
		row[colRemarks] = req.Remarks
		row[colAttachment] = attachment
		row[colName] = session.Name
		row[colDepartment] = req.Department
		row[colPlanned] = now.Format(constants.SheetDateFormat)
		if err := store.Insert(r.Context(), config.RequestSheet, row); err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}

		api.LogInfo("payment request %s created by %s", requestNo, session.UserID)
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"request_no":           requestNo,
			"attachment":           attachment,
		})
	}
}

// DecisionRow identifies one pending request row and the approver's remark.
type DecisionRow struct {
	RowIndex int    `json:"row_index"`
	Remarks  string `json:"remarks"`
}

// BulkApproveHandler marks the selected requests approved.
func BulkApproveHandler(store *sheetstore.Client) http.HandlerFunc {
	return decisionHandler(store, StatusApproved)
}

// BulkRejectHandler marks the selected requests rejected.
func BulkRejectHandler(store *sheetstore.Client) http.HandlerFunc {
	return decisionHandler(store, StatusRejected)
}

// decisionHandler stamps today's actual date, the status and the approver
// remark on each selected row. Every other cell goes out empty so the store
// leaves it untouched. Rows are updated independently; one failure never
// rolls back the others.
func decisionHandler(store *sheetstore.Client, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string        `json:"user_id"`
			Rows   []DecisionRow `json:"rows"`
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
		if !session.IsAdmin() {
			api.RespondWithError(w, http.StatusForbidden, constants.ErrAdminOnly)
			return
		}
		if len(req.Rows) == 0 {
			api.RespondWithResult(w, false, constants.ErrNoRowsSelected)
			return
		}

		today := time.Now().Format(constants.SheetDateFormat)
		results := make([]map[string]interface{}, 0, len(req.Rows))
		for _, d := range req.Rows {
			res := map[string]interface{}{"row_index": d.RowIndex}
			if d.RowIndex <= config.RequestHeaderRows {
				res["success"] = false
				res["error"] = "row index " + strconv.Itoa(d.RowIndex) + " is not a data row"
				results = append(results, res)
				continue
			}
			row := make(sheetstore.Row, requestRowWidth)
			row[colActual] = today
			row[colStatus] = status
			row[colRemarks1] = d.Remarks
			if err := store.Update(r.Context(), config.RequestSheet, d.RowIndex, row); err != nil {
				res["success"] = false
				res["error"] = err.Error()
			} else {
				res["success"] = true
			}
			results = append(results, res)
		}

		api.LogInfo("bulk %s by %s: %d rows", strings.ToLower(status), session.UserID, len(req.Rows))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}
