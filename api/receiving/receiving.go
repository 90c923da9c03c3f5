package receiving

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"PeteSystem/api"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/config"
	"PeteSystem/internal/sheetstore"

	"github.com/shopspring/decimal"
)

// Reciving sheet column layout (one header row). The sheet name typo is part
// of the production data and must not be fixed here.
const (
	colTimestamp     = 0
	colDate          = 1
	colVendor        = 2
	colInvoiceAmount = 3
	colInvoiceNumber = 4
	colMode          = 5
	colRemarks       = 6
	colImageLink     = 7
)

const receivingRowWidth = 8

// Entry is one recorded goods or invoice receipt.
type Entry struct {
	RowIndex      int    `json:"row_index"`
	Timestamp     string `json:"timestamp"`
	Date          string `json:"date"`
	Vendor        string `json:"vendor"`
	InvoiceAmount string `json:"invoice_amount"`
	InvoiceNumber string `json:"invoice_number"`
	Mode          string `json:"mode"`
	Remarks       string `json:"remarks"`
	ImageLink     string `json:"image_link,omitempty"`
}

// ParseRows converts raw data rows into Entries. firstRowIndex is the
// absolute 1-based sheet row of rows[0].
func ParseRows(rows []sheetstore.Row, firstRowIndex int) []Entry {
	out := make([]Entry, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.Cell(colVendor)) == "" && strings.TrimSpace(row.Cell(colTimestamp)) == "" {
			continue
		}
		out = append(out, Entry{
			RowIndex:      firstRowIndex + i,
			Timestamp:     row.Cell(colTimestamp),
			Date:          row.Cell(colDate),
			Vendor:        row.Cell(colVendor),
			InvoiceAmount: row.Cell(colInvoiceAmount),
			InvoiceNumber: row.Cell(colInvoiceNumber),
			Mode:          row.Cell(colMode),
			Remarks:       row.Cell(colRemarks),
			ImageLink:     row.Cell(colImageLink),
		})
	}
	return out
}

// SortByTimestampDesc orders entries newest first. Timestamps that fail to
// parse sort last.
func SortByTimestampDesc(es []Entry) {
	parse := func(s string) (time.Time, bool) {
		t, err := time.Parse(constants.ReceivingStampLayout, strings.TrimSpace(s))
		return t, err == nil
	}
	sort.SliceStable(es, func(i, j int) bool {
		ti, iok := parse(es[i].Timestamp)
		tj, jok := parse(es[j].Timestamp)
		if iok != jok {
			return iok
		}
		return ti.After(tj)
	})
}

// ListEntriesHandler returns every receiving entry, newest first.
func ListEntriesHandler(store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		rows, err := store.Fetch(r.Context(), config.ReceivingSheet)
		if err != nil {
			api.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		var entries []Entry
		if len(rows) > config.ReceivingHeaderRows {
			entries = ParseRows(rows[config.ReceivingHeaderRows:], config.ReceivingHeaderRows+1)
		}
		SortByTimestampDesc(entries)
		api.RespondWithPayload(w, true, "", entries)
	}
}

// AddEntryRequest is one receiving form submission.
type AddEntryRequest struct {
	UserID        string `json:"user_id"`
	Date          string `json:"date"` // yyyy-mm-dd
	Vendor        string `json:"vendor"`
	InvoiceAmount string `json:"invoice_amount"`
	InvoiceNumber string `json:"invoice_number"`
	Mode          string `json:"mode"`
	Remarks       string `json:"remarks"`
	FileName      string `json:"file_name,omitempty"`
	FileData      string `json:"file_data,omitempty"` // base64
	MimeType      string `json:"mime_type,omitempty"`
}

// AddEntryHandler validates the form, uploads the optional invoice image and
// appends the receiving row.
func AddEntryHandler(store *sheetstore.Client, folderID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if strings.TrimSpace(req.Vendor) == "" {
			api.RespondWithResult(w, false, constants.ErrVendorRequired)
			return
		}
		day, err := time.Parse(constants.ISODateFormat, strings.TrimSpace(req.Date))
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrDateRequired)
			return
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(req.InvoiceAmount), ",", ""))
		if err != nil || amount.IsNegative() {
			api.RespondWithResult(w, false, constants.FormatFieldError("Invoice amount", "must be a number"))
			return
		}

		imageLink := ""
		if req.FileData != "" {
			url, err := store.UploadFile(r.Context(), req.FileName, req.FileData, req.MimeType, folderID)
			if err != nil {
				api.RespondWithResult(w, false, constants.ErrUploadFailed+": "+err.Error())
				return
			}
			imageLink = url
		}

		row := make(sheetstore.Row, receivingRowWidth)
		row[colTimestamp] = time.Now().Format(constants.ReceivingStampLayout)
		row[colDate] = day.Format(constants.SheetDateFormat)
		row[colVendor] = req.Vendor
		row[colInvoiceAmount] = amount.String()
		row[colInvoiceNumber] = req.InvoiceNumber
		row[colMode] = req.Mode
		row[colRemarks] = req.Remarks
		row[colImageLink] = imageLink
		if err := store.Insert(r.Context(), config.ReceivingSheet, row); err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"image_link":           imageLink,
		})
	}
}

func StartReceivingService(store *sheetstore.Client) {
	folderID := os.Getenv("RECEIVING_FOLDER_ID")

	mux := http.NewServeMux()
	mux.Handle("/receiving/list", middlewares.PreValidationMiddleware()(ListEntriesHandler(store)))
	mux.Handle("/receiving/add", middlewares.PreValidationMiddleware()(AddEntryHandler(store, folderID)))

	log.Println("Receiving Service started on :6124")
	err := http.ListenAndServe(":6124", mux)
	if err != nil {
		log.Fatalf("Receiving Service failed: %v", err)
	}
}
