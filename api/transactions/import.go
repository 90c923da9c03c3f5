package transactions

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"PeteSystem/api"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/config"
	"PeteSystem/internal/sheetstore"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// Expected bulk import header: date, person, incoming, outgoing, mode,
// group head, reason. Person is optional for non-admins (forced to self).
const importColumns = 7

func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseImportFile reads an uploaded .csv, .xlsx or .xls file into [][]string.
func parseImportFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	case ".xls":
		// extrame/xls only reads from a path, so spool to a temp file first.
		tmp, err := os.CreateTemp("", "txnimport-*.xls")
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.ReadFrom(file); err != nil {
			tmp.Close()
			return nil, err
		}
		tmp.Close()
		wb, err := xls.Open(tmp.Name(), "utf-8")
		if err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New("workbook has no sheets")
		}
		var rows [][]string
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				continue
			}
			var vals []string
			for j := 0; j <= row.LastCol(); j++ {
				vals = append(vals, row.Col(j))
			}
			rows = append(rows, vals)
		}
		return rows, nil
	}
	return nil, errors.New("unsupported file type: " + ext)
}

// importRowError describes why a single file row was rejected.
type importRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportTransactionsHandler accepts a multipart upload of one or more
// spreadsheet files and appends a Data row per valid line. Rows are validated
// independently; one bad line never blocks the rest of the file.
func ImportTransactionsHandler(store *sheetstore.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		files := r.MultipartForm.File["file"]
		if len(files) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "No files uploaded")
			return
		}

		batchID := uuid.New().String()
		inserted := 0
		var rowErrors []importRowError

		for _, fh := range files {
			file, err := fh.Open()
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Failed to open file: "+fh.Filename)
				return
			}
			records, err := parseImportFile(file, getFileExt(fh.Filename))
			file.Close()
			if err != nil || len(records) < 2 {
				api.RespondWithError(w, http.StatusBadRequest, "Invalid or empty file: "+fh.Filename)
				return
			}

			for i, rec := range records[1:] {
				lineNo := i + 2
				row, reason := buildImportRow(rec, session.IsAdmin(), session.Name)
				if reason != "" {
					rowErrors = append(rowErrors, importRowError{Row: lineNo, Reason: reason})
					continue
				}
				if err := store.Insert(r.Context(), config.DataSheet, row); err != nil {
					rowErrors = append(rowErrors, importRowError{Row: lineNo, Reason: err.Error()})
					continue
				}
				inserted++
			}
		}

		api.LogInfo("transaction import batch %s: %d inserted, %d rejected", batchID, inserted, len(rowErrors))
		w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: true,
			"batch_id":             batchID,
			"inserted":             inserted,
			"errors":               rowErrors,
		})
	}
}

func cellAt(rec []string, idx int) string {
	if idx < len(rec) {
		return strings.TrimSpace(rec[idx])
	}
	return ""
}

// buildImportRow validates one file line and shapes the ten-column Data row.
// An empty reason string means the row is good.
func buildImportRow(rec []string, isAdmin bool, selfName string) (sheetstore.Row, string) {
	date := cellAt(rec, 0)
	person := cellAt(rec, 1)
	incoming := cellAt(rec, 2)
	outgoing := cellAt(rec, 3)
	mode := cellAt(rec, 4)
	groupHead := cellAt(rec, 5)
	reason := cellAt(rec, 6)

	if !isAdmin || person == "" {
		person = selfName
	}
	day, ok := ParseSheetDate(date)
	if !ok {
		return nil, constants.ErrDateRequired
	}
	if mode == "" {
		return nil, constants.ErrModeRequired
	}
	if groupHead == "" {
		return nil, constants.ErrGroupRequired
	}
	in := ParseAmount(incoming)
	out := ParseAmount(outgoing)
	if in.IsZero() && out.IsZero() {
		return nil, constants.ErrAmountRequired
	}

	now := time.Now()
	return sheetstore.Row{
		now.Format(constants.TimestampFormat),
		person,
		day.Format(constants.SheetDateFormat),
		in.String(),
		out.String(),
		mode,
		groupHead,
		reason,
		"",
		now.Format(constants.MonthLabelFormat),
	}, ""
}
