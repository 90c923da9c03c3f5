package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PeteSystem/api/auth"
	"PeteSystem/api/constants"
	middlewares "PeteSystem/api/middlewares"
	"PeteSystem/internal/sheetstore"
)

// capturedWrite is one insert or update the fake proxy received.
type capturedWrite struct {
	action   string
	sheet    string
	rowIndex string
	rowData  []string
}

// newFakeProxy serves a Login sheet with one admin and one user, plus a
// Request sheet with six header rows and the given data rows. Writes are
// recorded, not applied.
func newFakeProxy(t *testing.T, requestRows [][]interface{}) (*httptest.Server, *[]capturedWrite) {
	t.Helper()
	var writes []capturedWrite
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			var data [][]interface{}
			switch r.URL.Query().Get("sheet") {
			case "Login":
				data = [][]interface{}{
					{"name", "username", "password", "role", "pages", "deleted"},
					{"Boss", "boss", "pw", "admin", "", ""},
					{"Ravi Kumar", "ravi", "pw2", "user", "dashboard,request", ""},
				}
			case "Request":
				data = make([][]interface{}, 0, 6+len(requestRows))
				for i := 0; i < 6; i++ {
					data = append(data, []interface{}{"header"})
				}
				data = append(data, requestRows...)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
			return
		}
		r.ParseForm()
		cw := capturedWrite{
			action:   r.FormValue("action"),
			sheet:    r.FormValue("sheetName"),
			rowIndex: r.FormValue("rowIndex"),
		}
		json.Unmarshal([]byte(r.FormValue("rowData")), &cw.rowData)
		writes = append(writes, cw)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "fileUrl": "https://files/x"})
	}))
	return srv, &writes
}

func loginAs(t *testing.T, store *sheetstore.Client, username, password string) *auth.AuthService {
	t.Helper()
	svc := auth.NewAuthService(store, 10)
	auth.SetGlobalAuthService(svc)
	if _, err := svc.Login(context.Background(), username, password, "127.0.0.1"); err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return svc
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBulkApproveWritesOnlyDecisionColumns(t *testing.T) {
	existing := [][]interface{}{
		{"2024-01-10 09:00:00", "REQ-001", "Travel", "Acme", "1200", "", "", "Ravi Kumar", "Sales", "10/01/2024", "", "", "", ""},
	}
	srv, writes := newFakeProxy(t, existing)
	defer srv.Close()
	store := sheetstore.NewClient(srv.URL)
	loginAs(t, store, "boss", "pw")

	h := middlewares.PreValidationMiddleware()(BulkApproveHandler(store))
	rec := postJSON(t, h, "/requests/bulk-approve", map[string]interface{}{
		"user_id": "boss",
		"rows":    []map[string]interface{}{{"row_index": 7, "remarks": "paid"}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if len(*writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(*writes))
	}
	w := (*writes)[0]
	if w.action != "update" || w.rowIndex != "7" {
		t.Errorf("got action=%s rowIndex=%s", w.action, w.rowIndex)
	}
	if len(w.rowData) != requestRowWidth {
		t.Fatalf("rowData width %d, want %d", len(w.rowData), requestRowWidth)
	}
	today := time.Now().Format(constants.SheetDateFormat)
	if w.rowData[colActual] != today {
		t.Errorf("actual = %q, want %q", w.rowData[colActual], today)
	}
	if w.rowData[colStatus] != StatusApproved {
		t.Errorf("status = %q", w.rowData[colStatus])
	}
	if w.rowData[colRemarks1] != "paid" {
		t.Errorf("remarks = %q", w.rowData[colRemarks1])
	}
	// Every other cell must stay empty so the store leaves it untouched.
	for i, cell := range w.rowData {
		if i == colActual || i == colStatus || i == colRemarks1 {
			continue
		}
		if cell != "" {
			t.Errorf("cell %d written: %q", i, cell)
		}
	}
}

func TestBulkApproveUpdatesRowsIndependently(t *testing.T) {
	existing := [][]interface{}{
		{"2024-01-10 09:00:00", "REQ-001", "Travel", "Acme", "1200", "", "", "Ravi Kumar", "Sales", "10/01/2024", "", "", "", ""},
		{"2024-01-11 09:00:00", "REQ-002", "Food", "Cafe", "300", "", "", "Ravi Kumar", "Sales", "11/01/2024", "", "", "", ""},
		{"2024-01-12 09:00:00", "REQ-003", "Office", "Depot", "900", "", "", "Meena", "Ops", "12/01/2024", "", "", "", ""},
	}
	// Like newFakeProxy, but the update for row 8 is rejected so the
	// surrounding rows prove their writes are issued regardless.
	var writes []capturedWrite
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			var data [][]interface{}
			switch r.URL.Query().Get("sheet") {
			case "Login":
				data = [][]interface{}{
					{"name", "username", "password", "role", "pages", "deleted"},
					{"Boss", "boss", "pw", "admin", "", ""},
				}
			case "Request":
				data = make([][]interface{}, 0, 6+len(existing))
				for i := 0; i < 6; i++ {
					data = append(data, []interface{}{"header"})
				}
				data = append(data, existing...)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
			return
		}
		r.ParseForm()
		cw := capturedWrite{
			action:   r.FormValue("action"),
			sheet:    r.FormValue("sheetName"),
			rowIndex: r.FormValue("rowIndex"),
		}
		json.Unmarshal([]byte(r.FormValue("rowData")), &cw.rowData)
		writes = append(writes, cw)
		if cw.rowIndex == "8" {
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "row locked"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()
	store := sheetstore.NewClient(srv.URL)
	loginAs(t, store, "boss", "pw")

	h := middlewares.PreValidationMiddleware()(BulkApproveHandler(store))
	rec := postJSON(t, h, "/requests/bulk-approve", map[string]interface{}{
		"user_id": "boss",
		"rows": []map[string]interface{}{
			{"row_index": 7, "remarks": "paid in full"},
			{"row_index": 8, "remarks": "per policy"},
			{"row_index": 9, "remarks": "approved late"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if len(writes) != 3 {
		t.Fatalf("expected 3 independent updates, got %d", len(writes))
	}
	wantRemarks := map[string]string{"7": "paid in full", "8": "per policy", "9": "approved late"}
	for i, want := range []string{"7", "8", "9"} {
		w := writes[i]
		if w.action != "update" || w.rowIndex != want {
			t.Errorf("write %d: action=%s rowIndex=%s, want update %s", i, w.action, w.rowIndex, want)
		}
		if got := w.rowData[colRemarks1]; got != wantRemarks[want] {
			t.Errorf("row %s remarks = %q, want %q", want, got, wantRemarks[want])
		}
		if w.rowData[colStatus] != StatusApproved {
			t.Errorf("row %s status = %q", want, w.rowData[colStatus])
		}
	}

	var resp struct {
		Success bool `json:"success"`
		Results []struct {
			RowIndex int    `json:"row_index"`
			Success  bool   `json:"success"`
			Error    string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("overall success despite a failed row")
	}
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	for _, res := range resp.Results {
		wantOK := res.RowIndex != 8
		if res.Success != wantOK {
			t.Errorf("row %d success = %v, want %v", res.RowIndex, res.Success, wantOK)
		}
	}
	if resp.Results[1].Error == "" {
		t.Error("failed row carries no error message")
	}
}

func TestBulkApproveRequiresAdmin(t *testing.T) {
	srv, writes := newFakeProxy(t, nil)
	defer srv.Close()
	store := sheetstore.NewClient(srv.URL)
	loginAs(t, store, "ravi", "pw2")

	h := middlewares.PreValidationMiddleware()(BulkApproveHandler(store))
	rec := postJSON(t, h, "/requests/bulk-approve", map[string]interface{}{
		"user_id": "ravi",
		"rows":    []map[string]interface{}{{"row_index": 7}},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", rec.Code)
	}
	if len(*writes) != 0 {
		t.Errorf("non-admin caused %d writes", len(*writes))
	}
}

func TestCreateRequestAssignsNextNumber(t *testing.T) {
	existing := [][]interface{}{
		{"2024-01-10 09:00:00", "REQ-003", "Travel", "Acme", "1200", "", "", "Ravi Kumar", "Sales", "10/01/2024", "", "", "", ""},
		{"2024-01-11 09:00:00", "REQ-009", "Food", "Cafe", "300", "", "", "Boss", "Ops", "11/01/2024", "", "", "", ""},
	}
	srv, writes := newFakeProxy(t, existing)
	defer srv.Close()
	store := sheetstore.NewClient(srv.URL)
	loginAs(t, store, "ravi", "pw2")

	h := middlewares.PreValidationMiddleware()(CreateRequestHandler(store, "folder-1"))
	rec := postJSON(t, h, "/requests/create", map[string]interface{}{
		"user_id":    "ravi",
		"group_head": "Travel",
		"pay_to":     "Acme",
		"amount":     "2,500",
		"remarks":    "advance",
		"department": "Sales",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	if len(*writes) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(*writes))
	}
	w := (*writes)[0]
	if w.action != "insert" || w.sheet != "Request" {
		t.Errorf("got action=%s sheet=%s", w.action, w.sheet)
	}
	if w.rowData[colRequestNo] != "REQ-010" {
		t.Errorf("request no = %q, want REQ-010", w.rowData[colRequestNo])
	}
	if w.rowData[colAmount] != "2500" {
		t.Errorf("amount = %q", w.rowData[colAmount])
	}
	if w.rowData[colName] != "Ravi Kumar" {
		t.Errorf("name = %q", w.rowData[colName])
	}
	today := time.Now().Format(constants.SheetDateFormat)
	if w.rowData[colPlanned] != today {
		t.Errorf("planned = %q, want %q", w.rowData[colPlanned], today)
	}
	if w.rowData[colActual] != "" || w.rowData[colStatus] != "" {
		t.Errorf("decision columns stamped at creation: actual=%q status=%q", w.rowData[colActual], w.rowData[colStatus])
	}

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["request_no"] != "REQ-010" {
		t.Errorf("response request_no = %v", resp["request_no"])
	}
}

func TestCreateRequestRejectsBadAmount(t *testing.T) {
	srv, writes := newFakeProxy(t, nil)
	defer srv.Close()
	store := sheetstore.NewClient(srv.URL)
	loginAs(t, store, "ravi", "pw2")

	h := middlewares.PreValidationMiddleware()(CreateRequestHandler(store, ""))
	for _, amount := range []string{"", "-5", "0", "abc"} {
		rec := postJSON(t, h, "/requests/create", map[string]interface{}{
			"user_id":    "ravi",
			"group_head": "Travel",
			"pay_to":     "Acme",
			"amount":     amount,
		})
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if success, _ := resp["success"].(bool); success {
			t.Errorf("amount %q accepted", amount)
		}
	}
	if len(*writes) != 0 {
		t.Errorf("invalid submissions caused %d writes", len(*writes))
	}
}
