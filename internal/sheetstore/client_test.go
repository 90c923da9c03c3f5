package sheetstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchNormalizesCells(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "fetch" {
			t.Errorf("expected action=fetch, got %q", r.URL.Query().Get("action"))
		}
		if r.URL.Query().Get("sheet") != "Data" {
			t.Errorf("expected sheet=Data, got %q", r.URL.Query().Get("sheet"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": [][]interface{}{
				{"a", 12.0, 12.5, nil, true},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	rows, err := c.Fetch(context.Background(), "Data")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	want := Row{"a", "12", "12.5", "", "true"}
	for i, cell := range want {
		if rows[0].Cell(i) != cell {
			t.Errorf("cell %d: got %q, want %q", i, rows[0].Cell(i), cell)
		}
	}
}

func TestFetchRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "no such sheet"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), "Nope")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestInsertSendsRowData(t *testing.T) {
	var gotAction, gotSheet, gotRowData string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotAction = r.FormValue("action")
		gotSheet = r.FormValue("sheetName")
		gotRowData = r.FormValue("rowData")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Insert(context.Background(), "Data", Row{"x", "", "y"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if gotAction != "insert" || gotSheet != "Data" {
		t.Errorf("got action=%q sheet=%q", gotAction, gotSheet)
	}
	var cells []string
	if err := json.Unmarshal([]byte(gotRowData), &cells); err != nil {
		t.Fatalf("rowData is not a JSON array: %v", err)
	}
	if len(cells) != 3 || cells[0] != "x" || cells[1] != "" || cells[2] != "y" {
		t.Errorf("unexpected rowData cells %v", cells)
	}
}

func TestUpdateSendsRowIndex(t *testing.T) {
	var gotRowIndex string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotRowIndex = r.FormValue("rowIndex")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Update(context.Background(), "Request", 9, Row{"", "v"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotRowIndex != "9" {
		t.Errorf("expected rowIndex=9, got %q", gotRowIndex)
	}
}

func TestUploadFileReturnsURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.FormValue("action") != "uploadFile" {
			t.Errorf("expected action=uploadFile, got %q", r.FormValue("action"))
		}
		if r.FormValue("folderId") != "folder-1" {
			t.Errorf("expected folderId=folder-1, got %q", r.FormValue("folderId"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "fileUrl": "https://files/abc"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	url, err := c.UploadFile(context.Background(), "r.png", "aGVsbG8=", "image/png", "folder-1")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if url != "https://files/abc" {
		t.Errorf("got url %q", url)
	}
}

func TestRowCellOutOfRange(t *testing.T) {
	r := Row{"only"}
	if r.Cell(0) != "only" {
		t.Errorf("Cell(0) = %q", r.Cell(0))
	}
	if r.Cell(5) != "" {
		t.Errorf("Cell(5) should be empty, got %q", r.Cell(5))
	}
	if r.Cell(-1) != "" {
		t.Errorf("Cell(-1) should be empty, got %q", r.Cell(-1))
	}
}
