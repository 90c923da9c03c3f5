package sheetstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// The proxy speaks one endpoint: GET with sheet/action=fetch for reads, POST with
// url-encoded action=insert|update|uploadFile for writes. Row data is a flat array
// of cells aligned to a sheet-specific column layout. On update an empty string
// cell means "leave the existing cell unchanged"; the proxy owns this convention
// and callers rely on it for partial-column writes.

var (
	ErrProxyUnreachable = errors.New("sheet proxy unreachable")
	ErrBadResponse      = errors.New("sheet proxy returned malformed response")
	ErrRejected         = errors.New("sheet proxy rejected operation")
)

const defaultTimeout = 30 * time.Second

// Row is one spreadsheet row with every cell normalized to a string.
type Row []string

// Cell returns the cell at idx, or "" when the row is shorter than idx+1.
func (r Row) Cell(idx int) string {
	if idx < 0 || idx >= len(r) {
		return ""
	}
	return r[idx]
}

type Client struct {
	proxyURL string
	http     *http.Client
}

func NewClient(proxyURL string) *Client {
	return &Client{
		proxyURL: proxyURL,
		http:     &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithHTTP is used by tests and by callers that need their own timeout.
func NewClientWithHTTP(proxyURL string, hc *http.Client) *Client {
	return &Client{proxyURL: proxyURL, http: hc}
}

type fetchResponse struct {
	Success bool            `json:"success"`
	Data    [][]interface{} `json:"data"`
	Error   string          `json:"error"`
}

type writeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	FileURL string `json:"fileUrl"`
}

// Fetch returns every row of the named sheet, header rows included. Callers skip
// the sheet-specific header count themselves.
func (c *Client) Fetch(ctx context.Context, sheet string) ([]Row, error) {
	u := fmt.Sprintf("%s?sheet=%s&action=fetch", c.proxyURL, url.QueryEscape(sheet))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyUnreachable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrProxyUnreachable, sheet, resp.StatusCode)
	}
	var fr fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !fr.Success {
		return nil, fmt.Errorf("%w: fetch %s: %s", ErrRejected, sheet, fr.Error)
	}
	rows := make([]Row, 0, len(fr.Data))
	for _, raw := range fr.Data {
		row := make(Row, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Insert appends a row to the named sheet.
func (c *Client) Insert(ctx context.Context, sheet string, row Row) error {
	form := url.Values{}
	form.Set("action", "insert")
	form.Set("sheetName", sheet)
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	form.Set("rowData", string(data))
	_, err = c.post(ctx, form)
	return err
}

// Update overwrites cells of the 1-based rowIndex. Empty-string cells are no-ops.
func (c *Client) Update(ctx context.Context, sheet string, rowIndex int, row Row) error {
	form := url.Values{}
	form.Set("action", "update")
	form.Set("sheetName", sheet)
	form.Set("rowIndex", strconv.Itoa(rowIndex))
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	form.Set("rowData", string(data))
	_, err = c.post(ctx, form)
	return err
}

// UploadFile stores a base64-encoded file in the given storage folder and returns
// the public URL the proxy assigned to it.
func (c *Client) UploadFile(ctx context.Context, fileName, base64Data, mimeType, folderID string) (string, error) {
	form := url.Values{}
	form.Set("action", "uploadFile")
	form.Set("fileName", fileName)
	form.Set("base64Data", base64Data)
	form.Set("mimeType", mimeType)
	form.Set("folderId", folderID)
	wr, err := c.post(ctx, form)
	if err != nil {
		return "", err
	}
	return wr.FileURL, nil
}

func (c *Client) post(ctx context.Context, form url.Values) (*writeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.proxyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProxyUnreachable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrProxyUnreachable, form.Get("action"), resp.StatusCode)
	}
	var wr writeResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !wr.Success {
		return nil, fmt.Errorf("%w: %s: %s", ErrRejected, form.Get("action"), wr.Error)
	}
	return &wr, nil
}

// cellString flattens whatever cell type the proxy serialized (string, number,
// bool, null) into the string form the column conventions are written against.
func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
