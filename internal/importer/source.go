package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ParseError indicates an unreadable or malformed source document
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchError indicates a network or sharing problem retrieving a remote sheet
type FetchError struct {
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch error: %s", e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RawRow is one input row keyed by normalized column header
type RawRow struct {
	Line   int
	Values map[string]string
}

// Get returns the raw cell value for a header, trimmed
func (r RawRow) Get(header string) string {
	return strings.TrimSpace(r.Values[header])
}

// Table is the rectangular output of the source acquirer
type Table struct {
	Headers []string
	Rows    []RawRow
}

// ParseFile dispatches on file extension to the CSV or XLSX parser
func ParseFile(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(r)
	case ".xlsx", ".xls":
		return ParseXLSX(r)
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))}
	}
}

// ParseCSV parses delimited text into a table. The first row is the header;
// quoted fields may contain the delimiter. Lines starting with # are comments.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: "malformed delimited text", Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Reason: "nothing found, file is empty"}
	}

	return buildTable(records)
}

// ParseXLSX reads the first sheet of a spreadsheet into a table
func ParseXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Reason: "unreadable spreadsheet file", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "nothing found, spreadsheet has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Reason: "failed to read spreadsheet rows", Err: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Reason: "nothing found, sheet is empty"}
	}

	return buildTable(rows)
}

// buildTable zips data rows against the header row positionally
func buildTable(records [][]string) (*Table, error) {
	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, normalizeHeader(h))
	}
	if len(headers) == 0 || (len(headers) == 1 && headers[0] == "") {
		return nil, &ParseError{Reason: "malformed format, header row is empty"}
	}

	table := &Table{Headers: headers}
	for i, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := RawRow{Line: i + 2, Values: make(map[string]string, len(headers))}
		for j, h := range headers {
			if j < len(record) {
				row.Values[h] = record[j]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SheetFetcher retrieves the tabular contents of a publicly shared Google Sheet
type SheetFetcher struct {
	client *http.Client
}

func NewSheetFetcher(timeout time.Duration) *SheetFetcher {
	return &SheetFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch downloads the sheet's CSV export and parses it into a table
func (f *SheetFetcher) Fetch(ctx context.Context, sheetURL string) (*Table, error) {
	exportURL, err := SheetExportURL(sheetURL)
	if err != nil {
		return nil, err
	}
	return f.fetchExport(ctx, exportURL)
}

func (f *SheetFetcher) fetchExport(ctx context.Context, exportURL string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, &FetchError{Reason: "failed to build request", Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Reason: "could not reach the spreadsheet", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{Reason: "sharing problem, the sheet is not publicly viewable"}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &FetchError{Reason: "nothing found at that sheet URL"}
	case resp.StatusCode != http.StatusOK:
		return nil, &FetchError{Reason: fmt.Sprintf("unexpected response %d from sheet host", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Reason: "failed to read sheet contents", Err: err}
	}

	// Private sheets redirect to an HTML login page instead of returning CSV
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
		return nil, &FetchError{Reason: "sharing problem, the sheet requires sign-in"}
	}

	return ParseCSV(strings.NewReader(string(body)))
}

// SheetExportURL converts a shared Google Sheets URL into its CSV export URL
func SheetExportURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &FetchError{Reason: "malformed sheet URL", Err: err}
	}

	if u.Host != "docs.google.com" {
		return "", &FetchError{Reason: "not a recognized sheet URL, expected docs.google.com"}
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "spreadsheets" || parts[1] != "d" || parts[2] == "" {
		return "", &FetchError{Reason: "not a recognized sheet URL, missing spreadsheet ID"}
	}
	sheetID := parts[2]

	export := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", sheetID)

	// Preserve a worksheet selector if present (either ?gid= or #gid=)
	gid := u.Query().Get("gid")
	if gid == "" && strings.HasPrefix(u.Fragment, "gid=") {
		gid = strings.TrimPrefix(u.Fragment, "gid=")
	}
	if gid != "" {
		export += "&gid=" + gid
	}

	return export, nil
}
