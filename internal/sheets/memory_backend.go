package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/fjod/go_storefront/internal/sheetrow"
)

var a1Pattern = regexp.MustCompile(`^([A-Z]+)(\d*):([A-Z]+)(\d*)$`)

type a1Range struct {
	sheet             string
	firstCol, lastCol int
	firstRow, lastRow int // zero-based, -1 when open
}

func parseA1(rng string) (a1Range, error) {
	i := strings.LastIndex(rng, "!")
	if i <= 0 {
		return a1Range{}, fmt.Errorf("range %q has no sheet name", rng)
	}
	sheet, cells := sheetrow.UnquoteSheet(rng[:i]), rng[i+1:]
	m := a1Pattern.FindStringSubmatch(cells)
	if m == nil {
		return a1Range{}, fmt.Errorf("unsupported range %q", rng)
	}
	r := a1Range{
		sheet:    sheet,
		firstCol: columnIndex(m[1]),
		lastCol:  columnIndex(m[3]),
		firstRow: -1,
		lastRow:  -1,
	}
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		r.firstRow = n - 1
	}
	if m[4] != "" {
		n, _ := strconv.Atoi(m[4])
		r.lastRow = n - 1
	}
	return r, nil
}

func columnIndex(letters string) int {
	n := 0
	for _, ch := range letters {
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1
}

// Call records one backend invocation.
type Call struct {
	Method        string
	SpreadsheetID string
	Range         string
	Values        [][]string
}

// MemoryBackend is an in-memory spreadsheet. New worksheets start with the
// catalog header row.
type MemoryBackend struct {
	mu     sync.RWMutex
	sheets map[string][][]string // spreadsheetID + "/" + sheet -> rows
	calls  []Call
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		sheets: make(map[string][][]string),
	}
}

// Seed replaces a worksheet's rows, header included.
func (m *MemoryBackend) Seed(spreadsheetID, sheet string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[sheetKey(spreadsheetID, sheet)] = cloneRows(rows)
}

// Rows returns a copy of a worksheet.
func (m *MemoryBackend) Rows(spreadsheetID, sheet string) [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneRows(m.sheets[sheetKey(spreadsheetID, sheet)])
}

// Calls returns the invocations made so far.
func (m *MemoryBackend) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MemoryBackend) Append(_ context.Context, token, spreadsheetID, rng string, values [][]string) error {
	r, err := m.begin("append", token, spreadsheetID, rng, values)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sheetKey(spreadsheetID, r.sheet)
	rows := m.worksheet(key)
	for _, v := range values {
		rows = append(rows, place(nil, r.firstCol, v))
	}
	m.sheets[key] = rows
	return nil
}

func (m *MemoryBackend) Read(_ context.Context, token, spreadsheetID, rng string) ([][]string, error) {
	r, err := m.begin("read", token, spreadsheetID, rng, nil)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.worksheet(sheetKey(spreadsheetID, r.sheet))
	first, last := 0, len(rows)-1
	if r.firstRow >= 0 {
		first = r.firstRow
	}
	if r.lastRow >= 0 && r.lastRow < last {
		last = r.lastRow
	}

	var out [][]string
	for i := first; i <= last; i++ {
		var cells []string
		for c := r.firstCol; c <= r.lastCol && c < len(rows[i]); c++ {
			cells = append(cells, rows[i][c])
		}
		out = append(out, trimTrailing(cells))
	}
	return out, nil
}

func (m *MemoryBackend) Write(_ context.Context, token, spreadsheetID, rng string, values [][]string) error {
	r, err := m.begin("write", token, spreadsheetID, rng, values)
	if err != nil {
		return err
	}
	if r.firstRow < 0 {
		return &RemoteStoreError{StatusCode: 400, Message: fmt.Sprintf("range %q must name a row", rng)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := sheetKey(spreadsheetID, r.sheet)
	rows := m.worksheet(key)
	for i, v := range values {
		at := r.firstRow + i
		for len(rows) <= at {
			rows = append(rows, nil)
		}
		rows[at] = place(rows[at], r.firstCol, v)
	}
	m.sheets[key] = rows
	return nil
}

func (m *MemoryBackend) begin(method, token, spreadsheetID, rng string, values [][]string) (a1Range, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: method, SpreadsheetID: spreadsheetID, Range: rng, Values: cloneRows(values)})
	m.mu.Unlock()

	if token == "" {
		return a1Range{}, &RemoteStoreError{StatusCode: 401, Message: "Request is missing required authentication credential."}
	}
	r, err := parseA1(rng)
	if err != nil {
		return a1Range{}, &RemoteStoreError{StatusCode: 400, Message: err.Error()}
	}
	return r, nil
}

// worksheet must be called with mu held.
func (m *MemoryBackend) worksheet(key string) [][]string {
	rows, ok := m.sheets[key]
	if !ok {
		rows = [][]string{append([]string(nil), sheetrow.Columns...)}
		m.sheets[key] = rows
	}
	return rows
}

func place(row []string, at int, cells []string) []string {
	for len(row) < at+len(cells) {
		row = append(row, "")
	}
	copy(row[at:], cells)
	return row
}

func trimTrailing(cells []string) []string {
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func sheetKey(spreadsheetID, sheet string) string {
	return spreadsheetID + "/" + sheet
}

func cloneRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
