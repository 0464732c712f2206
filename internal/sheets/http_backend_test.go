package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   valueRange
}

type requestLog struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.requests...)
}

func setupSheetsAPI(t *testing.T, status int, response string) (*HTTPBackend, *requestLog) {
	t.Helper()
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		log.mu.Lock()
		log.requests = append(log.requests, rec)
		log.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewHTTPBackend(srv.URL+"/v4", srv.Client()), log
}

func TestHTTPBackend_Append(t *testing.T) {
	b, reqs := setupSheetsAPI(t, http.StatusOK, `{"updates":{"updatedRows":1}}`)

	err := b.Append(context.Background(), "tok", "abc", "Sheet1!A:I", [][]string{{"1", "Hat"}})
	require.NoError(t, err)

	require.Len(t, reqs.all(), 1)
	r := reqs.all()[0]
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "/v4/spreadsheets/abc/values/Sheet1!A:I:append", r.Path)
	assert.Equal(t, "valueInputOption=USER_ENTERED", r.Query)
	assert.Equal(t, "Bearer tok", r.Auth)
	assert.Equal(t, [][]string{{"1", "Hat"}}, r.Body.Values)
}

func TestHTTPBackend_Read(t *testing.T) {
	b, reqs := setupSheetsAPI(t, http.StatusOK, `{"range":"Sheet1!A1:A4","majorDimension":"ROWS","values":[["id"],["5"],[],["3"]]}`)

	rows, err := b.Read(context.Background(), "tok", "abc", "Sheet1!A:A")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"id"}, {"5"}, {}, {"3"}}, rows)
	assert.Equal(t, http.MethodGet, reqs.all()[0].Method)
	assert.Equal(t, "/v4/spreadsheets/abc/values/Sheet1!A:A", reqs.all()[0].Path)
}

func TestHTTPBackend_ReadEmptySheet(t *testing.T) {
	b, _ := setupSheetsAPI(t, http.StatusOK, `{"range":"Sheet1!A1:A1000","majorDimension":"ROWS"}`)

	rows, err := b.Read(context.Background(), "tok", "abc", "Sheet1!A:A")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHTTPBackend_Write(t *testing.T) {
	b, reqs := setupSheetsAPI(t, http.StatusOK, `{"updatedRange":"Sheet1!A3:I3"}`)

	err := b.Write(context.Background(), "tok", "abc", "Sheet1!A3:I3", [][]string{{"7", "Dress"}})
	require.NoError(t, err)

	r := reqs.all()[0]
	assert.Equal(t, http.MethodPut, r.Method)
	assert.Equal(t, "/v4/spreadsheets/abc/values/Sheet1!A3:I3", r.Path)
	assert.Equal(t, "valueInputOption=USER_ENTERED", r.Query)
	assert.Equal(t, "Sheet1!A3:I3", r.Body.Range)
}

func TestHTTPBackend_ErrorMessage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		authIssues bool
	}{
		{
			name:       "expired token",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"code":401,"message":"Request had invalid authentication credentials.","status":"UNAUTHENTICATED"}}`,
			wantMsg:    "Request had invalid authentication credentials.",
			authIssues: true,
		},
		{
			name:    "missing spreadsheet",
			status:  http.StatusNotFound,
			body:    `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`,
			wantMsg: "Requested entity was not found.",
		},
		{
			name:    "non json body",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantMsg: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := setupSheetsAPI(t, tt.status, tt.body)

			err := b.Write(context.Background(), "tok", "abc", "Sheet1!A2:I2", [][]string{{"1"}})

			var rse *RemoteStoreError
			require.True(t, errors.As(err, &rse))
			assert.Equal(t, tt.status, rse.StatusCode)
			assert.Equal(t, tt.wantMsg, rse.Message)
			assert.Equal(t, tt.authIssues, errors.Is(err, ErrAuthRequired))
		})
	}
}

func TestClient_401SurfacesAsAuthRequired(t *testing.T) {
	b, _ := setupSheetsAPI(t, http.StatusUnauthorized, `{"error":{"code":401,"message":"expired"}}`)
	c := NewClient(b, staticToken("stale"), staticID{id: "abc"})

	_, err := c.UpdateRemote(context.Background(), "7", blazer("7"))

	assert.ErrorIs(t, err, ErrAuthRequired)
	var rse *RemoteStoreError
	require.True(t, errors.As(err, &rse))
	assert.Equal(t, "expired", rse.Message)
}

func TestNewHTTPBackend_Defaults(t *testing.T) {
	b := NewHTTPBackend("", nil)
	assert.Equal(t, DefaultBaseURL, b.baseURL)
	assert.NotNil(t, b.client)
	assert.Equal(t, DefaultBaseURL+"/spreadsheets/a%2Fb/values/Sheet1%21A:A", b.valuesURL("a/b", "Sheet1!A:A"))
}
