package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultBaseURL = "https://sheets.googleapis.com/v4"

type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// HTTPBackend talks to the Sheets v4 values API.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBackend(baseURL string, client *http.Client) *HTTPBackend {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (b *HTTPBackend) Append(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error {
	u := b.valuesURL(spreadsheetID, rng) + ":append?" + url.Values{"valueInputOption": {"USER_ENTERED"}}.Encode()
	return b.do(ctx, http.MethodPost, u, token, &valueRange{Values: values}, nil)
}

func (b *HTTPBackend) Read(ctx context.Context, token, spreadsheetID, rng string) ([][]string, error) {
	var out valueRange
	if err := b.do(ctx, http.MethodGet, b.valuesURL(spreadsheetID, rng), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Values, nil
}

func (b *HTTPBackend) Write(ctx context.Context, token, spreadsheetID, rng string, values [][]string) error {
	u := b.valuesURL(spreadsheetID, rng) + "?" + url.Values{"valueInputOption": {"USER_ENTERED"}}.Encode()
	return b.do(ctx, http.MethodPut, u, token, &valueRange{Range: rng, Values: values}, nil)
}

func (b *HTTPBackend) valuesURL(spreadsheetID, rng string) string {
	return fmt.Sprintf("%s/spreadsheets/%s/values/%s", b.baseURL, url.PathEscape(spreadsheetID), url.PathEscape(rng))
}

func (b *HTTPBackend) do(ctx context.Context, method, u, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var e apiError
	msg := ""
	if json.Unmarshal(data, &e) == nil {
		msg = e.Error.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &RemoteStoreError{StatusCode: status, Message: msg}
}
