package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPClient lets tests swap the transport used by restStore.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// restStore talks to a hosted Postgres through its PostgREST (Supabase) API.
// Increment goes through the increment function from schema.go so the
// read and the write happen in one statement on the database side.
type restStore struct {
	baseURL string
	key     string
	table   string
	client  HTTPClient
}

// restError carries the message PostgREST returned with a non-2xx status.
type restError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *restError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postgrest returned status %d", e.Status)
	}
	return e.Message
}

type counterRow struct {
	ID    int64 `json:"id,omitempty"`
	Count int64 `json:"count"`
}

func newRESTStore(baseURL string, key string, table string, client HTTPClient) *restStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &restStore{baseURL: baseURL, key: key, table: table, client: client}
}

func (s *restStore) Total(ctx context.Context) (int64, error) {
	query := url.Values{}
	query.Set("select", "count")
	query.Set("id", "eq."+strconv.Itoa(counterRowID))

	var rows []counterRow
	if err := s.do(ctx, http.MethodGet, "/rest/v1/"+s.table, query, nil, nil, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrCounterMissing
	}
	return rows[0].Count, nil
}

func (s *restStore) Increment(ctx context.Context) (int64, error) {
	body := map[string]int{"row_id": counterRowID}
	var count *int64
	if err := s.do(ctx, http.MethodPost, "/rest/v1/rpc/"+incrementFunctionName(s.table), nil, body, nil, &count); err != nil {
		return 0, err
	}
	if count == nil {
		return 0, ErrCounterMissing
	}
	return *count, nil
}

func (s *restStore) EnsureCounter(ctx context.Context) (bool, error) {
	body := []counterRow{{ID: counterRowID, Count: 0}}
	headers := map[string]string{"Prefer": "resolution=ignore-duplicates,return=representation"}
	var inserted []counterRow
	if err := s.do(ctx, http.MethodPost, "/rest/v1/"+s.table, nil, body, headers, &inserted); err != nil {
		return false, err
	}
	return len(inserted) > 0, nil
}

func (s *restStore) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")
	var rows []counterRow
	return s.do(ctx, http.MethodGet, "/rest/v1/"+s.table, query, nil, nil, &rows)
}

func (s *restStore) Close() error {
	return nil
}

func (s *restStore) do(ctx context.Context, method string, path string, query url.Values, body interface{}, headers map[string]string, target interface{}) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("postgrest %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		restErr := &restError{Status: res.StatusCode}
		_ = json.Unmarshal(data, restErr)
		return restErr
	}
	if target == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isRESTStatus(err error, status int) bool {
	var restErr *restError
	return errors.As(err, &restErr) && restErr.Status == status
}
