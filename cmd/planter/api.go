package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type TotalTreesResponse struct {
	TotalTrees int64 `json:"total_trees"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// apiError is a non-2xx answer from the counter service.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("counter service returned status %d", e.Status)
	}
	return fmt.Sprintf("counter service returned status %d: %s", e.Status, e.Message)
}

type apiClient struct {
	baseURL string
	client  HTTPClient
}

func newAPIClient(baseURL string, client HTTPClient) *apiClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &apiClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (c *apiClient) AddTree(ctx context.Context) (int64, error) {
	return c.totalsRequest(ctx, http.MethodPost, "/add-tree")
}

func (c *apiClient) TotalTrees(ctx context.Context) (int64, error) {
	return c.totalsRequest(ctx, http.MethodGet, "/total-trees")
}

func (c *apiClient) totalsRequest(ctx context.Context, method string, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var failure ErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&failure)
		return 0, &apiError{Status: res.StatusCode, Message: failure.Error}
	}

	var response TotalTreesResponse
	if err := decodeJSON(res.Body, &response); err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return response.TotalTrees, nil
}

func decodeJSON(reader io.Reader, target interface{}) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}
