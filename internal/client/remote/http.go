package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

// HTTPStore implements Store against the gateflow server's JSON API.
type HTTPStore struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewHTTPStore(httpClient *http.Client, baseURL, apiKey string) *HTTPStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPStore{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
	}
}

func (c *HTTPStore) Insert(ctx context.Context, rec model.VehicleRecord) error {
	return c.do(ctx, http.MethodPost, "/api/v1/vehicles", rec, nil)
}

func (c *HTTPStore) Update(ctx context.Context, rec model.VehicleRecord) error {
	return c.do(ctx, http.MethodPut, "/api/v1/vehicles/"+url.PathEscape(rec.ID), rec, nil)
}

func (c *HTTPStore) Upsert(ctx context.Context, rec model.VehicleRecord) error {
	return c.do(ctx, http.MethodPut, "/api/v1/vehicles/"+url.PathEscape(rec.ID)+"?upsert=true", rec, nil)
}

func (c *HTTPStore) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/vehicles/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPStore) GetByID(ctx context.Context, id string) (model.VehicleRecord, error) {
	var rec model.VehicleRecord
	err := c.do(ctx, http.MethodGet, "/api/v1/vehicles/"+url.PathEscape(id), nil, &rec)
	return rec, err
}

func (c *HTTPStore) SelectAll(ctx context.Context) ([]model.VehicleRecord, error) {
	var recs []model.VehicleRecord
	if err := c.do(ctx, http.MethodGet, "/api/v1/vehicles", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *HTTPStore) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *HTTPStore) do(ctx context.Context, method, path string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb)
	msg := strings.TrimSpace(eb.Error)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return wrap(common.ErrNotFound, msg)
	case resp.StatusCode == http.StatusConflict:
		return wrap(common.ErrAlreadyExists, msg)
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return wrap(common.ErrValidationRejected, msg)
	case resp.StatusCode >= 500:
		return wrap(common.ErrRemoteUnavailable, fmt.Sprintf("status %d: %s", resp.StatusCode, msg))
	default:
		if msg != "" {
			return fmt.Errorf("remote status %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("remote status %d", resp.StatusCode)
	}
}

func wrap(sentinel error, msg string) error {
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
