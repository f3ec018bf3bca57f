package themestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tentlabs/tentshop/internal/catalog"
	"github.com/tentlabs/tentshop/internal/models"
	"github.com/tentlabs/tentshop/internal/seed"
)

// Client talks to the theme service over HTTP and implements ThemeAPI.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type themesResponse struct {
	Themes []models.Theme `json:"themes"`
	Count  int            `json:"count"`
}

type themeResponse struct {
	Theme   models.Theme `json:"theme"`
	Message string       `json:"message"`
}

// StatusReport mirrors the admin status payload.
type StatusReport struct {
	Database struct {
		Connected bool   `json:"connected"`
		Status    string `json:"status"`
		Error     string `json:"error,omitempty"`
	} `json:"database"`
	Themes struct {
		Total      int `json:"total"`
		Predefined int `json:"predefined"`
		Custom     int `json:"custom"`
	} `json:"themes"`
	ActiveTheme string                 `json:"activeTheme"`
	Settings    models.ActiveSelection `json:"settings"`
}

// SeedResult mirrors the admin seed payload.
type SeedResult struct {
	Message               string `json:"message"`
	InsertedThemes        int    `json:"insertedThemes"`
	TotalPredefinedThemes int    `json:"totalPredefinedThemes"`
}

// CleanupReport mirrors the cleanup payload.
type CleanupReport struct {
	Message                string             `json:"message"`
	TotalDuplicatesRemoved int                `json:"totalDuplicatesRemoved"`
	ProcessedThemes        int                `json:"processedThemes"`
	Details                []seed.GroupResult `json:"details"`
}

func (c *Client) FetchThemes(ctx context.Context) ([]models.Theme, error) {
	var resp themesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/themes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Themes, nil
}

func (c *Client) FetchCustomThemes(ctx context.Context) ([]models.Theme, error) {
	var resp themesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/themes/custom", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Themes, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]catalog.Category, error) {
	var resp struct {
		Categories []catalog.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/themes/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) FetchTheme(ctx context.Context, id string) (models.Theme, error) {
	var resp themeResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/themes/"+id, nil, &resp); err != nil {
		return models.Theme{}, err
	}
	return resp.Theme, nil
}

func (c *Client) FetchSettings(ctx context.Context) (models.ActiveSelection, error) {
	var sel models.ActiveSelection
	if err := c.do(ctx, http.MethodGet, "/api/v1/themes/settings", nil, &sel); err != nil {
		return models.ActiveSelection{}, err
	}
	return sel, nil
}

func (c *Client) SaveActiveTheme(ctx context.Context, themeID string) error {
	body := map[string]string{"themeId": themeID}
	return c.do(ctx, http.MethodPut, "/api/v1/themes/active", body, nil)
}

func (c *Client) SaveMode(ctx context.Context, mode string) error {
	body := map[string]string{"mode": mode}
	return c.do(ctx, http.MethodPut, "/api/v1/themes/mode", body, nil)
}

func (c *Client) SaveSettings(ctx context.Context, themeID, mode string) error {
	body := map[string]string{"themeId": themeID, "mode": mode}
	return c.do(ctx, http.MethodPut, "/api/v1/themes/settings", body, nil)
}

func (c *Client) CreateCustomTheme(ctx context.Context, theme models.Theme) (models.Theme, error) {
	var resp themeResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/themes/custom", theme, &resp); err != nil {
		return models.Theme{}, err
	}
	return resp.Theme, nil
}

func (c *Client) UpdateCustomTheme(ctx context.Context, id string, theme models.Theme) (models.Theme, error) {
	var resp themeResponse
	if err := c.do(ctx, http.MethodPut, "/api/v1/themes/"+id, theme, &resp); err != nil {
		return models.Theme{}, err
	}
	return resp.Theme, nil
}

func (c *Client) DeleteCustomTheme(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/themes/"+id, nil, nil)
}

func (c *Client) Seed(ctx context.Context) (SeedResult, error) {
	var resp SeedResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/admin/seed", nil, &resp); err != nil {
		return SeedResult{}, err
	}
	return resp, nil
}

func (c *Client) Cleanup(ctx context.Context) (CleanupReport, error) {
	var resp CleanupReport
	if err := c.do(ctx, http.MethodPost, "/api/v1/themes/cleanup", nil, &resp); err != nil {
		return CleanupReport{}, err
	}
	return resp, nil
}

func (c *Client) Status(ctx context.Context) (StatusReport, error) {
	var resp StatusReport
	if err := c.do(ctx, http.MethodGet, "/api/v1/admin/status", nil, &resp); err != nil {
		return StatusReport{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s (status %d)", payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
