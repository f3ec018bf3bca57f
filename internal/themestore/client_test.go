package themestore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tentlabs/tentshop/internal/models"
)

func TestClientFetchThemes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/themes" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"themes": []models.Theme{storeTheme("forest-green", false)},
			"count":  1,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	themes, err := client.FetchThemes(context.Background())
	if err != nil {
		t.Fatalf("FetchThemes: %v", err)
	}
	if len(themes) != 1 || themes[0].ID != "forest-green" {
		t.Errorf("themes = %+v", themes)
	}
}

func TestClientSaveActiveTheme(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/themes/active" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"themeId": gotBody["themeId"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.SaveActiveTheme(context.Background(), "sunset-orange"); err != nil {
		t.Fatalf("SaveActiveTheme: %v", err)
	}
	if gotBody["themeId"] != "sunset-orange" {
		t.Errorf("body = %v", gotBody)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Theme with this ID already exists"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.CreateCustomTheme(context.Background(), storeTheme("custom-dup", true))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Theme with this ID already exists") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "409") {
		t.Errorf("status missing from error: %v", err)
	}
}

func TestClientErrorWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.SaveMode(context.Background(), models.ModeDark); err == nil {
		t.Fatal("expected error")
	} else if !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v", err)
	}
}
