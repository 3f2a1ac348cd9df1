package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getlims/limsgo/internal/config"
	"github.com/getlims/limsgo/internal/models"
)

func TestHealthCheck(t *testing.T) {
	router := NewRouter(nil, &config.Config{JWTSecret: "test-secret"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := NewRouter(nil, &config.Config{JWTSecret: "test-secret"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/items", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestToMapRoundTrip(t *testing.T) {
	identifier := "ENZ-0001"
	item := models.Item{ID: 7, Name: "Taq Polymerase", Identifier: &identifier}

	m := toMap(item)
	if m["name"] != "Taq Polymerase" {
		t.Errorf("name = %v", m["name"])
	}
	if m["identifier"] != "ENZ-0001" {
		t.Errorf("identifier = %v", m["identifier"])
	}
	if id, ok := m["id"].(float64); !ok || id != 7 {
		t.Errorf("id = %v", m["id"])
	}
}

func TestRemarshal(t *testing.T) {
	payload := map[string]interface{}{
		"name":             "Updated",
		"amount_available": float64(12),
	}

	var req ItemRequest
	if err := remarshal(payload, &req); err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	if req.Name == nil || *req.Name != "Updated" {
		t.Error("name lost in remarshal")
	}
	if req.AmountAvailable == nil || *req.AmountAvailable != 12 {
		t.Error("amount lost in remarshal")
	}
	if req.Identifier != nil {
		t.Error("absent field should stay nil")
	}
}
