package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestExtractClinicID_FromHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Clinic-ID", "riverside")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cid := extractClinicID(c, "default")
	if cid != "riverside" {
		t.Errorf("expected riverside, got %s", cid)
	}
}

func TestExtractClinicID_FromQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?clinic_id=northside", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cid := extractClinicID(c, "default")
	if cid != "northside" {
		t.Errorf("expected northside, got %s", cid)
	}
}

func TestExtractClinicID_Default(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cid := extractClinicID(c, "default")
	if cid != "default" {
		t.Errorf("expected default, got %s", cid)
	}
}

func TestExtractClinicID_HeaderPriorityOverQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?clinic_id=query_clinic", nil)
	req.Header.Set("X-Clinic-ID", "header_clinic")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cid := extractClinicID(c, "default")
	if cid != "header_clinic" {
		t.Errorf("expected header_clinic (header has priority over query), got %s", cid)
	}
}

func TestClinicIDPattern(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"abc", true},
		{"ABC", true},
		{"abc123", true},
		{"clinic_1", true},
		{"a", true},
		{"A1B2C3", true},
		{"a-b", false},
		{"a.b", false},
		{"a b", false},
		{"a/b", false},
		{"", false},
		{"$pecial", false},
		{"clinic@1", false},
		{"'; DROP TABLE", false},
	}

	for _, tt := range tests {
		got := clinicIDPattern.MatchString(tt.input)
		if got != tt.valid {
			t.Errorf("clinicIDPattern.MatchString(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	conn := ConnFromContext(context.Background())
	if conn != nil {
		t.Error("expected nil conn from empty context")
	}
}

func TestConnFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), DBConnKey, "not-a-conn")
	conn := ConnFromContext(ctx)
	if conn != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestClinicFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClinicIDKey, "riverside")
	cid := ClinicFromContext(ctx)
	if cid != "riverside" {
		t.Errorf("expected riverside, got %s", cid)
	}

	if empty := ClinicFromContext(context.Background()); empty != "" {
		t.Errorf("expected empty string, got %s", empty)
	}
}

func TestClinicFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClinicIDKey, 12345)
	if cid := ClinicFromContext(ctx); cid != "" {
		t.Errorf("expected empty string when context value is wrong type, got %q", cid)
	}
}

func TestCreateClinicSchema_InvalidID(t *testing.T) {
	invalidIDs := []string{"clinic-with-dash", "clinic.with.dot", "cli nic", "drop;table", "invalid-id!"}
	for _, id := range invalidIDs {
		err := CreateClinicSchema(context.Background(), nil, id, "")
		if err == nil {
			t.Errorf("expected error for invalid clinic ID %q", id)
		}
	}
}
