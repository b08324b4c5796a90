package api

import (
	"net/http"
	"strings"
	"testing"
)

func TestSessionCheck(t *testing.T) {
	h := NewSessionHandler()

	c, rec := newTestContext(http.MethodGet, "/auth/check", nil)
	setAuthUser(c, testStaffID)

	if err := h.Check(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"user_id":"`+testStaffID+`"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSessionCheck_NoSession(t *testing.T) {
	h := NewSessionHandler()

	c, rec := newTestContext(http.MethodGet, "/auth/check", nil)

	if err := h.Check(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
