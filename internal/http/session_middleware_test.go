package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type mockGate struct {
	valid      bool
	err        error
	lastUserID int64
	lastToken  string
}

func (m *mockGate) Validate(_ context.Context, userID int64, token string) (bool, error) {
	m.lastUserID = userID
	m.lastToken = token
	return m.valid, m.err
}

func protectedRouter(gate SessionValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/protected", SessionAuthMiddleware(zap.NewNop(), gate), func(c *gin.Context) {
		userID, ok := AuthUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func TestSessionAuthMiddleware_AllowsValidSession(t *testing.T) {
	gate := &mockGate{valid: true}
	r := protectedRouter(gate)

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Session-Id", "tok-1")
	req.Header.Set("User-Id", "42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gate.lastUserID != 42 || gate.lastToken != "tok-1" {
		t.Fatalf("gate called with %d,%q", gate.lastUserID, gate.lastToken)
	}
}

func TestSessionAuthMiddleware_RejectsMissingHeaders(t *testing.T) {
	r := protectedRouter(&mockGate{valid: true})

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_RejectsNonNumericUserID(t *testing.T) {
	r := protectedRouter(&mockGate{valid: true})

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Session-Id", "tok-1")
	req.Header.Set("User-Id", "alice")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_RejectsInvalidSession(t *testing.T) {
	r := protectedRouter(&mockGate{valid: false})

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Session-Id", "revoked")
	req.Header.Set("User-Id", "42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_StorageErrorIs500(t *testing.T) {
	r := protectedRouter(&mockGate{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Session-Id", "tok-1")
	req.Header.Set("User-Id", "42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
