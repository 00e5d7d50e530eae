package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mesa-hq/mesa-server/pkg/apperror"
)

func testService(secret string) *Service {
	return &Service{
		secret:   []byte(secret),
		tokenTTL: time.Hour,
		log:      slog.Default(),
	}
}

func TestMintAndResolve(t *testing.T) {
	svc := testService("test-secret")

	token, err := svc.MintToken("acct-42")
	if err != nil {
		t.Fatalf("MintToken() error: %v", err)
	}

	accountID, err := svc.ResolveAccountID(token)
	if err != nil {
		t.Fatalf("ResolveAccountID() error: %v", err)
	}
	if accountID != "acct-42" {
		t.Errorf("accountID = %q, want acct-42", accountID)
	}
}

func TestResolveRejectsForeignSecret(t *testing.T) {
	token, err := testService("secret-a").MintToken("acct-1")
	if err != nil {
		t.Fatalf("MintToken() error: %v", err)
	}

	if _, err := testService("secret-b").ResolveAccountID(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestRequireAuth(t *testing.T) {
	svc := testService("test-secret")
	mw := NewMiddleware(svc, slog.Default())

	validToken, err := svc.MintToken("acct-7")
	if err != nil {
		t.Fatalf("MintToken() error: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantAcct   string
	}{
		{"valid token", "Bearer " + validToken, http.StatusOK, "acct-7"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.authHeader)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var gotAcct string
			handler := mw.RequireAuth()(func(c echo.Context) error {
				gotAcct = GetAccountID(c)
				return c.NoContent(http.StatusOK)
			})

			err := handler(c)

			if tt.wantStatus == http.StatusOK {
				if err != nil {
					t.Fatalf("handler error: %v", err)
				}
				if gotAcct != tt.wantAcct {
					t.Errorf("account = %q, want %q", gotAcct, tt.wantAcct)
				}
				return
			}

			appErr, ok := err.(*apperror.Error)
			if !ok {
				t.Fatalf("expected *apperror.Error, got %T (%v)", err, err)
			}
			if appErr.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", appErr.HTTPStatus, tt.wantStatus)
			}
		})
	}
}
