package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proctor-service/config"
	"proctor-service/pkg/jwt"

	"github.com/gin-gonic/gin"
)

func newRouter(cfg *config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", JWTAuth(cfg), func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	cfg := &config.AuthConfig{JWTSecret: "secret"}
	r := newRouter(cfg)
	token, err := jwt.GenerateAccessToken("user-7", "", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	tests := []struct {
		name   string
		target string
		header http.Header
		code   int
		body   string
	}{
		{"bearer header", "/me", http.Header{"Authorization": {"Bearer " + token}}, http.StatusOK, "user-7"},
		{"query token", "/me?token=" + token, nil, http.StatusOK, "user-7"},
		{"missing", "/me", nil, http.StatusUnauthorized, ""},
		{"bad scheme", "/me", http.Header{"Authorization": {"Basic abc"}}, http.StatusUnauthorized, ""},
		{"bad token", "/me", http.Header{"Authorization": {"Bearer nope"}}, http.StatusUnauthorized, ""},
		{"gateway header ignored", "/me", http.Header{"X-User-Id": {"spoofed"}}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.target, tt.header)
			if w.Code != tt.code {
				t.Fatalf("code = %d, want %d (%s)", w.Code, tt.code, w.Body.String())
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestJWTAuth_TrustedGateway(t *testing.T) {
	r := newRouter(&config.AuthConfig{JWTSecret: "secret", TrustGatewayHeader: true})
	w := do(r, "/me", http.Header{"X-User-Id": {"gw-user"}})
	if w.Code != http.StatusOK || w.Body.String() != "gw-user" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	r := newRouter(&config.AuthConfig{})
	w := do(r, "/panic", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", w.Code)
	}
}
