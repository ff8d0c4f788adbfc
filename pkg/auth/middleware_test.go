package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	jwtService := NewJWTService("secret")
	userToken, _ := jwtService.GenerateJWT(7, false, time.Now().Add(time.Hour))
	adminToken, _ := jwtService.GenerateJWT(1, true, time.Now().Add(time.Hour))

	var seen int64
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		header   string
		admin    bool
		wantCode int
		wantUser int64
	}{
		{name: "No header", wantCode: http.StatusUnauthorized},
		{name: "Not bearer", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "Bad token", header: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "User", header: "Bearer " + userToken, wantCode: http.StatusOK, wantUser: 7},
		{name: "User on admin route", header: "Bearer " + userToken, admin: true, wantCode: http.StatusForbidden},
		{name: "Admin on admin route", header: "Bearer " + adminToken, admin: true, wantCode: http.StatusOK, wantUser: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = 0
			var h http.Handler = ok
			if tt.admin {
				h = AdminOnly(h)
			}
			h = jwtService.Middleware(h)

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}
