package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/services/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredAuthenticatedUser(t *testing.T) {
	app := NewTestApplication(nil, t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	t.Run("authenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, &models.User{
			ID:       "u1",
			Username: "test",
		}))
		app.requireAuthenticatedUser(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, models.AnonymousUser))
		app.requireAuthenticatedUser(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	app := NewTestApplication(nil, t)
	alice := app.register(t, "alice")

	expired, err := auth.NewTokenIssuer(testPrivateKey(t), nil, -time.Hour).Issue(alice.UserID)
	require.NoError(t, err)
	forgerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	forged, err := auth.NewTokenIssuer(forgerKey, nil, time.Hour).Issue(alice.UserID)
	require.NoError(t, err)
	unknownSubject, err := auth.NewTokenIssuer(testPrivateKey(t), nil, time.Hour).Issue("ghost")
	require.NoError(t, err)

	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextUser(r)
		w.WriteHeader(http.StatusOK)
	})
	testCases := []struct {
		name     string
		header   string
		wantCode int
		wantUser string
	}{
		{"no header is anonymous", "", http.StatusOK, ""},
		{"valid token", alice.Token, http.StatusOK, "alice"},
		{"missing bearer prefix", "Token abc", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
		{"expired token", expired.Value, http.StatusUnauthorized, ""},
		{"forged token", forged.Value, http.StatusUnauthorized, ""},
		{"unknown subject", unknownSubject.Value, http.StatusUnauthorized, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				request.Header.Set("Authorization", tc.header)
			}
			app.Authenticate(next).ServeHTTP(recorder, request)
			assert.Equal(t, tc.wantCode, recorder.Code)
			if tc.wantCode != http.StatusOK {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tc.wantUser, seen.Username)
		})
	}
}

func TestRecoverer(t *testing.T) {
	app := NewTestApplication(nil, t)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	app.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.Limiter.Enabled = true
	cfg.Limiter.Rps = 1
	cfg.Limiter.Burst = 1
	app := NewTestApplication(cfg, t)
	handler := app.RateLimiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, recorder.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	app := NewTestApplication(cfg, t)

	request := httptest.NewRequest(http.MethodOptions, "/review", nil)
	request.Header.Set("Origin", "http://localhost:3000")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	request.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	recorder := httptest.NewRecorder()
	app.handler.ServeHTTP(recorder, request)
	assert.Less(t, recorder.Code, http.StatusMultipleChoices)
	assert.Equal(t, "http://localhost:3000", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPost, recorder.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	request = httptest.NewRequest(http.MethodOptions, "/review", nil)
	request.Header.Set("Origin", "http://evil.example")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)
	recorder = httptest.NewRecorder()
	app.handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	request.Header.Set("Origin", "http://evil.example")
	recorder = httptest.NewRecorder()
	app.handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}
