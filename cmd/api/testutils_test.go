package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"amdb/proj/internal/api/tasks"
	"amdb/proj/internal/config"
	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/services"
	"amdb/proj/internal/services/auth"
	"amdb/proj/internal/storage/memory"

	"github.com/stretchr/testify/require"
)

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

func testPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return testKey
}

func testConfig() *config.Config {
	return &config.Config{
		Auth:  config.Auth{TokenTTL: 24 * time.Hour},
		Tasks: config.Tasks{Workers: 1, QueueSize: 10},
		CORS:  config.CORS{AllowedOrigins: []string{"*"}},
	}
}

type testApp struct {
	*Application
	store   *memory.Models
	handler http.Handler
}

func NewTestApplication(cfg *config.Config, t *testing.T) *testApp {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	issuer := auth.NewTokenIssuer(testPrivateKey(t), nil, cfg.Auth.TokenTTL)
	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()
	t.Cleanup(func() { bgTasks.Shutdown(context.Background()) })
	svcs := services.New(log, memoryStorage(store), issuer, nil, bgTasks)
	app := NewApplication(cfg, log, svcs, bgTasks)
	return &testApp{Application: app, store: store, handler: app.routes()}
}

func (a *testApp) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T, username string) models.AuthToken {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/user/register", envelop{"username": username, "password": "pa55word"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.AuthToken](t, rec)
}

func (a *testApp) seedMovie(t *testing.T, movie models.Movie) *models.Movie {
	t.Helper()
	inserted, err := a.store.Movie.Insert(context.Background(), &movie)
	require.NoError(t, err)
	return inserted
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
