package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := Config{
		Port:                 "0",
		JWTSecretKey:         "app-test-secret",
		AccessTokenTTL:       time.Hour,
		RefreshTokenTTL:      24 * time.Hour,
		GoalSweepInterval:    time.Hour,
		GoalSweepConcurrency: 2,
		SeedAchievements:     true,
	}
	a, err := build(context.Background(), repotest.Logger(t), cfg, repotest.FreshDB(t), Clients{}, nil, false)
	require.NoError(t, err)
	return a
}

func do(t *testing.T, a *App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec.Code, out
}

func TestAppEndToEnd(t *testing.T) {
	a := newTestApp(t)

	status, _ := do(t, a, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := do(t, a, http.MethodPost, "/api/register", "", map[string]any{
		"email":      "alex@example.com",
		"password":   "hunter22",
		"first_name": "Alex",
		"last_name":  "Quit",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = do(t, a, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "alex@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, status, body)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	status, body = do(t, a, http.MethodPut, "/api/profile", token, map[string]any{"cigarettes_per_day": 20})
	require.Equal(t, http.StatusOK, status, body)

	status, body = do(t, a, http.MethodPost, "/api/tracking/records", token, map[string]any{"cigarettes_smoked": 15})
	require.Equal(t, http.StatusCreated, status, body)
	profile, _ := body["profile"].(map[string]any)
	require.NotNil(t, profile)
	assert.EqualValues(t, 5, profile["total_cigarettes_avoided"])

	status, body = do(t, a, http.MethodPost, "/api/tracking/records", token, map[string]any{"cigarettes_smoked": 3})
	assert.Equal(t, http.StatusBadRequest, status, "second record for the same day")

	status, body = do(t, a, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	stats, _ := body["statistics"].(map[string]any)
	require.NotNil(t, stats)
	assert.EqualValues(t, 1, stats["total_records"])

	status, body = do(t, a, http.MethodGet, "/api/achievements", token, nil)
	require.Equal(t, http.StatusOK, status, body)
}

func TestAppRouteGuards(t *testing.T) {
	a := newTestApp(t)

	status, _ := do(t, a, http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, a, http.MethodPost, "/api/register", "", map[string]any{
		"email":    "sam@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, status)
	_, body := do(t, a, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "sam@example.com",
		"password": "hunter22",
	})
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	status, _ = do(t, a, http.MethodPost, "/api/admin/content", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, a, http.MethodPut, "/api/admin/content/"+uuid.NewString(), token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, a, http.MethodGet, "/api/goals/active", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, a, http.MethodGet, "/api/content/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, status, body)
	status, _ = do(t, a, http.MethodGet, "/api/content/recommended", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, a, http.MethodDelete, "/api/account", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	status, _ = do(t, a, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = do(t, a, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "sam@example.com",
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}
