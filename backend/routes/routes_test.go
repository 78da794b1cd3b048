package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neuralnexus/backend/config"
	"neuralnexus/backend/services"
	"neuralnexus/backend/store"
	"neuralnexus/backend/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := store.InitDB(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	tokens := utils.NewTokenIssuer("routes-test", time.Hour)
	tracker := services.NewTracker(services.Deps{
		Tx:       store.NewTx(db),
		Users:    store.NewUserRepo(db),
		Goals:    store.NewGoalRepo(db),
		Progress: store.NewProgressRepo(db),
		Tokens:   tokens,
		Log:      zap.NewNop(),
		Location: time.UTC,
	})
	return NewApp(Deps{
		Tracker: tracker,
		Tokens:  tokens,
		DB:      sqlDB,
		Log:     zap.NewNop(),
	})
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func register(t *testing.T, app *fiber.App, name, email string) string {
	t.Helper()
	status, env := call(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var res services.AuthResult
	decode(t, env.Data, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestHealthAndCatalog(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	status, env := call(t, app, http.MethodGet, "/api/overview/catalog", "", nil)
	assert.Equal(t, http.StatusOK, status)
	var catalog struct {
		Categories   []map[string]string `json:"categories"`
		Achievements []map[string]string `json:"achievements"`
	}
	decode(t, env.Data, &catalog)
	assert.Len(t, catalog.Categories, 8)
	assert.Equal(t, "welcome", catalog.Achievements[0]["id"])
}

func TestAuthFlow(t *testing.T) {
	app := setupApp(t)
	register(t, app, "Ada Lovelace", "ada@example.com")

	status, env := call(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Ada Again", "email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, _ = call(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"name": "Al", "email": "al@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "ada@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Message)

	status, env = call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "ada@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, status)
	var res services.AuthResult
	decode(t, env.Data, &res)
	assert.Equal(t, 5, res.Summary.ExperienceGained)
	assert.Equal(t, 1, res.Summary.CurrentStreak)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	status, env := call(t, app, http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Missing authorization token", env.Message)

	status, _ = call(t, app, http.MethodGet, "/api/goals", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	other := utils.NewTokenIssuer("someone-else", time.Hour)
	forged, err := other.Issue(1, "Mallory")
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/api/leaderboard", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGoalLifecycle(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "Ada Lovelace", "ada@example.com")
	intruder := register(t, app, "Mallory", "mallory@example.com")

	status, env := call(t, app, http.MethodPost, "/api/goals", token, fiber.Map{
		"description": "Learn Go generics",
		"category":    "web-development",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var created services.GoalResult
	decode(t, env.Data, &created)
	assert.Equal(t, 10, created.Summary.ExperienceGained)
	goalPath := fmt.Sprintf("/api/goals/%d", created.Goal.ID)

	status, _ = call(t, app, http.MethodPost, "/api/goals", token, fiber.Map{
		"description": "Bad category", "category": "astrology",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodGet, "/api/goals?status=pending&limit=5", token, nil)
	require.Equal(t, http.StatusOK, status)
	var meta utils.PageMeta
	decode(t, env.Meta, &meta)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, 5, meta.Limit)
	assert.False(t, meta.HasMore)

	status, _ = call(t, app, http.MethodGet, "/api/goals?status=done", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodGet, goalPath, token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, goalPath, intruder, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodGet, "/api/goals/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = call(t, app, http.MethodPut, goalPath, token, fiber.Map{"status": "completed"})
	require.Equal(t, http.StatusOK, status, env.Message)
	var updated services.GoalResult
	decode(t, env.Data, &updated)
	assert.Equal(t, 50, updated.Summary.ExperienceGained)
	assert.Contains(t, updated.Summary.NewAchievements, "First Goal Completed")
	assert.NotNil(t, updated.Goal.CompletedAt)

	status, env = call(t, app, http.MethodGet, goalPath+"/curriculum", token, nil)
	require.Equal(t, http.StatusOK, status)
	var viewed services.GoalResult
	decode(t, env.Data, &viewed)
	assert.Equal(t, 5, viewed.Summary.ExperienceGained)
	assert.False(t, viewed.Goal.HasCurriculum)

	status, _ = call(t, app, http.MethodDelete, goalPath, intruder, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodDelete, goalPath, token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodGet, goalPath, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserReadModels(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "Ada Lovelace", "ada@example.com")

	status, _ := call(t, app, http.MethodPost, "/api/goals", token, fiber.Map{"description": "Learn SQL"})
	require.Equal(t, http.StatusCreated, status)

	status, env := call(t, app, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	var profile struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		GoalStats struct {
			Total int `json:"total"`
		} `json:"goalStats"`
	}
	decode(t, env.Data, &profile)
	assert.Equal(t, "ada@example.com", profile.User.Email)
	assert.Equal(t, 1, profile.GoalStats.Total)
	assert.NotContains(t, string(env.Data), "password")

	status, _ = call(t, app, http.MethodGet, "/api/user/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodGet, "/api/user/progress", token, nil)
	require.Equal(t, http.StatusOK, status)
	var overview struct {
		StreakDays int `json:"streakDays"`
		Level      int `json:"level"`
	}
	decode(t, env.Data, &overview)
	assert.Equal(t, 1, overview.StreakDays)
	assert.Equal(t, 1, overview.Level)

	status, env = call(t, app, http.MethodGet, "/api/user/activity?limit=2", token, nil)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Activities []map[string]interface{} `json:"activities"`
		Total      int                      `json:"total"`
		HasMore    bool                     `json:"hasMore"`
	}
	decode(t, env.Data, &page)
	assert.Len(t, page.Activities, 2)
	assert.Equal(t, "dashboard_viewed", page.Activities[0]["action"])
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)

	status, _ = call(t, app, http.MethodPost, "/api/user/activity", token, fiber.Map{"action": "teleported"})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, http.MethodPost, "/api/user/activity", token, fiber.Map{
		"action": "curriculum_viewed", "timeSpent": 20, "metadata": fiber.Map{"source": "web"},
	})
	assert.Equal(t, http.StatusCreated, status)

	status, env = call(t, app, http.MethodGet, "/api/user/daily-stats?days=7", token, nil)
	require.Equal(t, http.StatusOK, status)
	var report struct {
		Days   int `json:"days"`
		Totals struct {
			TimeSpent int `json:"timeSpent"`
		} `json:"totals"`
	}
	decode(t, env.Data, &report)
	assert.Equal(t, 7, report.Days)
	assert.Equal(t, 20, report.Totals.TimeSpent)

	status, env = call(t, app, http.MethodGet, "/api/user/achievements", token, nil)
	require.Equal(t, http.StatusOK, status)
	var achievements struct {
		Total int `json:"total"`
	}
	decode(t, env.Data, &achievements)
	assert.Equal(t, 1, achievements.Total)

	status, _ = call(t, app, http.MethodPost, "/api/user/session", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = call(t, app, http.MethodGet, "/api/leaderboard?by=goals", token, nil)
	require.Equal(t, http.StatusOK, status)
	var board []map[string]interface{}
	decode(t, env.Data, &board)
	require.Len(t, board, 1)
	assert.Equal(t, "Ada Lovelace", board[0]["name"])

	status, _ = call(t, app, http.MethodGet, "/api/leaderboard?by=karma", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfileSettings(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "Ada Lovelace", "ada@example.com")
	register(t, app, "Grace Hopper", "grace@example.com")

	status, _ := call(t, app, http.MethodPut, "/api/user/profile", token, fiber.Map{"email": "grace@example.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, env := call(t, app, http.MethodPut, "/api/user/profile", token, fiber.Map{"name": "Countess Ada"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Countess Ada")

	status, env = call(t, app, http.MethodPut, "/api/user/preferences", token, fiber.Map{"weeklyReports": false})
	require.Equal(t, http.StatusOK, status)
	var prefs map[string]bool
	decode(t, env.Data, &prefs)
	assert.False(t, prefs["weeklyReports"])
	assert.True(t, prefs["emailNotifications"])

	status, _ = call(t, app, http.MethodPut, "/api/user/change-password", token, fiber.Map{
		"currentPassword": "wrong", "newPassword": "another1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, app, http.MethodPut, "/api/user/change-password", token, fiber.Map{
		"currentPassword": "secret123", "newPassword": "another1",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email": "ada@example.com", "password": "another1",
	})
	assert.Equal(t, http.StatusOK, status)
}
