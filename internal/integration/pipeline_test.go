package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"hireflow/internal/app"
	"hireflow/internal/config"
	"hireflow/internal/infrastructure/ai"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type idItem struct {
	ID uuid.UUID `json:"id"`
}

// scriptedCompleter answers every chat call with the current reply.
type scriptedCompleter struct {
	mu    sync.Mutex
	reply string
}

func (s *scriptedCompleter) set(reply string) {
	s.mu.Lock()
	s.reply = reply
	s.mu.Unlock()
}

func (s *scriptedCompleter) Complete(ctx context.Context, req ai.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reply, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	if os.Getenv("DB_HOST") == "" {
		t.Skip("DB_HOST not set; skipping Postgres integration test")
	}
	return config.Config{
		App: config.AppConfig{
			AppName:        "hireflow-test",
			Environment:    "test",
			HTTPPort:       "0",
			UploadsDir:     t.TempDir(),
			UploadMaxBytes: 1 << 20,
		},
		Database: config.DatabaseConfig{
			DBHost:         os.Getenv("DB_HOST"),
			DBPort:         envOr("DB_PORT", "5432"),
			DBName:         envOr("DB_NAME", "hireflow"),
			DBUser:         envOr("DB_USER", "postgres"),
			DBPassword:     os.Getenv("DB_PASSWORD"),
			DBSSLMode:      envOr("DB_SSL_MODE", "disable"),
			ConnectTimeout: 5 * time.Second,
			PoolMaxConns:   4,
		},
		JWT: config.JWTConfig{
			AccessSecret:     "integration-access",
			RefreshSecret:    "integration-refresh",
			AccessExpiresIn:  time.Minute,
			RefreshExpiresIn: time.Hour,
		},
		Redis: config.RedisConfig{Host: "127.0.0.1", Port: "1"},
		AI:    config.AIConfig{Provider: config.ProviderOpenAI},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *client) do(req *http.Request) (int, semanticResponse, []byte) {
	c.t.Helper()
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, fiber.TestConfig{Timeout: 30 * time.Second})
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var env semanticResponse
	_ = json.Unmarshal(body, &env)
	return resp.StatusCode, env, body
}

func (c *client) json(method, path string, v any) (int, semanticResponse) {
	c.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(c.t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	status, env, _ := c.do(req)
	return status, env
}

func (c *client) upload(path, field, filename string, data []byte) (int, semanticResponse) {
	c.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(c.t, err)
	_, err = fw.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	status, env, _ := c.do(req)
	return status, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestIntegration_JobCandidateScoreReport(t *testing.T) {
	cfg := testConfig(t)

	c, err := app.NewContainer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = c.Close(ctx)
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	require.NoError(t, c.Migrate(ctx))

	completer := &scriptedCompleter{}
	c.AI = ai.NewStaticResolver(completer)
	api := &client{t: t, app: app.New(c).Fiber}

	status, env := api.json(fiber.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":        "recruiter-" + uuid.NewString()[:8] + "@example.com",
		"password":     "correct-horse-battery",
		"full_name":    "Riley Recruiter",
		"company_name": "Acme",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	api.token = decode[struct {
		AccessToken string `json:"access_token"`
	}](t, env.Data).AccessToken
	require.NotEmpty(t, api.token)

	status, env = api.json(fiber.MethodPost, "/api/v1/jobs", map[string]string{
		"title":       "Backend Engineer",
		"company":     "Acme",
		"description": "Build Go services on Postgres.",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	jobID := decode[idItem](t, env.Data).ID
	jobPath := "/api/v1/jobs/" + jobID.String()

	var reqIDs []uuid.UUID
	for _, r := range []map[string]any{
		{"category": "technical", "description": "Go", "weight": 10, "is_required": true},
		{"category": "technical", "description": "Kubernetes", "weight": 5},
	} {
		status, env = api.json(fiber.MethodPost, jobPath+"/requirements", r)
		require.Equal(t, fiber.StatusCreated, status, env.Message)
		reqIDs = append(reqIDs, decode[idItem](t, env.Data).ID)
	}

	resume := "John Doe\nSenior Go engineer, 7 years.\nKubernetes basics.\n"
	status, env = api.upload(jobPath+"/candidates", "files", "resume_john_doe_2023.txt", []byte(resume))
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	uploaded := decode[struct {
		Result []struct {
			ID   uuid.UUID `json:"id"`
			Name string    `json:"name"`
		} `json:"result"`
	}](t, env.Data)
	require.Len(t, uploaded.Result, 1)
	assert.Equal(t, "John Doe", uploaded.Result[0].Name)
	candPath := "/api/v1/candidates/" + uploaded.Result[0].ID.String()

	reply, err := json.Marshal(map[string]any{
		"scores": []map[string]any{
			{"requirementId": reqIDs[0].String(), "score": 8, "comment": "strong Go"},
			{"requirementId": reqIDs[1].String(), "score": 4, "comment": "some k8s"},
		},
		"overallScore": 9.9,
		"strengths":    []string{"Go"},
		"weaknesses":   []string{"Kubernetes depth"},
	})
	require.NoError(t, err)
	completer.set(string(reply))

	type scored struct {
		OverallScore float64 `json:"overall_score"`
		Scores       []struct {
			RequirementID string `json:"requirement_id"`
		} `json:"scores"`
	}
	for i := 0; i < 2; i++ {
		status, env = api.json(fiber.MethodPost, candPath+"/score", nil)
		require.Equal(t, fiber.StatusOK, status, env.Message)
	}

	status, env = api.json(fiber.MethodGet, candPath, nil)
	require.Equal(t, fiber.StatusOK, status)
	got := decode[scored](t, env.Data)
	assert.InDelta(t, 6.7, got.OverallScore, 1e-9)
	require.Len(t, got.Scores, 2, "re-scoring replaces instead of appending")
	assert.Equal(t, reqIDs[0].String(), got.Scores[0].RequirementID)

	status, _ = api.json(fiber.MethodDelete, jobPath+"/requirements/"+reqIDs[0].String(), nil)
	assert.Equal(t, fiber.StatusConflict, status)

	completer.set("not json at all")
	status, env = api.json(fiber.MethodPost, jobPath+"/reports", map[string]any{
		"candidate_ids": []uuid.UUID{uploaded.Result[0].ID, uuid.New()},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	rep := decode[struct {
		Result struct {
			ID           uuid.UUID   `json:"id"`
			Content      string      `json:"content"`
			CandidateIDs []uuid.UUID `json:"candidate_ids"`
			GeneratedBy  string      `json:"generated_by"`
		} `json:"result"`
	}](t, env.Data).Result
	assert.Equal(t, "fallback", rep.GeneratedBy)
	assert.Contains(t, rep.Content, "Recommendations")
	assert.Equal(t, []uuid.UUID{uploaded.Result[0].ID}, rep.CandidateIDs)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/reports/"+rep.ID.String()+"/export?format=csv", nil)
	status, _, body := api.do(req)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, strings.Contains(string(body), "John Doe"))

	status, _ = api.json(fiber.MethodDelete, jobPath, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, _ = api.json(fiber.MethodGet, candPath, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
