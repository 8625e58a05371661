package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"worklog-backend/config"
	"worklog-backend/internal/api"
	"worklog-backend/internal/kv"
	"worklog-backend/internal/localstore"
	"worklog-backend/internal/mirror"
	"worklog-backend/internal/model"
	"worklog-backend/internal/queue"
	"worklog-backend/internal/remote"
	"worklog-backend/internal/repo"
)

// fakeBackend simulates the cloud REST service with a switchable
// outage.
type fakeBackend struct {
	mu           sync.Mutex
	down         bool
	punchInserts int
	rpcCalls     int
	nextID       int64
	projects     []map[string]any
}

func (b *fakeBackend) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.down {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"message":"service unavailable"}`)
			return
		}

		switch {
		case r.Method == "POST" && r.URL.Path == "/rest/v1/rpc/punch_worker":
			b.rpcCalls++
			w.WriteHeader(http.StatusNoContent)
		case r.Method == "POST" && r.URL.Path == "/rest/v1/punches":
			b.punchInserts++
			w.WriteHeader(http.StatusCreated)
		case r.Method == "POST" && r.URL.Path == "/rest/v1/projects":
			var row map[string]any
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &row)
			b.nextID++
			row["id"] = b.nextID
			row["created_at"] = "2025-06-01T10:00:00Z"
			b.projects = append(b.projects, row)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(row)
		case r.Method == "GET" && r.URL.Path == "/rest/v1/projects":
			json.NewEncoder(w).Encode(b.projects)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"no such route"}`)
		}
	})
}

func (b *fakeBackend) setDown(down bool) {
	b.mu.Lock()
	b.down = down
	b.mu.Unlock()
}

// TestOfflinePunchLifecycle records a punch during an outage, verifies
// it is queued and mirrored, then brings the backend back and flushes.
func TestOfflinePunchLifecycle(t *testing.T) {
	backend := &fakeBackend{nextID: 100}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, testDB.AutoMigrate(&model.Project{}))

	store := kv.NewMemory()
	remoteClient := remote.NewHTTPClient(&config.RemoteConfig{URL: server.URL, APIKey: "test-key", TimeoutSeconds: 5})
	pendingQueue := queue.NewService(store, logger, 0)
	projectStore := localstore.NewGormProjects(testDB)
	syncRepo := repo.New(remoteClient, pendingQueue, mirror.New(store), projectStore, logger)

	handler := api.NewHandler(syncRepo, nil, nil, logger)
	router := api.NewRouter(&config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 1}, handler)

	do := func(method, path string, payload any) *httptest.ResponseRecorder {
		var body *bytes.Buffer
		if payload != nil {
			raw, err := json.Marshal(payload)
			require.NoError(t, err)
			body = bytes.NewBuffer(raw)
		} else {
			body = bytes.NewBuffer(nil)
		}
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}

	// 1. The backend goes dark. Recording still succeeds.
	backend.setDown(true)

	w := do("POST", "/api/punches/worker/101", map[string]any{
		"kind": "in",
		"ts":   "2025-06-02T08:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var punchResp struct {
		Queued bool `json:"queued"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &punchResp))
	assert.True(t, punchResp.Queued)

	// The mirror serves history even with the backend down.
	w = do("GET", "/api/punches/worker/101", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []model.PunchRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 1)

	// 2. A project created during the outage gets a provisional id.
	w = do("POST", "/api/projects", map[string]any{
		"employer_no": 5001,
		"name":        "North Site",
		"location":    "Haifa",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do("GET", "/api/sync/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending":2,"dead":0}`, w.Body.String())

	// A flush during the outage changes nothing.
	w = do("POST", "/api/sync/flush", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":0,"failed":2,"dead":0}`, w.Body.String())

	// 3. The backend recovers and the flush delivers everything.
	backend.setDown(false)

	w = do("POST", "/api/sync/flush", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":2,"failed":0,"dead":0}`, w.Body.String())

	assert.Equal(t, 1, backend.punchInserts)

	w = do("GET", "/api/sync/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pending":0,"dead":0}`, w.Body.String())

	// The provisional project row was replaced by the remote one.
	projects, err := syncRepo.ListProjects(context.Background(), 5001)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.NotNil(t, projects[0].ID)
	assert.Equal(t, int64(101), *projects[0].ID)
	assert.Equal(t, "North Site", projects[0].Name)
}
