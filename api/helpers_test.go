package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/campus/api"
	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/internal/repository/memory"
	"github.com/garnizeh/campus/pkg/models"
)

const testSecret = "testsecret"

func TestMain(m *testing.M) {
	api.SetLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []jobs.Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n jobs.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) all() []jobs.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]jobs.Notification(nil), r.sent...)
}

type testAPI struct {
	router   *mux.Router
	store    *memory.Store
	notifier *recordingNotifier
}

func newTestAPI(t *testing.T, collab ai.Collaborator) *testAPI {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, TokenDuration: time.Hour}
	store := memory.New()
	n := &recordingNotifier{}
	advisor := ai.NewAdvisor(collab, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return &testAPI{
		router:   api.SetupRoutes(cfg, "test", "now", store, advisor, n),
		store:    store,
		notifier: n,
	}
}

// do sends a request; body may be a string (sent verbatim) or a value to
// encode as JSON.
func (a *testAPI) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status: got %d want %d, body=%s", w.Code, want, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (a *testAPI) user(t *testing.T, username string, role models.Role, expertise []string, rating float64) *models.User {
	t.Helper()
	u, err := a.store.CreateUser(context.Background(), &models.User{
		Username:  username,
		Email:     username + "@campus.edu",
		Password:  "hash",
		FullName:  username + " Full",
		Role:      role,
		Expertise: expertise,
		Rating:    rating,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (a *testAPI) project(t *testing.T, authorID int64, title string, tech []string) *models.Project {
	t.Helper()
	p, err := a.store.CreateProject(context.Background(), &models.Project{
		Title:        title,
		Description:  title + " description",
		AuthorID:     authorID,
		Technologies: tech,
		Difficulty:   models.DifficultyIntermediate,
	})
	if err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	return p
}

func (a *testAPI) feed(t *testing.T) []models.ActivityWithUser {
	t.Helper()
	acts, err := a.store.ListActivitiesWithUsers(context.Background(), 0)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	return acts
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
