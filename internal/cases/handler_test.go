package cases

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(env *testEnv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(env.svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandlerCreateCase(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	body := `{"subjectName":"Acme","subjectAddress":"1 Way","category":"contract","rawTextKey":"texts/a.txt"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created Case
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" || created.Status != StatusOpen {
		t.Fatalf("unexpected case payload: %+v", created)
	}
}

func TestHandlerCreateRequiresText(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", strings.NewReader(`{"category":"contract"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandlerGetCaseNotFound(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestHandlerTransitionInvalid(t *testing.T) {
	env := newTestEnv()
	seedCase(t, env.repo, "case-1", "Acme", "1 Way", time.Now().UTC().Add(-time.Hour))
	router := newTestRouter(env)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/case-1/transition",
		strings.NewReader(`{"target":"under_review"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerTransitionConflict(t *testing.T) {
	env := newTestEnv()
	seedCase(t, env.repo, "case-1", "Acme", "1 Way", time.Now().UTC().Add(-time.Hour))
	env.svc.Repo = &racingRepo{Repo: env.repo}
	router := newTestRouter(env)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/case-1/transition",
		strings.NewReader(`{"target":"disputed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestHandlerComputeScore(t *testing.T) {
	env := newTestEnv()
	seedCase(t, env.repo, "case-1", "Acme", "1 Way", time.Now().UTC().Add(-time.Hour))
	router := newTestRouter(env)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/case-1/score", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["score"] != float64(1) {
		t.Fatalf("expected score 1, got %v", payload["score"])
	}
}
