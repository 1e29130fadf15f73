package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Leganyst/taskboard-platform/internal/geo"
	"github.com/Leganyst/taskboard-platform/internal/repository"
	"github.com/Leganyst/taskboard-platform/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Схема как в тестах сервисов: ровно те колонки, что нужны логике.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			handle TEXT NOT NULL UNIQUE,
			display_name TEXT,
			contact_phone TEXT,
			status TEXT NOT NULL,
			note TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE posts (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			author_id TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			calendar TEXT,
			slot_count INTEGER,
			task_id TEXT,
			address TEXT,
			lat REAL,
			lng REAL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE claims (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			post_id TEXT NOT NULL,
			claimant_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			slot_start DATETIME,
			slot_end DATETIME,
			comment TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			cancelled_at DATETIME
		);`,
		`CREATE TABLE events (
			id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
			event_type TEXT NOT NULL,
			created_at DATETIME,
			user_id TEXT,
			post_id TEXT,
			claim_id TEXT,
			details TEXT
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	postRepo := repository.NewGormPostRepository(db)
	claimRepo := repository.NewGormClaimRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	eventRepo := repository.NewGormEventRepository(db)

	log := zerolog.Nop()
	h := &Handler{
		Posts:    service.NewPostService(postRepo, eventRepo, nil, log),
		Claims:   service.NewClaimService(claimRepo, postRepo, userRepo, eventRepo, log),
		Users:    service.NewUserService(userRepo),
		Geocoder: geo.NewGeocoder("http://127.0.0.1:0", time.Second, log),
		Log:      log,
	}
	return NewRouter(h), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return m
}

func registerUser(t *testing.T, r *gin.Engine, handle, phone string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/users", gin.H{
		"handle":       handle,
		"displayName":  handle,
		"contactPhone": phone,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", handle, w.Code, w.Body.String())
	}
	return decodeBody(t, w)["id"].(string)
}

func createNotice(t *testing.T, r *gin.Engine, authorID, title string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", gin.H{
		"authorId": authorID,
		"type":     "notice",
		"title":    title,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", w.Code, w.Body.String())
	}
	return decodeBody(t, w)["id"].(string)
}

func TestListPosts_PageEnvelope(t *testing.T) {
	r, _ := newTestRouter(t)

	authorID := registerUser(t, r, "ivanova", "")
	for i := 0; i < 3; i++ {
		createNotice(t, r, authorID, fmt.Sprintf("объявление %d", i))
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/posts?page=1&pageSize=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if got := body["total"].(float64); got != 3 {
		t.Fatalf("total = %v, want 3", got)
	}
	if len(body["items"].([]any)) != 2 {
		t.Fatalf("items = %v, want 2 on first page", body["items"])
	}
	if body["hasNext"] != true || body["hasPrev"] != false {
		t.Fatalf("first page flags: hasNext=%v hasPrev=%v", body["hasNext"], body["hasPrev"])
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/posts?page=2&pageSize=2", nil)
	body = decodeBody(t, w)
	if len(body["items"].([]any)) != 1 {
		t.Fatalf("items = %v, want 1 on last page", body["items"])
	}
	if body["hasNext"] != false || body["hasPrev"] != true {
		t.Fatalf("last page flags: hasNext=%v hasPrev=%v", body["hasNext"], body["hasPrev"])
	}
}

func TestClaim_HalfSpecifiedSlotRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	authorID := registerUser(t, r, "ivanova", "")
	claimantID := registerUser(t, r, "petrov", "")

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", gin.H{
		"authorId": authorID,
		"type":     "swap",
		"title":    "обмен книгами",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", w.Code, w.Body.String())
	}
	postID := decodeBody(t, w)["id"].(string)

	// Только начало слота, без конца.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+postID+"/claims/swap", gin.H{
		"claimantId": claimantID,
		"slotStart":  "2026-09-01T09:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
	}
	if msg := decodeBody(t, w)["error"].(string); !strings.Contains(msg, "together") {
		t.Fatalf("error = %q, want slot pair message", msg)
	}

	// Только конец слота, без начала.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+postID+"/claims/swap", gin.H{
		"claimantId": claimantID,
		"slotEnd":    "2026-09-01T10:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body %s", w.Code, w.Body.String())
	}
}

func TestLookupUserByPhone(t *testing.T) {
	r, _ := newTestRouter(t)

	registerUser(t, r, "sidorov", "+7 (900) 111-22-33")

	w := doJSON(t, r, http.MethodGet, "/api/v1/users?phone=7-900-111-22-33", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["handle"]; got != "sidorov" {
		t.Fatalf("handle = %v, want sidorov", got)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users?phone=79990000000", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown phone status = %d, want 404", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users?phone=", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty phone status = %d, want 400", w.Code)
	}
}

func TestListUserPosts(t *testing.T) {
	r, _ := newTestRouter(t)

	authorID := registerUser(t, r, "ivanova", "")
	otherID := registerUser(t, r, "petrov", "")
	createNotice(t, r, authorID, "моё первое")
	createNotice(t, r, authorID, "моё второе")
	createNotice(t, r, otherID, "чужое")

	w := doJSON(t, r, http.MethodGet, "/api/v1/users/ivanova/posts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if got := body["total"].(float64); got != 2 {
		t.Fatalf("total = %v, want 2", got)
	}
	for _, it := range body["items"].([]any) {
		if got := it.(map[string]any)["authorId"]; got != authorID {
			t.Fatalf("foreign post in author feed: authorId = %v", got)
		}
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/nobody/posts", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown handle status = %d, want 404", w.Code)
	}
}

func TestListUserClaims(t *testing.T) {
	r, _ := newTestRouter(t)

	authorID := registerUser(t, r, "ivanova", "")
	claimantID := registerUser(t, r, "petrov", "")

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", gin.H{
		"authorId": authorID,
		"type":     "freecycle",
		"title":    "отдам стеллаж",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", w.Code, w.Body.String())
	}
	postID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/"+postID+"/claims/freecycle", gin.H{
		"claimantId": claimantID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("claim: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/petrov/claims", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if got := body["total"].(float64); got != 1 {
		t.Fatalf("total = %v, want 1", got)
	}
	item := body["items"].([]any)[0].(map[string]any)
	if item["claimantId"] != claimantID || item["postId"] != postID {
		t.Fatalf("claim item = %v", item)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/users/ivanova/claims", nil)
	if got := decodeBody(t, w)["total"].(float64); got != 0 {
		t.Fatalf("author claims total = %v, want 0", got)
	}
}

func TestListPostEvents(t *testing.T) {
	r, _ := newTestRouter(t)

	authorID := registerUser(t, r, "ivanova", "")
	postID := createNotice(t, r, authorID, "субботник")

	w := doJSON(t, r, http.MethodPut, "/api/v1/posts/"+postID, gin.H{
		"authorId": authorID,
		"type":     "notice",
		"title":    "субботник перенесён",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update post: status %d body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/posts/"+postID+"/events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if got := body["total"].(float64); got != 2 {
		t.Fatalf("total = %v, want 2", got)
	}
	types := map[string]bool{}
	for _, it := range body["items"].([]any) {
		types[it.(map[string]any)["eventType"].(string)] = true
	}
	if !types["post_created"] || !types["post_updated"] {
		t.Fatalf("event types = %v, want created and updated", types)
	}
}
