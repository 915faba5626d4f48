package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BlackJack-14/taskManager/internal/pkg/metrics"
	"github.com/BlackJack-14/taskManager/internal/store"

	"github.com/gin-gonic/gin"
)

func newTestHandler(t *testing.T) (*Handler, *store.Store, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics.InitMetrics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st := store.NewStore()
	h := NewHandler(st, "test_secret", time.Hour, logger)

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
	return h, st, r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_Normal(t *testing.T) {
	_, st, r := newTestHandler(t)

	w := postJSON(r, "/register", gin.H{"email": "a@x.com", "password": "p", "name": "A"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		User    struct {
			ID    int    `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.ID != 1 || resp.User.Email != "a@x.com" || resp.Token == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password leaked in response: %s", w.Body.String())
	}

	if users, _ := st.Counts(); users != 1 {
		t.Fatalf("expected 1 user in store, got %d", users)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	_, _, r := newTestHandler(t)

	for _, body := range []gin.H{
		{"password": "p", "name": "A"},
		{"email": "a@x.com", "name": "A"},
		{"email": "a@x.com", "password": "p"},
		{"email": "", "password": "p", "name": "A"},
	} {
		w := postJSON(r, "/register", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Email, password, and name are required") {
			t.Fatalf("body %v: unexpected message %s", body, w.Body.String())
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, _, r := newTestHandler(t)

	if w := postJSON(r, "/register", gin.H{"email": "a@x.com", "password": "p", "name": "A"}); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	w := postJSON(r, "/register", gin.H{"email": "a@x.com", "password": "q", "name": "B"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "User already exists") {
		t.Fatalf("unexpected message: %s", w.Body.String())
	}
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	_, _, r := newTestHandler(t)
	postJSON(r, "/register", gin.H{"email": "a@x.com", "password": "right", "name": "A"})

	wrongPass := postJSON(r, "/login", gin.H{"email": "a@x.com", "password": "wrong"})
	unknown := postJSON(r, "/login", gin.H{"email": "nobody@x.com", "password": "right"})

	if wrongPass.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("failure bodies must match: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
	if !strings.Contains(wrongPass.Body.String(), "Invalid credentials") {
		t.Fatalf("unexpected message: %s", wrongPass.Body.String())
	}
}

func TestLogin_Normal(t *testing.T) {
	_, _, r := newTestHandler(t)
	postJSON(r, "/register", gin.H{"email": "a@x.com", "password": "p", "name": "A"})

	w := postJSON(r, "/login", gin.H{"email": "a@x.com", "password": "p"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Login successful") || !strings.Contains(w.Body.String(), "token") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	_, _, r := newTestHandler(t)

	w := postJSON(r, "/login", gin.H{"email": "a@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Email and password are required") {
		t.Fatalf("unexpected message: %s", w.Body.String())
	}
}

func TestLogout_Stateless(t *testing.T) {
	_, _, r := newTestHandler(t)

	w := postJSON(r, "/logout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Logged out successfully") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
