package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/BlackJack-14/taskManager/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test_secret"

type stubResolver struct {
	users map[int]model.User
}

func (r *stubResolver) UserByID(id int) (model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return model.User{}, errUserMissing
	}
	return u, nil
}

var errUserMissing = errors.New("user not found")

func signToken(t *testing.T, subject string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newGuardedRouter(resolver UserResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret, resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetInt("userID")})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingOrMalformedHeader(t *testing.T) {
	r := newGuardedRouter(&stubResolver{})

	for _, header := range []string{"", "Token abc", "token_for_user_1"} {
		w := doGet(r, header)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
		if got := w.Body.String(); !strings.Contains(got, "Authorization header missing or malformed") {
			t.Fatalf("header %q: unexpected body %s", header, got)
		}
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := newGuardedRouter(&stubResolver{})

	w := doGet(r, "Bearer not-a-jwt")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, "Invalid token format") {
		t.Fatalf("unexpected body: %s", got)
	}

	// 签名正确但 subject 不是数字
	w = doGet(r, "Bearer "+signToken(t, "abc"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, "Invalid token payload") {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestAuthMiddleware_UserNotFound(t *testing.T) {
	r := newGuardedRouter(&stubResolver{users: map[int]model.User{}})

	w := doGet(r, "Bearer "+signToken(t, "42"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, "Invalid token: User not found") {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestAuthMiddleware_ResolvesUser(t *testing.T) {
	resolver := &stubResolver{users: map[int]model.User{
		7: {ID: 7, Email: "a@x.com", Name: "A"},
	}}
	r := newGuardedRouter(resolver)

	w := doGet(r, "Bearer "+signToken(t, strconv.Itoa(7)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"userID":7`) {
		t.Fatalf("userID not attached: %s", w.Body.String())
	}
}
