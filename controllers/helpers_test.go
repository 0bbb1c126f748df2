package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"library-management-api/app"
	"library-management-api/controllers"
	"library-management-api/db"
	"library-management-api/mail"
	"library-management-api/ratelimit"
	"library-management-api/routes"
	"library-management-api/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	router *gin.Engine
	repo   *db.Repo
	srv    *controllers.Srv
}

// newTestEnv stands up the full route table against an in-memory database
// and in-process token store / limiter.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:ctl_%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	s := &controllers.Srv{
		Repo:    db.NewRepo(conn),
		Tokens:  session.NewMemoryStore(0),
		Limiter: ratelimit.NewMemoryLimiter(),
		Mailer:  mail.LogMailer{},
		Cfg:     app.Config{FrontendURL: "http://localhost:3000"},
	}

	r := gin.New()
	routes.Register(r, s)
	return &testEnv{router: r, repo: s.Repo, srv: s}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.doFrom(t, method, path, "192.0.2.1:1234", token, body)
}

func (e *testEnv) doFrom(t *testing.T, method, path, remoteAddr, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = remoteAddr
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), "body: %s", w.Body.String())
	return m
}

func (e *testEnv) register(t *testing.T, name, email, password string) (token string, user map[string]interface{}) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	body := decode(t, w)
	return body["access_token"].(string), body["user"].(map[string]interface{})
}

// registerAdmin registers then promotes. The middleware re-reads the user on
// every request, so the already issued token picks up the new role.
func (e *testEnv) registerAdmin(t *testing.T, email string) string {
	t.Helper()
	token, user := e.register(t, "Admin", email, "password123")
	require.NoError(t, e.repo.SetUserRole(context.Background(), user["id"].(string), "admin"))
	return token
}

func (e *testEnv) createBook(t *testing.T, adminToken, title, isbn string, copies int) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/admin/books", adminToken, gin.H{
		"title": title, "author": "Some Author", "isbn": isbn,
		"genre": "Fiction", "total_copies": copies,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	return data["id"].(string)
}

func (e *testEnv) bookAvailable(t *testing.T, token, bookID string) int {
	t.Helper()
	w := e.do(t, http.MethodGet, "/books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	return int(data["available_copies"].(float64))
}
