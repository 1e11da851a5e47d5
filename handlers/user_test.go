// user_test.go - Automated tests for the login handler
// Run with: go test ./...

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"email-login-backend/config"
	"email-login-backend/database"
	"email-login-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeProvider records every Open and Close so tests can check connection hygiene
type fakeProvider struct {
	mu       sync.Mutex
	users    map[string]*models.Row
	openErr  error
	queryErr error
	opens    int
	closes   int
	queries  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: make(map[string]*models.Row)}
}

func (p *fakeProvider) addUser(id int64, name, email string) {
	row := models.NewRow()
	row.Set("id", id)
	row.Set("name", name)
	row.Set("email", email)
	p.users[email] = row
}

func (p *fakeProvider) Open(ctx context.Context) (database.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opens++
	if p.openErr != nil {
		return nil, p.openErr
	}
	return &fakeSession{p: p}, nil
}

func (p *fakeProvider) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opens, p.closes
}

type fakeSession struct {
	p *fakeProvider
}

func (s *fakeSession) FindUserByEmail(ctx context.Context, email string) (*models.Row, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.queries = append(s.p.queries, email)
	if s.p.queryErr != nil {
		return nil, s.p.queryErr
	}
	row, ok := s.p.users[email]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	return row, nil
}

func (s *fakeSession) Close() error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	s.p.closes++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Port: "0", CORSAllowedOrigins: []string{"*"}, ServiceName: "test"}
}

// postLogin sends body to /login and decodes the JSON reply
func postLogin(t *testing.T, router *gin.Engine, body []byte) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()                                        // Record HTTP response
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body)) // Build request
	req.Header.Set("Content-Type", "application/json")                 // Set header
	router.ServeHTTP(w, req)                                           // Serve request

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestLoginFound(t *testing.T) {
	provider := newFakeProvider()
	provider.addUser(1, "Ankit", "a@x.com")
	router := SetupRouter(testConfig(), provider)

	code, resp := postLogin(t, router, []byte(`{"email":"a@x.com"}`))

	assert.Equal(t, 200, code)
	assert.Equal(t, MsgLoginSuccess, resp["message"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Equal(t, "Ankit", user["name"])
	assert.Equal(t, float64(1), user["id"])

	opens, closes := provider.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)
}

func TestLoginMissingEmail(t *testing.T) {
	bodies := map[string][]byte{
		"empty object": []byte(`{}`),
		"empty email":  []byte(`{"email":""}`),
		"no body":      nil,
		"invalid json": []byte(`{"email":`),
		"null body":    []byte(`null`),
		"wrong type":   []byte(`{"email":42}`),
		"null email":   []byte(`{"email":null}`),
		"array body":   []byte(`[{"email":"a@x.com"}]`),
		"title case":   []byte(`{"Email":"a@x.com"}`),
		"upper case":   []byte(`{"EMAIL":"a@x.com"}`),
		"mixed keys":   []byte(`{"email":"","Email":"a@x.com"}`),
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			provider := newFakeProvider()
			provider.addUser(1, "Ankit", "a@x.com") // Present, so only validation can stop a 200
			router := SetupRouter(testConfig(), provider)

			code, resp := postLogin(t, router, body)

			assert.Equal(t, 400, code)
			assert.Equal(t, map[string]any{"message": MsgEmailRequired}, resp)

			opens, _ := provider.counts()
			assert.Equal(t, 0, opens) // Validation happens before any connection
		})
	}
}

func TestLoginNotFound(t *testing.T) {
	provider := newFakeProvider()
	provider.addUser(1, "Ankit", "a@x.com")
	router := SetupRouter(testConfig(), provider)

	code, resp := postLogin(t, router, []byte(`{"email":"ghost@x.com"}`))

	assert.Equal(t, 404, code)
	assert.Equal(t, map[string]any{"message": MsgEmailNotFound}, resp)

	opens, closes := provider.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)
}

func TestLoginDatabaseUnreachable(t *testing.T) {
	provider := newFakeProvider()
	provider.openErr = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	router := SetupRouter(testConfig(), provider)

	code, resp := postLogin(t, router, []byte(`{"email":"a@x.com"}`))

	assert.Equal(t, 500, code)
	assert.Equal(t, map[string]any{"message": MsgServerError}, resp) // No detail leaked

	opens, closes := provider.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 0, closes) // Nothing was opened, so nothing to close
}

func TestLoginQueryFailureClosesSession(t *testing.T) {
	provider := newFakeProvider()
	provider.queryErr = errors.New("Error 1146: Table 'tasla.users' doesn't exist")
	router := SetupRouter(testConfig(), provider)

	code, resp := postLogin(t, router, []byte(`{"email":"a@x.com"}`))

	assert.Equal(t, 500, code)
	assert.Equal(t, map[string]any{"message": MsgServerError}, resp)

	opens, closes := provider.counts()
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, closes)
}

func TestLoginIsIdempotent(t *testing.T) {
	provider := newFakeProvider()
	provider.addUser(1, "Ankit", "a@x.com")
	router := SetupRouter(testConfig(), provider)

	for i := 0; i < 5; i++ {
		code, _ := postLogin(t, router, []byte(`{"email":"a@x.com"}`))
		assert.Equal(t, 200, code)
		code, _ = postLogin(t, router, []byte(`{"email":"ghost@x.com"}`))
		assert.Equal(t, 404, code)
	}

	opens, closes := provider.counts()
	assert.Equal(t, 10, opens)
	assert.Equal(t, opens, closes)
}

func TestLoginPassesEmailVerbatim(t *testing.T) {
	provider := newFakeProvider()
	router := SetupRouter(testConfig(), provider)

	email := "x' OR '1'='1"
	code, _ := postLogin(t, router, []byte(`{"email":"x' OR '1'='1"}`))

	assert.Equal(t, 404, code)
	assert.Equal(t, []string{email}, provider.queries) // Bound as a value, not interpolated
}

func TestLoginConcurrentRequestsCloseEverySession(t *testing.T) {
	provider := newFakeProvider()
	provider.addUser(1, "Ankit", "a@x.com")
	router := SetupRouter(testConfig(), provider)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/login", bytes.NewBufferString(`{"email":"a@x.com"}`))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
		}()
	}
	wg.Wait()

	opens, closes := provider.counts()
	assert.Equal(t, 20, opens)
	assert.Equal(t, 20, closes)
}

func TestLoginCORSHeader(t *testing.T) {
	provider := newFakeProvider()
	provider.addUser(1, "Ankit", "a@x.com")
	router := SetupRouter(testConfig(), provider)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", bytes.NewBufferString(`{"email":"a@x.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	provider := newFakeProvider()
	router := SetupRouter(testConfig(), provider)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	opens, _ := provider.counts()
	assert.Equal(t, 0, opens)
}

// TestLoginAgainstSQLite runs the full stack against a real database file
func TestLoginAgainstSQLite(t *testing.T) {
	// STEP 1: Prepare a migrated, seeded database
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := testConfig()
	cfg.DBDriver = config.DriverSQLite
	cfg.DBName = path

	provider, err := database.NewProvider(cfg)
	require.NoError(t, err)
	require.NoError(t, provider.Migrate(context.Background()))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Name: "Ankit", Email: "a@x.com"}).Error)
	sqlDB, _ := db.DB()
	require.NoError(t, sqlDB.Close())

	router := SetupRouter(cfg, provider)

	// STEP 2: Repeat both lookups; the classification must not change
	var first map[string]any
	for i := 0; i < 3; i++ {
		// Known email returns the full row
		code, resp := postLogin(t, router, []byte(`{"email":"a@x.com"}`))
		assert.Equal(t, 200, code)
		assert.Equal(t, MsgLoginSuccess, resp["message"])
		user := resp["user"].(map[string]any)
		assert.Equal(t, "a@x.com", user["email"])
		assert.Contains(t, user, "id")
		assert.Contains(t, user, "created_at")
		if first == nil {
			first = user
		} else {
			assert.Equal(t, first, user) // Same row every time
		}

		// Unknown email
		code, resp = postLogin(t, router, []byte(`{"email":"ghost@x.com"}`))
		assert.Equal(t, 404, code)
		assert.Equal(t, MsgEmailNotFound, resp["message"])

		// Wrong key case never reaches the database
		code, resp = postLogin(t, router, []byte(`{"Email":"a@x.com"}`))
		assert.Equal(t, 400, code)
		assert.Equal(t, MsgEmailRequired, resp["message"])
	}
}

func TestBindLoginInputKeepsCause(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing key", `{"Email":"a@x.com"}`, "email key missing"},
		{"empty", `{"email":""}`, "email is empty"},
		{"wrong type", `{"email":42}`, "cannot unmarshal number"},
		{"bad json", `{"email":`, "unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest("POST", "/login", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			_, err := bindLoginInput(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			wrapped := &ErrValidation{Field: "email", Err: err}
			assert.ErrorIs(t, wrapped, err)                     // Cause survives for logging
			assert.Equal(t, MsgEmailRequired, Message(wrapped)) // Client still sees the fixed text
		})
	}
}

func TestBindLoginInputExactKey(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/login", bytes.NewBufferString(`{"Email":"other@x.com","email":"a@x.com"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	input, err := bindLoginInput(c)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", input.Email) // Only the lowercase key is read
}

func TestLoginAgainstUnreachableSQLite(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = config.DriverSQLite
	cfg.DBName = filepath.Join(t.TempDir(), "no", "such", "dir", "test.db")

	provider, err := database.NewProvider(cfg)
	require.NoError(t, err)
	router := SetupRouter(cfg, provider)

	code, resp := postLogin(t, router, []byte(`{"email":"a@x.com"}`))
	assert.Equal(t, 500, code)
	assert.Equal(t, map[string]any{"message": MsgServerError}, resp)
}
