package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appuser "github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/notify"
)

func newEngine(t *testing.T, rdb *redis.Client, debug bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := memory.NewUserRepository()
	repo.Seed(entity.User{ID: 1, Email: "ziho1234567890@gmail.com", Nickname: "asdf", Address: "Seoul",
		Status: entity.UserStatusActive, CertificationCode: "aaaaa-aaaa-aaaa"})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := appuser.NewService(repo, repo, notify.NewLogNotifier(logger), logger, "http://localhost:8080")

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg, Deps{Service: svc, Redis: rdb, Logger: svc.Logger, VerifyRedirectURL: "http://localhost:3000", DebugMetrics: debug})
	reg.RegisterAll()
	return engine
}

func get(engine *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRoutesRegistered(t *testing.T) {
	engine := newEngine(t, nil, false)

	assert.Equal(t, http.StatusOK, get(engine, "/health_check.html", nil).Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/users/1", nil).Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/users/me", map[string]string{"EMAIL": "ziho1234567890@gmail.com"}).Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/users/search?q=a", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(engine, "/api/debug/vars", nil).Code)
}

func TestDebugModuleToggle(t *testing.T) {
	engine := newEngine(t, nil, true)
	w := get(engine, "/api/debug/vars", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "memstats"))
}

func TestCreateIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	engine := newEngine(t, rdb, false)

	codes := make([]int, 0, 11)
	for i := 0; i < 11; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, http.StatusBadRequest, codes[9])
	assert.Equal(t, http.StatusTooManyRequests, codes[10])
}

func TestRegisterAllIsIdempotent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	reg := NewRegistry(engine)
	calls := 0
	reg.Add(moduleFunc(func(rg *gin.RouterGroup) { calls++ }))
	reg.RegisterAll()
	reg.RegisterAll()
	assert.Equal(t, 1, calls)
}

type moduleFunc func(rg *gin.RouterGroup)

func (f moduleFunc) Register(rg *gin.RouterGroup) { f(rg) }
