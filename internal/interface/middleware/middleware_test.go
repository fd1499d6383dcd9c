package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterMax(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	r := gin.New()
	r.GET("/api/users/:id/verify", RateLimit(rdb, 2, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) {
		c.Status(http.StatusFound)
	})

	for i, path := range []string{"/api/users/1/verify", "/api/users/2/verify"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusFound, w.Code, "request %d", i)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/users/3/verify", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitFailsOpenAndNilClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()
	mr.Close()

	r := gin.New()
	r.GET("/a", RateLimit(rdb, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", RateLimit(nil, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/a", nil)).Code)
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/b", nil)).Code)
	}
}

func TestAllowPrivateIPBypasses(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	r := gin.New()
	r.Use(RealIP())
	r.GET("/a", RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/a", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.5, 8.8.8.8")
		assert.Equal(t, http.StatusOK, serve(r, req).Code)
	}
	assert.False(t, mr.Exists("rl:ip:10.0.0.5"))
}

func TestRequireEmail(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireEmail(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxEmailKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(EmailHeader, " ziho1234567890@gmail.com ")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ziho1234567890@gmail.com", w.Body.String())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestRealIPPrefersCloudflare(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("CF-Connecting-IP", "1.2.3.4")
	req.Header.Set("X-Forwarded-For", "5.6.7.8")
	assert.Equal(t, "1.2.3.4", serve(r, req).Body.String())
}
