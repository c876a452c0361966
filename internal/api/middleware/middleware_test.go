package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/model"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeSessions map[string]*model.User

func (f fakeSessions) UserFromToken(_ context.Context, token string) (*model.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func do(r http.Handler, method, target, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginRedirect(t *testing.T) {
	cases := map[string]string{
		"/create/":                 "/auth/login/?next=/create/",
		"/posts/1/edit/":           "/auth/login/?next=/posts/1/edit/",
		"/profile/leo/follow/":     "/auth/login/?next=/profile/leo/follow/",
		"/follow/?page=2":          "/auth/login/?next=/follow/%3Fpage%3D2",
		"/profile/a%20b/unfollow/": "/auth/login/?next=/profile/a%20b/unfollow/",
	}
	for target, want := range cases {
		u, err := url.Parse(target)
		require.NoError(t, err)
		assert.Equal(t, want, LoginRedirect("/auth/login/", u), target)
	}
}

func TestRequireLogin(t *testing.T) {
	sessions := fakeSessions{"good": {ID: 1, Username: "leo"}}
	r := gin.New()
	r.Use(Authenticate(sessions, "session"))
	r.GET("/create/", RequireLogin("/auth/login/"), func(c *gin.Context) {
		c.String(http.StatusOK, "hello %s", Viewer(c).Username)
	})

	w := do(r, http.MethodGet, "/create/", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/create/", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/create/", "forged")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=;")

	w = do(r, http.MethodGet, "/create/", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello leo", w.Body.String())
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Body.String())
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = do(r, http.MethodGet, "/", "")
	assert.Len(t, w.Body.String(), 36)
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })
	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCachePageServesStaleWithinTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	pages := cache.NewRedisPageCache(client)

	counter := 0
	r := gin.New()
	r.GET("/", CachePage(pages, 20*time.Second), func(c *gin.Context) {
		counter++
		c.String(http.StatusOK, "render %d", counter)
	})

	first := do(r, http.MethodGet, "/", "")
	assert.Equal(t, "render 1", first.Body.String())
	assert.Equal(t, "miss", first.Header().Get(CacheHeader))

	second := do(r, http.MethodGet, "/", "")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "hit", second.Header().Get(CacheHeader))

	// 不同分页是不同的键
	other := do(r, http.MethodGet, "/?page=2", "")
	assert.Equal(t, "render 2", other.Body.String())

	mr.FastForward(21 * time.Second)
	third := do(r, http.MethodGet, "/", "")
	assert.Equal(t, "render 3", third.Body.String())

	require.NoError(t, pages.Clear(context.Background()))
	fourth := do(r, http.MethodGet, "/", "")
	assert.Equal(t, "render 4", fourth.Body.String())
}

func TestCachePageSkipsErrorsAndSurvivesRedisOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	pages := cache.NewRedisPageCache(client)

	status := http.StatusInternalServerError
	r := gin.New()
	r.GET("/", CachePage(pages, time.Minute), func(c *gin.Context) { c.String(status, "x") })

	do(r, http.MethodGet, "/", "")
	_, ok, err := pages.Get(context.Background(), cache.Key("", "/"))
	require.NoError(t, err)
	assert.False(t, ok)

	mr.Close()
	status = http.StatusOK
	w := do(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.Use(RateLimit(l))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/", "").Code)

	unlimited := gin.New()
	unlimited.Use(RateLimit(NewIPRateLimiter(0, 1)))
	unlimited.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(unlimited, http.MethodGet, "/", "").Code)
	}
}
