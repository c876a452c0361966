package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

const CacheHeader = "X-Page-Cache"

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage 缓存 GET 的 200 响应体 ttl 时长，按当前用户和完整 URI 区分。
// 写操作不会主动失效缓存。缓存故障只记录日志，请求照常处理。
func CachePage(pages cache.PageCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pages == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		viewer := ""
		if v := Viewer(c); v != nil {
			viewer = strconv.FormatUint(uint64(v.ID), 10)
		}
		key := cache.Key(viewer, c.Request.URL.RequestURI())
		ctx := c.Request.Context()

		body, ok, err := pages.Get(ctx, key)
		if err != nil {
			logger.Warn("page cache get failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			c.Header(CacheHeader, "hit")
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Header(CacheHeader, "miss")
		c.Next()

		if rec.Status() == http.StatusOK && rec.body.Len() > 0 {
			if err := pages.Set(ctx, key, rec.body.Bytes(), ttl); err != nil {
				logger.Warn("page cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
