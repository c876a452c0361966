package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/internal/storage"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Options 处理器需要的配置
type Options struct {
	CookieName   string
	TokenTTL     time.Duration
	SecureCookie bool
	// MaxUploadBytes 上传请求体上限
	MaxUploadBytes int64
}

// Handler 聚合所有路由处理函数
type Handler struct {
	postService service.PostService
	comments    service.CommentService
	relService  service.RelationshipService
	auth        service.AuthService
	images      storage.ImageStore
	opts        Options
}

// New 组装 Handler；CookieName 为空时使用 "session"
func New(
	posts service.PostService,
	comments service.CommentService,
	rel service.RelationshipService,
	auth service.AuthService,
	images storage.ImageStore,
	opts Options,
) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	return &Handler{postService: posts, comments: comments, relService: rel, auth: auth, images: images, opts: opts}
}

// render 注入当前用户后渲染页面
func (h *Handler) render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["viewer"] = middleware.Viewer(c)
	c.HTML(code, name, data)
}

// NotFound 共用的 404 页面
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "core/404.html", gin.H{"path": c.Request.URL.Path})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	response.Report(c, err)
	h.render(c, http.StatusInternalServerError, "core/500.html", nil)
}

// fail 把 ErrNotFound 映射为 404，其余为 500
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.NotFound(c)
		return
	}
	h.serverError(c, err)
}

func (h *Handler) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func postURL(id uint) string { return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/" }

func profileURL(username string) string { return "/profile/" + username + "/" }
