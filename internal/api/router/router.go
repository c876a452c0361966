package router

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gin-blog/config"
	_ "github.com/d60-Lab/gin-blog/docs"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/cache"
)

// Deps 路由依赖
type Deps struct {
	Handler  *handler.Handler
	Sessions middleware.SessionResolver
	// Pages 为 nil 时首页不缓存
	Pages    cache.PageCache
	Renderer render.HTMLRender
}

// Setup 组装中间件链和路由
func Setup(cfg *config.Config, d Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.AccessLog())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{cfg.Media.URLPrefix, "/swagger"})))
	if cfg.RateLimit.RPS > 0 {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}
	r.Use(middleware.Authenticate(d.Sessions, cfg.Auth.CookieName))
	r.HTMLRender = d.Renderer

	h := d.Handler
	login := middleware.RequireLogin(cfg.Auth.LoginURL)

	index := []gin.HandlerFunc{h.Index}
	if cfg.Cache.Enabled && d.Pages != nil {
		index = append([]gin.HandlerFunc{middleware.CachePage(d.Pages, cfg.Cache.IndexTTL)}, index...)
	}
	r.GET("/", index...)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/profile/:username/", h.Profile)
	r.GET("/posts/:id/", h.PostDetail)

	r.GET("/create/", login, h.PostCreate)
	r.POST("/create/", login, h.PostCreate)
	r.GET("/posts/:id/edit/", login, h.RequirePostAuthor(), h.PostEdit)
	r.POST("/posts/:id/edit/", login, h.RequirePostAuthor(), h.PostEdit)
	r.POST("/posts/:id/comment/", login, h.AddComment)
	r.GET("/follow/", login, h.FollowIndex)
	r.GET("/profile/:username/follow/", login, h.ProfileFollow)
	r.GET("/profile/:username/unfollow/", login, h.ProfileUnfollow)

	auth := r.Group("/auth")
	{
		auth.GET("/login/", h.Login)
		auth.POST("/login/", h.Login)
		auth.GET("/logout/", h.Logout)
		auth.GET("/signup/", h.Signup)
		auth.POST("/signup/", h.Signup)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/posts", h.APIListPosts)
		api.GET("/posts/:id", h.APIGetPost)
		api.GET("/groups/:slug/posts", h.APIGroupPosts)
		api.GET("/profiles/:username/posts", h.APIProfilePosts)
		api.GET("/profiles/:username/following", h.ListFollowing)
	}

	r.Static(cfg.Media.URLPrefix, cfg.Media.Dir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.NoRoute(h.NotFound)

	return r
}
