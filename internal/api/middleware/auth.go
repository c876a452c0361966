package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

const viewerKey = "viewer"

// SessionResolver 根据会话令牌解析当前用户
type SessionResolver interface {
	UserFromToken(ctx context.Context, token string) (*model.User, error)
}

// Authenticate 从 cookie 解析当前用户；失败时按匿名处理并清掉 cookie
func Authenticate(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			u, err := sessions.UserFromToken(c.Request.Context(), token)
			if err == nil {
				c.Set(viewerKey, u)
			} else {
				logger.Debug("session rejected", zap.Error(err), zap.String("request_id", GetRequestID(c)))
				c.SetCookie(cookieName, "", -1, "/", "", false, true)
			}
		}
		c.Next()
	}
}

// Viewer 返回当前用户，匿名时为 nil
func Viewer(c *gin.Context) *model.User {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// SetViewer 登录成功后在当前请求内生效
func SetViewer(c *gin.Context, u *model.User) { c.Set(viewerKey, u) }

// RequireLogin 匿名用户重定向到登录页，并带上 next=原始路径
func RequireLogin(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Viewer(c) != nil {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginRedirect(loginURL, c.Request.URL))
		c.Abort()
	}
}

// LoginRedirect 构造 loginURL?next=<path>，路径中的 / 保持不转义
func LoginRedirect(loginURL string, u *url.URL) string {
	next := (&url.URL{Path: u.Path}).EscapedPath()
	if u.RawQuery != "" {
		next += url.QueryEscape("?" + u.RawQuery)
	}
	return loginURL + "?next=" + next
}
