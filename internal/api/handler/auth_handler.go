package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

type signupField struct {
	Name  string
	Label string
	Type  string
	Value string
}

// Login GET 展示表单，POST 校验后写入会话 cookie
func (h *Handler) Login(c *gin.Context) {
	next := safeNext(c.Query("next"))
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "users/login.html", gin.H{"form": loginForm{}, "errors": service.FieldErrors{}, "next": next})
		return
	}

	var form loginForm
	invalid := service.FieldErrors{"form": "Please enter a correct username and password."}
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusOK, "users/login.html", gin.H{"form": form, "errors": invalid, "next": next})
		return
	}
	user, err := h.auth.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.serverError(c, err)
			return
		}
		h.render(c, http.StatusOK, "users/login.html", gin.H{"form": form, "errors": invalid, "next": next})
		return
	}
	if err := h.startSession(c, user); err != nil {
		h.serverError(c, err)
		return
	}
	if next == "" {
		next = "/"
	}
	h.redirect(c, next)
}

// Logout 清除会话
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.SecureCookie, true)
	h.redirect(c, "/")
}

// Signup 注册成功后自动登录并回到首页
func (h *Handler) Signup(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		h.render(c, http.StatusOK, "users/signup.html", gin.H{"fields": signupFields(signupForm{}), "errors": service.FieldErrors{}})
		return
	}

	var form signupForm
	errs := fieldErrors(c.ShouldBind(&form))
	if form.Username != "" && !validUsername(form.Username) {
		errs["username"] = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	if len(errs) > 0 {
		h.render(c, http.StatusOK, "users/signup.html", gin.H{"fields": signupFields(form), "errors": errs})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.SignupInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password1,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			errs["username"] = "A user with that username already exists."
			h.render(c, http.StatusOK, "users/signup.html", gin.H{"fields": signupFields(form), "errors": errs})
			return
		}
		h.serverError(c, err)
		return
	}
	logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	if err := h.startSession(c, user); err != nil {
		h.serverError(c, err)
		return
	}
	h.redirect(c, "/")
}

func (h *Handler) startSession(c *gin.Context, u *model.User) error {
	token, err := h.auth.IssueToken(u)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, token, int(h.opts.TokenTTL.Seconds()), "/", "", h.opts.SecureCookie, true)
	middleware.SetViewer(c, u)
	return nil
}

func signupFields(f signupForm) []signupField {
	return []signupField{
		{Name: "first_name", Label: "First name", Type: "text", Value: f.FirstName},
		{Name: "last_name", Label: "Last name", Type: "text", Value: f.LastName},
		{Name: "username", Label: "Username", Type: "text", Value: f.Username},
		{Name: "email", Label: "Email address", Type: "email", Value: f.Email},
		{Name: "password1", Label: "Password", Type: "password"},
		{Name: "password2", Label: "Password confirmation", Type: "password"},
	}
}

func validUsername(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@.+-_", r):
		default:
			return false
		}
	}
	return true
}

// safeNext 只接受站内路径
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
