package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/gin-blog/internal/service"
)

type postForm struct {
	Text  string `form:"text" binding:"required"`
	Group string `form:"group"`
}

// postFormView 回填表单
type postFormView struct {
	Text    string
	GroupID uint
}

type commentForm struct {
	Text string `form:"text" binding:"required,max=2000"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type signupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

var formNames = map[string]string{
	"Text":      "text",
	"Group":     "group",
	"Username":  "username",
	"Password":  "password",
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Email":     "email",
	"Password1": "password1",
	"Password2": "password2",
}

// fieldErrors 把绑定错误转换成字段 -> 提示
func fieldErrors(err error) service.FieldErrors {
	out := service.FieldErrors{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "Invalid form submission."
		return out
	}
	for _, fe := range verrs {
		name, ok := formNames[fe.Field()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		out[name] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Invalid value."
	}
}

// parseGroup 空字符串表示不选分组；ok=false 表示取值非法
func parseGroup(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	v := uint(id)
	return &v, true
}
