package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/d60-Lab/gin-blog/internal/repository"
)

var (
	// ErrNotFound 目标 Group/User/Post 不存在
	ErrNotFound = repository.ErrNotFound
	// ErrForbidden 已登录但不是资源所有者
	ErrForbidden = errors.New("forbidden")
)

// FieldErrors 表单字段级错误，key 为字段名
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
