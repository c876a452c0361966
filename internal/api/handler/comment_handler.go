package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// AddComment 保存评论后回到详情页；表单无效时不提示，直接跳回
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.NotFound(c)
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		if _, err := h.postService.Get(c.Request.Context(), id); err != nil {
			h.fail(c, err)
			return
		}
		h.redirect(c, postURL(id))
		return
	}

	_, err := h.comments.Add(c.Request.Context(), middleware.Viewer(c), id, form.Text)
	var ferrs service.FieldErrors
	switch {
	case err == nil:
	case errors.As(err, &ferrs):
		logger.Debug("comment discarded", zap.Uint("post_id", id), zap.Any("errors", map[string]string(ferrs)))
	default:
		h.fail(c, err)
		return
	}
	h.redirect(c, postURL(id))
}
