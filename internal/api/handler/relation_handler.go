package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// FollowIndex 关注作者的帖子流
func (h *Handler) FollowIndex(c *gin.Context) {
	page, err := h.postService.FollowFeed(c.Request.Context(), middleware.Viewer(c), c.Query("page"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/follow.html", gin.H{"page": page})
}

// ProfileFollow 关注作者后回到其主页；关注自己静默忽略
func (h *Handler) ProfileFollow(c *gin.Context) {
	author, err := h.relService.Follow(c.Request.Context(), middleware.Viewer(c), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, profileURL(author.Username))
}

// ProfileUnfollow 取消关注；关系不存在时同样跳回主页
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	author, err := h.relService.Unfollow(c.Request.Context(), middleware.Viewer(c), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, profileURL(author.Username))
}

type followingItem struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/profiles/{username}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	users, err := h.relService.ListFollowing(c.Request.Context(), c.Param("username"), page, pageSize)
	if err != nil {
		h.apiFail(c, err)
		return
	}
	list := make([]followingItem, 0, len(users))
	for _, u := range users {
		list = append(list, followingItem{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName()})
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
