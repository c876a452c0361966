package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type postItem struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Author    string `json:"author"`
	Group     string `json:"group,omitempty"`
	Image     string `json:"image,omitempty"`
}

type commentItem struct {
	ID        uint   `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type pageData struct {
	Page     int        `json:"page"`
	NumPages int        `json:"num_pages"`
	Total    int64      `json:"total"`
	List     []postItem `json:"list"`
}

func (h *Handler) toItem(p *model.Post) postItem {
	item := postItem{
		ID:        p.ID,
		Text:      p.Text,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Author:    p.Author.Username,
		Image:     h.images.URL(p.Image),
	}
	if p.Group != nil {
		item.Group = p.Group.Slug
	}
	return item
}

func (h *Handler) toPage(p service.PostPage) pageData {
	list := make([]postItem, 0, len(p.Items))
	for _, post := range p.Items {
		list = append(list, h.toItem(post))
	}
	return pageData{Page: p.Number, NumPages: p.NumPages, Total: p.Total, List: list}
}

func (h *Handler) apiFail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "not found")
		return
	}
	response.InternalError(c, err)
}

// APIListPosts 全部帖子
// @Summary 帖子列表
// @Tags 帖子
// @Produce json
// @Param page query string false "页码"
// @Success 200 {object} response.Response{data=pageData}
// @Router /api/v1/posts [get]
func (h *Handler) APIListPosts(c *gin.Context) {
	page, err := h.postService.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.apiFail(c, err)
		return
	}
	response.Success(c, h.toPage(page))
}

// APIGetPost 帖子详情
// @Summary 帖子详情（含评论）
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) APIGetPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c, "not found")
		return
	}
	post, comments, err := h.postService.Detail(c.Request.Context(), id)
	if err != nil {
		h.apiFail(c, err)
		return
	}
	list := make([]commentItem, 0, len(comments))
	for _, cm := range comments {
		list = append(list, commentItem{
			ID:        cm.ID,
			Author:    cm.Author.Username,
			Text:      cm.Text,
			CreatedAt: cm.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	response.Success(c, gin.H{"post": h.toItem(post), "comments": list})
}

// APIGroupPosts 分组内帖子
// @Summary 分组帖子列表
// @Tags 帖子
// @Produce json
// @Param slug path string true "分组 slug"
// @Param page query string false "页码"
// @Success 200 {object} response.Response{data=pageData}
// @Failure 404 {object} response.Response
// @Router /api/v1/groups/{slug}/posts [get]
func (h *Handler) APIGroupPosts(c *gin.Context) {
	_, page, err := h.postService.GroupPosts(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		h.apiFail(c, err)
		return
	}
	response.Success(c, h.toPage(page))
}

// APIProfilePosts 作者的帖子
// @Summary 作者帖子列表
// @Tags 帖子
// @Produce json
// @Param username path string true "用户名"
// @Param page query string false "页码"
// @Success 200 {object} response.Response{data=pageData}
// @Failure 404 {object} response.Response
// @Router /api/v1/profiles/{username}/posts [get]
func (h *Handler) APIProfilePosts(c *gin.Context) {
	view, err := h.postService.Profile(c.Request.Context(), nil, c.Param("username"), c.Query("page"))
	if err != nil {
		h.apiFail(c, err)
		return
	}
	response.Success(c, h.toPage(view.Posts))
}
