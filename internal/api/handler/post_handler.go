package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/api/middleware"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/internal/storage"
)

const postKey = "post"

// Index 首页，全部帖子分页
func (h *Handler) Index(c *gin.Context) {
	page, err := h.postService.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/index.html", gin.H{"page": page})
}

// GroupPosts 分组页
func (h *Handler) GroupPosts(c *gin.Context) {
	group, page, err := h.postService.GroupPosts(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/group_list.html", gin.H{"group": group, "page": page})
}

// Profile 作者主页
func (h *Handler) Profile(c *gin.Context) {
	view, err := h.postService.Profile(c.Request.Context(), middleware.Viewer(c), c.Param("username"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/profile.html", gin.H{
		"author":     view.Author,
		"page":       view.Posts,
		"following":  view.Following,
		"followers":  view.Followers,
		"followings": view.Followings,
	})
}

// PostDetail 帖子详情与评论
func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	post, comments, err := h.postService.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"post":     post,
		"comments": comments,
		"can_edit": service.CanEditPost(middleware.Viewer(c), post),
	})
}

// PostCreate GET 展示空表单，POST 保存后跳转到作者主页
func (h *Handler) PostCreate(c *gin.Context) {
	viewer := middleware.Viewer(c)
	if c.Request.Method == http.MethodGet {
		h.postForm(c, http.StatusOK, postFormView{}, service.FieldErrors{}, false)
		return
	}

	in, view, errs, err := h.bindPost(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.postForm(c, http.StatusOK, view, errs, false)
		return
	}
	if _, err := h.postService.Create(c.Request.Context(), viewer, in); err != nil {
		var ferrs service.FieldErrors
		if errors.As(err, &ferrs) {
			h.postForm(c, http.StatusOK, view, ferrs, false)
			return
		}
		h.serverError(c, err)
		return
	}
	h.redirect(c, profileURL(viewer.Username))
}

// PostEdit 仅作者可用，由 RequirePostAuthor 保证
func (h *Handler) PostEdit(c *gin.Context) {
	post := c.MustGet(postKey).(*model.Post)
	if c.Request.Method == http.MethodGet {
		view := postFormView{Text: post.Text}
		if post.GroupID != nil {
			view.GroupID = *post.GroupID
		}
		h.postForm(c, http.StatusOK, view, service.FieldErrors{}, true)
		return
	}

	in, view, errs, err := h.bindPost(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(errs) > 0 {
		h.postForm(c, http.StatusOK, view, errs, true)
		return
	}
	if err := h.postService.Update(c.Request.Context(), middleware.Viewer(c), post, in); err != nil {
		var ferrs service.FieldErrors
		switch {
		case errors.As(err, &ferrs):
			h.postForm(c, http.StatusOK, view, ferrs, true)
		case errors.Is(err, service.ErrForbidden):
			h.redirect(c, postURL(post.ID))
		default:
			h.serverError(c, err)
		}
		return
	}
	h.redirect(c, postURL(post.ID))
}

// RequirePostAuthor 帖子不存在返回 404，非作者跳回详情页
func (h *Handler) RequirePostAuthor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			h.NotFound(c)
			c.Abort()
			return
		}
		post, err := h.postService.Get(c.Request.Context(), id)
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		if !service.CanEditPost(middleware.Viewer(c), post) {
			h.redirect(c, postURL(post.ID))
			c.Abort()
			return
		}
		c.Set(postKey, post)
		c.Next()
	}
}

func (h *Handler) postForm(c *gin.Context, code int, form postFormView, errs service.FieldErrors, isEdit bool) {
	groups, err := h.postService.Groups(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, code, "posts/post_create.html", gin.H{
		"form":    form,
		"errors":  errs,
		"groups":  groups,
		"is_edit": isEdit,
	})
}

// bindPost 解析 multipart 表单；图片只在其余字段通过校验后才落盘
func (h *Handler) bindPost(c *gin.Context) (service.PostInput, postFormView, service.FieldErrors, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	var form postForm
	errs := fieldErrors(c.ShouldBind(&form))
	if _, ok := errs["form"]; ok {
		errs = service.FieldErrors{"image": "The submitted file is too large."}
	}
	view := postFormView{Text: form.Text}
	in := service.PostInput{Text: form.Text}

	groupID, ok := parseGroup(form.Group)
	if !ok {
		errs["group"] = "Select a valid choice."
	} else if groupID != nil {
		in.GroupID = groupID
		view.GroupID = *groupID
	}
	if len(errs) > 0 {
		return in, view, errs, nil
	}
	if err := h.postService.Validate(c.Request.Context(), in); err != nil {
		var ferrs service.FieldErrors
		if errors.As(err, &ferrs) {
			return in, view, ferrs, nil
		}
		return in, view, nil, err
	}

	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, view, errs, nil
	}
	if err != nil {
		errs["image"] = "Upload a valid image."
		return in, view, errs, nil
	}
	f, err := file.Open()
	if err != nil {
		errs["image"] = "Upload a valid image."
		return in, view, errs, nil
	}
	defer f.Close()

	rel, err := h.images.SaveImage(c.Request.Context(), file.Filename, f)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			errs["image"] = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
		} else {
			errs["image"] = "The image could not be saved."
		}
		return in, view, errs, nil
	}
	in.Image = rel
	return in, view, errs, nil
}
