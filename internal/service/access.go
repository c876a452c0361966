package service

import "github.com/d60-Lab/gin-blog/internal/model"

// CanEditPost 只有作者可以修改帖子
func CanEditPost(viewer *model.User, post *model.Post) bool {
	return viewer != nil && post != nil && viewer.ID == post.AuthorID
}

// CanFollow 不能关注自己；匿名用户不能关注
func CanFollow(viewer, author *model.User) bool {
	return viewer != nil && author != nil && viewer.ID != author.ID
}
