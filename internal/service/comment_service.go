package service

import (
	"context"
	"strings"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

// CommentService 评论写入
type CommentService interface {
	Add(ctx context.Context, author *model.User, postID uint, text string) (*model.Comment, error)
}

type commentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository) CommentService {
	return &commentService{posts: posts, comments: comments}
}

func (s *commentService) Add(ctx context.Context, author *model.User, postID uint, text string) (*model.Comment, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, FieldErrors{"text": "This field is required."}
	}
	c := &model.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Author = *author
	return c, nil
}
