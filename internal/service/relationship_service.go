package service

import (
	"context"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	// Follow 关注 username；关注自己时静默忽略
	Follow(ctx context.Context, viewer *model.User, username string) (*model.User, error)
	// Unfollow 取消关注；关系不存在或目标是自己时静默忽略
	Unfollow(ctx context.Context, viewer *model.User, username string) (*model.User, error)
	// IsFollowing 匿名访客恒为 false
	IsFollowing(ctx context.Context, viewer *model.User, authorID uint) (bool, error)
	ListFollowing(ctx context.Context, username string, page, pageSize int) ([]*model.User, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewRelationshipService(followRepo repository.FollowRepository, userRepo repository.UserRepository) RelationshipService {
	return &relationshipService{followRepo: followRepo, userRepo: userRepo}
}

func (s *relationshipService) Follow(ctx context.Context, viewer *model.User, username string) (*model.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !CanFollow(viewer, author) {
		return author, nil
	}
	if err := s.followRepo.Create(ctx, viewer.ID, author.ID); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, viewer *model.User, username string) (*model.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !CanFollow(viewer, author) {
		return author, nil
	}
	if err := s.followRepo.Delete(ctx, viewer.ID, author.ID); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, viewer *model.User, authorID uint) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	return s.followRepo.Exists(ctx, viewer.ID, authorID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, username string, page, pageSize int) ([]*model.User, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	offset := (page - 1) * pageSize
	items, err := s.followRepo.ListFollowings(ctx, user.ID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]*model.User, len(items))
	for i := range items {
		res[i] = &items[i].Followee
	}
	return res, nil
}
