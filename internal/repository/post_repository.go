package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// PostRepository 帖子仓储；列表均按发布时间倒序
type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	Update(ctx context.Context, p *model.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)

	List(ctx context.Context, offset, limit int) ([]*model.Post, error)
	Count(ctx context.Context) (int64, error)
	ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]*model.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]*model.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	// ListByFollower 返回 followerID 关注的作者的帖子
	ListByFollower(ctx context.Context, followerID uint, offset, limit int) ([]*model.Post, error)
	CountByFollower(ctx context.Context, followerID uint) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Group").Create(p).Error
}

// Update 只允许修改正文、分组和图片
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	return r.db.WithContext(ctx).
		Model(&model.Post{ID: p.ID}).
		Updates(map[string]any{
			"text":     p.Text,
			"group_id": p.GroupID,
			"image":    p.Image,
		}).Error
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, id).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) List(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	return r.page(ctx, r.db, offset, limit)
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, r.db)
}

func (r *postRepository) ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]*model.Post, error) {
	return r.page(ctx, r.db.Where("group_id = ?", groupID), offset, limit)
}

func (r *postRepository) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	return r.count(ctx, r.db.Where("group_id = ?", groupID))
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, offset, limit int) ([]*model.Post, error) {
	return r.page(ctx, r.db.Where("author_id = ?", authorID), offset, limit)
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return r.count(ctx, r.db.Where("author_id = ?", authorID))
}

func (r *postRepository) ListByFollower(ctx context.Context, followerID uint, offset, limit int) ([]*model.Post, error) {
	return r.page(ctx, r.db.Where("author_id IN (?)", r.followees(followerID)), offset, limit)
}

func (r *postRepository) CountByFollower(ctx context.Context, followerID uint) (int64, error) {
	return r.count(ctx, r.db.Where("author_id IN (?)", r.followees(followerID)))
}

func (r *postRepository) followees(followerID uint) *gorm.DB {
	return r.db.Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", followerID)
}

func (r *postRepository) page(ctx context.Context, q *gorm.DB, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := q.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) count(ctx context.Context, q *gorm.DB) (int64, error) {
	var cnt int64
	err := q.WithContext(ctx).Model(&model.Post{}).Count(&cnt).Error
	return cnt, err
}
