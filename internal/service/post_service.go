package service

import (
	"context"
	"errors"
	"strings"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/paginator"
)

// PostPage 一页帖子
type PostPage = paginator.Page[*model.Post]

// PostInput 创建/编辑帖子的输入；Image 为空表示不修改图片
type PostInput struct {
	Text    string
	GroupID *uint
	Image   string
}

// ProfileView 作者主页数据
type ProfileView struct {
	Author     *model.User
	Posts      PostPage
	Following  bool
	Followers  int64
	Followings int64
}

// PostService 帖子查询与写入
type PostService interface {
	Index(ctx context.Context, page string) (PostPage, error)
	GroupPosts(ctx context.Context, slug, page string) (*model.Group, PostPage, error)
	Profile(ctx context.Context, viewer *model.User, username, page string) (*ProfileView, error)
	FollowFeed(ctx context.Context, viewer *model.User, page string) (PostPage, error)
	Detail(ctx context.Context, id uint) (*model.Post, []*model.Comment, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	Groups(ctx context.Context) ([]*model.Group, error)
	Create(ctx context.Context, author *model.User, in PostInput) (*model.Post, error)
	Update(ctx context.Context, editor *model.User, post *model.Post, in PostInput) error
	// Validate 只做字段校验，不写库；不合法时返回 FieldErrors
	Validate(ctx context.Context, in PostInput) error
}

type postService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	rel      RelationshipService
	perPage  int
}

func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	perPage int,
) PostService {
	if perPage < 1 {
		perPage = 10
	}
	return &postService{
		posts:    posts,
		groups:   groups,
		users:    users,
		comments: comments,
		follows:  follows,
		rel:      NewRelationshipService(follows, users),
		perPage:  perPage,
	}
}

type (
	countFunc func(ctx context.Context) (int64, error)
	listFunc  func(ctx context.Context, offset, limit int) ([]*model.Post, error)
)

func (s *postService) paginate(ctx context.Context, raw string, count countFunc, list listFunc) (PostPage, error) {
	total, err := count(ctx)
	if err != nil {
		return PostPage{}, err
	}
	meta := paginator.Resolve(raw, total, s.perPage)
	items, err := list(ctx, meta.Offset(), meta.Limit())
	if err != nil {
		return PostPage{}, err
	}
	return PostPage{Meta: meta, Items: items}, nil
}

func (s *postService) Index(ctx context.Context, page string) (PostPage, error) {
	return s.paginate(ctx, page, s.posts.Count, s.posts.List)
}

func (s *postService) GroupPosts(ctx context.Context, slug, page string) (*model.Group, PostPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, PostPage{}, err
	}
	res, err := s.paginate(ctx, page,
		func(ctx context.Context) (int64, error) { return s.posts.CountByGroup(ctx, group.ID) },
		func(ctx context.Context, offset, limit int) ([]*model.Post, error) {
			return s.posts.ListByGroup(ctx, group.ID, offset, limit)
		},
	)
	return group, res, err
}

func (s *postService) Profile(ctx context.Context, viewer *model.User, username, page string) (*ProfileView, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	posts, err := s.paginate(ctx, page,
		func(ctx context.Context) (int64, error) { return s.posts.CountByAuthor(ctx, author.ID) },
		func(ctx context.Context, offset, limit int) ([]*model.Post, error) {
			return s.posts.ListByAuthor(ctx, author.ID, offset, limit)
		},
	)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Author: author, Posts: posts}
	if view.Following, err = s.rel.IsFollowing(ctx, viewer, author.ID); err != nil {
		return nil, err
	}
	if view.Followers, err = s.follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if view.Followings, err = s.follows.CountFollowings(ctx, author.ID); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *postService) FollowFeed(ctx context.Context, viewer *model.User, page string) (PostPage, error) {
	if viewer == nil {
		return paginator.Page[*model.Post]{Meta: paginator.Resolve(page, 0, s.perPage)}, nil
	}
	return s.paginate(ctx, page,
		func(ctx context.Context) (int64, error) { return s.posts.CountByFollower(ctx, viewer.ID) },
		func(ctx context.Context, offset, limit int) ([]*model.Post, error) {
			return s.posts.ListByFollower(ctx, viewer.ID, offset, limit)
		},
	)
}

func (s *postService) Detail(ctx context.Context, id uint) (*model.Post, []*model.Comment, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *postService) Groups(ctx context.Context) ([]*model.Group, error) {
	return s.groups.List(ctx)
}

func (s *postService) Create(ctx context.Context, author *model.User, in PostInput) (*model.Post, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	post := &model.Post{Text: in.Text, GroupID: in.GroupID, Image: in.Image, AuthorID: author.ID}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	post.Author = *author
	return post, nil
}

func (s *postService) Update(ctx context.Context, editor *model.User, post *model.Post, in PostInput) error {
	if !CanEditPost(editor, post) {
		return ErrForbidden
	}
	if err := s.validate(ctx, &in); err != nil {
		return err
	}
	post.Text = in.Text
	post.GroupID = in.GroupID
	if in.Image != "" {
		post.Image = in.Image
	}
	return s.posts.Update(ctx, post)
}

func (s *postService) Validate(ctx context.Context, in PostInput) error {
	return s.validate(ctx, &in)
}

func (s *postService) validate(ctx context.Context, in *PostInput) error {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Text) == "" {
		errs["text"] = "This field is required."
	}
	if in.GroupID != nil {
		if _, err := s.groups.GetByID(ctx, *in.GroupID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			errs["group"] = "Select a valid choice."
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
