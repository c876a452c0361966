package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	posts    PostService
	rel      RelationshipService
	comments CommentService
	follows  repository.FollowRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	return &fixture{
		db:       db,
		posts:    NewPostService(postRepo, repository.NewGroupRepository(db), userRepo, commentRepo, followRepo, 10),
		rel:      NewRelationshipService(followRepo, userRepo),
		comments: NewCommentService(postRepo, commentRepo),
		follows:  followRepo,
	}
}

func TestIndexPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "author")
	posts := testutil.CreatePosts(t, f.db, u, nil, 14)

	first, err := f.posts.Index(ctx, "")
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 2, first.NumPages)
	assert.Equal(t, posts[13].ID, first.Items[0].ID)

	second, err := f.posts.Index(ctx, "2")
	require.NoError(t, err)
	assert.Len(t, second.Items, 4)
	assert.Equal(t, posts[0].ID, second.Items[3].ID)

	clamped, err := f.posts.Index(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Number)
}

func TestGroupPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "author")
	g := testutil.CreateGroup(t, f.db, "Test", "test-slug")
	other := testutil.CreateGroup(t, f.db, "Other", "other-slug")

	created, err := f.posts.Create(ctx, u, PostInput{Text: "grouped", GroupID: &g.ID})
	require.NoError(t, err)

	group, page, err := f.posts.GroupPosts(ctx, "test-slug", "")
	require.NoError(t, err)
	assert.Equal(t, g.ID, group.ID)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	_, page, err = f.posts.GroupPosts(ctx, other.Slug, "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, _, err = f.posts.GroupPosts(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileFollowingFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author")
	reader := testutil.CreateUser(t, f.db, "reader")
	testutil.CreatePosts(t, f.db, author, nil, 3)

	view, err := f.posts.Profile(ctx, nil, "author", "")
	require.NoError(t, err)
	assert.False(t, view.Following)
	assert.EqualValues(t, 3, view.Posts.Total)

	_, err = f.rel.Follow(ctx, reader, "author")
	require.NoError(t, err)

	view, err = f.posts.Profile(ctx, reader, "author", "")
	require.NoError(t, err)
	assert.True(t, view.Following)
	assert.EqualValues(t, 1, view.Followers)

	_, err = f.posts.Profile(ctx, reader, "nobody", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowFeedVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author")
	follower := testutil.CreateUser(t, f.db, "follower")
	stranger := testutil.CreateUser(t, f.db, "stranger")
	post := testutil.CreatePost(t, f.db, author, nil, "hello")

	feed, err := f.posts.FollowFeed(ctx, follower, "")
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	_, err = f.rel.Follow(ctx, follower, "author")
	require.NoError(t, err)

	feed, err = f.posts.FollowFeed(ctx, follower, "")
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, post.ID, feed.Items[0].ID)

	feed, err = f.posts.FollowFeed(ctx, stranger, "")
	require.NoError(t, err)
	assert.Empty(t, feed.Items)

	feed, err = f.posts.FollowFeed(ctx, author, "")
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}

func TestFollowUnfollowRestoresCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "author")
	reader := testutil.CreateUser(t, f.db, "reader")

	before, err := f.follows.Count(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.rel.Follow(ctx, reader, "author")
		require.NoError(t, err)
	}
	after, err := f.follows.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	_, err = f.rel.Unfollow(ctx, reader, "author")
	require.NoError(t, err)
	restored, err := f.follows.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, restored)

	// 未关注时取消关注为空操作
	_, err = f.rel.Unfollow(ctx, reader, "author")
	require.NoError(t, err)
}

func TestFollowSelfIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := testutil.CreateUser(t, f.db, "me")

	got, err := f.rel.Follow(ctx, me, "me")
	require.NoError(t, err)
	assert.Equal(t, me.ID, got.ID)

	cnt, err := f.follows.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, cnt)

	_, err = f.rel.Follow(ctx, me, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFollowing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, f.db, "reader")
	testutil.CreateUser(t, f.db, "a")
	testutil.CreateUser(t, f.db, "b")
	_, err := f.rel.Follow(ctx, reader, "a")
	require.NoError(t, err)
	_, err = f.rel.Follow(ctx, reader, "b")
	require.NoError(t, err)

	list, err := f.rel.ListFollowing(ctx, "reader", 1, 10)
	require.NoError(t, err)
	names := []string{list[0].Username, list[1].Username}
	assert.ElementsMatch(t, []string{"a", "b"}, names)

	ok, err := f.rel.IsFollowing(ctx, nil, list[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, f.db, "author")
	missing := uint(999)

	_, err := f.posts.Create(ctx, u, PostInput{Text: "  ", GroupID: &missing})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "text")
	assert.Contains(t, fe, "group")

	_, err = f.posts.Create(ctx, nil, PostInput{Text: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestValidateWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := testutil.CreateGroup(t, f.db, "Cats", "cats")
	missing := uint(999)

	err := f.posts.Validate(ctx, PostInput{Text: "  ", GroupID: &missing})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 2)

	require.NoError(t, f.posts.Validate(ctx, PostInput{Text: "fine", GroupID: &g.ID}))

	var n int64
	require.NoError(t, f.db.Model(&model.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateRequiresAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author")
	intruder := testutil.CreateUser(t, f.db, "intruder")
	post := testutil.CreatePost(t, f.db, author, nil, "original")

	err := f.posts.Update(ctx, intruder, post, PostInput{Text: "hacked"})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.posts.Update(ctx, author, post, PostInput{Text: "edited"}))
	got, err := f.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, author.ID, got.AuthorID)
}

func TestCommentsAttachToPostAndAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author")
	reader := testutil.CreateUser(t, f.db, "reader")
	post := testutil.CreatePost(t, f.db, author, nil, "post")

	_, err := f.comments.Add(ctx, reader, post.ID, "nice")
	require.NoError(t, err)
	_, err = f.comments.Add(ctx, reader, post.ID, "")
	var fe FieldErrors
	assert.ErrorAs(t, err, &fe)
	_, err = f.comments.Add(ctx, reader, 404, "lost")
	assert.ErrorIs(t, err, ErrNotFound)

	got, comments, err := f.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Text)
	assert.Equal(t, reader.ID, comments[0].AuthorID)
}

func TestAuthRegisterLoginAndToken(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	svc := NewAuthService(users, "secret", time.Hour)
	ctx := context.Background()

	u, err := svc.Register(ctx, SignupInput{Username: "leo", Email: "Leo@Example.com", Password: "war-and-peace"})
	require.NoError(t, err)
	assert.Equal(t, "leo@example.com", u.Email)
	assert.NotEqual(t, "war-and-peace", u.PasswordHash)

	_, err = svc.Register(ctx, SignupInput{Username: "leo", Password: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Authenticate(ctx, "leo", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.Authenticate(ctx, "leo", "war-and-peace")
	require.NoError(t, err)

	token, err := svc.IssueToken(got)
	require.NoError(t, err)
	viewer, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, viewer.ID)

	_, err = svc.UserFromToken(ctx, token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(users, "other-secret", time.Hour)
	_, err = other.UserFromToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessRules(t *testing.T) {
	a := &model.User{ID: 1}
	b := &model.User{ID: 2}
	post := &model.Post{AuthorID: 1}

	assert.True(t, CanEditPost(a, post))
	assert.False(t, CanEditPost(b, post))
	assert.False(t, CanEditPost(nil, post))
	assert.True(t, CanFollow(a, b))
	assert.False(t, CanFollow(a, a))
	assert.False(t, CanFollow(nil, b))
}
