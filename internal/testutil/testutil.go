// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/gin-blog/internal/model"
)

// NewDB opens an isolated in-memory sqlite database with the schema migrated.
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(tb testing.TB, db *gorm.DB, username string) *model.User {
	tb.Helper()
	u := &model.User{Username: username, Email: username + "@example.com"}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func CreateGroup(tb testing.TB, db *gorm.DB, title, slug string) *model.Group {
	tb.Helper()
	g := &model.Group{Title: title, Slug: slug, Description: "about " + title}
	if err := db.Create(g).Error; err != nil {
		tb.Fatalf("create group %s: %v", slug, err)
	}
	return g
}

// CreatePost inserts a post; group may be nil.
func CreatePost(tb testing.TB, db *gorm.DB, author *model.User, group *model.Group, text string) *model.Post {
	tb.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	if err := db.Omit("Author", "Group").Create(p).Error; err != nil {
		tb.Fatalf("create post: %v", err)
	}
	return p
}

// CreatePosts inserts n posts with strictly increasing timestamps, oldest first.
func CreatePosts(tb testing.TB, db *gorm.DB, author *model.User, group *model.Group, n int) []*model.Post {
	tb.Helper()
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	posts := make([]*model.Post, n)
	for i := 0; i < n; i++ {
		p := &model.Post{Text: fmt.Sprintf("post number %d", i), AuthorID: author.ID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if group != nil {
			p.GroupID = &group.ID
		}
		if err := db.Omit("Author", "Group").Create(p).Error; err != nil {
			tb.Fatalf("create post %d: %v", i, err)
		}
		posts[i] = p
	}
	return posts
}
