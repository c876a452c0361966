package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// edge 一条待写入的关注关系
type edge struct {
	from *model.User
	to   string
}

// percentile 取第 p 分位（nearest-rank）
func percentile(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// seed 用演示数据填充数据库：分组、用户、帖子和关注关系
func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	db := must(database.InitDB(cfg))
	if err := database.Migrate(db, model.All()...); err != nil {
		panic(err)
	}

	numUsers := envInt("USERS", 20)
	postsPerUser := envInt("POSTS", 15)
	numGroups := envInt("GROUPS", 3)
	conc := envInt("CONC", 4)
	password := os.Getenv("PASSWORD")
	if password == "" {
		password = "password123"
	}

	ctx := context.Background()
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	relSvc := service.NewRelationshipService(followRepo, userRepo)

	run := uuid.NewString()[:6]

	groups := make([]*model.Group, numGroups)
	for i := range groups {
		slug := fmt.Sprintf("group-%s-%d", run, i)
		groups[i] = &model.Group{Title: "Group " + slug, Slug: slug, Description: "Demo group " + strconv.Itoa(i)}
		if err := groupRepo.Create(ctx, groups[i]); err != nil {
			panic(err)
		}
	}

	users := make([]*model.User, numUsers)
	for i := range users {
		users[i] = must(authSvc.Register(ctx, service.SignupInput{
			FirstName: "User",
			LastName:  strconv.Itoa(i),
			Username:  fmt.Sprintf("u%s_%d", run, i),
			Email:     fmt.Sprintf("u%s_%d@example.com", run, i),
			Password:  password,
		}))
	}

	// posts: oldest first so the feed order matches creation order
	base := time.Now().Add(-time.Duration(numUsers*postsPerUser) * time.Minute)
	n := 0
	for _, u := range users {
		for j := 0; j < postsPerUser; j++ {
			p := &model.Post{
				Text:      fmt.Sprintf("Post %d by %s", j, u.Username),
				AuthorID:  u.ID,
				CreatedAt: base.Add(time.Duration(n) * time.Minute),
			}
			if j%2 == 0 && len(groups) > 0 {
				gid := groups[j%len(groups)].ID
				p.GroupID = &gid
			}
			if err := postRepo.Create(ctx, p); err != nil {
				panic(err)
			}
			n++
		}
	}

	// everyone follows a random subset; u0 is followed by everyone
	var edges []edge
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i, u := range users {
		if i != 0 {
			edges = append(edges, edge{u, users[0].Username})
		}
		for k := 0; k < 3; k++ {
			edges = append(edges, edge{u, users[r.Intn(len(users))].Username})
		}
	}

	workers := conc
	if workers > len(edges) {
		workers = len(edges)
	}
	feed := make(chan edge, len(edges))
	for _, e := range edges {
		feed <- e
	}
	close(feed)
	lat := make(chan time.Duration, len(edges))
	errCh := make(chan error, workers)
	t0 := time.Now()
	for w := 0; w < workers; w++ {
		go func() {
			for e := range feed {
				st := time.Now()
				if _, err := relSvc.Follow(ctx, e.from, e.to); err != nil {
					errCh <- err
					return
				}
				lat <- time.Since(st)
			}
			errCh <- nil
		}()
	}
	for w := 0; w < workers; w++ {
		if err := <-errCh; err != nil {
			panic(err)
		}
	}
	close(lat)
	followDur := time.Since(t0)
	recs := make([]time.Duration, 0, len(edges))
	for d := range lat {
		recs = append(recs, d)
	}

	// 已缓存的首页不会包含新数据
	if cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := cache.NewRedisPageCache(rdb).Clear(ctx); err != nil {
			logger.Warn("page cache not cleared", zap.Error(err))
		}
		_ = rdb.Close()
	}

	total := must(followRepo.Count(ctx))
	logger.Info("seed complete",
		zap.String("run", run),
		zap.Int("groups", len(groups)),
		zap.Int("users", len(users)),
		zap.Int("posts", n),
		zap.Int64("follows", total),
	)
	fmt.Printf("USERS=%d, POSTS=%d, GROUPS=%d, CONC=%d\n", numUsers, postsPerUser, numGroups, conc)
	fmt.Printf("Follow writes: %d in %v, p50: %v, p95: %v, p99: %v\n",
		len(recs), followDur, percentile(recs, 0.50), percentile(recs, 0.95), percentile(recs, 0.99))
	fmt.Printf("Log in as %s / %s\n", users[0].Username, password)
	_ = logger.Sync()
}
