package post

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/authz"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/utility"
)

// fakePostRepo 是一个基于内存 map 的 PostRepository 测试替身。
// 点赞与评论的 "原子" 语义在单线程测试里直接用普通读写模拟。
type fakePostRepo struct {
	posts map[primitive.ObjectID]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[primitive.ObjectID]*model.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *model.Post) error {
	for _, p := range r.posts {
		if p.Slug == post.Slug {
			return constant.ErrConflict
		}
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, constant.ErrNotFound
}

func (r *fakePostRepo) FindPublicBySlug(ctx context.Context, slug string) (*model.Post, error) {
	for _, p := range r.posts {
		if p.Slug == slug && p.Status == model.PostStatusPublished && p.IsPublic {
			// 与真实存储一致：每次查询解码出新的副本
			cp := *p
			return &cp, nil
		}
	}
	return nil, constant.ErrNotFound
}

func (r *fakePostRepo) Update(ctx context.Context, post *model.Post) error {
	stored, ok := r.posts[post.ID]
	if !ok {
		return constant.ErrNotFound
	}
	// 与真实存储的 $set 语义一致：只落作者可编辑的字段，
	// likes、comments 和 views 保持存储中的现值
	stored.Title = post.Title
	stored.Content = post.Content
	stored.Excerpt = post.Excerpt
	stored.Category = post.Category
	stored.Tags = post.Tags
	stored.FeaturedImage = post.FeaturedImage
	stored.Status = post.Status
	stored.IsPublic = post.IsPublic
	stored.Slug = post.Slug
	stored.ReadingTime = post.ReadingTime
	stored.UpdatedAt = post.UpdatedAt
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return constant.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	var n int64
	for id, p := range r.posts {
		if p.Author == author {
			delete(r.posts, id)
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) ([]*model.Post, int64, error) {
	var result []*model.Post
	for _, p := range r.posts {
		if p.Status != model.PostStatusPublished || !p.IsPublic {
			continue
		}
		if opts.Author != nil && p.Author != *opts.Author {
			continue
		}
		result = append(result, p)
	}
	return result, int64(len(result)), nil
}

func (r *fakePostRepo) ListByAuthor(ctx context.Context, opts *model.ListUserPostsOptions) ([]*model.Post, int64, error) {
	var result []*model.Post
	for _, p := range r.posts {
		if p.Author != opts.Author {
			continue
		}
		if opts.Status != "" && p.Status != opts.Status {
			continue
		}
		result = append(result, p)
	}
	return result, int64(len(result)), nil
}

func (r *fakePostRepo) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.LikeResult, error) {
	p, ok := r.posts[postID]
	if !ok {
		return nil, constant.ErrNotFound
	}
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return &model.LikeResult{Liked: false, LikeCount: len(p.Likes)}, nil
		}
	}
	p.Likes = append(p.Likes, userID)
	return &model.LikeResult{Liked: true, LikeCount: len(p.Likes)}, nil
}

func (r *fakePostRepo) AppendComment(ctx context.Context, postID primitive.ObjectID, comment *model.Comment) error {
	p, ok := r.posts[postID]
	if !ok {
		return constant.ErrNotFound
	}
	p.Comments = append(p.Comments, *comment)
	return nil
}

func (r *fakePostRepo) IncrementViews(ctx context.Context, increments map[primitive.ObjectID]int64) error {
	for id, inc := range increments {
		if p, ok := r.posts[id]; ok {
			p.Views += inc
		}
	}
	return nil
}

func (r *fakePostRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	for _, p := range r.posts {
		if status == "" || p.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) TopAuthors(ctx context.Context, limit int) ([]*model.TopAuthorItem, error) {
	return nil, nil
}

// fakeUserLookup 只实现文章服务会用到的用户查询
// readHookPostRepo 在 FindByID 取出副本之后执行回调，
// 用来在读和写之间模拟另一条请求落盘的互动更新。
type readHookPostRepo struct {
	*fakePostRepo
	onRead func()
}

func (r *readHookPostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	p, err := r.fakePostRepo.FindByID(ctx, id)
	if err == nil && r.onRead != nil {
		r.onRead()
	}
	return p, err
}

type fakeUserLookup struct {
	users map[primitive.ObjectID]*model.User
}

func (r *fakeUserLookup) Create(ctx context.Context, user *model.User) error { return nil }
func (r *fakeUserLookup) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, constant.ErrNotFound
}
func (r *fakeUserLookup) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	result := make(map[primitive.ObjectID]*model.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}
func (r *fakeUserLookup) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, constant.ErrNotFound
}
func (r *fakeUserLookup) FindActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, constant.ErrNotFound
}
func (r *fakeUserLookup) Update(ctx context.Context, user *model.User) error         { return nil }
func (r *fakeUserLookup) Delete(ctx context.Context, id primitive.ObjectID) error    { return nil }
func (r *fakeUserLookup) Count(ctx context.Context, activeOnly bool) (int64, error)  { return 0, nil }
func (r *fakeUserLookup) CountByRole(ctx context.Context, role string) (int64, error) {
	return 0, nil
}
func (r *fakeUserLookup) Recent(ctx context.Context, limit int) ([]*model.User, error) {
	return nil, nil
}
func (r *fakeUserLookup) List(ctx context.Context, opts *model.ListUsersOptions) ([]*model.User, int64, error) {
	return nil, 0, nil
}

func newTestPostService() (Service, *fakePostRepo, authz.Caller) {
	repo := newFakePostRepo()
	authorID := primitive.NewObjectID()
	users := &fakeUserLookup{users: map[primitive.ObjectID]*model.User{
		authorID: {ID: authorID, Username: "author", FirstName: "A", LastName: "U", IsActive: true},
	}}
	svc := NewService(repo, users, utility.NewMemoryCacheService())
	caller := authz.Caller{ID: authorID, Role: model.RoleUser, Authenticated: true}
	return svc, repo, caller
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("派生slug、摘要和阅读时长", func(t *testing.T) {
		svc, repo, caller := newTestPostService()
		created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
			Title:    "Hello, World! 2024",
			Content:  "<p>" + strings.TrimSpace(strings.Repeat("word ", 450)) + "</p>",
			Category: "技术",
		})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if created.Slug != "hello-world-2024" {
			t.Errorf("slug = %q", created.Slug)
		}
		if created.ReadingTime != 3 {
			t.Errorf("readingTime = %d, 期望 3", created.ReadingTime)
		}
		if strings.Contains(created.Excerpt, "<p>") {
			t.Error("摘要不应包含HTML标签")
		}
		if created.Status != model.PostStatusDraft {
			t.Errorf("默认状态应为草稿, got %q", created.Status)
		}
		if !created.IsPublic {
			t.Error("默认应公开")
		}
		if created.Author == nil || created.Author.Username != "author" {
			t.Errorf("作者信息未展开: %+v", created.Author)
		}
		if len(repo.posts) != 1 {
			t.Errorf("期望落库 1 篇, got %d", len(repo.posts))
		}
	})

	t.Run("显式摘要优先于派生", func(t *testing.T) {
		svc, _, caller := newTestPostService()
		created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
			Title:    "自定义摘要",
			Content:  "这是足够长的正文内容，完全可以用来派生摘要。",
			Excerpt:  "这是手写的摘要",
			Category: "技术",
		})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if created.Excerpt != "这是手写的摘要" {
			t.Errorf("excerpt = %q", created.Excerpt)
		}
	})

	t.Run("无可用字符的标题退化为随机slug", func(t *testing.T) {
		svc, _, caller := newTestPostService()
		created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
			Title:    "！！！",
			Content:  "这是足够长的正文内容，完全可以用来派生摘要。",
			Category: "技术",
		})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if !strings.HasPrefix(created.Slug, "post-") {
			t.Errorf("slug = %q, 期望 post- 前缀", created.Slug)
		}
	})

	t.Run("匿名调用被拒", func(t *testing.T) {
		svc, _, _ := newTestPostService()
		_, err := svc.Create(ctx, authz.Caller{}, &model.CreatePostRequest{
			Title: "t", Content: "这是足够长的正文内容", Category: "c",
		})
		if !errors.Is(err, constant.ErrUnauthorized) {
			t.Errorf("期望 ErrUnauthorized, got %v", err)
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (Service, authz.Caller, *model.PostResponse) {
		t.Helper()
		svc, _, caller := newTestPostService()
		created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
			Title:    "Original Title",
			Content:  "这是最初的正文内容，长度完全足够。",
			Category: "技术",
			Status:   model.PostStatusPublished,
		})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		return svc, caller, created
	}

	t.Run("标题不变时slug保持", func(t *testing.T) {
		svc, caller, created := setup(t)
		updated, err := svc.Update(ctx, caller, created.ID, &model.UpdatePostRequest{Category: strPtr("生活")})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if updated.Slug != created.Slug {
			t.Errorf("slug 不应变化: %q -> %q", created.Slug, updated.Slug)
		}
		if updated.Category != "生活" {
			t.Errorf("category = %q", updated.Category)
		}
	})

	t.Run("标题变化重算slug", func(t *testing.T) {
		svc, caller, created := setup(t)
		updated, err := svc.Update(ctx, caller, created.ID, &model.UpdatePostRequest{Title: strPtr("Brand New Title")})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if updated.Slug != "brand-new-title" {
			t.Errorf("slug = %q", updated.Slug)
		}
	})

	t.Run("内容变化重算摘要和阅读时长", func(t *testing.T) {
		svc, caller, created := setup(t)
		newContent := strings.TrimSpace(strings.Repeat("word ", 401))
		updated, err := svc.Update(ctx, caller, created.ID, &model.UpdatePostRequest{Content: &newContent})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if updated.ReadingTime != 3 {
			t.Errorf("readingTime = %d, 期望 3", updated.ReadingTime)
		}
		if updated.Excerpt == created.Excerpt {
			t.Error("摘要应随内容重新派生")
		}
	})

	t.Run("非作者更新被拒", func(t *testing.T) {
		svc, _, created := setup(t)
		stranger := authz.Caller{ID: primitive.NewObjectID(), Role: model.RoleUser, Authenticated: true}
		_, err := svc.Update(ctx, stranger, created.ID, &model.UpdatePostRequest{Title: strPtr("Hijack")})
		if !errors.Is(err, constant.ErrForbidden) {
			t.Errorf("期望 ErrForbidden, got %v", err)
		}
	})

	t.Run("非法ID按未找到处理", func(t *testing.T) {
		svc, caller, _ := setup(t)
		_, err := svc.Update(ctx, caller, "not-a-hex-id", &model.UpdatePostRequest{})
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("期望 ErrNotFound, got %v", err)
		}
	})

	t.Run("更新不覆盖读写间隙中落盘的互动数据", func(t *testing.T) {
		repo := newFakePostRepo()
		hooked := &readHookPostRepo{fakePostRepo: repo}
		authorID := primitive.NewObjectID()
		users := &fakeUserLookup{users: map[primitive.ObjectID]*model.User{
			authorID: {ID: authorID, Username: "author", FirstName: "A", LastName: "U", IsActive: true},
		}}
		svc := NewService(hooked, users, utility.NewMemoryCacheService())
		caller := authz.Caller{ID: authorID, Role: model.RoleUser, Authenticated: true}

		created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
			Title:    "Original Title",
			Content:  "这是最初的正文内容，长度完全足够。",
			Category: "技术",
			Status:   model.PostStatusPublished,
		})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		oid, err := primitive.ObjectIDFromHex(created.ID)
		if err != nil {
			t.Fatalf("非法的文章ID: %v", err)
		}

		// 更新流程读到文章之后，另一条请求追加了评论并同步了浏览量
		hooked.onRead = func() {
			stored := repo.posts[oid]
			stored.Comments = append(stored.Comments, model.Comment{
				ID:        primitive.NewObjectID(),
				User:      authorID,
				Content:   "抢在更新落盘之前的评论",
				CreatedAt: time.Now(),
			})
			stored.Views += 7
		}

		if _, err := svc.Update(ctx, caller, created.ID, &model.UpdatePostRequest{Category: strPtr("生活")}); err != nil {
			t.Fatalf("更新失败: %v", err)
		}

		stored := repo.posts[oid]
		if stored.Category != "生活" {
			t.Errorf("category = %q, 期望更新生效", stored.Category)
		}
		if len(stored.Comments) != 1 {
			t.Errorf("comments = %d, 读写间隙中追加的评论不应丢失", len(stored.Comments))
		}
		if stored.Views != 7 {
			t.Errorf("views = %d, 期望 7，浏览量不允许回退", stored.Views)
		}
	})
}

func TestServiceToggleLikeAndComment(t *testing.T) {
	ctx := context.Background()
	svc, _, caller := newTestPostService()

	created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
		Title:    "Like Target",
		Content:  "这是足够长的正文内容，完全可以用来派生摘要。",
		Category: "技术",
		Status:   model.PostStatusPublished,
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	t.Run("点赞切换往返", func(t *testing.T) {
		first, err := svc.ToggleLike(ctx, caller, created.ID)
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if !first.Liked || first.LikeCount != 1 {
			t.Errorf("首次切换 = %+v", first)
		}

		second, _ := svc.ToggleLike(ctx, caller, created.ID)
		if second.Liked || second.LikeCount != 0 {
			t.Errorf("二次切换 = %+v", second)
		}
	})

	t.Run("匿名点赞被拒", func(t *testing.T) {
		if _, err := svc.ToggleLike(ctx, authz.Caller{}, created.ID); !errors.Is(err, constant.ErrUnauthorized) {
			t.Errorf("期望 ErrUnauthorized, got %v", err)
		}
	})

	t.Run("评论追加并展开评论人", func(t *testing.T) {
		comment, err := svc.AddComment(ctx, caller, created.ID, &model.AddCommentRequest{Content: "  写得不错  "})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if comment.Content != "写得不错" {
			t.Errorf("content = %q", comment.Content)
		}
		if comment.User == nil || comment.User.Username != "author" {
			t.Errorf("评论人未展开: %+v", comment.User)
		}
		if comment.CreatedAt.IsZero() || time.Since(comment.CreatedAt) > time.Minute {
			t.Errorf("createdAt = %v", comment.CreatedAt)
		}
	})

	t.Run("空白评论被拒", func(t *testing.T) {
		if _, err := svc.AddComment(ctx, caller, created.ID, &model.AddCommentRequest{Content: "   "}); !errors.Is(err, constant.ErrBadRequest) {
			t.Errorf("期望 ErrBadRequest, got %v", err)
		}
	})
}

func TestServiceGetBySlug(t *testing.T) {
	ctx := context.Background()
	svc, _, caller := newTestPostService()

	created, err := svc.Create(ctx, caller, &model.CreatePostRequest{
		Title:    "Published Post",
		Content:  "这是足够长的正文内容，完全可以用来派生摘要。",
		Category: "技术",
		Status:   model.PostStatusPublished,
	})
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	t.Run("详情包含正文并累积浏览量", func(t *testing.T) {
		detail, err := svc.GetBySlug(ctx, authz.Caller{}, created.Slug)
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if detail.Content == "" {
			t.Error("详情应包含正文")
		}
		if detail.Views != 1 {
			t.Errorf("首次访问 views = %d, 期望 1", detail.Views)
		}

		again, _ := svc.GetBySlug(ctx, authz.Caller{}, created.Slug)
		if again.Views != 2 {
			t.Errorf("二次访问 views = %d, 期望 2", again.Views)
		}
	})

	t.Run("草稿不在公开范围内", func(t *testing.T) {
		draft, err := svc.Create(ctx, caller, &model.CreatePostRequest{
			Title:    "Secret Draft",
			Content:  "这是足够长的正文内容，完全可以用来派生摘要。",
			Category: "技术",
		})
		if err != nil {
			t.Fatalf("创建失败: %v", err)
		}
		if _, err := svc.GetBySlug(ctx, caller, draft.Slug); !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("期望 ErrNotFound, got %v", err)
		}
	})

	t.Run("登录用户看到自己的点赞状态", func(t *testing.T) {
		if _, err := svc.ToggleLike(ctx, caller, created.ID); err != nil {
			t.Fatalf("点赞失败: %v", err)
		}
		detail, err := svc.GetBySlug(ctx, caller, created.Slug)
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if !detail.IsLiked {
			t.Error("期望 isLiked 为 true")
		}

		anon, _ := svc.GetBySlug(ctx, authz.Caller{}, created.Slug)
		if anon.IsLiked {
			t.Error("游客视角 isLiked 应为 false")
		}
	})
}
