package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/authz"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/post"
)

// opLog 记录跨仓库的调用顺序，用来验证级联删除先清文章再删用户
type opLog struct {
	ops []string
}

// fakeUserRepo 是一个基于内存 map 的 UserRepository 测试替身
type fakeUserRepo struct {
	users map[primitive.ObjectID]*model.User
	log   *opLog
}

func newFakeUserRepo(log *opLog) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User), log: log}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, constant.ErrNotFound
}

func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	result := make(map[primitive.ObjectID]*model.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			result[id] = &cp
		}
	}
	return result, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, constant.ErrNotFound
}

func (r *fakeUserRepo) FindActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, constant.ErrNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return constant.ErrNotFound
	}
	// 与真实存储一致：只落资料字段，邮箱和用户名不变
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Bio = user.Bio
	stored.Avatar = user.Avatar
	stored.Newsletter = user.Newsletter
	stored.Role = user.Role
	stored.IsActive = user.IsActive
	stored.PasswordHash = user.PasswordHash
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.users[id]; !ok {
		return constant.ErrNotFound
	}
	delete(r.users, id)
	if r.log != nil {
		r.log.ops = append(r.log.ops, "user.Delete")
	}
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, opts *model.ListUsersOptions) ([]*model.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Recent(ctx context.Context, limit int) ([]*model.User, error) {
	return nil, nil
}

// fakeCascadePostRepo 只关心级联删除，其余方法返回零值
type fakeCascadePostRepo struct {
	log           *opLog
	deletedAuthor primitive.ObjectID
	authorPosts   int64
}

func (r *fakeCascadePostRepo) Create(ctx context.Context, p *model.Post) error { return nil }
func (r *fakeCascadePostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	return nil, constant.ErrNotFound
}
func (r *fakeCascadePostRepo) FindPublicBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return nil, constant.ErrNotFound
}
func (r *fakeCascadePostRepo) Update(ctx context.Context, p *model.Post) error { return nil }
func (r *fakeCascadePostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (r *fakeCascadePostRepo) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	r.deletedAuthor = author
	if r.log != nil {
		r.log.ops = append(r.log.ops, "post.DeleteByAuthor")
	}
	return r.authorPosts, nil
}

func (r *fakeCascadePostRepo) ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) ([]*model.Post, int64, error) {
	return nil, 0, nil
}
func (r *fakeCascadePostRepo) ListByAuthor(ctx context.Context, opts *model.ListUserPostsOptions) ([]*model.Post, int64, error) {
	return nil, 0, nil
}
func (r *fakeCascadePostRepo) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.LikeResult, error) {
	return nil, constant.ErrNotFound
}
func (r *fakeCascadePostRepo) AppendComment(ctx context.Context, postID primitive.ObjectID, comment *model.Comment) error {
	return nil
}
func (r *fakeCascadePostRepo) IncrementViews(ctx context.Context, increments map[primitive.ObjectID]int64) error {
	return nil
}
func (r *fakeCascadePostRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	return 0, nil
}
func (r *fakeCascadePostRepo) TopAuthors(ctx context.Context, limit int) ([]*model.TopAuthorItem, error) {
	return nil, nil
}

// stubPostService 满足 post.Service 接口，本文件的用例不经过它
type stubPostService struct{}

var _ post.Service = stubPostService{}

func (stubPostService) Create(ctx context.Context, caller authz.Caller, req *model.CreatePostRequest) (*model.PostResponse, error) {
	return nil, nil
}
func (stubPostService) Update(ctx context.Context, caller authz.Caller, id string, req *model.UpdatePostRequest) (*model.PostResponse, error) {
	return nil, nil
}
func (stubPostService) Delete(ctx context.Context, caller authz.Caller, id string) error {
	return nil
}
func (stubPostService) ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) (*model.PostListResponse, error) {
	return &model.PostListResponse{Posts: []*model.PostResponse{}}, nil
}
func (stubPostService) ListMine(ctx context.Context, caller authz.Caller, status string, page, pageSize int) (*model.PostListResponse, error) {
	return nil, nil
}
func (stubPostService) GetBySlug(ctx context.Context, caller authz.Caller, slug string) (*model.PostResponse, error) {
	return nil, nil
}
func (stubPostService) ToggleLike(ctx context.Context, caller authz.Caller, id string) (*model.LikeResult, error) {
	return nil, nil
}
func (stubPostService) AddComment(ctx context.Context, caller authz.Caller, id string, req *model.AddCommentRequest) (*model.CommentResponse, error) {
	return nil, nil
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func seedUser(repo *fakeUserRepo, role string) *model.User {
	u := &model.User{
		ID:        primitive.NewObjectID(),
		Email:     "target@anwen.dev",
		Username:  "target",
		FirstName: "目标",
		LastName:  "用户",
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	repo.users[u.ID] = u
	return u
}

func TestServiceUpdateUser(t *testing.T) {
	ctx := context.Background()

	setup := func() (Service, *fakeUserRepo, *model.User) {
		log := &opLog{}
		userRepo := newFakeUserRepo(log)
		target := seedUser(userRepo, model.RoleUser)
		svc := NewService(userRepo, &fakeCascadePostRepo{log: log}, stubPostService{})
		return svc, userRepo, target
	}

	t.Run("本人更新基础字段生效", func(t *testing.T) {
		svc, repo, target := setup()
		caller := authz.Caller{ID: target.ID, Role: model.RoleUser, Authenticated: true}

		resp, err := svc.Update(ctx, caller, target.ID.Hex(), &model.AdminUpdateUserRequest{
			FirstName: strPtr("新名"),
			Bio:       strPtr("写点什么"),
		})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if resp.FirstName != "新名" || resp.Bio != "写点什么" {
			t.Errorf("基础字段未生效: firstName=%q bio=%q", resp.FirstName, resp.Bio)
		}
		stored := repo.users[target.ID]
		if stored.FirstName != "新名" {
			t.Errorf("存储中的 firstName = %q", stored.FirstName)
		}
	})

	t.Run("非管理员提交特权字段被静默忽略", func(t *testing.T) {
		svc, repo, target := setup()
		caller := authz.Caller{ID: target.ID, Role: model.RoleUser, Authenticated: true}

		resp, err := svc.Update(ctx, caller, target.ID.Hex(), &model.AdminUpdateUserRequest{
			Bio:      strPtr("顺便提个权"),
			Role:     strPtr(model.RoleAdmin),
			IsActive: boolPtr(false),
		})
		if err != nil {
			t.Fatalf("特权字段应被忽略而不是报错: %v", err)
		}
		if resp.Bio != "顺便提个权" {
			t.Errorf("基础字段仍应生效: bio=%q", resp.Bio)
		}
		stored := repo.users[target.ID]
		if stored.Role != model.RoleUser {
			t.Errorf("role = %q, 非管理员不允许改角色", stored.Role)
		}
		if !stored.IsActive {
			t.Error("isActive 被非管理员修改")
		}
	})

	t.Run("管理员提交特权字段生效", func(t *testing.T) {
		svc, repo, target := setup()
		admin := authz.Caller{ID: primitive.NewObjectID(), Role: model.RoleAdmin, Authenticated: true}

		_, err := svc.Update(ctx, admin, target.ID.Hex(), &model.AdminUpdateUserRequest{
			Role:     strPtr(model.RoleAdmin),
			IsActive: boolPtr(false),
		})
		if err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		stored := repo.users[target.ID]
		if stored.Role != model.RoleAdmin {
			t.Errorf("role = %q, 期望 admin", stored.Role)
		}
		if stored.IsActive {
			t.Error("isActive 应被管理员停用")
		}
	})

	t.Run("管理员提交无效角色报错", func(t *testing.T) {
		svc, _, target := setup()
		admin := authz.Caller{ID: primitive.NewObjectID(), Role: model.RoleAdmin, Authenticated: true}

		_, err := svc.Update(ctx, admin, target.ID.Hex(), &model.AdminUpdateUserRequest{
			Role: strPtr("superuser"),
		})
		if !errors.Is(err, constant.ErrBadRequest) {
			t.Errorf("期望 ErrBadRequest, got %v", err)
		}
	})

	t.Run("其他用户更新被拒", func(t *testing.T) {
		svc, _, target := setup()
		stranger := authz.Caller{ID: primitive.NewObjectID(), Role: model.RoleUser, Authenticated: true}

		_, err := svc.Update(ctx, stranger, target.ID.Hex(), &model.AdminUpdateUserRequest{Bio: strPtr("路过")})
		if !errors.Is(err, constant.ErrForbidden) {
			t.Errorf("期望 ErrForbidden, got %v", err)
		}
	})
}

func TestServiceDeleteUser(t *testing.T) {
	ctx := context.Background()

	setup := func() (Service, *fakeUserRepo, *fakeCascadePostRepo, *model.User) {
		log := &opLog{}
		userRepo := newFakeUserRepo(log)
		postRepo := &fakeCascadePostRepo{log: log, authorPosts: 3}
		target := seedUser(userRepo, model.RoleUser)
		svc := NewService(userRepo, postRepo, stubPostService{})
		return svc, userRepo, postRepo, target
	}

	t.Run("管理员删除先级联清理文章", func(t *testing.T) {
		svc, userRepo, postRepo, target := setup()
		admin := authz.Caller{ID: primitive.NewObjectID(), Role: model.RoleAdmin, Authenticated: true}

		if err := svc.Delete(ctx, admin, target.ID.Hex()); err != nil {
			t.Fatalf("不期望错误: %v", err)
		}
		if postRepo.deletedAuthor != target.ID {
			t.Errorf("级联删除的作者 = %v, 期望 %v", postRepo.deletedAuthor, target.ID)
		}
		if _, ok := userRepo.users[target.ID]; ok {
			t.Error("用户应已被删除")
		}
		want := []string{"post.DeleteByAuthor", "user.Delete"}
		if len(userRepo.log.ops) != 2 || userRepo.log.ops[0] != want[0] || userRepo.log.ops[1] != want[1] {
			t.Errorf("调用顺序 = %v, 期望 %v", userRepo.log.ops, want)
		}
	})

	t.Run("管理员不能删除自己", func(t *testing.T) {
		log := &opLog{}
		userRepo := newFakeUserRepo(log)
		admin := seedUser(userRepo, model.RoleAdmin)
		svc := NewService(userRepo, &fakeCascadePostRepo{log: log}, stubPostService{})
		caller := authz.Caller{ID: admin.ID, Role: model.RoleAdmin, Authenticated: true}

		err := svc.Delete(ctx, caller, admin.ID.Hex())
		if !errors.Is(err, constant.ErrSelfDeleteForbidden) {
			t.Errorf("期望 ErrSelfDeleteForbidden, got %v", err)
		}
		if _, ok := userRepo.users[admin.ID]; !ok {
			t.Error("用户不应被删除")
		}
	})

	t.Run("普通用户删除被拒", func(t *testing.T) {
		svc, userRepo, postRepo, target := setup()
		caller := authz.Caller{ID: target.ID, Role: model.RoleUser, Authenticated: true}

		err := svc.Delete(ctx, caller, target.ID.Hex())
		if !errors.Is(err, constant.ErrForbidden) {
			t.Errorf("期望 ErrForbidden, got %v", err)
		}
		if postRepo.deletedAuthor != primitive.NilObjectID {
			t.Error("被拒的删除不应触发级联清理")
		}
		if _, ok := userRepo.users[target.ID]; !ok {
			t.Error("用户不应被删除")
		}
	})

	t.Run("不存在的用户按未找到处理", func(t *testing.T) {
		svc, _, _, _ := setup()
		admin := authz.Caller{ID: primitive.NewObjectID(), Role: model.RoleAdmin, Authenticated: true}

		err := svc.Delete(ctx, admin, primitive.NewObjectID().Hex())
		if !errors.Is(err, constant.ErrNotFound) {
			t.Errorf("期望 ErrNotFound, got %v", err)
		}
	})
}
