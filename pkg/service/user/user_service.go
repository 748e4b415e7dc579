/*
 * @Description: 用户业务服务：公开主页、管理员用户管理与总览统计
 * @Author: 安知鱼
 * @Date: 2025-09-03 16:05:33
 * @LastEditTime: 2025-11-07 16:48:12
 * @LastEditors: 安知鱼
 */
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/authz"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/post"
)

// 公开主页上展示的最近文章条数
const recentPostsOnProfile = 5

// 总览统计中的最近注册用户与高产作者条数
const statsTopN = 5

// Service 定义了用户相关的业务接口
type Service interface {
	// PublicProfile 公开的作者主页：公开资料加最近发布的文章
	PublicProfile(ctx context.Context, username string) (*model.PublicProfileResponse, error)
	// PublicPosts 某作者公开范围内的文章列表
	PublicPosts(ctx context.Context, username string, page, pageSize int) (*model.PostListResponse, error)
	// AdminList 管理员用户列表：搜索、过滤与分页
	AdminList(ctx context.Context, opts *model.ListUsersOptions) (*model.UserListResponse, error)
	// Update 更新用户资料，本人或管理员可操作；角色与激活状态仅管理员生效
	Update(ctx context.Context, caller authz.Caller, id string, req *model.AdminUpdateUserRequest) (*model.UserResponse, error)
	// Delete 删除用户并级联删除其全部文章，仅管理员可操作且不能删除自己
	Delete(ctx context.Context, caller authz.Caller, id string) error
	// StatsOverview 管理员总览统计
	StatsOverview(ctx context.Context) (*model.StatsOverviewResponse, error)
}

type service struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	postSvc  post.Service
}

// NewService 是用户服务的构造函数
func NewService(userRepo repository.UserRepository, postRepo repository.PostRepository, postSvc post.Service) Service {
	return &service{
		userRepo: userRepo,
		postRepo: postRepo,
		postSvc:  postSvc,
	}
}

func parseUserID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: 用户不存在", constant.ErrNotFound)
	}
	return oid, nil
}

func (s *service) PublicProfile(ctx context.Context, username string) (*model.PublicProfileResponse, error) {
	u, err := s.userRepo.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	list, err := s.postSvc.ListPublic(ctx, &model.ListPublicPostsOptions{
		Page:     1,
		PageSize: recentPostsOnProfile,
		Author:   &u.ID,
	})
	if err != nil {
		return nil, err
	}
	return &model.PublicProfileResponse{
		User:        model.NewPublicUserResponse(u),
		RecentPosts: list.Posts,
	}, nil
}

func (s *service) PublicPosts(ctx context.Context, username string, page, pageSize int) (*model.PostListResponse, error) {
	u, err := s.userRepo.FindActiveByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.postSvc.ListPublic(ctx, &model.ListPublicPostsOptions{
		Page:     page,
		PageSize: pageSize,
		Author:   &u.ID,
	})
}

func (s *service) AdminList(ctx context.Context, opts *model.ListUsersOptions) (*model.UserListResponse, error) {
	opts.Page, opts.PageSize = model.NormalizePage(opts.Page, opts.PageSize)
	users, total, err := s.userRepo.List(ctx, opts)
	if err != nil {
		return nil, err
	}

	items := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, model.NewUserResponse(u))
	}
	return &model.UserListResponse{
		Users:      items,
		Pagination: model.NewPagination(opts.Page, opts.PageSize, total, len(users)),
	}, nil
}

func (s *service) Update(ctx context.Context, caller authz.Caller, id string, req *model.AdminUpdateUserRequest) (*model.UserResponse, error) {
	oid, err := parseUserID(id)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(caller, oid, authz.ActionUpdateUser); err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}

	// 角色和激活状态是特权字段：非管理员提交时静默忽略而不是报错
	if caller.IsAdmin() {
		if req.Role != nil {
			if *req.Role != model.RoleUser && *req.Role != model.RoleAdmin {
				return nil, fmt.Errorf("%w: 无效的用户角色", constant.ErrBadRequest)
			}
			u.Role = *req.Role
		}
		if req.IsActive != nil {
			u.IsActive = *req.IsActive
		}
	}

	u.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return model.NewUserResponse(u), nil
}

func (s *service) Delete(ctx context.Context, caller authz.Caller, id string) error {
	oid, err := parseUserID(id)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, oid); err != nil {
		return err
	}
	if err := authz.Decide(caller, oid, authz.ActionDeleteUser); err != nil {
		return err
	}

	// 先级联清理文章再删用户，避免留下无主文章
	deleted, err := s.postRepo.DeleteByAuthor(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, oid); err != nil {
		return err
	}
	slog.Info("已删除用户及其文章", "userID", id, "postsDeleted", deleted)
	return nil
}

func (s *service) StatsOverview(ctx context.Context) (*model.StatsOverviewResponse, error) {
	totalUsers, err := s.userRepo.Count(ctx, false)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.userRepo.Count(ctx, true)
	if err != nil {
		return nil, err
	}
	totalPosts, err := s.postRepo.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	publishedPosts, err := s.postRepo.CountByStatus(ctx, model.PostStatusPublished)
	if err != nil {
		return nil, err
	}
	draftPosts, err := s.postRepo.CountByStatus(ctx, model.PostStatusDraft)
	if err != nil {
		return nil, err
	}

	recent, err := s.userRepo.Recent(ctx, statsTopN)
	if err != nil {
		return nil, err
	}
	recentUsers := make([]*model.UserResponse, 0, len(recent))
	for _, u := range recent {
		recentUsers = append(recentUsers, model.NewUserResponse(u))
	}

	topAuthors, err := s.postRepo.TopAuthors(ctx, statsTopN)
	if err != nil {
		return nil, err
	}

	return &model.StatsOverviewResponse{
		Overview: model.StatsOverview{
			TotalUsers:     totalUsers,
			ActiveUsers:    activeUsers,
			TotalPosts:     totalPosts,
			PublishedPosts: publishedPosts,
			DraftPosts:     draftPosts,
		},
		RecentUsers: recentUsers,
		TopAuthors:  topAuthors,
	}, nil
}
