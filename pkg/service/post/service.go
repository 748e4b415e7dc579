/*
 * @Description: 文章业务服务：创建/更新/删除、列表查询、详情、点赞与评论
 * @Author: 安知鱼
 * @Date: 2025-09-03 11:20:15
 * @LastEditTime: 2025-11-07 11:02:48
 * @LastEditors: 安知鱼
 */
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/authz"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/utility"
)

// ViewCountKeyPrefix 是浏览量增量在缓存中的键前缀，
// 后跟文章ID的十六进制形式，由同步任务扫描后批量刷回存储层。
const ViewCountKeyPrefix = "anwen:post:view_count:"

// ViewCountKeyPattern 供同步任务扫描全部浏览量增量键
const ViewCountKeyPattern = ViewCountKeyPrefix + "*"

// ViewCountKey 返回某篇文章的浏览量增量键
func ViewCountKey(postID primitive.ObjectID) string {
	return ViewCountKeyPrefix + postID.Hex()
}

// Service 定义了文章相关的业务接口
type Service interface {
	// Create 创建一篇文章，作者为当前调用方
	Create(ctx context.Context, caller authz.Caller, req *model.CreatePostRequest) (*model.PostResponse, error)
	// Update 更新一篇文章，仅作者本人或管理员可操作
	Update(ctx context.Context, caller authz.Caller, id string, req *model.UpdatePostRequest) (*model.PostResponse, error)
	// Delete 删除一篇文章，仅作者本人或管理员可操作
	Delete(ctx context.Context, caller authz.Caller, id string) error
	// ListPublic 公开范围的文章列表：过滤、排序、分页
	ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) (*model.PostListResponse, error)
	// ListMine "我的文章" 列表：所有状态可见，可选状态过滤
	ListMine(ctx context.Context, caller authz.Caller, status string, page, pageSize int) (*model.PostListResponse, error)
	// GetBySlug 按 slug 获取公开文章详情并累积一次浏览量
	GetBySlug(ctx context.Context, caller authz.Caller, slug string) (*model.PostResponse, error)
	// ToggleLike 切换调用方对文章的点赞状态
	ToggleLike(ctx context.Context, caller authz.Caller, id string) (*model.LikeResult, error)
	// AddComment 向文章追加一条评论
	AddComment(ctx context.Context, caller authz.Caller, id string, req *model.AddCommentRequest) (*model.CommentResponse, error)
}

type service struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	cacheSvc utility.CacheService
}

// NewService 是文章服务的构造函数
func NewService(postRepo repository.PostRepository, userRepo repository.UserRepository, cacheSvc utility.CacheService) Service {
	return &service{
		postRepo: postRepo,
		userRepo: userRepo,
		cacheSvc: cacheSvc,
	}
}

// parsePostID 解析路径中的文章ID。格式不合法与不存在同样对待，
// 避免通过错误形态区分资源存在性。
func parsePostID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: 文章不存在", constant.ErrNotFound)
	}
	return oid, nil
}

func (s *service) Create(ctx context.Context, caller authz.Caller, req *model.CreatePostRequest) (*model.PostResponse, error) {
	if !caller.Authenticated {
		return nil, constant.ErrUnauthorized
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	slug := Slugify(req.Title)
	if slug == "" {
		// 标题不含任何可用字符时退化为随机 slug
		slug = "post-" + primitive.NewObjectID().Hex()
	}

	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = deriveExcerpt(req.Content)
	}
	_, readingTime := calculatePostStats(req.Content)

	now := time.Now()
	post := &model.Post{
		Title:         req.Title,
		Content:       req.Content,
		Excerpt:       excerpt,
		Author:        caller.ID,
		Tags:          req.Tags,
		Category:      req.Category,
		FeaturedImage: req.FeaturedImage,
		Status:        status,
		IsPublic:      isPublic,
		Slug:          slug,
		ReadingTime:   readingTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return buildPostResponse(post, map[primitive.ObjectID]*model.User{caller.ID: author}, caller, true), nil
}

func (s *service) Update(ctx context.Context, caller authz.Caller, id string, req *model.UpdatePostRequest) (*model.PostResponse, error) {
	postID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(caller, post.Author, authz.ActionUpdatePost); err != nil {
		return nil, err
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	titleChanged := req.Title != nil && *req.Title != post.Title
	contentChanged := req.Content != nil && *req.Content != post.Content

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = *req.FeaturedImage
	}
	if req.Status != nil {
		post.Status = *req.Status
	}
	if req.IsPublic != nil {
		post.IsPublic = *req.IsPublic
	}

	// slug 与派生字段仅在来源字段变化时重算，避免无谓改变文章的公开地址
	if titleChanged {
		if slug := Slugify(post.Title); slug != "" {
			post.Slug = slug
		} else {
			post.Slug = "post-" + post.ID.Hex()
		}
	}
	if contentChanged {
		_, post.ReadingTime = calculatePostStats(post.Content)
	}
	// 显式提供的摘要优先；内容变化且未显式提供时按新内容重新生成
	if req.Excerpt != nil && strings.TrimSpace(*req.Excerpt) != "" {
		post.Excerpt = strings.TrimSpace(*req.Excerpt)
	} else if contentChanged {
		post.Excerpt = deriveExcerpt(post.Content)
	}

	post.UpdatedAt = time.Now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByID(ctx, post.Author)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	users := map[primitive.ObjectID]*model.User{}
	if author != nil {
		users[post.Author] = author
	}
	return buildPostResponse(post, users, caller, true), nil
}

func (s *service) Delete(ctx context.Context, caller authz.Caller, id string) error {
	postID, err := parsePostID(id)
	if err != nil {
		return err
	}
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := authz.Decide(caller, post.Author, authz.ActionDeletePost); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *service) ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) (*model.PostListResponse, error) {
	opts.Page, opts.PageSize = model.NormalizePage(opts.Page, opts.PageSize)
	posts, total, err := s.postRepo.ListPublic(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.buildListResponse(ctx, posts, total, opts.Page, opts.PageSize, authz.Caller{})
}

func (s *service) ListMine(ctx context.Context, caller authz.Caller, status string, page, pageSize int) (*model.PostListResponse, error) {
	if !caller.Authenticated {
		return nil, constant.ErrUnauthorized
	}
	page, pageSize = model.NormalizePage(page, pageSize)
	posts, total, err := s.postRepo.ListByAuthor(ctx, &model.ListUserPostsOptions{
		Author:   caller.ID,
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}
	return s.buildListResponse(ctx, posts, total, page, pageSize, caller)
}

func (s *service) GetBySlug(ctx context.Context, caller authz.Caller, slug string) (*model.PostResponse, error) {
	post, err := s.postRepo.FindPublicBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	// 浏览量先在缓存中累积，由定时任务批量刷回存储层；
	// 缓存不可用时跳过计数，不影响读取本身。
	if pending, err := s.cacheSvc.Increment(ctx, ViewCountKey(post.ID)); err != nil {
		slog.Warn("累积文章浏览量失败", "slug", slug, "error", err)
	} else {
		post.Views += pending
	}

	ids := []primitive.ObjectID{post.Author}
	for _, c := range post.Comments {
		ids = append(ids, c.User)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildPostResponse(post, users, caller, true), nil
}

func (s *service) ToggleLike(ctx context.Context, caller authz.Caller, id string) (*model.LikeResult, error) {
	if !caller.Authenticated {
		return nil, constant.ErrUnauthorized
	}
	postID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ToggleLike(ctx, postID, caller.ID)
}

func (s *service) AddComment(ctx context.Context, caller authz.Caller, id string, req *model.AddCommentRequest) (*model.CommentResponse, error) {
	if !caller.Authenticated {
		return nil, constant.ErrUnauthorized
	}
	postID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}
	content, err := validateComment(req.Content)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:        primitive.NewObjectID(),
		User:      caller.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.postRepo.AppendComment(ctx, postID, comment); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return &model.CommentResponse{
		ID:        comment.ID.Hex(),
		User:      model.NewAuthorInfo(user),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}, nil
}

// buildListResponse 批量展开作者信息并组装分页列表响应
func (s *service) buildListResponse(ctx context.Context, posts []*model.Post, total int64, page, pageSize int, caller authz.Caller) (*model.PostListResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Author)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*model.PostResponse, 0, len(posts))
	for _, p := range posts {
		items = append(items, buildPostResponse(p, users, caller, false))
	}
	return &model.PostListResponse{
		Posts:      items,
		Pagination: model.NewPagination(page, pageSize, total, len(posts)),
	}, nil
}

// buildPostResponse 将领域模型组装为 API 响应。
// withContent 为 false 时用于列表场景：不带正文和评论明细，只带计数。
func buildPostResponse(p *model.Post, users map[primitive.ObjectID]*model.User, caller authz.Caller, withContent bool) *model.PostResponse {
	resp := &model.PostResponse{
		ID:            p.ID.Hex(),
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Author:        model.NewAuthorInfo(users[p.Author]),
		Tags:          p.Tags,
		Category:      p.Category,
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
		IsPublic:      p.IsPublic,
		Views:         p.Views,
		LikeCount:     len(p.Likes),
		IsLiked:       caller.Authenticated && p.LikedBy(caller.ID),
		CommentCount:  len(p.Comments),
		Slug:          p.Slug,
		ReadingTime:   p.ReadingTime,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if withContent {
		resp.Content = p.Content
		resp.Comments = make([]*model.CommentResponse, 0, len(p.Comments))
		for _, c := range p.Comments {
			resp.Comments = append(resp.Comments, &model.CommentResponse{
				ID:        c.ID.Hex(),
				User:      model.NewAuthorInfo(users[c.User]),
				Content:   c.Content,
				CreatedAt: c.CreatedAt,
			})
		}
	}
	return resp
}

func isNotFound(err error) bool {
	return errors.Is(err, constant.ErrNotFound)
}
