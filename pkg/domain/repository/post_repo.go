/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 14:05:33
 * @LastEditTime: 2025-11-06 18:10:45
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

// PostRepository 定义了所有文章数据操作的契约。
//
// 列表查询均返回 (items, total)；点赞切换与评论追加必须是存储层的原子
// 条件更新，不允许读取-修改-写回。所有方法在存储超时或不可用时返回
// constant.ErrStorageUnavailable，调用方按正常的请求重试策略处理。
type PostRepository interface {
	// Create 持久化一篇新文章。slug 唯一性由存储层索引保证，
	// 冲突时返回 constant.ErrConflict。
	Create(ctx context.Context, post *model.Post) error

	// FindByID 按内部ID查找文章，未找到返回 constant.ErrNotFound
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)

	// FindPublicBySlug 按 slug 查找已发布且公开的文章。
	// 存在但不在公开范围内同样返回 constant.ErrNotFound。
	FindPublicBySlug(ctx context.Context, slug string) (*model.Post, error)

	// Update 保存对文章作者可编辑字段的修改。likes、comments 和 views
	// 不在写入范围内，它们只能经由各自的原子操作变化。
	Update(ctx context.Context, post *model.Post) error

	// Delete 删除一篇文章（内嵌的点赞与评论随之消失）
	Delete(ctx context.Context, id primitive.ObjectID) error

	// DeleteByAuthor 删除某作者的全部文章（删除用户时级联调用）
	DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)

	// ListPublic 公开范围的过滤/排序/分页查询，列表投影不含 content 字段
	ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) ([]*model.Post, int64, error)

	// ListByAuthor "我的文章" 查询：所有状态可见，可选状态过滤
	ListByAuthor(ctx context.Context, opts *model.ListUserPostsOptions) ([]*model.Post, int64, error)

	// ToggleLike 原子地切换 userID 在点赞集合中的成员关系，
	// 返回切换后的点赞状态和点赞数
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.LikeResult, error)

	// AppendComment 原子地向评论序列追加一条评论
	AppendComment(ctx context.Context, postID primitive.ObjectID, comment *model.Comment) error

	// IncrementViews 将累积的浏览量增量批量写入存储（浏览量同步任务调用）
	IncrementViews(ctx context.Context, increments map[primitive.ObjectID]int64) error

	// CountByStatus 按状态统计文章数，status 为空时统计全部
	CountByStatus(ctx context.Context, status string) (int64, error)

	// TopAuthors 聚合出已发布文章数最多的前 limit 位作者
	TopAuthors(ctx context.Context, limit int) ([]*model.TopAuthorItem, error)
}
