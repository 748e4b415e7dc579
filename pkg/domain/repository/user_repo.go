/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 14:01:12
 * @LastEditTime: 2025-10-21 15:40:19
 * @LastEditors: 安知鱼
 */
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

// UserRepository 定义了所有用户数据操作的契约。
// 邮箱和用户名的唯一性由存储层索引保证，冲突时返回 constant.ErrConflict。
type UserRepository interface {
	// Create 持久化一个新用户
	Create(ctx context.Context, user *model.User) error

	// FindByID 按内部ID查找用户，未找到返回 constant.ErrNotFound
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)

	// FindByIDs 批量查找用户，返回 ID 到用户的映射（展开文章作者信息时使用）
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error)

	// FindByEmail 按邮箱查找用户，未找到返回 constant.ErrNotFound
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindActiveByUsername 按用户名查找激活状态的用户（公开主页使用）
	FindActiveByUsername(ctx context.Context, username string) (*model.User, error)

	// Update 保存对用户资料字段的修改，邮箱和用户名在创建后不可变
	Update(ctx context.Context, user *model.User) error

	// Delete 删除一个用户
	Delete(ctx context.Context, id primitive.ObjectID) error

	// List 管理员用户列表：搜索关键词、角色和激活状态过滤，按注册时间倒序分页
	List(ctx context.Context, opts *model.ListUsersOptions) ([]*model.User, int64, error)

	// Count 统计用户数，activeOnly 为 true 时只统计激活用户
	Count(ctx context.Context, activeOnly bool) (int64, error)

	// CountByRole 按角色统计用户数（引导程序判断是否需要创建初始管理员）
	CountByRole(ctx context.Context, role string) (int64, error)

	// Recent 返回最近注册的 limit 个用户
	Recent(ctx context.Context, limit int) ([]*model.User, error)
}
