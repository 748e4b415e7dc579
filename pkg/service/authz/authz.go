/*
 * @Description: 集中式的所有权/角色授权决策
 * @Author: 安知鱼
 * @Date: 2025-09-03 10:30:26
 * @LastEditTime: 2025-11-06 19:21:55
 * @LastEditors: 安知鱼
 */
package authz

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

// Action 是需要授权的变更类操作
type Action string

const (
	ActionUpdatePost Action = "post:update"
	ActionDeletePost Action = "post:delete"
	ActionUpdateUser Action = "user:update"
	ActionDeleteUser Action = "user:delete"
)

// Caller 是发起请求的调用方身份。
// Authenticated 为 false 表示匿名访问，此时 ID 和 Role 无意义。
type Caller struct {
	ID            primitive.ObjectID
	Role          string
	Authenticated bool
}

// IsAdmin 判断调用方是否为管理员
func (c Caller) IsAdmin() bool {
	return c.Authenticated && c.Role == model.RoleAdmin
}

// Decide 对一次变更操作做出允许/拒绝的决策，所有路由共用这一张决策表，
// 不在各路由里散落重复的判断。
//
// 规则：
//   - 匿名调用方对一切变更操作返回 ErrUnauthorized；
//   - 删除用户仅限管理员，且管理员永远不能删除自己（ErrSelfDeleteForbidden）；
//   - 其余操作允许管理员，或资源属主（文章作者；用户记录则是本人）；
//   - 其他情况一律 ErrForbidden。
func Decide(caller Caller, ownerID primitive.ObjectID, action Action) error {
	if !caller.Authenticated {
		return constant.ErrUnauthorized
	}

	if action == ActionDeleteUser {
		if !caller.IsAdmin() {
			return constant.ErrForbidden
		}
		if caller.ID == ownerID {
			return constant.ErrSelfDeleteForbidden
		}
		return nil
	}

	if caller.IsAdmin() {
		return nil
	}
	if caller.ID == ownerID {
		return nil
	}
	return constant.ErrForbidden
}
