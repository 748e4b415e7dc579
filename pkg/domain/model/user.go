/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 11:02:17
 * @LastEditTime: 2025-10-21 15:27:03
 * @LastEditors: 安知鱼
 */
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ========= 业务常量 =========

// 用户角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ========= 领域模型定义 =========

// User 是用户的核心领域模型。PasswordHash 永远不会被序列化到任何对外响应中。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Username     string             `bson:"username" json:"username"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Bio          string             `bson:"bio" json:"bio"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	Newsletter   bool               `bson:"newsletter" json:"newsletter"`
	LastLoginAt  *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullName 返回 "名 姓" 拼接后的展示名
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}

// --- API 数据传输对象 (Data Transfer Objects) ---

// RegisterRequest 定义了注册的请求体
type RegisterRequest struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Newsletter bool   `json:"newsletter"`
}

// LoginRequest 定义了登录的请求体
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// UpdateProfileRequest 定义了用户更新自己资料的请求体。
// 指针字段用于区分 "未提供" 和 "更新为空"。
type UpdateProfileRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Bio        *string `json:"bio"`
	Avatar     *string `json:"avatar"`
	Newsletter *bool   `json:"newsletter"`
}

// ChangePasswordRequest 定义了修改密码的请求体
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AdminUpdateUserRequest 定义了更新用户的请求体（本人或管理员）。
// Role 和 IsActive 属于特权字段：非管理员提交时会被静默忽略而不是报错，
// 与旧版前端的兼容行为保持一致。
type AdminUpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}

// AuthSession 是注册/登录/刷新成功后下发的会话信息
type AuthSession struct {
	User         *UserResponse `json:"user"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
}

// UserResponse 定义了用户信息的标准 API 响应结构
type UserResponse struct {
	ID         string     `json:"_id"`
	FullName   string     `json:"fullName"`
	Email      string     `json:"email,omitempty"`
	Username   string     `json:"username"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Bio        string     `json:"bio"`
	Avatar     string     `json:"avatar"`
	Role       string     `json:"role,omitempty"`
	IsActive   bool       `json:"isActive"`
	Newsletter bool       `json:"newsletter"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewUserResponse 从领域模型构建对外响应。密码散列在此被彻底隔离。
func NewUserResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:         u.ID.Hex(),
		FullName:   u.FullName(),
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bio:        u.Bio,
		Avatar:     u.Avatar,
		Role:       u.Role,
		IsActive:   u.IsActive,
		Newsletter: u.Newsletter,
		LastLogin:  u.LastLoginAt,
		CreatedAt:  u.CreatedAt,
	}
}

// NewPublicUserResponse 构建公开主页使用的响应，不含邮箱和角色。
func NewPublicUserResponse(u *User) *UserResponse {
	resp := NewUserResponse(u)
	resp.Email = ""
	resp.Role = ""
	return resp
}

// ListUsersOptions 封装了管理员用户列表的查询参数
type ListUsersOptions struct {
	Page     int
	PageSize int
	Search   string  // 对 username/email/firstName/lastName 做大小写不敏感的子串匹配
	Role     string  // 按角色过滤
	IsActive *bool   // 按激活状态过滤
}

// PublicProfileResponse 定义了公开作者主页的响应结构：
// 公开的用户资料加上其最近发布的几篇文章
type PublicProfileResponse struct {
	User        *UserResponse   `json:"user"`
	RecentPosts []*PostResponse `json:"recentPosts"`
}

// UserListResponse 定义了管理员用户列表的响应结构
type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Pagination Pagination      `json:"pagination"`
}

// TopAuthorItem 管理员统计中的高产作者项（由聚合管道直接解码）
type TopAuthorItem struct {
	Username  string `bson:"username" json:"username"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	PostCount int    `bson:"postCount" json:"postCount"`
}

// StatsOverview 管理员总览统计
type StatsOverview struct {
	TotalUsers     int64 `json:"totalUsers"`
	ActiveUsers    int64 `json:"activeUsers"`
	TotalPosts     int64 `json:"totalPosts"`
	PublishedPosts int64 `json:"publishedPosts"`
	DraftPosts     int64 `json:"draftPosts"`
}

// StatsOverviewResponse 定义了管理员统计接口的完整响应
type StatsOverviewResponse struct {
	Overview    StatsOverview    `json:"overview"`
	RecentUsers []*UserResponse  `json:"recentUsers"`
	TopAuthors  []*TopAuthorItem `json:"topAuthors"`
}
