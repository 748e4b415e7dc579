/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 11:18:40
 * @LastEditTime: 2025-11-06 17:52:08
 * @LastEditors: 安知鱼
 */
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ========= 业务常量 =========

// 文章状态常量
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// 排序关键字。未识别的值一律按 SortNewest 处理，不报错。
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// ========= 领域模型定义 =========

// Comment 是内嵌在文章文档中的评论，只追加，不支持编辑和删除。
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"-"`
	User      primitive.ObjectID `bson:"user" json:"-"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Post 是文章的核心领域模型，点赞集合与评论序列内嵌其中，随文章一起删除。
type Post struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Title         string               `bson:"title"`
	Content       string               `bson:"content,omitempty"`
	Excerpt       string               `bson:"excerpt"`
	Author        primitive.ObjectID   `bson:"author"`
	Tags          []string             `bson:"tags"`
	Category      string               `bson:"category"`
	FeaturedImage string               `bson:"featuredImage"`
	Status        string               `bson:"status"`
	IsPublic      bool                 `bson:"isPublic"`
	Views         int64                `bson:"views"`
	Likes         []primitive.ObjectID `bson:"likes"`
	Comments      []Comment            `bson:"comments"`
	Slug          string               `bson:"slug"`
	ReadingTime   int                  `bson:"readingTime"`
	CreatedAt     time.Time            `bson:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt"`
}

// LikedBy 判断某个用户是否已点赞
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// --- API 数据传输对象 (Data Transfer Objects) ---

// CreatePostRequest 定义了创建文章的请求体
type CreatePostRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage"`
	Status        string   `json:"status"`
	IsPublic      *bool    `json:"isPublic"`
}

// UpdatePostRequest 定义了更新文章的请求体。
// 指针字段用于区分 "未提供" 和 "更新为空"。
type UpdatePostRequest struct {
	Title         *string  `json:"title"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	Category      *string  `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage *string  `json:"featuredImage"`
	Status        *string  `json:"status"`
	IsPublic      *bool    `json:"isPublic"`
}

// AddCommentRequest 定义了发表评论的请求体
type AddCommentRequest struct {
	Content string `json:"content"`
}

// AuthorInfo 是响应中展开后的作者信息
type AuthorInfo struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio,omitempty"`
}

// NewAuthorInfo 从用户领域模型构建作者信息。作者已被删除时返回 nil。
func NewAuthorInfo(u *User) *AuthorInfo {
	if u == nil {
		return nil
	}
	return &AuthorInfo{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
}

// CommentResponse 定义了评论的标准 API 响应结构，评论人信息已展开。
type CommentResponse struct {
	ID        string      `json:"_id"`
	User      *AuthorInfo `json:"user"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PostResponse 定义了文章信息的标准 API 响应结构。
// 列表响应不包含 Content（投影裁剪），详情响应包含。
type PostResponse struct {
	ID            string             `json:"_id"`
	Title         string             `json:"title"`
	Content       string             `json:"content,omitempty"`
	Excerpt       string             `json:"excerpt"`
	Author        *AuthorInfo        `json:"author"`
	Tags          []string           `json:"tags"`
	Category      string             `json:"category"`
	FeaturedImage string             `json:"featuredImage"`
	Status        string             `json:"status"`
	IsPublic      bool               `json:"isPublic"`
	Views         int64              `json:"views"`
	LikeCount     int                `json:"likeCount"`
	IsLiked       bool               `json:"isLiked"`
	CommentCount  int                `json:"commentCount"`
	Comments      []*CommentResponse `json:"comments,omitempty"`
	Slug          string             `json:"slug"`
	ReadingTime   int                `json:"readingTime"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// PostListResponse 定义了文章列表的 API 响应结构
type PostListResponse struct {
	Posts      []*PostResponse `json:"posts"`
	Pagination Pagination      `json:"pagination"`
}

// LikeResult 是点赞切换的结果
type LikeResult struct {
	Liked     bool `json:"isLiked"`
	LikeCount int  `json:"likeCount"`
}

// ListPublicPostsOptions 封装了公开文章列表的查询参数。
// 公开范围恒定约束 status=published 且 isPublic=true。
type ListPublicPostsOptions struct {
	Page     int
	PageSize int
	Category string
	Tag      string
	Search   string // 对 title/content/excerpt 做大小写不敏感的子串匹配，纯空白视为未提供
	Sort     string
	Author   *primitive.ObjectID // 公开的作者主页文章列表使用
}

// ListUserPostsOptions 封装了 "我的文章" 列表的查询参数。
// 按作者约束，不限制公开性，可选覆盖状态过滤。
type ListUserPostsOptions struct {
	Author   primitive.ObjectID
	Status   string
	Page     int
	PageSize int
}
