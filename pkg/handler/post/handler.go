/*
 * @Description: 文章接口：公开列表/详情、作者管理、点赞与评论
 * @Author: 安知鱼
 * @Date: 2025-09-04 11:05:27
 * @LastEditTime: 2025-11-07 18:40:51
 * @LastEditors: 安知鱼
 */
package post

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	jwtauth "github.com/anzhiyu-c/anwen-blog/internal/pkg/auth"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/response"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/authz"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/post"
)

// Handler 文章处理器
type Handler struct {
	postService post.Service
}

// NewHandler 创建文章处理器
func NewHandler(postService post.Service) *Handler {
	return &Handler{postService: postService}
}

// callerFrom 从上下文构建调用方身份。未认证或 Claims 异常时
// 返回匿名调用方，由业务层决定是否拒绝。
func callerFrom(c *gin.Context) authz.Caller {
	claimsValue, exists := c.Get(jwtauth.ClaimsKey)
	if !exists {
		return authz.Caller{}
	}
	claims, ok := claimsValue.(*jwtauth.CustomClaims)
	if !ok {
		return authz.Caller{}
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return authz.Caller{}
	}
	return authz.Caller{ID: userID, Role: claims.Role, Authenticated: true}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	val, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return val
}

// List 公开文章列表：分类/标签/搜索过滤，newest/oldest/popular 排序
func (h *Handler) List(c *gin.Context) {
	opts := &model.ListPublicPostsOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 10),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}

	list, err := h.postService.ListPublic(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list, "获取成功")
}

// GetBySlug 公开文章详情，访问会累积一次浏览量
func (h *Handler) GetBySlug(c *gin.Context) {
	detail, err := h.postService.GetBySlug(c.Request.Context(), callerFrom(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail, "获取成功")
}

// ListMine 当前用户的文章列表，草稿和已归档的也可见
func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.postService.ListMine(c.Request.Context(), callerFrom(c),
		c.Query("status"), queryInt(c, "page", 1), queryInt(c, "pageSize", 10))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list, "获取成功")
}

// Create 创建文章
func (h *Handler) Create(c *gin.Context) {
	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	created, err := h.postService.Create(c.Request.Context(), callerFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, created, "文章创建成功")
}

// Update 更新文章
func (h *Handler) Update(c *gin.Context) {
	var req model.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	updated, err := h.postService.Update(c.Request.Context(), callerFrom(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated, "文章更新成功")
}

// Delete 删除文章
func (h *Handler) Delete(c *gin.Context) {
	if err := h.postService.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "文章已删除")
}

// ToggleLike 切换点赞状态
func (h *Handler) ToggleLike(c *gin.Context) {
	result, err := h.postService.ToggleLike(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "已取消点赞"
	if result.Liked {
		message = "点赞成功"
	}
	response.Success(c, result, message)
}

// AddComment 发表评论
func (h *Handler) AddComment(c *gin.Context) {
	var req model.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	comment, err := h.postService.AddComment(c.Request.Context(), callerFrom(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, comment, "评论发表成功")
}
