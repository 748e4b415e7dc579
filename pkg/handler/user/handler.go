/*
 * @Description: 用户接口：公开主页、用户管理与管理员统计
 * @Author: 安知鱼
 * @Date: 2025-09-04 11:42:18
 * @LastEditTime: 2025-11-07 19:03:26
 * @LastEditors: 安知鱼
 */
package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	jwtauth "github.com/anzhiyu-c/anwen-blog/internal/pkg/auth"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/response"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/authz"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/user"
)

// Handler 用户处理器
type Handler struct {
	userService user.Service
}

// NewHandler 创建用户处理器
func NewHandler(userService user.Service) *Handler {
	return &Handler{userService: userService}
}

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

// PublicProfile 公开的作者主页
func (h *Handler) PublicProfile(c *gin.Context) {
	profile, err := h.userService.PublicProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile, "获取成功")
}

// PublicPosts 某作者公开范围内的文章列表
func (h *Handler) PublicPosts(c *gin.Context) {
	list, err := h.userService.PublicPosts(c.Request.Context(), c.Param("username"),
		queryInt(c, "page", 1), queryInt(c, "pageSize", 10))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list, "获取成功")
}

// Update 更新用户资料（本人或管理员）
func (h *Handler) Update(c *gin.Context) {
	var req model.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	updated, err := h.userService.Update(c.Request.Context(), callerFrom(c), c.Param("id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated, "用户更新成功")
}

// Delete 删除用户及其全部文章（仅管理员）
func (h *Handler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "用户已删除")
}

// AdminList 管理员用户列表
func (h *Handler) AdminList(c *gin.Context) {
	opts := &model.ListUsersOptions{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 10),
		Search:   c.Query("search"),
		Role:     c.Query("role"),
	}
	if isActive := c.Query("isActive"); isActive != "" {
		active := isActive == "true"
		opts.IsActive = &active
	}

	list, err := h.userService.AdminList(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list, "获取成功")
}

// Stats 管理员总览统计
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.userService.StatsOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats, "获取成功")
}
