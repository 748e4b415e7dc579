/*
 * @Description: 认证接口：注册、登录、令牌刷新与个人资料管理
 * @Author: 安知鱼
 * @Date: 2025-09-04 10:20:33
 * @LastEditTime: 2025-11-07 18:12:05
 * @LastEditors: 安知鱼
 */
package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	jwtauth "github.com/anzhiyu-c/anwen-blog/internal/pkg/auth"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/response"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/auth"
)

// Handler 认证处理器
type Handler struct {
	authService auth.Service
}

// NewHandler 创建认证处理器
func NewHandler(authService auth.Service) *Handler {
	return &Handler{authService: authService}
}

// getClaims 从上下文中取出认证中间件放入的 Claims
func getClaims(c *gin.Context) (*jwtauth.CustomClaims, bool) {
	claimsValue, exists := c.Get(jwtauth.ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := claimsValue.(*jwtauth.CustomClaims)
	return claims, ok
}

// Register 注册新用户
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	session, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithStatus(c, http.StatusCreated, session, "注册成功")
}

// Login 邮箱密码登录
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session, "登录成功")
}

// RefreshToken 用刷新令牌换取新的访问令牌
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	session, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, session, "令牌刷新成功")
}

// ForgotPassword 受理找回密码请求
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "如果该邮箱已注册，重置邮件将很快发出")
}

// Logout 退出登录。令牌是无状态 JWT，服务端没有会话可清理，
// 这里向客户端确认退出，本地令牌由客户端自行丢弃。
func (h *Handler) Logout(c *gin.Context) {
	response.Success(c, nil, "退出登录成功")
}

// Me 获取当前用户的完整资料
func (h *Handler) Me(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "未找到认证信息")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user, "获取成功")
}

// UpdateProfile 更新当前用户的个人资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "未找到认证信息")
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, user, "资料更新成功")
}

// ChangePassword 修改当前用户的密码
func (h *Handler) ChangePassword(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "未找到认证信息")
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "请求参数错误")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), claims.UserID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "密码修改成功")
}
