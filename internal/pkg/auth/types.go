/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:52:08
 * @LastEditTime: 2025-09-02 10:52:15
 * @LastEditors: 安知鱼
 */
package auth

import "github.com/golang-jwt/jwt/v5"

// ClaimsKey 是用于在 gin.Context 中存储和检索整个用户信息结构体的键。
const ClaimsKey = "user_claims"

// TokenKind 区分访问令牌和刷新令牌，防止刷新令牌被当作访问令牌使用。
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// CustomClaims 定义了 JWT 的自定义 Claims 结构体。
// UserID 存储的是用户文档ID的十六进制字符串表示。
type CustomClaims struct {
	UserID string `json:"user_id"` // 用户ID
	Role   string `json:"role"`    // 用户角色 user/admin
	Kind   string `json:"kind"`    // 令牌类型 access/refresh
	jwt.RegisteredClaims
}
