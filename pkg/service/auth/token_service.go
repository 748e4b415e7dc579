/*
 * @Description: 令牌服务：访问/刷新令牌的签发与校验
 * @Author: 安知鱼
 * @Date: 2025-09-03 14:22:37
 * @LastEditTime: 2025-11-07 14:10:25
 * @LastEditors: 安知鱼
 */
package auth

import (
	"fmt"

	jwtauth "github.com/anzhiyu-c/anwen-blog/internal/pkg/auth"
	"github.com/anzhiyu-c/anwen-blog/pkg/config"
	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

// TokenService 定义了令牌签发与校验的业务接口。
// 密钥从配置中按需读取，引导程序保证其在服务启动前已存在。
type TokenService interface {
	// GenerateAccessToken 为用户签发访问令牌
	GenerateAccessToken(user *model.User) (string, error)
	// GenerateRefreshToken 为用户签发刷新令牌，rememberMe 延长有效期
	GenerateRefreshToken(user *model.User, rememberMe bool) (string, error)
	// ParseAccessToken 校验访问令牌并返回 Claims，刷新令牌在此不被接受
	ParseAccessToken(tokenStr string) (*jwtauth.CustomClaims, error)
	// ParseRefreshToken 校验刷新令牌并返回 Claims，访问令牌在此不被接受
	ParseRefreshToken(tokenStr string) (*jwtauth.CustomClaims, error)
}

type tokenService struct {
	cfg *config.Config
}

// NewTokenService 是令牌服务的构造函数
func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) secret() []byte {
	return []byte(s.cfg.GetString(config.KeyJWTSecret))
}

func (s *tokenService) GenerateAccessToken(user *model.User) (string, error) {
	token, err := jwtauth.GenerateToken(user.ID.Hex(), user.Role, s.secret())
	if err != nil {
		return "", fmt.Errorf("签发访问令牌失败: %w", err)
	}
	return token, nil
}

func (s *tokenService) GenerateRefreshToken(user *model.User, rememberMe bool) (string, error) {
	token, err := jwtauth.GenerateRefreshToken(user.ID.Hex(), rememberMe, s.secret())
	if err != nil {
		return "", fmt.Errorf("签发刷新令牌失败: %w", err)
	}
	return token, nil
}

func (s *tokenService) ParseAccessToken(tokenStr string) (*jwtauth.CustomClaims, error) {
	claims, err := jwtauth.ParseToken(tokenStr, s.secret())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrInvalidToken, err)
	}
	// 刷新令牌不能当访问令牌用
	if claims.Kind != jwtauth.TokenKindAccess {
		return nil, fmt.Errorf("%w: 令牌类型不匹配", constant.ErrInvalidToken)
	}
	return claims, nil
}

func (s *tokenService) ParseRefreshToken(tokenStr string) (*jwtauth.CustomClaims, error) {
	claims, err := jwtauth.ParseToken(tokenStr, s.secret())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constant.ErrInvalidToken, err)
	}
	if claims.Kind != jwtauth.TokenKindRefresh {
		return nil, fmt.Errorf("%w: 令牌类型不匹配", constant.ErrInvalidToken)
	}
	return claims, nil
}
