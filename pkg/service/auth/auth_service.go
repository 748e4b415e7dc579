/*
 * @Description: 认证业务服务：注册、登录、令牌刷新、个人资料与密码管理
 * @Author: 安知鱼
 * @Date: 2025-09-03 14:40:19
 * @LastEditTime: 2025-11-07 15:21:40
 * @LastEditors: 安知鱼
 */
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/internal/pkg/security"
	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
)

const minPasswordLen = 6

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service 定义了认证相关的业务接口
type Service interface {
	// Register 注册新用户并直接建立会话
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthSession, error)
	// Login 邮箱密码登录
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthSession, error)
	// RefreshToken 用刷新令牌换取新的访问令牌
	RefreshToken(ctx context.Context, refreshToken string) (*model.AuthSession, error)
	// Me 返回当前用户的完整资料
	Me(ctx context.Context, userID string) (*model.UserResponse, error)
	// UpdateProfile 更新当前用户的个人资料
	UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.UserResponse, error)
	// ChangePassword 校验当前密码后更换新密码
	ChangePassword(ctx context.Context, userID string, req *model.ChangePasswordRequest) error
	// ForgotPassword 受理找回密码请求，无论邮箱是否存在都静默成功
	ForgotPassword(ctx context.Context, email string) error
}

type service struct {
	userRepo repository.UserRepository
	tokenSvc TokenService
}

// NewService 是认证服务的构造函数
func NewService(userRepo repository.UserRepository, tokenSvc TokenService) Service {
	return &service{userRepo: userRepo, tokenSvc: tokenSvc}
}

// parseUserID 解析令牌携带的用户ID。Claims 已经过签名校验，
// 这里解析失败说明令牌内容被做过手脚。
func parseUserID(userID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: 非法的用户标识", constant.ErrInvalidToken)
	}
	return oid, nil
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthSession, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var msgs []string
	if fullName == "" {
		msgs = append(msgs, "姓名不能为空")
	}
	if email == "" {
		msgs = append(msgs, "邮箱不能为空")
	} else if !emailRe.MatchString(email) {
		msgs = append(msgs, "邮箱格式不正确")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		msgs = append(msgs, fmt.Sprintf("密码至少需要%d个字符", minPasswordLen))
	}
	if len(msgs) > 0 {
		return nil, fmt.Errorf("%w: %s", constant.ErrBadRequest, strings.Join(msgs, "；"))
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: 该邮箱已被注册", constant.ErrConflict)
	} else if !errors.Is(err, constant.ErrNotFound) {
		return nil, err
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	// 姓名按首个空格拆分，用户名取邮箱前缀
	firstName, lastName := splitFullName(fullName)
	now := time.Now()
	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Username:     strings.SplitN(email, "@", 2)[0],
		FirstName:    firstName,
		LastName:     lastName,
		Role:         model.RoleUser,
		IsActive:     true,
		Newsletter:   req.Newsletter,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, constant.ErrConflict) {
			return nil, fmt.Errorf("%w: 邮箱或用户名已被占用", constant.ErrConflict)
		}
		return nil, err
	}

	return s.buildSession(user, false)
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthSession, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: 邮箱和密码不能为空", constant.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			// 不区分 "用户不存在" 和 "密码错误"
			return nil, fmt.Errorf("%w: 邮箱或密码错误", constant.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: 账号已被停用", constant.ErrUnauthorized)
	}
	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: 邮箱或密码错误", constant.ErrUnauthorized)
	}

	// 登录时间只做记录，更新失败不影响登录
	now := time.Now()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		slog.Warn("更新最近登录时间失败", "email", email, "error", err)
	}

	return s.buildSession(user, req.RememberMe)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*model.AuthSession, error) {
	claims, err := s.tokenSvc.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := parseUserID(claims.UserID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, constant.ErrNotFound) {
			return nil, fmt.Errorf("%w: 用户不存在", constant.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: 账号已被停用", constant.ErrUnauthorized)
	}

	accessToken, err := s.tokenSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &model.AuthSession{
		User:         model.NewUserResponse(user),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *service) Me(ctx context.Context, userID string) (*model.UserResponse, error) {
	oid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return model.NewUserResponse(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req *model.UpdateProfileRequest) (*model.UserResponse, error) {
	oid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Newsletter != nil {
		user.Newsletter = *req.Newsletter
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return model.NewUserResponse(user), nil
}

func (s *service) ChangePassword(ctx context.Context, userID string, req *model.ChangePasswordRequest) error {
	if utf8.RuneCountInString(req.NewPassword) < minPasswordLen {
		return fmt.Errorf("%w: 新密码至少需要%d个字符", constant.ErrBadRequest, minPasswordLen)
	}
	oid, err := parseUserID(userID)
	if err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if !security.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("%w: 当前密码不正确", constant.ErrBadRequest)
	}

	hashed, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	user.PasswordHash = hashed
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, user)
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailRe.MatchString(email) {
		return fmt.Errorf("%w: 邮箱格式不正确", constant.ErrBadRequest)
	}

	// 无论邮箱是否存在都返回成功，避免被用来探测注册情况。
	// TODO: 接入邮件通道后在这里发送真实的重置邮件
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		slog.Info("收到找回密码请求", "email", email)
	}
	return nil
}

func (s *service) buildSession(user *model.User, rememberMe bool) (*model.AuthSession, error) {
	accessToken, err := s.tokenSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokenSvc.GenerateRefreshToken(user, rememberMe)
	if err != nil {
		return nil, err
	}
	return &model.AuthSession{
		User:         model.NewUserResponse(user),
		Token:        accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// splitFullName 将 "名 姓" 形式的全名按首个空格拆分，
// 没有空格时整体作为 FirstName。
func splitFullName(fullName string) (string, string) {
	parts := strings.SplitN(fullName, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
