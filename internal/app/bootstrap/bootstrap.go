/*
 * @Description: 启动引导：索引保障、JWT 密钥生成与初始管理员创建
 * @Author: 安知鱼
 * @Date: 2025-09-04 15:20:17
 * @LastEditTime: 2025-11-07 20:55:02
 * @LastEditors: 安知鱼
 */
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	persistence "github.com/anzhiyu-c/anwen-blog/internal/infra/persistence/mongo"
	"github.com/anzhiyu-c/anwen-blog/internal/pkg/security"
	"github.com/anzhiyu-c/anwen-blog/pkg/config"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
)

// Run 执行所有启动前的引导步骤。任何一步失败都视为致命错误，
// 服务不应该在半初始化的状态下对外提供服务。
func Run(ctx context.Context, cfg *config.Config, db *mongo.Database, userRepo repository.UserRepository) error {
	if err := ensureIndexes(ctx, db); err != nil {
		return err
	}
	if err := ensureJWTSecret(cfg); err != nil {
		return err
	}
	if err := ensureAdminUser(ctx, cfg, userRepo); err != nil {
		return err
	}
	return nil
}

// ensureIndexes 保障唯一索引与查询索引存在。
// 创建是幂等的，重复启动不会报错。
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := persistence.EnsurePostIndexes(ctx, db); err != nil {
		return fmt.Errorf("创建文章索引失败: %w", err)
	}
	if err := persistence.EnsureUserIndexes(ctx, db); err != nil {
		return fmt.Errorf("创建用户索引失败: %w", err)
	}
	log.Println("✅ 数据库索引检查完成。")
	return nil
}

// ensureJWTSecret 在密钥未配置时自动生成一个。
// 自动生成的密钥只存在于本次进程的配置中，重启后已签发的令牌会全部失效，
// 生产环境应当通过配置文件或环境变量固定密钥。
func ensureJWTSecret(cfg *config.Config) error {
	if strings.TrimSpace(cfg.GetString(config.KeyJWTSecret)) != "" {
		return nil
	}

	secret := uuid.New().String() + uuid.New().String()
	cfg.Set(config.KeyJWTSecret, secret)
	log.Println("⚠️  未配置 JWT 密钥，已自动生成临时密钥；重启后所有会话将失效。")
	return nil
}

// ensureAdminUser 在系统中不存在管理员时，按配置创建初始管理员账号。
func ensureAdminUser(ctx context.Context, cfg *config.Config, userRepo repository.UserRepository) error {
	count, err := userRepo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("检查管理员账号失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.GetString(config.KeyAdminEmail)))
	password := cfg.GetString(config.KeyAdminPassword)
	if email == "" || password == "" {
		log.Println("提示: 未配置初始管理员邮箱或密码，跳过管理员创建。")
		return nil
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("初始管理员密码加密失败: %w", err)
	}

	now := time.Now()
	admin := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Username:     strings.SplitN(email, "@", 2)[0],
		FirstName:    "Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("创建初始管理员失败: %w", err)
	}

	log.Printf("✅ 已创建初始管理员账号: %s（请尽快修改默认密码）", email)
	return nil
}
