/*
 * @Description: Redis 缓存服务，用于浏览量计数的累积
 * @Author: 安知鱼
 * @Date: 2025-09-03 09:40:15
 * @LastEditTime: 2025-10-08 15:10:44
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheService 定义了缓存服务的接口。
// 浏览量先以原子自增累积在缓存里，再由定时任务批量刷回存储层。
type CacheService interface {
	// Increment 原子地增加一个键的值
	Increment(ctx context.Context, key string) (int64, error)
	// Scan 使用 SCAN 命令安全地查找匹配的键
	Scan(ctx context.Context, pattern string) ([]string, error)
	// GetAndDeleteMany 使用 Pipeline 高效地获取多个键的值并删除它们
	GetAndDeleteMany(ctx context.Context, keys []string) (map[string]int64, error)
}

// redisCacheService 是 CacheService 的 Redis 实现
type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService 是 redisCacheService 的构造函数，通过依赖注入接收 Redis 客户端
func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

// Increment 实现了原子自增
func (s *redisCacheService) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

// Scan 实现了安全的键扫描，避免在大键空间上使用 KEYS 阻塞服务
func (s *redisCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// GetAndDeleteMany 在一个 Pipeline 中取出并删除多个键。
// 已经不存在的键会被跳过，不视为错误。
func (s *redisCacheService) GetAndDeleteMany(ctx context.Context, keys []string) (map[string]int64, error) {
	result := make(map[string]int64, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	pipe := s.client.TxPipeline()
	cmds := make(map[string]*redis.StringCmd, len(keys))
	for _, key := range keys {
		cmds[key] = pipe.GetDel(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	for key, cmd := range cmds {
		val, err := cmd.Int64()
		if err != nil {
			continue // 键已消失或值非数字，跳过
		}
		result[key] = val
	}
	return result, nil
}
