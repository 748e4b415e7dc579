/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-03 09:58:02
 * @LastEditTime: 2025-09-03 09:58:10
 * @LastEditors: 安知鱼
 */
package utility

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// NewCacheService 根据 Redis 客户端是否可用选择缓存实现。
// client 为 nil 时自动降级到内存缓存。
func NewCacheService(client *redis.Client) CacheService {
	if client == nil {
		log.Println("缓存服务: 使用内存实现")
		return NewMemoryCacheService()
	}
	log.Println("缓存服务: 使用 Redis 实现")
	return NewRedisCacheService(client)
}
