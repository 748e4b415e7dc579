/*
 * @Description: 内存缓存服务，Redis 未配置时的自动降级实现
 * @Author: 安知鱼
 * @Date: 2025-09-03 09:52:31
 * @LastEditTime: 2025-09-03 09:52:40
 * @LastEditors: 安知鱼
 */
package utility

import (
	"context"
	"path"
	"sync"
)

// memoryCacheService 是 CacheService 的进程内实现。
// 单实例部署下语义与 Redis 实现一致；计数在进程重启时丢失，
// 对浏览量这类尽力而为的计数是可接受的。
type memoryCacheService struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryCacheService 是 memoryCacheService 的构造函数
func NewMemoryCacheService() CacheService {
	return &memoryCacheService{
		counters: make(map[string]int64),
	}
}

func (s *memoryCacheService) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

func (s *memoryCacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for key := range s.counters {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *memoryCacheService) GetAndDeleteMany(ctx context.Context, keys []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]int64, len(keys))
	for _, key := range keys {
		if val, ok := s.counters[key]; ok {
			result[key] = val
			delete(s.counters, key)
		}
	}
	return result, nil
}
