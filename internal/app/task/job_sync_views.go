/*
 * @Description: 将缓存中累积的文章浏览量批量刷回存储层
 * @Author: 安知鱼
 * @Date: 2025-09-04 14:35:10
 * @LastEditTime: 2025-11-07 20:12:43
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/post"
	"github.com/anzhiyu-c/anwen-blog/pkg/service/utility"
)

// SyncViewCountsJob 负责把缓存里的浏览量增量同步到存储层。
// 读文章详情时浏览量只在缓存中自增，由这个任务定期做批量的 $inc 落库。
type SyncViewCountsJob struct {
	repo     repository.PostRepository
	cacheSvc utility.CacheService
}

// NewSyncViewCountsJob 是任务的构造函数。
func NewSyncViewCountsJob(repo repository.PostRepository, cacheSvc utility.CacheService) *SyncViewCountsJob {
	return &SyncViewCountsJob{
		repo:     repo,
		cacheSvc: cacheSvc,
	}
}

// Name 方法返回任务的可读名称。
func (j *SyncViewCountsJob) Name() string {
	return "SyncPostViewCountsJob"
}

// Run 扫描全部浏览量增量键，取出并删除后批量更新到存储层。
func (j *SyncViewCountsJob) Run() {
	ctx := context.Background()

	keys, err := j.cacheSvc.Scan(ctx, post.ViewCountKeyPattern)
	if err != nil {
		log.Printf("错误: 任务 '%s' 扫描缓存键失败: %v", j.Name(), err)
		return
	}
	if len(keys) == 0 {
		return
	}

	viewIncrements, err := j.cacheSvc.GetAndDeleteMany(ctx, keys)
	if err != nil {
		log.Printf("错误: 任务 '%s' 从缓存获取或删除键失败: %v", j.Name(), err)
		return
	}

	updates := make(map[primitive.ObjectID]int64, len(viewIncrements))
	for key, increment := range viewIncrements {
		hex := strings.TrimPrefix(key, post.ViewCountKeyPrefix)
		postID, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			log.Printf("警告: 任务 '%s' 解析文章ID '%s' 失败: %v", j.Name(), hex, err)
			continue
		}
		updates[postID] = increment
	}
	if len(updates) == 0 {
		return
	}

	if err := j.repo.IncrementViews(ctx, updates); err != nil {
		// 增量已经从缓存删除，失败意味着这批计数丢失；
		// 浏览量允许少量偏差，这里只记录不重试
		log.Printf("错误: 任务 '%s' 批量更新存储层失败: %v", j.Name(), err)
		return
	}

	log.Printf("成功: 任务 '%s' 已同步 %d 篇文章的浏览量。", j.Name(), len(updates))
}
