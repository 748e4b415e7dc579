/*
 * @Description: Mongo 仓储层公共辅助：超时控制与错误归类
 * @Author: 安知鱼
 * @Date: 2025-09-02 15:30:44
 * @LastEditTime: 2025-10-08 14:52:30
 * @LastEditors: 安知鱼
 */
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
)

// storageTimeout 是单次存储调用的超时上限。
// 超时按瞬时错误返回，由调用方的正常请求重试策略处理，仓储层内部不重试。
const storageTimeout = 5 * time.Second

// withTimeout 给存储调用套上有界超时
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storageTimeout)
}

// mapStorageErr 将驱动错误归类到业务错误分类。
// 唯一索引冲突 → ErrConflict；超时/网络/服务器选择失败 → ErrStorageUnavailable；
// 其余保留原始错误链，由 Handler 统一按内部错误处理。
func mapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, constant.ErrConflict)
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w", op, constant.ErrStorageUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
