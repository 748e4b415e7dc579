/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 15:10:27
 * @LastEditTime: 2025-10-08 14:36:52
 * @LastEditors: 安知鱼
 */
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/anzhiyu-c/anwen-blog/pkg/config"
)

// NewMongoDatabase 根据配置建立 MongoDB 连接，返回数据库句柄和清理函数。
func NewMongoDatabase(ctx context.Context, cfg *config.Config) (*mongo.Database, func(), error) {
	uri := cfg.GetString(config.KeyMongoURI)
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := cfg.GetString(config.KeyMongoDatabase)
	if dbName == "" {
		dbName = "anwen_blog"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("连接 MongoDB 失败: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("MongoDB ping 失败: %w", err)
	}

	log.Printf("✅ 成功连接到 MongoDB (数据库: %s)", dbName)

	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Printf("警告: 断开 MongoDB 连接失败: %v", err)
		}
	}

	return client.Database(dbName), cleanup, nil
}
