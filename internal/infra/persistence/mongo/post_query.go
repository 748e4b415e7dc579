/*
 * @Description: 文章列表查询的过滤、排序与分页窗口构造
 * @Author: 安知鱼
 * @Date: 2025-09-02 15:38:19
 * @LastEditTime: 2025-11-06 18:24:37
 * @LastEditors: 安知鱼
 */
package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

// buildPublicFilter 将公开列表的查询参数翻译为声明式查询谓词。
// 公开范围恒定约束已发布且公开；category 精确匹配；tag 是对 tags 数组的
// 成员匹配；搜索词对 title/content/excerpt 做大小写不敏感的子串匹配（OR），
// 纯空白的搜索词视为未提供而不是 "什么都不匹配"。各约束之间为 AND。
func buildPublicFilter(opts *model.ListPublicPostsOptions) bson.M {
	filter := bson.M{
		"status":   model.PostStatusPublished,
		"isPublic": true,
	}
	if opts.Author != nil {
		filter["author"] = *opts.Author
	}
	if opts.Category != "" {
		filter["category"] = opts.Category
	}
	if opts.Tag != "" {
		filter["tags"] = opts.Tag
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"excerpt": pattern},
		}
	}
	return filter
}

// buildAuthorFilter 构造 "我的文章" 的查询谓词：按作者约束，
// 所有状态可见（可选状态过滤），不限制公开性。
func buildAuthorFilter(opts *model.ListUserPostsOptions) bson.M {
	filter := bson.M{"author": opts.Author}
	if opts.Status != "" {
		filter["status"] = opts.Status
	}
	return filter
}

// sortSpec 将排序关键字映射为确定性的排序文档。
// popular 按浏览量倒序，并以创建时间倒序打破平局；未识别的关键字
// 一律回退到 newest，不会让请求失败。
func sortSpec(sort string) bson.D {
	switch sort {
	case model.SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case model.SortPopular:
		return bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// pageWindow 规范化页码与每页数量并计算 (skip, limit) 窗口。
// 超出末页的请求自然得到空结果页。
func pageWindow(page, pageSize int) (int64, int64, int, int) {
	page, pageSize = model.NormalizePage(page, pageSize)
	return int64(page-1) * int64(pageSize), int64(pageSize), page, pageSize
}
