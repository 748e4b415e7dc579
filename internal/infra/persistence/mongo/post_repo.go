/*
 * @Description: PostRepository 的 MongoDB 实现
 * @Author: 安知鱼
 * @Date: 2025-09-02 16:02:55
 * @LastEditTime: 2025-11-06 19:05:12
 * @LastEditors: 安知鱼
 */
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
)

type postRepo struct {
	coll *mongo.Collection
}

// NewPostRepository 是 postRepo 的构造函数
func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &postRepo{coll: db.Collection("posts")}
}

// EnsurePostIndexes 创建 posts 集合所需的索引。slug 的全局唯一性在这里保证。
func EnsurePostIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("posts")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("创建 posts 索引失败: %w", err)
	}
	return nil
}

func (r *postRepo) Create(ctx context.Context, post *model.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	// 空切片落库为 []，避免 null 数组参与 $addToSet/$push
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}

	_, err := r.coll.InsertOne(ctx, post)
	return mapStorageErr("创建文章", err)
}

func (r *postRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var post model.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, mapStorageErr("查找文章", err)
	}
	return &post, nil
}

func (r *postRepo) FindPublicBySlug(ctx context.Context, slug string) (*model.Post, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// 不在公开范围内的文章与不存在的文章不可区分
	var post model.Post
	err := r.coll.FindOne(ctx, bson.M{
		"slug":     slug,
		"status":   model.PostStatusPublished,
		"isPublic": true,
	}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, mapStorageErr("查找文章", err)
	}
	return &post, nil
}

// Update 只写入作者可编辑的字段。likes、comments 和 views 由各自的
// 原子操作维护，整文档写回会覆盖读写间隙中落盘的并发更新，这里永远不碰它们。
func (r *postRepo) Update(ctx context.Context, post *model.Post) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":         post.Title,
		"content":       post.Content,
		"excerpt":       post.Excerpt,
		"category":      post.Category,
		"tags":          post.Tags,
		"featuredImage": post.FeaturedImage,
		"status":        post.Status,
		"isPublic":      post.IsPublic,
		"slug":          post.Slug,
		"readingTime":   post.ReadingTime,
		"updatedAt":     post.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return mapStorageErr("更新文章", err)
	}
	if res.MatchedCount == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapStorageErr("删除文章", err)
	}
	if res.DeletedCount == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (r *postRepo) DeleteByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"author": author})
	if err != nil {
		return 0, mapStorageErr("级联删除作者文章", err)
	}
	return res.DeletedCount, nil
}

func (r *postRepo) ListPublic(ctx context.Context, opts *model.ListPublicPostsOptions) ([]*model.Post, int64, error) {
	filter := buildPublicFilter(opts)
	skip, limit, _, _ := pageWindow(opts.Page, opts.PageSize)
	return r.list(ctx, filter, sortSpec(opts.Sort), skip, limit)
}

func (r *postRepo) ListByAuthor(ctx context.Context, opts *model.ListUserPostsOptions) ([]*model.Post, int64, error) {
	filter := buildAuthorFilter(opts)
	skip, limit, _, _ := pageWindow(opts.Page, opts.PageSize)
	// "我的文章" 固定按创建时间倒序
	return r.list(ctx, filter, sortSpec(model.SortNewest), skip, limit)
}

// list 是两类列表查询共用的执行辅助。列表投影裁掉 content 字段以控制响应体积。
func (r *postRepo) list(ctx context.Context, filter bson.M, sort bson.D, skip, limit int64) ([]*model.Post, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	findOpts := options.Find().
		SetSort(sort).
		SetSkip(skip).
		SetLimit(limit).
		SetProjection(bson.M{"content": 0})

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, mapStorageErr("查询文章列表", err)
	}
	defer cursor.Close(ctx)

	posts := make([]*model.Post, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, mapStorageErr("读取文章列表", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapStorageErr("统计文章总数", err)
	}
	return posts, total, nil
}

// ToggleLike 用条件原子更新切换点赞集合的成员关系。
// filter 中的成员约束保证同一用户的两次并发切换不会落在同一分支，
// 不存在读取-修改-写回的丢失更新窗口。
func (r *postRepo) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.LikeResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	after := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"likes": 1})

	var doc struct {
		Likes []primitive.ObjectID `bson:"likes"`
	}

	// 两个条件更新都未命中只可能是文章不存在，或与并发切换碰撞；
	// 确认存在后重试一轮即可收敛。
	for attempt := 0; attempt < 2; attempt++ {
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likes": userID},
			bson.M{"$pull": bson.M{"likes": userID}},
			after,
		).Decode(&doc)
		if err == nil {
			return &model.LikeResult{Liked: false, LikeCount: len(doc.Likes)}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mapStorageErr("取消点赞", err)
		}

		err = r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"likes": userID}},
			after,
		).Decode(&doc)
		if err == nil {
			return &model.LikeResult{Liked: true, LikeCount: len(doc.Likes)}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mapStorageErr("点赞", err)
		}

		count, err := r.coll.CountDocuments(ctx, bson.M{"_id": postID})
		if err != nil {
			return nil, mapStorageErr("检查文章存在性", err)
		}
		if count == 0 {
			return nil, constant.ErrNotFound
		}
	}

	return nil, fmt.Errorf("切换点赞状态未收敛: %w", constant.ErrStorageUnavailable)
}

// AppendComment 用原子 $push 向评论序列追加一条评论
func (r *postRepo) AppendComment(ctx context.Context, postID primitive.ObjectID, comment *model.Comment) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return mapStorageErr("追加评论", err)
	}
	if res.MatchedCount == 0 {
		return constant.ErrNotFound
	}
	return nil
}

// IncrementViews 将缓存中累积的浏览量增量批量 $inc 到文章文档
func (r *postRepo) IncrementViews(ctx context.Context, increments map[primitive.ObjectID]int64) error {
	if len(increments) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(increments))
	for id, delta := range increments {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$inc": bson.M{"views": delta}}))
	}

	_, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return mapStorageErr("批量更新浏览量", err)
}

func (r *postRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapStorageErr("统计文章数", err)
	}
	return total, nil
}

// TopAuthors 聚合出已发布文章数最多的前 limit 位作者
func (r *postRepo) TopAuthors(ctx context.Context, limit int) ([]*model.TopAuthorItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": model.PostStatusPublished}}},
		{{Key: "$group", Value: bson.M{"_id": "$author", "postCount": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"postCount": -1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"username":  "$user.username",
			"firstName": "$user.firstName",
			"lastName":  "$user.lastName",
			"postCount": 1,
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStorageErr("聚合高产作者", err)
	}
	defer cursor.Close(ctx)

	items := make([]*model.TopAuthorItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, mapStorageErr("读取高产作者", err)
	}
	return items, nil
}
