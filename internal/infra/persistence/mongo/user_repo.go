/*
 * @Description: UserRepository 的 MongoDB 实现
 * @Author: 安知鱼
 * @Date: 2025-09-02 16:20:08
 * @LastEditTime: 2025-10-21 16:02:33
 * @LastEditors: 安知鱼
 */
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/repository"
)

type userRepo struct {
	coll *mongo.Collection
}

// NewUserRepository 是 userRepo 的构造函数
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepo{coll: db.Collection("users")}
}

// EnsureUserIndexes 创建 users 集合所需的索引，邮箱与用户名唯一。
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection("users")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("创建 users 索引失败: %w", err)
	}
	return nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, user)
	return mapStorageErr("创建用户", err)
}

func (r *userRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, mapStorageErr("查找用户", err)
	}
	return &user, nil
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	result := make(map[primitive.ObjectID]*model.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, mapStorageErr("批量查找用户", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, mapStorageErr("读取用户列表", err)
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, mapStorageErr("按邮箱查找用户", err)
	}
	return &user, nil
}

func (r *userRepo) FindActiveByUsername(ctx context.Context, username string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// 停用账号的主页与不存在的账号不可区分
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"username": username, "isActive": true}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, constant.ErrNotFound
	}
	if err != nil {
		return nil, mapStorageErr("按用户名查找用户", err)
	}
	return &user, nil
}

// Update 只写入注册后允许变化的字段，邮箱和用户名在创建后不可变。
func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set := bson.M{
		"firstName":  user.FirstName,
		"lastName":   user.LastName,
		"bio":        user.Bio,
		"avatar":     user.Avatar,
		"newsletter": user.Newsletter,
		"role":       user.Role,
		"isActive":   user.IsActive,
		"password":   user.PasswordHash,
		"updatedAt":  user.UpdatedAt,
	}
	if user.LastLoginAt != nil {
		set["lastLogin"] = user.LastLoginAt
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set})
	if err != nil {
		return mapStorageErr("更新用户", err)
	}
	if res.MatchedCount == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapStorageErr("删除用户", err)
	}
	if res.DeletedCount == 0 {
		return constant.ErrNotFound
	}
	return nil
}

func (r *userRepo) List(ctx context.Context, opts *model.ListUsersOptions) ([]*model.User, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
			bson.M{"firstName": pattern},
			bson.M{"lastName": pattern},
		}
	}
	if opts.Role != "" {
		filter["role"] = opts.Role
	}
	if opts.IsActive != nil {
		filter["isActive"] = *opts.IsActive
	}

	skip, limit, _, _ := pageWindow(opts.Page, opts.PageSize)
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, mapStorageErr("查询用户列表", err)
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, mapStorageErr("读取用户列表", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapStorageErr("统计用户总数", err)
	}
	return users, total, nil
}

func (r *userRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapStorageErr("统计用户数", err)
	}
	return total, nil
}

func (r *userRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, mapStorageErr("按角色统计用户数", err)
	}
	return total, nil
}

func (r *userRepo) Recent(ctx context.Context, limit int) ([]*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, mapStorageErr("查询最近注册用户", err)
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, mapStorageErr("读取最近注册用户", err)
	}
	return users, nil
}
