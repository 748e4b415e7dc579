package mongo

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

func TestBuildPublicFilter(t *testing.T) {
	author := primitive.NewObjectID()

	tests := []struct {
		name  string
		opts  *model.ListPublicPostsOptions
		check func(t *testing.T, filter bson.M)
	}{
		{
			name: "基础过滤恒定约束已发布且公开",
			opts: &model.ListPublicPostsOptions{},
			check: func(t *testing.T, filter bson.M) {
				if filter["status"] != model.PostStatusPublished {
					t.Errorf("status = %v", filter["status"])
				}
				if filter["isPublic"] != true {
					t.Errorf("isPublic = %v", filter["isPublic"])
				}
				if len(filter) != 2 {
					t.Errorf("不期望额外约束: %v", filter)
				}
			},
		},
		{
			name: "分类精确匹配",
			opts: &model.ListPublicPostsOptions{Category: "技术"},
			check: func(t *testing.T, filter bson.M) {
				if filter["category"] != "技术" {
					t.Errorf("category = %v", filter["category"])
				}
			},
		},
		{
			name: "标签是数组成员匹配",
			opts: &model.ListPublicPostsOptions{Tag: "golang"},
			check: func(t *testing.T, filter bson.M) {
				if filter["tags"] != "golang" {
					t.Errorf("tags = %v", filter["tags"])
				}
			},
		},
		{
			name: "指定作者",
			opts: &model.ListPublicPostsOptions{Author: &author},
			check: func(t *testing.T, filter bson.M) {
				if filter["author"] != author {
					t.Errorf("author = %v", filter["author"])
				}
			},
		},
		{
			name: "搜索词生成大小写不敏感的OR匹配",
			opts: &model.ListPublicPostsOptions{Search: "hello"},
			check: func(t *testing.T, filter bson.M) {
				or, ok := filter["$or"].(bson.A)
				if !ok {
					t.Fatalf("期望 $or, got %v", filter)
				}
				if len(or) != 3 {
					t.Errorf("期望 3 个匹配分支, got %d", len(or))
				}
				first := or[0].(bson.M)
				re := first["title"].(primitive.Regex)
				if re.Pattern != "hello" || re.Options != "i" {
					t.Errorf("regex = %+v", re)
				}
			},
		},
		{
			name: "搜索词中的正则元字符被转义",
			opts: &model.ListPublicPostsOptions{Search: "c++ (基础)"},
			check: func(t *testing.T, filter bson.M) {
				or := filter["$or"].(bson.A)
				re := or[0].(bson.M)["title"].(primitive.Regex)
				if re.Pattern != `c\+\+ \(基础\)` {
					t.Errorf("pattern = %q", re.Pattern)
				}
			},
		},
		{
			name: "纯空白搜索词视为未提供",
			opts: &model.ListPublicPostsOptions{Search: "   "},
			check: func(t *testing.T, filter bson.M) {
				if _, ok := filter["$or"]; ok {
					t.Error("不期望 $or 约束")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, buildPublicFilter(tt.opts))
		})
	}
}

func TestBuildAuthorFilter(t *testing.T) {
	author := primitive.NewObjectID()

	t.Run("默认所有状态可见", func(t *testing.T) {
		filter := buildAuthorFilter(&model.ListUserPostsOptions{Author: author})
		if filter["author"] != author {
			t.Errorf("author = %v", filter["author"])
		}
		if _, ok := filter["status"]; ok {
			t.Error("不期望状态约束")
		}
		if _, ok := filter["isPublic"]; ok {
			t.Error("作者视角不应限制公开性")
		}
	})

	t.Run("可选状态过滤", func(t *testing.T) {
		filter := buildAuthorFilter(&model.ListUserPostsOptions{Author: author, Status: model.PostStatusDraft})
		if filter["status"] != model.PostStatusDraft {
			t.Errorf("status = %v", filter["status"])
		}
	})
}

func TestSortSpec(t *testing.T) {
	tests := []struct {
		name     string
		sort     string
		expected bson.D
	}{
		{
			name:     "newest按创建时间倒序",
			sort:     model.SortNewest,
			expected: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			name:     "oldest按创建时间正序",
			sort:     model.SortOldest,
			expected: bson.D{{Key: "createdAt", Value: 1}},
		},
		{
			name:     "popular按浏览量倒序并以创建时间打破平局",
			sort:     model.SortPopular,
			expected: bson.D{{Key: "views", Value: -1}, {Key: "createdAt", Value: -1}},
		},
		{
			name:     "未识别的关键字回退到newest",
			sort:     "rating",
			expected: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			name:     "空关键字回退到newest",
			sort:     "",
			expected: bson.D{{Key: "createdAt", Value: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sortSpec(tt.sort); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("sortSpec(%q) = %v, 期望 %v", tt.sort, got, tt.expected)
			}
		})
	}
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name                   string
		page, pageSize         int
		wantSkip, wantLimit    int64
		wantPage, wantPageSize int
	}{
		{
			name: "默认值", page: 0, pageSize: 0,
			wantSkip: 0, wantLimit: 10, wantPage: 1, wantPageSize: 10,
		},
		{
			name: "负数页码归一到第一页", page: -3, pageSize: 20,
			wantSkip: 0, wantLimit: 20, wantPage: 1, wantPageSize: 20,
		},
		{
			name: "每页数量超上限被截到100", page: 2, pageSize: 500,
			wantSkip: 100, wantLimit: 100, wantPage: 2, wantPageSize: 100,
		},
		{
			name: "正常翻页", page: 3, pageSize: 10,
			wantSkip: 20, wantLimit: 10, wantPage: 3, wantPageSize: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, limit, page, pageSize := pageWindow(tt.page, tt.pageSize)
			if skip != tt.wantSkip || limit != tt.wantLimit || page != tt.wantPage || pageSize != tt.wantPageSize {
				t.Errorf("pageWindow(%d, %d) = (%d, %d, %d, %d), 期望 (%d, %d, %d, %d)",
					tt.page, tt.pageSize, skip, limit, page, pageSize,
					tt.wantSkip, tt.wantLimit, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}
