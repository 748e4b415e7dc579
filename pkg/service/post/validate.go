/*
 * @Description: 文章与评论的字段校验，校验错误汇总为一条消息
 * @Author: 安知鱼
 * @Date: 2025-09-03 10:58:02
 * @LastEditTime: 2025-11-07 10:05:31
 * @LastEditors: 安知鱼
 */
package post

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anzhiyu-c/anwen-blog/pkg/constant"
	"github.com/anzhiyu-c/anwen-blog/pkg/domain/model"
)

const (
	maxTitleLen    = 200
	minContentLen  = 10
	maxCategoryLen = 50
	maxTagLen      = 20
	maxExcerptLen  = 300
	maxCommentLen  = 1000
)

// validTitle 校验标题，返回所有不满足的规则描述
func validTitle(title string, msgs []string) []string {
	if strings.TrimSpace(title) == "" {
		return append(msgs, "标题不能为空")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return append(msgs, fmt.Sprintf("标题不能超过%d个字符", maxTitleLen))
	}
	return msgs
}

func validContent(content string, msgs []string) []string {
	if strings.TrimSpace(content) == "" {
		return append(msgs, "内容不能为空")
	}
	if utf8.RuneCountInString(content) < minContentLen {
		return append(msgs, fmt.Sprintf("内容至少需要%d个字符", minContentLen))
	}
	return msgs
}

func validCategory(category string, msgs []string) []string {
	if strings.TrimSpace(category) == "" {
		return append(msgs, "分类不能为空")
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return append(msgs, fmt.Sprintf("分类不能超过%d个字符", maxCategoryLen))
	}
	return msgs
}

func validTags(tags []string, msgs []string) []string {
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			msgs = append(msgs, fmt.Sprintf("标签 %q 不能超过%d个字符", tag, maxTagLen))
		}
	}
	return msgs
}

func validExcerpt(excerpt string, msgs []string) []string {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		msgs = append(msgs, fmt.Sprintf("摘要不能超过%d个字符", maxExcerptLen))
	}
	return msgs
}

func validStatus(status string, msgs []string) []string {
	switch status {
	case model.PostStatusDraft, model.PostStatusPublished, model.PostStatusArchived:
		return msgs
	default:
		return append(msgs, "无效的文章状态")
	}
}

// badRequest 将汇总的校验消息包装为一个 ErrBadRequest，
// 一次性报出所有不合法的字段而不是只报第一个。
func badRequest(msgs []string) error {
	return fmt.Errorf("%w: %s", constant.ErrBadRequest, strings.Join(msgs, "；"))
}

// validateCreate 校验创建文章的全部字段
func validateCreate(req *model.CreatePostRequest) error {
	var msgs []string
	msgs = validTitle(req.Title, msgs)
	msgs = validContent(req.Content, msgs)
	msgs = validCategory(req.Category, msgs)
	msgs = validTags(req.Tags, msgs)
	msgs = validExcerpt(req.Excerpt, msgs)
	if req.Status != "" {
		msgs = validStatus(req.Status, msgs)
	}
	if len(msgs) > 0 {
		return badRequest(msgs)
	}
	return nil
}

// validateUpdate 只校验请求中实际提供的字段
func validateUpdate(req *model.UpdatePostRequest) error {
	var msgs []string
	if req.Title != nil {
		msgs = validTitle(*req.Title, msgs)
	}
	if req.Content != nil {
		msgs = validContent(*req.Content, msgs)
	}
	if req.Category != nil {
		msgs = validCategory(*req.Category, msgs)
	}
	if req.Tags != nil {
		msgs = validTags(req.Tags, msgs)
	}
	if req.Excerpt != nil {
		msgs = validExcerpt(*req.Excerpt, msgs)
	}
	if req.Status != nil {
		msgs = validStatus(*req.Status, msgs)
	}
	if len(msgs) > 0 {
		return badRequest(msgs)
	}
	return nil
}

// validateComment 校验评论内容并返回去除首尾空白后的正文
func validateComment(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("%w: 评论内容不能为空", constant.ErrBadRequest)
	}
	if utf8.RuneCountInString(trimmed) > maxCommentLen {
		return "", fmt.Errorf("%w: 评论内容不能超过%d个字符", constant.ErrBadRequest, maxCommentLen)
	}
	return trimmed, nil
}
