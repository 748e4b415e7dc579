/*
 * @Description: 文章派生字段计算：slug、摘要、字数与阅读时长
 * @Author: 安知鱼
 * @Date: 2025-09-03 10:12:46
 * @LastEditTime: 2025-11-07 09:41:22
 * @LastEditors: 安知鱼
 */
package post

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anzhiyu-c/anwen-blog/internal/pkg/parser"
)

const (
	// excerptLimit 摘要截断长度（按字符计）。
	excerptLimit = 300
	// wordsPerMinute 阅读时长估算基准。
	wordsPerMinute = 200
)

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
)

// Slugify 将标题转换为 URL 友好的 slug：小写化后剔除字母数字、
// 空格和连字符以外的字符，空白折叠为单个连字符，连续连字符合并，
// 最后去掉首尾连字符。标题中没有可用字符时返回空串，由调用方兜底。
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = slugInvalidRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// deriveExcerpt 从正文生成摘要：剥离 HTML 标签后截取前 300 个字符并
// 去掉首尾空白；截断后仍满 300 字符时追加省略号表示还有后文。
func deriveExcerpt(content string) string {
	plain := parser.StripHTML(content)
	runes := []rune(plain)
	if len(runes) > excerptLimit {
		runes = runes[:excerptLimit]
	}
	excerpt := strings.TrimSpace(string(runes))
	if utf8.RuneCountInString(excerpt) == excerptLimit {
		excerpt += "..."
	}
	return excerpt
}

// countWords 统计字数：中文按单字计数，其余文字按空白分隔的词计数。
func countWords(content string) int {
	count := 0
	for _, field := range strings.Fields(content) {
		han := 0
		for _, r := range field {
			if unicode.Is(unicode.Han, r) {
				han++
			}
		}
		if han > 0 {
			count += han
			// 夹杂在汉字之间的西文片段整体算一个词
			if utf8.RuneCountInString(field) > han {
				count++
			}
		} else {
			count++
		}
	}
	return count
}

// calculatePostStats 统计正文字数并按每分钟 200 词估算阅读时长，
// 阅读时长向上取整且至少为 1 分钟。
func calculatePostStats(content string) (wordCount, readingTime int) {
	wordCount = countWords(content)
	readingTime = int(math.Ceil(float64(wordCount) / wordsPerMinute))
	if readingTime < 1 {
		readingTime = 1
	}
	return wordCount, readingTime
}
