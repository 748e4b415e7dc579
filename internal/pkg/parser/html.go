/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:43:20
 * @LastEditTime: 2025-09-02 10:43:31
 * @LastEditors: 安知鱼
 */
package parser

import "github.com/microcosm-cc/bluemonday"

// 策略在包加载时构建一次，可并发复用
var stripTagsPolicy = bluemonday.StripTagsPolicy()

// StripHTML 去除正文中的所有HTML标签，返回纯文本。
// 摘要派生和字数统计在截断前都经过它。
func StripHTML(content string) string {
	return stripTagsPolicy.Sanitize(content)
}
