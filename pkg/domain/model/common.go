/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 11:40:22
 * @LastEditTime: 2025-09-02 11:40:30
 * @LastEditors: 安知鱼
 */
package model

import "math"

// Pagination 包含了所有分页查询返回的通用元数据。
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasPrev     bool  `json:"hasPrev"`
	HasNext     bool  `json:"hasNext"`
}

// NormalizePage 规范化分页参数：页码最小为 1，每页数量默认 10、上限 100。
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// NewPagination 根据页码、每页数量、命中总数和本页实际返回条数计算分页元数据。
// 超出末页的页码得到一个空页而不是错误，此时 HasNext 为 false。
func NewPagination(page, pageSize int, total int64, returned int) Pagination {
	skip := int64(page-1) * int64(pageSize)
	return Pagination{
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
		TotalItems:  total,
		HasPrev:     page > 1,
		HasNext:     skip+int64(returned) < total,
	}
}
