/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:21:40
 * @LastEditTime: 2025-09-18 16:45:12
 * @LastEditors: 安知鱼
 */
package constant

import "errors"

// 定义业务逻辑相关的标准错误
var (
	// ErrBadRequest 表示请求参数校验失败，可以由 Handler 转换为 400。
	// 校验类错误的 message 中会汇总所有不合法的字段，而不是只报第一个。
	ErrBadRequest = errors.New("错误的请求")

	// ErrNotFound 表示资源未找到，可以由 Handler 转换为 404。
	// 对于带可见范围的查询，"存在但不可见" 同样返回此错误，避免泄露资源存在性。
	ErrNotFound = errors.New("资源未找到")

	// ErrUnauthorized 表示未认证（匿名调用受保护的操作），可以由 Handler 转换为 401
	ErrUnauthorized = errors.New("未经授权的访问")

	// ErrInvalidToken 表示无效的令牌，可以由 Handler 转换为 401
	ErrInvalidToken = errors.New("无效令牌")

	// ErrForbidden 表示已认证但无权操作，可以由 Handler 转换为 403
	ErrForbidden = errors.New("操作禁止")

	// ErrSelfDeleteForbidden 表示管理员不能删除自己的账号
	ErrSelfDeleteForbidden = errors.New("不能删除自己的账号")

	// ErrConflict 表示唯一性冲突（邮箱、用户名、slug 重复），可以由 Handler 转换为 409
	ErrConflict = errors.New("资源冲突")

	// ErrStorageUnavailable 表示存储层超时或不可用，属于可安全重试的瞬时错误，
	// 可以由 Handler 转换为 503
	ErrStorageUnavailable = errors.New("存储服务暂时不可用")

	// ErrInternalServer 表示服务器内部错误，可以由 Handler 转换为 500
	ErrInternalServer = errors.New("内部服务器错误")
)
