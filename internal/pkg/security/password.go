/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-02 10:40:55
 * @LastEditTime: 2025-09-02 10:41:13
 * @LastEditors: 安知鱼
 */
package security

import "golang.org/x/crypto/bcrypt"

// HashPassword 用 bcrypt 对账号密码做不可逆散列，
// 注册和修改密码共用这一个入口
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash 校验明文密码与存储的散列是否匹配
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
