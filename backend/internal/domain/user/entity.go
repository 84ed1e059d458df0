/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 20:38:45
 * @FilePath: \isizulu-corpus\backend\internal\domain\user\entity.go
 * @LastEditTime: 2025-10-14 10:12:03
 */
package user

import "time"

// User 表示可登录的编辑者或管理员，仅用于身份识别与审计归属。
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                // 自增主键
	Username     string     `gorm:"size:64;uniqueIndex" json:"username"` // 唯一用户名
	PasswordHash string     `gorm:"size:255" json:"-"`                   // bcrypt 密码哈希，离线用户为空
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`       // 管理员标记
	LastLoginAt  *time.Time `json:"last_login_at"`                       // 上次登录时间
	CreatedAt    time.Time  `json:"created_at"`                          // 创建时间（gorm 自动维护）
	UpdatedAt    time.Time  `json:"updated_at"`                          // 更新时间（gorm 自动维护）
}

// TableName 指定数据库表名。
func (User) TableName() string {
	return "users"
}
