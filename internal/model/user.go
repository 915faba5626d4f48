package model

import "time"

// User 表示系统用户。
type User struct {
	ID        int       `json:"id"`    // 用户 ID（进程内单调递增，从 1 开始）
	Email     string    `json:"email"` // 邮箱（唯一）
	Password  string    `json:"-"`     // bcrypt 哈希，永不序列化
	Name      string    `json:"name"`  // 显示名
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser 是对外暴露的用户字段子集。
type PublicUser struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Public 返回可以安全写入响应的字段。
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}
