package user

import (
	"time"
)

// User 用户实体
// 订单引擎只读取用户(校验存在性),注册登录由用户服务负责
type User struct {
	ID        uint
	UserID    string // 用户业务ID
	Username  string
	CreatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
func NewUser(userID, username string) *User {
	return &User{
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now(),
	}
}
