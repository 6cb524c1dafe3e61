package models

// User 用户表
// 注册/登录由外部认证服务负责，这里只保留对局外键所需的最小字段。
type User struct {
	BaseModel
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Status   string `gorm:"size:20;default:'active'" json:"status"` // active, frozen, banned
}

// TableName 指定User表名
func (User) TableName() string {
	return "users"
}

// IsActive 检查用户是否激活
func (u *User) IsActive() bool {
	return u.Status == "active"
}
