package models

import "gorm.io/gorm"

// 用户数据
type Users struct {
	gorm.Model        //内嵌的一个模型 包括基础的ID 创建、更新、删除的时间戳
	Username   string `json:"username" gorm:"unique;not null;size:100"`
	Email      string `json:"email" gorm:"unique;not null;size:255"`
	Password   string `json:"-" gorm:"not null"` // bcrypt 哈希，永远不出现在响应里
}

// 显示使用名称
func (Users) TableName() string {
	return "users"
}
