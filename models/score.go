package models

import (
	"time"

	"gorm.io/gorm"
)

// 专家对一份报告的评分-外键连接
// (user_id, report_id) 建联合唯一索引，写入用 ON CONFLICT 原子upsert，
// 不再是先查后插的两步写
type Score struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	UserID    uint   `gorm:"uniqueIndex:idx_user_report;not null" json:"user_id"` // 👉 外键列
	User      Users  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	ReportID  string `gorm:"uniqueIndex:idx_user_report;not null;size:100" json:"report_id"`
	Score     int    `gorm:"not null" json:"score"` // 0-100 的整数分
	Comments  string `gorm:"type:text" json:"comments"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Score) TableName() string { return "scores" }
