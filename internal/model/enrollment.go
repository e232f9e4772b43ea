package model

import "time"

// Enrollment 每 (用户, 路径) 唯一一行；Percentage 由完成事实重算得出，
// 正常操作下单调不减。Version 用于乐观并发控制
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_path;not null" json:"userId"`
	PathID      uint       `gorm:"uniqueIndex:idx_user_path;not null" json:"pathId"`
	Percentage  float64    `gorm:"default:0" json:"percentage"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Version     int        `gorm:"default:0" json:"-"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
