package model

import "time"

// Progress 每 (用户, 课时) 唯一一行；Completed 单调，置真后不回退
// swagger:model Progress
type Progress struct {
	BaseModel
	UserID        uint       `gorm:"uniqueIndex:idx_user_lesson;not null" json:"userId"`
	LessonID      uint       `gorm:"uniqueIndex:idx_user_lesson;not null" json:"lessonId"`
	Views         int        `gorm:"default:0" json:"views"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	FirstViewedAt time.Time  `json:"firstViewedAt"`
	CompletedAt   *time.Time `json:"completedAt"`
}

func (Progress) TableName() string {
	return "progress"
}
