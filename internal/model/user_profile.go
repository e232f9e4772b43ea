package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// BadgeSet 已获得徽章代码的集合，只追加不删除
type BadgeSet []string

func (b BadgeSet) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	data, err := json.Marshal(b)
	return string(data), err
}

func (b *BadgeSet) Scan(value interface{}) error {
	if value == nil {
		*b = BadgeSet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return errors.New("unsupported badge set column type")
}

func (b BadgeSet) Has(code string) bool {
	for _, c := range b {
		if c == code {
			return true
		}
	}
	return false
}

// UserProfile 每用户一行的学习统计（积分、连续天数、完成计数、徽章）
// 所有计数字段只增不减，Version 用于乐观并发控制
// swagger:model UserProfile
type UserProfile struct {
	BaseModel
	UserID                uint       `gorm:"uniqueIndex;not null" json:"userId"`
	Points                int        `gorm:"default:0" json:"points"`
	CurrentStreak         int        `gorm:"default:0" json:"currentStreak"`
	TotalLessonsCompleted int        `gorm:"default:0" json:"totalLessonsCompleted"`
	TotalQuizzesPassed    int        `gorm:"default:0" json:"totalQuizzesPassed"`
	Badges                BadgeSet   `gorm:"type:json" json:"badges"`
	LastEventAt           *time.Time `json:"lastEventAt"` // 最近一次有效完成事件时间，驱动连续天数计算
	Version               int        `gorm:"default:0" json:"-"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
