package model

// LearningPath 学习路径，由有序模块组成
// swagger:model LearningPath
type LearningPath struct {
	BaseModel
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Published   bool     `gorm:"default:false" json:"published"`
	Modules     []Module `gorm:"foreignKey:PathID" json:"modules,omitempty"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

type Module struct {
	BaseModel
	PathID      uint     `gorm:"index;not null" json:"pathId"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Order       int      `gorm:"default:0" json:"order"`
	Lessons     []Lesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// Lesson 完成度计算的最小单元；QuizID 非空表示该课时由测验把关，
// 只有测验通过才算完成
type Lesson struct {
	BaseModel
	ModuleID uint   `gorm:"index;not null" json:"moduleId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	Order    int    `gorm:"default:0" json:"order"`
	QuizID   *uint  `gorm:"index" json:"quizId"`
}

func (Lesson) TableName() string {
	return "lessons"
}
