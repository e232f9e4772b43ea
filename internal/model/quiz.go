package model

// QuizScope 测验挂载位置的标签联合，避免三个可空外键
type QuizScope string

const (
	ScopePath   QuizScope = "path"
	ScopeModule QuizScope = "module"
	ScopeLesson QuizScope = "lesson"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Scope       QuizScope `gorm:"size:20;not null;index:idx_quiz_scope" json:"scope"`
	ScopeID     uint      `gorm:"not null;index:idx_quiz_scope" json:"scopeId"`
	// PassingScore 与 Retakeable 不能带列默认值：gorm 会把带默认值
	// 字段的零值从 INSERT 中省略，false/0 写入会被列默认吞掉
	PassingScore float64    `json:"passingScore"` // 通过线，百分比
	Retakeable   bool       `json:"retakeable"`
	TimeLimit    int        `gorm:"default:0" json:"timeLimit"` // 秒，0 表示不限时
	Questions    []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question 不变式：multiple_choice/true_false 的选项中恰好一个 IsCorrect；
// short_answer 无选项，按 ReferenceAnswer 判分或留待人工批改
type Question struct {
	BaseModel
	QuizID          uint             `gorm:"index;not null" json:"quizId"`
	Type            QuestionType     `gorm:"size:20;not null" json:"type"`
	Text            string           `gorm:"type:text;not null" json:"text"`
	Points          int              `gorm:"not null" json:"points"`
	Order           int              `gorm:"default:0" json:"order"`
	ReferenceAnswer string           `gorm:"size:500" json:"-"`
	Options         []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOption 返回标记为正确的选项，不存在时返回 nil
func (q *Question) CorrectOption() *QuestionOption {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:500;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
