package model

import "time"

// QuizSubmission 一次测验尝试，评分完成后不再变更
//（教师对短答题的改判是唯一例外，走 Regrade 流程整体重算）
// swagger:model QuizSubmission
type QuizSubmission struct {
	UUIDBase
	UserID      uint             `gorm:"index:idx_sub_user_quiz;not null" json:"userId"`
	QuizID      uint             `gorm:"index:idx_sub_user_quiz;not null" json:"quizId"`
	Score       int              `gorm:"not null" json:"score"`
	MaxScore    int              `gorm:"not null" json:"maxScore"`
	Percentage  float64          `gorm:"not null" json:"percentage"`
	Passed      bool             `gorm:"default:false" json:"passed"`
	TimeSpent   int              `gorm:"default:0" json:"timeSpent"` // 秒
	SubmittedAt time.Time        `gorm:"not null" json:"submittedAt"`
	Answers     []QuestionAnswer `gorm:"foreignKey:SubmissionID" json:"answers,omitempty"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

// QuestionAnswer 每 (提交, 题目) 一行；SelectedOptionID 为空表示未作答或主观题
type QuestionAnswer struct {
	BaseModel
	SubmissionID     string `gorm:"type:varchar(36);index;not null" json:"submissionId"`
	QuestionID       uint   `gorm:"index;not null" json:"questionId"`
	SelectedOptionID *uint  `json:"selectedOptionId"`
	TextAnswer       string `gorm:"size:500" json:"textAnswer,omitempty"`
	IsCorrect        bool   `gorm:"default:false" json:"isCorrect"`
	EarnedPoints     int    `gorm:"default:0" json:"earnedPoints"`
}

func (QuestionAnswer) TableName() string {
	return "question_answers"
}
