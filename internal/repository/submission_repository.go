package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create 提交记录连同逐题作答一起写入（Answers 级联创建）
func (r *SubmissionRepository) Create(submission *model.QuizSubmission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.QuizSubmission, error) {
	var submission model.QuizSubmission
	err := r.DB.Preload("Answers").First(&submission, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) CountByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizSubmission{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	return count, err
}

// HasPassed 用户是否已有该测验的通过记录
func (r *SubmissionRepository) HasPassed(userID, quizID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizSubmission{}).
		Where("user_id = ? AND quiz_id = ? AND passed = ?", userID, quizID, true).
		Count(&count).Error
	return count > 0, err
}

// HasPassedExcluding 排除指定提交后是否仍有通过记录，
// 用于判断某次通过是不是该测验的首次通过
func (r *SubmissionRepository) HasPassedExcluding(userID, quizID uint, excludeID string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuizSubmission{}).
		Where("user_id = ? AND quiz_id = ? AND passed = ? AND id <> ?", userID, quizID, true, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *SubmissionRepository) ListByUserAndQuiz(userID, quizID uint) ([]model.QuizSubmission, error) {
	var submissions []model.QuizSubmission
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepository) Update(submission *model.QuizSubmission) error {
	return r.DB.Save(submission).Error
}

func (r *SubmissionRepository) UpdateAnswer(answer *model.QuestionAnswer) error {
	return r.DB.Save(answer).Error
}
