package service

import (
	"errors"

	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

// SubmissionQueryService 提交记录的只读查询，与写路径分离
type SubmissionQueryService struct {
	SubmissionRepo *repository.SubmissionRepository
}

func NewSubmissionQueryService(submissionRepo *repository.SubmissionRepository) *SubmissionQueryService {
	return &SubmissionQueryService{SubmissionRepo: submissionRepo}
}

// GetForUser 学生只能查看自己的提交，教师与管理员不受限
func (s *SubmissionQueryService) GetForUser(claims *util.Claims, submissionID string) (*model.QuizSubmission, error) {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, util.WrapStorage("submission.get", err)
	}

	if claims.Role == model.Student && submission.UserID != claims.UserID {
		return nil, util.ErrSubmissionNotFound
	}
	return submission, nil
}

func (s *SubmissionQueryService) ListByUserAndQuiz(userID, quizID uint) ([]model.QuizSubmission, error) {
	submissions, err := s.SubmissionRepo.ListByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, util.WrapStorage("submission.list", err)
	}
	return submissions, nil
}
