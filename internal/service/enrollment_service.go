package service

import (
	"errors"
	"time"

	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

// EnrollmentService 维护学习路径的完成度。百分比永远由完成事实
// 整体重算，不做增量累加，配合版本检查避免并发丢失更新
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	PathRepo       *repository.LearningPathRepository
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	pathRepo *repository.LearningPathRepository,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		PathRepo:       pathRepo,
	}
}

// Enroll 加入学习路径，完成度从 0 开始。重复加入返回既有记录
func (s *EnrollmentService) Enroll(userID, pathID uint) (*model.Enrollment, error) {
	if _, err := s.PathRepo.FindByID(pathID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, util.WrapStorage("enrollment.enroll", err)
	}

	existing, err := s.EnrollmentRepo.FindByUserAndPath(userID, pathID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.WrapStorage("enrollment.enroll", err)
	}

	enrollment := &model.Enrollment{UserID: userID, PathID: pathID}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		// 唯一索引上的并发加入，读回赢者写入的行
		if existing, findErr := s.EnrollmentRepo.FindByUserAndPath(userID, pathID); findErr == nil {
			return existing, nil
		}
		return nil, util.WrapStorage("enrollment.enroll", err)
	}
	return enrollment, nil
}

func (s *EnrollmentService) Get(userID, pathID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndPath(userID, pathID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, util.WrapStorage("enrollment.get", err)
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	enrollments, err := s.EnrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, util.WrapStorage("enrollment.list", err)
	}
	return enrollments, nil
}

// Recompute 重算路径完成度：completedUnits / totalUnits。
// 只做一次乐观写入，版本冲突上抛 ErrConcurrencyConflict，
// 由编排器带着新读数重试。只要课时不被取消完成，结果单调不减
func (s *EnrollmentService) Recompute(userID, pathID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByUserAndPath(userID, pathID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		enrollment, err = s.Enroll(userID, pathID)
	}
	if err != nil {
		if util.IsValidation(err) {
			return nil, err
		}
		return nil, util.WrapStorage("enrollment.recompute", err)
	}

	totalUnits, err := s.PathRepo.CountLessons(pathID)
	if err != nil {
		return nil, util.WrapStorage("enrollment.recompute", err)
	}

	percentage := 0.0
	if totalUnits > 0 {
		completedUnits, err := s.ProgressRepo.CountCompletedInPath(userID, pathID)
		if err != nil {
			return nil, util.WrapStorage("enrollment.recompute", err)
		}
		percentage = roundHalfUp2(100 * float64(completedUnits) / float64(totalUnits))
	}

	completed := enrollment.Completed || percentage >= 100
	if percentage == enrollment.Percentage && completed == enrollment.Completed {
		return enrollment, nil
	}

	// completedAt 只在首次到达 100% 时落表，此后不再变动
	var completedAt *time.Time
	if percentage >= 100 && !enrollment.Completed {
		now := time.Now()
		completedAt = &now
	}

	if err := s.EnrollmentRepo.ApplyAggregate(enrollment, percentage, completed, completedAt); err != nil {
		if errors.Is(err, util.ErrConcurrencyConflict) {
			return nil, err
		}
		return nil, util.WrapStorage("enrollment.recompute", err)
	}
	return enrollment, nil
}
