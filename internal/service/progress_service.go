package service

import (
	"errors"
	"time"

	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressService 记录课时的浏览与完成状态。
// 同一 (用户, 课时) 的写入靠行级唯一索引串行化
type ProgressService struct {
	ProgressRepo   *repository.ProgressRepository
	PathRepo       *repository.LearningPathRepository
	SubmissionRepo *repository.SubmissionRepository
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	pathRepo *repository.LearningPathRepository,
	submissionRepo *repository.SubmissionRepository,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		PathRepo:       pathRepo,
		SubmissionRepo: submissionRepo,
	}
}

// RecordView 浏览事件：首次建行记 firstViewedAt，每次 views+1
func (s *ProgressService) RecordView(userID, lessonID uint) (*model.Progress, error) {
	if _, err := s.PathRepo.FindLessonByID(lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, util.WrapStorage("progress.record_view", err)
	}

	progress, err := s.ProgressRepo.UpsertView(userID, lessonID, time.Now())
	if err != nil {
		return nil, util.WrapStorage("progress.record_view", err)
	}
	return progress, nil
}

// RecordCompletion 幂等：已完成则原样返回（completedAt 不变）。
// viaQuizPass 为真表示调用来自测验通过的传播路径；显式完成信号
// 对有测验把关的课时要求已有通过记录
func (s *ProgressService) RecordCompletion(userID, lessonID uint, viaQuizPass bool) (*model.Progress, bool, error) {
	lesson, err := s.PathRepo.FindLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrLessonNotFound
		}
		return nil, false, util.WrapStorage("progress.record_completion", err)
	}

	if lesson.QuizID != nil && !viaQuizPass {
		passed, err := s.SubmissionRepo.HasPassed(userID, *lesson.QuizID)
		if err != nil {
			return nil, false, util.WrapStorage("progress.record_completion", err)
		}
		if !passed {
			return nil, false, util.ErrQuizGatedLesson
		}
	}

	now := time.Now()
	progress, err := s.ProgressRepo.EnsureRow(userID, lessonID, now)
	if err != nil {
		return nil, false, util.WrapStorage("progress.record_completion", err)
	}
	if progress.Completed {
		return progress, false, nil
	}

	transitioned, err := s.ProgressRepo.MarkCompleted(progress, now)
	if err != nil {
		return nil, false, util.WrapStorage("progress.record_completion", err)
	}
	if !transitioned {
		// 并发写者抢先完成了转换，重新读取既有状态
		progress, err = s.ProgressRepo.FindByUserAndLesson(userID, lessonID)
		if err != nil {
			return nil, false, util.WrapStorage("progress.record_completion", err)
		}
	}
	return progress, transitioned, nil
}

func (s *ProgressService) GetProgress(userID, lessonID uint) (*model.Progress, error) {
	progress, err := s.ProgressRepo.FindByUserAndLesson(userID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, util.WrapStorage("progress.get", err)
	}
	return progress, nil
}
