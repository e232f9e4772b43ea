package service

import (
	"errors"

	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

// ContentService 课程内容的只读查询。测验的学习者视图依赖模型上的
// json:"-" 隐藏正确选项与参考答案，这里不做额外脱敏
type ContentService struct {
	PathRepo *repository.LearningPathRepository
	QuizRepo *repository.QuizRepository
}

func NewContentService(pathRepo *repository.LearningPathRepository, quizRepo *repository.QuizRepository) *ContentService {
	return &ContentService{
		PathRepo: pathRepo,
		QuizRepo: quizRepo,
	}
}

func (s *ContentService) ListPaths() ([]model.LearningPath, error) {
	paths, err := s.PathRepo.ListPaths()
	if err != nil {
		return nil, util.WrapStorage("content.list_paths", err)
	}
	return paths, nil
}

func (s *ContentService) GetPath(id uint) (*model.LearningPath, error) {
	path, err := s.PathRepo.FindWithModules(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPathNotFound
		}
		return nil, util.WrapStorage("content.get_path", err)
	}
	return path, nil
}

func (s *ContentService) GetLesson(id uint) (*model.Lesson, error) {
	lesson, err := s.PathRepo.FindLessonByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, util.WrapStorage("content.get_lesson", err)
	}
	return lesson, nil
}

func (s *ContentService) GetQuiz(id uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, util.WrapStorage("content.get_quiz", err)
	}
	return quiz, nil
}
