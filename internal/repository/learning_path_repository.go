package repository

import (
	"elearn_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) FindByID(id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.First(&path, id).Error
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// FindWithModules 一次取出路径、模块与课时（聚合计算的批量读取）
func (r *LearningPathRepository) FindWithModules(id uint) (*model.LearningPath, error) {
	var path model.LearningPath
	err := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("modules.`order` ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.`order` ASC")
		}).
		First(&path, id).Error
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (r *LearningPathRepository) ListPaths() ([]model.LearningPath, error) {
	var paths []model.LearningPath
	err := r.DB.Where("published = ?", true).Find(&paths).Error
	return paths, err
}

func (r *LearningPathRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// PathIDForLesson 返回课时所属的学习路径
func (r *LearningPathRepository) PathIDForLesson(lessonID uint) (uint, error) {
	var pathID uint
	err := r.DB.Model(&model.Lesson{}).
		Select("modules.path_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("lessons.id = ?", lessonID).
		Scan(&pathID).Error
	return pathID, err
}

// CountLessons 路径下完成单元总数；没有课时的模块不贡献单元
func (r *LearningPathRepository) CountLessons(pathID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("modules.path_id = ?", pathID).
		Count(&count).Error
	return count, err
}
