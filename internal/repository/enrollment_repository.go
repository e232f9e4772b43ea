package repository

import (
	"time"

	"elearn_backend/internal/model"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByUserAndPath(userID, pathID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND path_id = ?", userID, pathID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).Find(&enrollments).Error
	return enrollments, err
}

// ApplyAggregate 带版本检查地写回重算后的完成度。
// completedAt 只在首次到达 100% 时由调用方传入
func (r *EnrollmentRepository) ApplyAggregate(enrollment *model.Enrollment, percentage float64, completed bool, completedAt *time.Time) error {
	updates := map[string]interface{}{
		"percentage": percentage,
		"completed":  completed,
		"version":    enrollment.Version + 1,
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.DB.Model(&model.Enrollment{}).
		Where("id = ? AND version = ?", enrollment.ID, enrollment.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConcurrencyConflict
	}
	enrollment.Percentage = percentage
	enrollment.Completed = completed
	if completedAt != nil {
		enrollment.CompletedAt = completedAt
	}
	enrollment.Version++
	return nil
}
