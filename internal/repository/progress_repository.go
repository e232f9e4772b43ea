package repository

import (
	"time"

	"elearn_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndLesson(userID, lessonID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// UpsertView 以 (user_id, lesson_id) 唯一索引为冲突键的原子 upsert：
// 首次写入建行并记 first_viewed_at，之后每次浏览 views+1。
// 并发写者在该唯一索引上被串行化
func (r *ProgressRepository) UpsertView(userID, lessonID uint, now time.Time) (*model.Progress, error) {
	progress := model.Progress{
		UserID:        userID,
		LessonID:      lessonID,
		Views:         1,
		FirstViewedAt: now,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"views":      gorm.Expr("views + 1"),
			"updated_at": now,
		}),
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserAndLesson(userID, lessonID)
}

// EnsureRow 不存在则建行但不增加浏览数（完成一个从未浏览过的课时时用）
func (r *ProgressRepository) EnsureRow(userID, lessonID uint, now time.Time) (*model.Progress, error) {
	progress := model.Progress{
		UserID:        userID,
		LessonID:      lessonID,
		Views:         0,
		FirstViewedAt: now,
	}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoNothing: true,
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserAndLesson(userID, lessonID)
}

// MarkCompleted 条件更新 completed=false 的行，返回是否发生了
// false→true 转换。并发的重复调用只有一个写者拿到转换
func (r *ProgressRepository) MarkCompleted(progress *model.Progress, now time.Time) (bool, error) {
	res := r.DB.Model(&model.Progress{}).
		Where("id = ? AND completed = ?", progress.ID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	progress.Completed = true
	progress.CompletedAt = &now
	return true, nil
}

// CountCompletedInPath 统计用户在某路径下已完成的课时数
func (r *ProgressRepository) CountCompletedInPath(userID, pathID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Progress{}).
		Joins("JOIN lessons ON lessons.id = progress.lesson_id AND lessons.deleted_at IS NULL").
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
		Where("progress.user_id = ? AND modules.path_id = ? AND progress.completed = ?", userID, pathID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.Progress, error) {
	var rows []model.Progress
	err := r.DB.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}
