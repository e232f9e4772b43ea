package repository

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByUserID(userID uint) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetOrCreate 取用户档案，不存在则建空档案（计数全 0）
func (r *ProfileRepository) GetOrCreate(userID uint) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.Where(model.UserProfile{UserID: userID}).
		Attrs(model.UserProfile{Badges: model.BadgeSet{}}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ApplyUpdate 带版本检查地写回档案。计数字段必须由调用方基于
// 刚读出的行推导，不能在内存中累加旧值。版本不匹配返回
// ErrConcurrencyConflict，由编排器重读重算
func (r *ProfileRepository) ApplyUpdate(profile *model.UserProfile, updates map[string]interface{}) error {
	updates["version"] = profile.Version + 1
	res := r.DB.Model(&model.UserProfile{}).
		Where("id = ? AND version = ?", profile.ID, profile.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConcurrencyConflict
	}
	profile.Version++
	return nil
}
