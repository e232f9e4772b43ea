package service

import (
	"testing"
	"time"

	"elearn_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNextStreakFirstEvent(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, NextStreak(0, nil, now, time.UTC))
}

func TestNextStreakSameDay(t *testing.T) {
	last := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)

	assert.Equal(t, 4, NextStreak(4, &last, now, time.UTC))
	// 历史数据里连续天数为 0 时至少归到 1
	assert.Equal(t, 1, NextStreak(0, &last, now, time.UTC))
}

func TestNextStreakConsecutiveDay(t *testing.T) {
	// 跨日但不足 24 小时也算次日
	last := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	now := time.Date(2025, 3, 11, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, 5, NextStreak(4, &last, now, time.UTC))
}

func TestNextStreakGapResets(t *testing.T) {
	last := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, NextStreak(7, &last, now, time.UTC))
}

func TestNextStreakTimezoneBoundary(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// UTC 的 3/10 17:00 在 UTC+8 已是 3/11 01:00
	last := time.Date(2025, 3, 9, 17, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, NextStreak(2, &last, now, loc))
	// 同样两个时刻按 UTC 算也是相邻两天
	assert.Equal(t, 3, NextStreak(2, &last, now, time.UTC))
}

func TestEvaluateBadgesThresholds(t *testing.T) {
	profile := &model.UserProfile{
		TotalLessonsCompleted: 1,
		Badges:                model.BadgeSet{},
	}
	assert.Equal(t, []string{"first_lesson"}, evaluateBadges(profile))

	profile = &model.UserProfile{
		TotalLessonsCompleted: 10,
		TotalQuizzesPassed:    1,
		CurrentStreak:         7,
		Points:                500,
		Badges:                model.BadgeSet{},
	}
	assert.Equal(t,
		[]string{"first_lesson", "lessons_10", "first_quiz", "streak_7", "points_500"},
		evaluateBadges(profile))
}

func TestEvaluateBadgesNeverReawards(t *testing.T) {
	profile := &model.UserProfile{
		TotalLessonsCompleted: 12,
		Badges:                model.BadgeSet{"first_lesson", "lessons_10"},
	}
	assert.Empty(t, evaluateBadges(profile))

	// 计数继续增长只触发新的阈值
	profile.TotalLessonsCompleted = 50
	assert.Equal(t, []string{"lessons_50"}, evaluateBadges(profile))
}
