package service

import (
	"math"
	"time"

	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
)

// ProfileService 维护用户档案的游戏化聚合：积分、连续天数、
// 完成计数与徽章。计数只增不减，且每个底层完成事件至多计一次——
// 调用方只在 Progress false→true 或首次通过测验时调用这里
type ProfileService struct {
	ProfileRepo *repository.ProfileRepository
	Engine      config.EngineConfig
	loc         *time.Location
}

func NewProfileService(profileRepo *repository.ProfileRepository, engine config.EngineConfig) *ProfileService {
	loc, err := time.LoadLocation(engine.StreakTimezone)
	if err != nil {
		loc = time.Local
	}
	return &ProfileService{
		ProfileRepo: profileRepo,
		Engine:      engine,
		loc:         loc,
	}
}

// badgeRule 固定有序的徽章阈值判定，按顺序评估
type badgeRule struct {
	Code   string
	Earned func(p *model.UserProfile) bool
}

var badgeRules = []badgeRule{
	{"first_lesson", func(p *model.UserProfile) bool { return p.TotalLessonsCompleted >= 1 }},
	{"lessons_10", func(p *model.UserProfile) bool { return p.TotalLessonsCompleted >= 10 }},
	{"lessons_50", func(p *model.UserProfile) bool { return p.TotalLessonsCompleted >= 50 }},
	{"first_quiz", func(p *model.UserProfile) bool { return p.TotalQuizzesPassed >= 1 }},
	{"quizzes_10", func(p *model.UserProfile) bool { return p.TotalQuizzesPassed >= 10 }},
	{"streak_7", func(p *model.UserProfile) bool { return p.CurrentStreak >= 7 }},
	{"streak_30", func(p *model.UserProfile) bool { return p.CurrentStreak >= 30 }},
	{"points_500", func(p *model.UserProfile) bool { return p.Points >= 500 }},
}

// NextStreak 连续天数推进：同一日历日不变，恰好次日 +1，断档归 1。
// 日历日按配置时区换算
func NextStreak(current int, lastEvent *time.Time, eventAt time.Time, loc *time.Location) int {
	if lastEvent == nil {
		return 1
	}
	last := lastEvent.In(loc)
	now := eventAt.In(loc)
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// 跨夏令时的日差可能是 23/25 小时，就近取整
	diffDays := int(math.Round(nowDay.Sub(lastDay).Hours() / 24))
	switch diffDays {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}

// evaluateBadges 按固定顺序评估阈值，返回本次新获得的徽章。
// 已有徽章不重复授予，也从不移除
func evaluateBadges(profile *model.UserProfile) []string {
	var earned []string
	for _, rule := range badgeRules {
		if profile.Badges.Has(rule.Code) {
			continue
		}
		if rule.Earned(profile) {
			earned = append(earned, rule.Code)
		}
	}
	return earned
}

// OnLessonCompleted 首次完成课时的档案更新。必须与 Progress 的
// false→true 转换在同一原子单元内执行，崩溃时不会出现
// 计了数却没有完成记录的状态
func (s *ProfileService) OnLessonCompleted(userID uint, completedAt time.Time) (*model.UserProfile, error) {
	profile, err := s.ProfileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, util.WrapStorage("profile.on_lesson_completed", err)
	}

	next := *profile
	next.TotalLessonsCompleted++
	next.Points += s.Engine.LessonPoints
	next.CurrentStreak = NextStreak(profile.CurrentStreak, profile.LastEventAt, completedAt, s.loc)
	next.LastEventAt = &completedAt
	next.Badges = append(append(model.BadgeSet{}, profile.Badges...), evaluateBadges(&next)...)

	return s.apply(profile, &next, completedAt)
}

// OnQuizPassed 首次通过某测验的档案更新，积分按成绩百分比取整累加。
// 重考再次通过不再计数（见 DESIGN.md 的开放问题决策）
func (s *ProfileService) OnQuizPassed(userID uint, submission *model.QuizSubmission) (*model.UserProfile, error) {
	profile, err := s.ProfileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, util.WrapStorage("profile.on_quiz_passed", err)
	}

	eventAt := submission.SubmittedAt
	next := *profile
	next.TotalQuizzesPassed++
	next.Points += roundHalfUp(submission.Percentage)
	next.CurrentStreak = NextStreak(profile.CurrentStreak, profile.LastEventAt, eventAt, s.loc)
	next.LastEventAt = &eventAt
	next.Badges = append(append(model.BadgeSet{}, profile.Badges...), evaluateBadges(&next)...)

	return s.apply(profile, &next, eventAt)
}

func (s *ProfileService) apply(current, next *model.UserProfile, eventAt time.Time) (*model.UserProfile, error) {
	err := s.ProfileRepo.ApplyUpdate(current, map[string]interface{}{
		"points":                  next.Points,
		"current_streak":          next.CurrentStreak,
		"total_lessons_completed": next.TotalLessonsCompleted,
		"total_quizzes_passed":    next.TotalQuizzesPassed,
		"badges":                  next.Badges,
		"last_event_at":           eventAt,
	})
	if err != nil {
		if err == util.ErrConcurrencyConflict {
			return nil, err
		}
		return nil, util.WrapStorage("profile.apply", err)
	}
	next.ID = current.ID
	next.UserID = current.UserID
	next.Version = current.Version
	return next, nil
}

func (s *ProfileService) GetStats(userID uint) (*model.UserProfile, error) {
	profile, err := s.ProfileRepo.GetOrCreate(userID)
	if err != nil {
		return nil, util.WrapStorage("profile.get_stats", err)
	}
	return profile, nil
}
