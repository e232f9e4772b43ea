package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

type engineFixture struct {
	db         *gorm.DB
	submission *SubmissionService
	progress   *ProgressService
	enrollment *EnrollmentService
	profile    *ProfileService
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		LessonPoints:       10,
		StreakTimezone:     "UTC",
		ShortAnswerPolicy:  "exact_match",
		AggregateRetries:   5,
		GradingTimeoutSecs: 10,
	}
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	// busy_timeout 让并发用例里的写事务排队而不是立刻报错
	dsn := "file:" + filepath.Join(t.TempDir(), "engine.db") + "?_busy_timeout=2000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	pathRepo := repository.NewLearningPathRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	engine := testEngineConfig()
	progress := NewProgressService(progressRepo, pathRepo, submissionRepo)
	return &engineFixture{
		db:         db,
		progress:   progress,
		enrollment: NewEnrollmentService(enrollmentRepo, progressRepo, pathRepo),
		profile:    NewProfileService(profileRepo, engine),
		submission: NewSubmissionService(db, nil, userRepo, quizRepo, submissionRepo, pathRepo, progress, engine),
	}
}

func (f *engineFixture) seedUser(t *testing.T) *model.User {
	t.Helper()
	user := &model.User{Name: "学员", Email: "student@example.com", Password: "x", Role: model.Student}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

// 单模块单课时的已发布路径
func (f *engineFixture) seedPath(t *testing.T) (*model.LearningPath, *model.Lesson) {
	t.Helper()
	path := &model.LearningPath{
		Title:     "测试路径",
		Published: true,
		Modules: []model.Module{
			{Title: "模块一", Order: 1, Lessons: []model.Lesson{{Title: "课时一", Order: 1}}},
		},
	}
	require.NoError(t, f.db.Create(path).Error)
	return path, &path.Modules[0].Lessons[0]
}

// 给课时挂一个课时级测验（单题判断，通过线 60）
func (f *engineFixture) seedGatingQuiz(t *testing.T, lesson *model.Lesson, retakeable bool) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:        "把关测验",
		Scope:        model.ScopeLesson,
		ScopeID:      lesson.ID,
		PassingScore: 60,
		Retakeable:   retakeable,
		Questions: []model.Question{
			{
				Type:   model.TrueFalse,
				Points: 5,
				Order:  1,
				Options: []model.QuestionOption{
					{Text: "是", IsCorrect: true, Order: 1},
					{Text: "否", Order: 2},
				},
			},
		},
	}
	require.NoError(t, f.db.Create(quiz).Error)
	require.NoError(t, f.db.Model(lesson).Update("quiz_id", quiz.ID).Error)
	lesson.QuizID = &quiz.ID
	return quiz
}

func (f *engineFixture) correctAnswers(quiz *model.Quiz) []AnswerInput {
	var answers []AnswerInput
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if opt := q.CorrectOption(); opt != nil {
			answers = append(answers, AnswerInput{QuestionID: q.ID, SelectedOptionID: &opt.ID})
		}
	}
	return answers
}

func (f *engineFixture) wrongAnswers(quiz *model.Quiz) []AnswerInput {
	var answers []AnswerInput
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		for j := range q.Options {
			if !q.Options[j].IsCorrect {
				answers = append(answers, AnswerInput{QuestionID: q.ID, SelectedOptionID: &q.Options[j].ID})
				break
			}
		}
	}
	return answers
}

func TestViewLessonOnlyCountsViews(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	var progress *model.Progress
	for i := 0; i < 3; i++ {
		progress, err = f.submission.ViewLesson(context.Background(), user.ID, lesson.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, progress.Views)
	assert.False(t, progress.Completed)
	assert.False(t, progress.FirstViewedAt.IsZero())

	// 浏览不触发任何聚合
	enrollment, err := f.enrollment.Get(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, enrollment.Percentage)

	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Points)
	assert.Equal(t, 0, stats.TotalLessonsCompleted)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	first, err := f.submission.CompleteLesson(context.Background(), user.ID, lesson.ID)
	require.NoError(t, err)
	require.True(t, first.Completed)
	require.NotNil(t, first.CompletedAt)

	second, err := f.submission.CompleteLesson(context.Background(), user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, second.Completed)
	assert.Equal(t, first.CompletedAt.Unix(), second.CompletedAt.Unix())

	// 聚合只发生一次
	enrollment, err := f.enrollment.Get(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, enrollment.Percentage)
	assert.True(t, enrollment.Completed)
	assert.NotNil(t, enrollment.CompletedAt)

	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalLessonsCompleted)
	assert.Equal(t, 10, stats.Points)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.True(t, stats.Badges.Has("first_lesson"))
}

func TestSubmitQuizPassPropagates(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)
	quiz := f.seedGatingQuiz(t, lesson, true)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	submission, err := f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
		Answers: f.correctAnswers(quiz),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, submission.Percentage)
	assert.True(t, submission.Passed)
	require.Len(t, submission.Answers, 1)

	// 通过测验自动完成把关课时并逐级传播
	progress, err := f.progress.GetProgress(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)

	enrollment, err := f.enrollment.Get(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, enrollment.Percentage)
	assert.True(t, enrollment.Completed)

	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQuizzesPassed)
	assert.Equal(t, 1, stats.TotalLessonsCompleted)
	// 课时 10 分 + 成绩百分比 100 分
	assert.Equal(t, 110, stats.Points)
	assert.True(t, stats.Badges.Has("first_quiz"))
	assert.True(t, stats.Badges.Has("first_lesson"))
}

func TestSubmitQuizFailNoAggregation(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)
	quiz := f.seedGatingQuiz(t, lesson, true)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	submission, err := f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
		Answers: f.wrongAnswers(quiz),
	})
	require.NoError(t, err)
	assert.False(t, submission.Passed)

	// 未通过的提交留档但不触发任何聚合
	_, err = f.progress.GetProgress(user.ID, lesson.ID)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalQuizzesPassed)
	assert.Equal(t, 0, stats.Points)
}

func TestSubmitQuizDuplicateRejected(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	_, lesson := f.seedPath(t)
	quiz := f.seedGatingQuiz(t, lesson, false)

	_, err := f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
		Answers: f.wrongAnswers(quiz),
	})
	require.NoError(t, err)

	_, err = f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
		Answers: f.correctAnswers(quiz),
	})
	assert.ErrorIs(t, err, util.ErrDuplicateSubmission)

	var count int64
	require.NoError(t, f.db.Model(&model.QuizSubmission{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// 显式的零值必须原样落库，不能被建表默认值顶掉
func TestQuizZeroValueFlagsPersist(t *testing.T) {
	f := newEngineFixture(t)
	_, lesson := f.seedPath(t)

	quiz := &model.Quiz{
		Title:        "一次性摸底测验",
		Scope:        model.ScopeLesson,
		ScopeID:      lesson.ID,
		PassingScore: 0,
		Retakeable:   false,
	}
	require.NoError(t, f.db.Create(quiz).Error)

	var stored model.Quiz
	require.NoError(t, f.db.First(&stored, quiz.ID).Error)
	assert.False(t, stored.Retakeable)
	assert.Equal(t, 0.0, stored.PassingScore)
}

// 并发重复提交不可重考的测验最多落库一份，其余被拒或冲突
func TestSubmitQuizConcurrentDuplicatesCollapse(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	_, lesson := f.seedPath(t)
	quiz := f.seedGatingQuiz(t, lesson, false)

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
				Answers: f.wrongAnswers(quiz),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.LessOrEqual(t, successes, 1)

	var count int64
	require.NoError(t, f.db.Model(&model.QuizSubmission{}).Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
	assert.Equal(t, int64(successes), count)
}

// 并发的完成信号下，完成转换与各级计数器都只发生一次
func TestCompleteLessonConcurrentCountsOnce(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	const writers = 4
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.submission.CompleteLesson(context.Background(), user.ID, lesson.ID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	require.GreaterOrEqual(t, successes, 1)

	progress, err := f.progress.GetProgress(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)

	enrollment, err := f.enrollment.Get(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, enrollment.Percentage)
	assert.True(t, enrollment.Completed)

	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalLessonsCompleted)
	assert.Equal(t, 10, stats.Points)
}

func TestRetakePassCountsOnce(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)
	quiz := f.seedGatingQuiz(t, lesson, true)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
			Answers: f.correctAnswers(quiz),
		})
		require.NoError(t, err)
	}

	// 重考再次通过不重复计数也不重复加分
	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQuizzesPassed)
	assert.Equal(t, 1, stats.TotalLessonsCompleted)
	assert.Equal(t, 110, stats.Points)
}

func TestGatedLessonRequiresQuizPass(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	_, lesson := f.seedPath(t)
	quiz := f.seedGatingQuiz(t, lesson, true)

	_, err := f.submission.CompleteLesson(context.Background(), user.ID, lesson.ID)
	assert.ErrorIs(t, err, util.ErrQuizGatedLesson)

	// 通过测验后显式完成变为幂等的空操作
	_, err = f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
		Answers: f.correctAnswers(quiz),
	})
	require.NoError(t, err)

	progress, err := f.submission.CompleteLesson(context.Background(), user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)
}

func TestRegradeFlipsToPassAndPropagates(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)

	quiz := &model.Quiz{
		Title:        "短答测验",
		Scope:        model.ScopeLesson,
		ScopeID:      lesson.ID,
		PassingScore: 60,
		Retakeable:   false,
		Questions: []model.Question{
			{Type: model.ShortAnswer, Points: 10, Order: 1, ReferenceAnswer: "接口"},
		},
	}
	require.NoError(t, f.db.Create(quiz).Error)
	require.NoError(t, f.db.Model(lesson).Update("quiz_id", quiz.ID).Error)

	_, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)

	submission, err := f.submission.SubmitQuiz(context.Background(), user.ID, quiz.ID, SubmitQuizRequest{
		Answers: []AnswerInput{{QuestionID: quiz.Questions[0].ID, TextAnswer: "interface"}},
	})
	require.NoError(t, err)
	require.False(t, submission.Passed)

	regraded, err := f.submission.RegradeSubmission(context.Background(), submission.ID, []AnswerOverride{
		{QuestionID: quiz.Questions[0].ID, IsCorrect: true},
	})
	require.NoError(t, err)
	assert.True(t, regraded.Passed)
	assert.Equal(t, 100.0, regraded.Percentage)

	// 改判后的首次通过照常触发聚合
	progress, err := f.progress.GetProgress(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, progress.Completed)

	enrollment, err := f.enrollment.Get(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, enrollment.Percentage)

	stats, err := f.profile.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQuizzesPassed)
}

func TestEnrollIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	user := f.seedUser(t)
	path, lesson := f.seedPath(t)

	first, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, first.Percentage)

	_, err = f.submission.CompleteLesson(context.Background(), user.ID, lesson.ID)
	require.NoError(t, err)

	// 重复加入返回既有记录，不重置完成度
	again, err := f.enrollment.Enroll(user.ID, path.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 100.0, again.Percentage)

	_, err = f.enrollment.Enroll(user.ID, 9999)
	assert.ErrorIs(t, err, util.ErrPathNotFound)
}
