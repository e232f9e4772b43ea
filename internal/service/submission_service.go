package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/util"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"
	"elearn_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// submissionState 一次提交尝试经过的状态机：
// received -> validated -> graded -> persisted -> aggregated -> done，
// rejected 只能从 received/validated 进入，failed 可从任意后续步骤进入
type submissionState string

const (
	stateReceived   submissionState = "received"
	stateValidated  submissionState = "validated"
	stateGraded     submissionState = "graded"
	statePersisted  submissionState = "persisted"
	stateAggregated submissionState = "aggregated"
	stateDone       submissionState = "done"
	stateRejected   submissionState = "rejected"
	stateFailed     submissionState = "failed"
)

// SubmissionService 提交编排器：验证、评分、落库、聚合一条龙。
// 本服务是 QuizSubmission、QuestionAnswer、Progress.completed、
// Enrollment.percentage 与 UserProfile 聚合的唯一写入方
type SubmissionService struct {
	DB             *gorm.DB
	RDB            *redis.Client
	UserRepo       *repository.UserRepository
	QuizRepo       *repository.QuizRepository
	SubmissionRepo *repository.SubmissionRepository
	PathRepo       *repository.LearningPathRepository
	Progress       *ProgressService
	Engine         config.EngineConfig
}

func NewSubmissionService(
	db *gorm.DB,
	rdb *redis.Client,
	userRepo *repository.UserRepository,
	quizRepo *repository.QuizRepository,
	submissionRepo *repository.SubmissionRepository,
	pathRepo *repository.LearningPathRepository,
	progress *ProgressService,
	engine config.EngineConfig,
) *SubmissionService {
	return &SubmissionService{
		DB:             db,
		RDB:            rdb,
		UserRepo:       userRepo,
		QuizRepo:       quizRepo,
		SubmissionRepo: submissionRepo,
		PathRepo:       pathRepo,
		Progress:       progress,
		Engine:         engine,
	}
}

type SubmitQuizRequest struct {
	Answers   []AnswerInput `json:"answers"`
	TimeSpent int           `json:"timeSpent"`
}

func (s *SubmissionService) policy() ShortAnswerPolicy {
	if s.Engine.ShortAnswerPolicy == string(ShortAnswerDeferred) {
		return ShortAnswerDeferred
	}
	return ShortAnswerExactMatch
}

// SubmitQuiz 处理一次测验提交。评分是纯函数可安全重试；
// 提交与逐题作答在一个事务里原子落库，聚合在同一事务内执行，
// 乐观并发冲突时整个单元带着新读数重试
func (s *SubmissionService) SubmitQuiz(ctx context.Context, userID, quizID uint, req SubmitQuizRequest) (*model.QuizSubmission, error) {
	state := stateReceived

	// 先占住用户级锁再校验，并发的重复提交不能同时通过重考检查
	unlock := s.lockProfile(ctx, userID)
	defer unlock()

	// VALIDATED：用户、测验、重考策略
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.reject(quizID, userID, util.ErrUserNotFound)
		}
		return nil, util.WrapStorage("submission.validate", err)
	}
	quiz, err := s.QuizRepo.FindWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.reject(quizID, userID, util.ErrQuizNotFound)
		}
		return nil, util.WrapStorage("submission.validate", err)
	}
	if !quiz.Retakeable {
		// 快速路径；权威判定在持久化事务里还会再查一次
		count, err := s.SubmissionRepo.CountByUserAndQuiz(userID, quizID)
		if err != nil {
			return nil, util.WrapStorage("submission.validate", err)
		}
		if count > 0 {
			return nil, s.reject(quizID, userID, util.ErrDuplicateSubmission)
		}
	}
	state = stateValidated

	// GRADED：纯函数评分，受配置超时约束
	outcome, err := s.gradeWithTimeout(ctx, quiz, req.Answers)
	if err != nil {
		if util.IsValidation(err) {
			return nil, s.reject(quizID, userID, err)
		}
		logger.Log.Error("grading failed",
			zap.Uint("quizId", quizID), zap.Uint("userId", userID),
			zap.String("state", string(stateFailed)), zap.Error(err))
		return nil, err
	}
	state = stateGraded

	// PERSISTED + AGGREGATED：同一事务，冲突时整体重试
	var created *model.QuizSubmission
	err = s.withAggregateRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			txSubs := repository.NewSubmissionRepository(tx)

			// 事务内复查重考策略，挡住锁退化时并发通过快速路径的重复提交
			if !quiz.Retakeable {
				count, err := txSubs.CountByUserAndQuiz(userID, quizID)
				if err != nil {
					return util.WrapStorage("submission.persist", err)
				}
				if count > 0 {
					return util.ErrDuplicateSubmission
				}
			}

			submission := &model.QuizSubmission{
				UserID:      userID,
				QuizID:      quizID,
				Score:       outcome.Score,
				MaxScore:    outcome.MaxScore,
				Percentage:  outcome.Percentage,
				Passed:      outcome.Passed,
				TimeSpent:   req.TimeSpent,
				SubmittedAt: time.Now(),
				Answers:     outcome.Answers,
			}
			if err := txSubs.Create(submission); err != nil {
				return util.WrapStorage("submission.persist", err)
			}
			state = statePersisted

			if err := s.aggregateQuizResult(tx, userID, quiz, submission); err != nil {
				return err
			}
			state = stateAggregated

			created = submission
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, util.ErrDuplicateSubmission) {
			return nil, s.reject(quizID, userID, err)
		}
		logger.Log.Error("submission failed",
			zap.Uint("quizId", quizID), zap.Uint("userId", userID),
			zap.String("state", string(state)), zap.Error(err))
		return nil, err
	}
	state = stateDone

	result := "failed"
	if created.Passed {
		result = "passed"
	}
	monitoring.SubmissionsGraded.WithLabelValues(result).Inc()
	logger.Log.Info("submission graded",
		zap.String("submissionId", created.ID),
		zap.Uint("quizId", quizID), zap.Uint("userId", userID),
		zap.Float64("percentage", created.Percentage),
		zap.Bool("passed", created.Passed),
		zap.String("state", string(state)))
	return created, nil
}

// ViewLesson 浏览事件走简化路径：received -> persisted -> done，
// 浏览不触发任何聚合
func (s *SubmissionService) ViewLesson(ctx context.Context, userID, lessonID uint) (*model.Progress, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, util.WrapStorage("lesson.view", err)
	}
	return s.Progress.RecordView(userID, lessonID)
}

// CompleteLesson 显式完成信号（“标记已读”）。完成转换、路径完成度
// 重算与档案更新在同一事务内执行，重复调用幂等
func (s *SubmissionService) CompleteLesson(ctx context.Context, userID, lessonID uint) (*model.Progress, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, util.WrapStorage("lesson.complete", err)
	}

	unlock := s.lockProfile(ctx, userID)
	defer unlock()

	var result *model.Progress
	err := s.withAggregateRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			progressSvc, enrollSvc, profileSvc := s.txServices(tx)

			progress, transitioned, err := progressSvc.RecordCompletion(userID, lessonID, false)
			if err != nil {
				return err
			}
			if transitioned {
				if err := s.propagateLessonCompletion(tx, userID, lessonID, progress, enrollSvc, profileSvc); err != nil {
					return err
				}
			}
			result = progress
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RegradeSubmission 教师改判（短答题人工批改路径）：对受影响的提交
// 重新执行评分器，整体重写该提交。若改判使其首次变为通过，
// 照常触发聚合传播
func (s *SubmissionService) RegradeSubmission(ctx context.Context, submissionID string, overrides []AnswerOverride) (*model.QuizSubmission, error) {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, util.WrapStorage("submission.regrade", err)
	}
	quiz, err := s.QuizRepo.FindWithQuestions(submission.QuizID)
	if err != nil {
		return nil, util.WrapStorage("submission.regrade", err)
	}

	ovMap := make(map[uint]bool, len(overrides))
	known := make(map[uint]bool, len(quiz.Questions))
	for i := range quiz.Questions {
		known[quiz.Questions[i].ID] = true
	}
	for _, ov := range overrides {
		if !known[ov.QuestionID] {
			return nil, util.Validationf("题目 %d 不属于该测验", ov.QuestionID)
		}
		ovMap[ov.QuestionID] = ov.IsCorrect
	}

	wasPassed := submission.Passed
	outcome := RescoreSubmission(quiz, submission.Answers, ovMap, s.policy())

	unlock := s.lockProfile(ctx, submission.UserID)
	defer unlock()

	err = s.withAggregateRetry(func() error {
		return s.DB.Transaction(func(tx *gorm.DB) error {
			txSubs := repository.NewSubmissionRepository(tx)

			for i := range outcome.Answers {
				row := &outcome.Answers[i]
				row.SubmissionID = submission.ID
				if err := txSubs.UpdateAnswer(row); err != nil {
					return util.WrapStorage("submission.regrade", err)
				}
			}

			submission.Score = outcome.Score
			submission.MaxScore = outcome.MaxScore
			submission.Percentage = outcome.Percentage
			submission.Passed = outcome.Passed
			submission.Answers = outcome.Answers
			if err := txSubs.Update(submission); err != nil {
				return util.WrapStorage("submission.regrade", err)
			}

			if !wasPassed && submission.Passed {
				return s.aggregateQuizResult(tx, submission.UserID, quiz, submission)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("submission regraded",
		zap.String("submissionId", submission.ID),
		zap.Bool("passed", submission.Passed))
	return submission, nil
}

// aggregateQuizResult 通过测验后的传播，固定顺序：
// 进度 -> 路径完成度 -> 档案。未通过的提交不产生任何聚合
func (s *SubmissionService) aggregateQuizResult(tx *gorm.DB, userID uint, quiz *model.Quiz, submission *model.QuizSubmission) error {
	if !submission.Passed {
		return nil
	}

	progressSvc, enrollSvc, profileSvc := s.txServices(tx)

	firstPassElsewhere, err := repository.NewSubmissionRepository(tx).HasPassedExcluding(userID, quiz.ID, submission.ID)
	if err != nil {
		return util.WrapStorage("submission.aggregate", err)
	}

	if quiz.Scope == model.ScopeLesson {
		progress, transitioned, err := progressSvc.RecordCompletion(userID, quiz.ScopeID, true)
		if err != nil {
			return err
		}
		if transitioned {
			if err := s.propagateLessonCompletion(tx, userID, quiz.ScopeID, progress, enrollSvc, profileSvc); err != nil {
				return err
			}
		}
	}

	if !firstPassElsewhere {
		if _, err := profileSvc.OnQuizPassed(userID, submission); err != nil {
			return err
		}
	}
	return nil
}

// propagateLessonCompletion 课时首次完成后的聚合：先重算所在路径的
// 完成度，再更新档案计数
func (s *SubmissionService) propagateLessonCompletion(tx *gorm.DB, userID, lessonID uint, progress *model.Progress, enrollSvc *EnrollmentService, profileSvc *ProfileService) error {
	pathID, err := repository.NewLearningPathRepository(tx).PathIDForLesson(lessonID)
	if err != nil {
		return util.WrapStorage("lesson.propagate", err)
	}
	if pathID != 0 {
		if _, err := enrollSvc.Recompute(userID, pathID); err != nil {
			return err
		}
	}

	completedAt := time.Now()
	if progress.CompletedAt != nil {
		completedAt = *progress.CompletedAt
	}
	if _, err := profileSvc.OnLessonCompleted(userID, completedAt); err != nil {
		return err
	}
	monitoring.LessonCompletions.Inc()
	return nil
}

func (s *SubmissionService) txServices(tx *gorm.DB) (*ProgressService, *EnrollmentService, *ProfileService) {
	progressRepo := repository.NewProgressRepository(tx)
	pathRepo := repository.NewLearningPathRepository(tx)
	submissionRepo := repository.NewSubmissionRepository(tx)
	return NewProgressService(progressRepo, pathRepo, submissionRepo),
		NewEnrollmentService(repository.NewEnrollmentRepository(tx), progressRepo, pathRepo),
		NewProfileService(repository.NewProfileRepository(tx), s.Engine)
}

// gradeWithTimeout 评分步骤的超时护栏：超时按 FAILED 处理，
// 评分无副作用，调用方可安全重试
func (s *SubmissionService) gradeWithTimeout(ctx context.Context, quiz *model.Quiz, answers []AnswerInput) (*ScoreOutcome, error) {
	gctx, cancel := context.WithTimeout(ctx, s.Engine.GradingTimeout())
	defer cancel()

	type reply struct {
		outcome *ScoreOutcome
		err     error
	}
	ch := make(chan reply, 1)
	go func() {
		outcome, err := ScoreSubmission(quiz, answers, s.policy())
		ch <- reply{outcome, err}
	}()

	select {
	case r := <-ch:
		return r.outcome, r.err
	case <-gctx.Done():
		return nil, util.WrapStorage("submission.grade", gctx.Err())
	}
}

// withAggregateRetry 有限重试：乐观并发冲突与瞬时存储错误都从头重跑
// 整个事务函数，带着新读数重算，绝不沿用内存里的旧聚合值。
// 事务已回滚，重跑不会造成部分提交
func (s *SubmissionService) withAggregateRetry(fn func() error) error {
	retries := s.Engine.AggregateRetries
	if retries < 1 {
		retries = 1
	}
	var err error
	for attempt := 0; attempt < retries; attempt++ {
		err = fn()
		conflict := errors.Is(err, util.ErrConcurrencyConflict)
		var storageErr *util.StorageError
		if !conflict && !errors.As(err, &storageErr) {
			return err
		}
		if conflict {
			monitoring.AggregateConflicts.Inc()
		}
		time.Sleep(time.Duration(attempt+1) * 20 * time.Millisecond)
	}
	return err
}

// lockProfile 按用户串行化档案写入（redis SETNX 锁）。
// 拿不到锁时退化为仅靠版本检查，正确性不受影响，只是冲突率更高
func (s *SubmissionService) lockProfile(ctx context.Context, userID uint) func() {
	unlock, _ := database.AcquireLock(ctx, s.RDB, fmt.Sprintf("lock:profile:%d", userID), 10*time.Second, 50)
	return unlock
}

func (s *SubmissionService) reject(quizID, userID uint, err error) error {
	monitoring.SubmissionsGraded.WithLabelValues("rejected").Inc()
	logger.Log.Info("submission rejected",
		zap.Uint("quizId", quizID), zap.Uint("userId", userID),
		zap.String("state", string(stateRejected)), zap.Error(err))
	return err
}
