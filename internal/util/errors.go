package util

import (
	"errors"
	"fmt"
)

// ValidationError 请求在评分前即被拒绝，不会产生任何部分写入
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StorageError 包装存储层的瞬时失败，调用方看不到原始异常
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func WrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

var (
	ErrUserNotFound       = &ValidationError{Reason: "用户不存在"}
	ErrQuizNotFound       = &ValidationError{Reason: "测验不存在"}
	ErrLessonNotFound     = &ValidationError{Reason: "课时不存在"}
	ErrPathNotFound       = &ValidationError{Reason: "学习路径不存在"}
	ErrSubmissionNotFound = &ValidationError{Reason: "提交记录不存在"}
	ErrQuizGatedLesson    = &ValidationError{Reason: "该课时由测验把关，通过测验后自动完成"}
	ErrEmailRegistered    = &ValidationError{Reason: "该邮箱已被注册"}

	// 不可重考的测验已有提交记录
	ErrDuplicateSubmission = errors.New("quiz already attempted and retake is not allowed")
	// 乐观并发检查失败，由编排器有限次重试
	ErrConcurrencyConflict = errors.New("concurrent update conflict on aggregate")
)

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
