package service

import (
	"strings"

	"elearn_backend/internal/model"
)

// ShortAnswerPolicy 短答题判分策略，属于配置而非算法契约
type ShortAnswerPolicy string

const (
	// ShortAnswerExactMatch 与参考答案做大小写不敏感的精确匹配
	ShortAnswerExactMatch ShortAnswerPolicy = "exact_match"
	// ShortAnswerDeferred 自动评分记 0 分，等教师改判
	ShortAnswerDeferred ShortAnswerPolicy = "deferred"
)

type GradeResult struct {
	IsCorrect    bool
	EarnedPoints int
}

// GradeAnswer 按题目的计分规则给单题作答判分。纯函数，无副作用。
// 未作答、选项不属于本题、缺少正确选项一律判错（fail closed），
// 不抛错。没有部分得分
func GradeAnswer(question *model.Question, answer *model.QuestionAnswer, policy ShortAnswerPolicy) GradeResult {
	switch question.Type {
	case model.MultipleChoice, model.TrueFalse:
		correct := question.CorrectOption()
		if correct == nil || answer == nil || answer.SelectedOptionID == nil {
			return GradeResult{}
		}
		selected := *answer.SelectedOptionID
		belongs := false
		for i := range question.Options {
			if question.Options[i].ID == selected {
				belongs = true
				break
			}
		}
		if !belongs || selected != correct.ID {
			return GradeResult{}
		}
		return GradeResult{IsCorrect: true, EarnedPoints: question.Points}

	case model.ShortAnswer:
		if policy != ShortAnswerExactMatch || question.ReferenceAnswer == "" || answer == nil {
			return GradeResult{}
		}
		given := strings.TrimSpace(answer.TextAnswer)
		if given == "" {
			return GradeResult{}
		}
		if strings.EqualFold(given, strings.TrimSpace(question.ReferenceAnswer)) {
			return GradeResult{IsCorrect: true, EarnedPoints: question.Points}
		}
	}
	return GradeResult{}
}
