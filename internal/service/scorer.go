package service

import (
	"math"

	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
)

// AnswerInput 提交中的单题作答；SelectedOptionID 为空表示未作答或主观题
type AnswerInput struct {
	QuestionID       uint   `json:"questionId" binding:"required"`
	SelectedOptionID *uint  `json:"selectedOptionId"`
	TextAnswer       string `json:"textAnswer"`
}

// ScoreOutcome 一次提交的评分结果，Answers 覆盖测验的全部题目
//（未作答的题目也生成一行，记 0 分）
type ScoreOutcome struct {
	Score      int
	MaxScore   int
	Percentage float64
	Passed     bool
	Answers    []model.QuestionAnswer
}

// ScoreSubmission 对一次提交的全部作答评分。纯函数：相同的
// (测验, 作答) 输入总是得到相同结果。作答只需覆盖题目的子集，
// 缺答按 0 分处理，从不因缺答而失败
func ScoreSubmission(quiz *model.Quiz, answers []AnswerInput, policy ShortAnswerPolicy) (*ScoreOutcome, error) {
	known := make(map[uint]bool, len(quiz.Questions))
	for i := range quiz.Questions {
		known[quiz.Questions[i].ID] = true
	}

	byQuestion := make(map[uint]AnswerInput, len(answers))
	for _, a := range answers {
		if !known[a.QuestionID] {
			return nil, util.Validationf("题目 %d 不属于该测验", a.QuestionID)
		}
		if _, dup := byQuestion[a.QuestionID]; dup {
			return nil, util.Validationf("题目 %d 存在重复作答", a.QuestionID)
		}
		byQuestion[a.QuestionID] = a
	}

	outcome := &ScoreOutcome{
		Answers: make([]model.QuestionAnswer, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		outcome.MaxScore += q.Points

		row := model.QuestionAnswer{QuestionID: q.ID}
		if in, ok := byQuestion[q.ID]; ok {
			row.SelectedOptionID = in.SelectedOptionID
			row.TextAnswer = in.TextAnswer
		}
		res := GradeAnswer(q, &row, policy)
		row.IsCorrect = res.IsCorrect
		row.EarnedPoints = res.EarnedPoints
		outcome.Score += res.EarnedPoints
		outcome.Answers = append(outcome.Answers, row)
	}

	outcome.Percentage = percentageOf(outcome.Score, outcome.MaxScore)
	outcome.Passed = outcome.Percentage >= quiz.PassingScore
	return outcome, nil
}

// AnswerOverride 教师对单题（通常是短答题）的人工改判
type AnswerOverride struct {
	QuestionID uint `json:"questionId" binding:"required"`
	IsCorrect  bool `json:"isCorrect"`
}

// RescoreSubmission 基于已存作答重新评分，overrides 覆盖对应题目的
// 判定。与 ScoreSubmission 同一套计分规则，保证重评可复现
func RescoreSubmission(quiz *model.Quiz, stored []model.QuestionAnswer, overrides map[uint]bool, policy ShortAnswerPolicy) *ScoreOutcome {
	byQuestion := make(map[uint]*model.QuestionAnswer, len(stored))
	for i := range stored {
		byQuestion[stored[i].QuestionID] = &stored[i]
	}

	outcome := &ScoreOutcome{
		Answers: make([]model.QuestionAnswer, 0, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		outcome.MaxScore += q.Points

		var row model.QuestionAnswer
		if prev, ok := byQuestion[q.ID]; ok {
			row = *prev
		} else {
			row = model.QuestionAnswer{QuestionID: q.ID}
		}

		if correct, ok := overrides[q.ID]; ok {
			row.IsCorrect = correct
			row.EarnedPoints = 0
			if correct {
				row.EarnedPoints = q.Points
			}
		} else {
			res := GradeAnswer(q, &row, policy)
			row.IsCorrect = res.IsCorrect
			row.EarnedPoints = res.EarnedPoints
		}
		outcome.Score += row.EarnedPoints
		outcome.Answers = append(outcome.Answers, row)
	}

	outcome.Percentage = percentageOf(outcome.Score, outcome.MaxScore)
	outcome.Passed = outcome.Percentage >= quiz.PassingScore
	return outcome
}

func percentageOf(score, maxScore int) float64 {
	if maxScore == 0 {
		return 0
	}
	return roundHalfUp2(100 * float64(score) / float64(maxScore))
}

// roundHalfUp2 保留两位小数，四舍五入（非银行家舍入），保证结果可复现
func roundHalfUp2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

// roundHalfUp 取整，四舍五入
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
