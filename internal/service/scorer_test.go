package service

import (
	"testing"

	"elearn_backend/internal/model"
	"elearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 两题测验：单选(A 正确, 5分) + 判断(是 正确, 5分)，通过线 60
func twoQuestionQuiz() *model.Quiz {
	return &model.Quiz{
		BaseModel:    model.BaseModel{ID: 1},
		PassingScore: 60,
		Questions: []model.Question{
			{
				BaseModel: model.BaseModel{ID: 1},
				Type:      model.MultipleChoice,
				Points:    5,
				Options: []model.QuestionOption{
					{BaseModel: model.BaseModel{ID: 1}, Text: "A", IsCorrect: true},
					{BaseModel: model.BaseModel{ID: 2}, Text: "B"},
				},
			},
			{
				BaseModel: model.BaseModel{ID: 2},
				Type:      model.TrueFalse,
				Points:    5,
				Options: []model.QuestionOption{
					{BaseModel: model.BaseModel{ID: 3}, Text: "是", IsCorrect: true},
					{BaseModel: model.BaseModel{ID: 4}, Text: "否"},
				},
			},
		},
	}
}

func TestScoreSubmissionAllCorrect(t *testing.T) {
	quiz := twoQuestionQuiz()
	answers := []AnswerInput{
		{QuestionID: 1, SelectedOptionID: optionID(1)},
		{QuestionID: 2, SelectedOptionID: optionID(3)},
	}

	outcome, err := ScoreSubmission(quiz, answers, ShortAnswerExactMatch)
	require.NoError(t, err)
	assert.Equal(t, 10, outcome.Score)
	assert.Equal(t, 10, outcome.MaxScore)
	assert.Equal(t, 100.0, outcome.Percentage)
	assert.True(t, outcome.Passed)
	assert.Len(t, outcome.Answers, 2)
}

func TestScoreSubmissionAllWrong(t *testing.T) {
	quiz := twoQuestionQuiz()
	answers := []AnswerInput{
		{QuestionID: 1, SelectedOptionID: optionID(2)},
		{QuestionID: 2, SelectedOptionID: optionID(4)},
	}

	outcome, err := ScoreSubmission(quiz, answers, ShortAnswerExactMatch)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Score)
	assert.Equal(t, 0.0, outcome.Percentage)
	assert.False(t, outcome.Passed)
}

func TestScoreSubmissionUnansweredCountsZero(t *testing.T) {
	quiz := twoQuestionQuiz()
	answers := []AnswerInput{
		{QuestionID: 1, SelectedOptionID: optionID(1)},
	}

	outcome, err := ScoreSubmission(quiz, answers, ShortAnswerExactMatch)
	require.NoError(t, err)
	assert.Equal(t, 5, outcome.Score)
	assert.Equal(t, 10, outcome.MaxScore)
	assert.Equal(t, 50.0, outcome.Percentage)
	assert.False(t, outcome.Passed)

	// 未作答的题目也要落一行，记 0 分
	require.Len(t, outcome.Answers, 2)
	assert.Nil(t, outcome.Answers[1].SelectedOptionID)
	assert.Equal(t, 0, outcome.Answers[1].EarnedPoints)
}

func TestScoreSubmissionRejectsInvalidAnswers(t *testing.T) {
	quiz := twoQuestionQuiz()

	_, err := ScoreSubmission(quiz, []AnswerInput{{QuestionID: 99}}, ShortAnswerExactMatch)
	assert.True(t, util.IsValidation(err))

	_, err = ScoreSubmission(quiz, []AnswerInput{
		{QuestionID: 1, SelectedOptionID: optionID(1)},
		{QuestionID: 1, SelectedOptionID: optionID(2)},
	}, ShortAnswerExactMatch)
	assert.True(t, util.IsValidation(err))
}

func TestScoreSubmissionRounding(t *testing.T) {
	// 3 题各 1 分，答对 2 题：200/3 = 66.666... 四舍五入到 66.67
	quiz := &model.Quiz{
		PassingScore: 60,
		Questions: []model.Question{
			{
				BaseModel: model.BaseModel{ID: 1}, Type: model.TrueFalse, Points: 1,
				Options: []model.QuestionOption{{BaseModel: model.BaseModel{ID: 1}, IsCorrect: true}, {BaseModel: model.BaseModel{ID: 2}}},
			},
			{
				BaseModel: model.BaseModel{ID: 2}, Type: model.TrueFalse, Points: 1,
				Options: []model.QuestionOption{{BaseModel: model.BaseModel{ID: 3}, IsCorrect: true}, {BaseModel: model.BaseModel{ID: 4}}},
			},
			{
				BaseModel: model.BaseModel{ID: 3}, Type: model.TrueFalse, Points: 1,
				Options: []model.QuestionOption{{BaseModel: model.BaseModel{ID: 5}, IsCorrect: true}, {BaseModel: model.BaseModel{ID: 6}}},
			},
		},
	}
	answers := []AnswerInput{
		{QuestionID: 1, SelectedOptionID: optionID(1)},
		{QuestionID: 2, SelectedOptionID: optionID(3)},
		{QuestionID: 3, SelectedOptionID: optionID(6)},
	}

	outcome, err := ScoreSubmission(quiz, answers, ShortAnswerExactMatch)
	require.NoError(t, err)
	assert.Equal(t, 66.67, outcome.Percentage)
	assert.True(t, outcome.Passed)
}

func TestScoreSubmissionEmptyQuiz(t *testing.T) {
	quiz := &model.Quiz{PassingScore: 60}

	outcome, err := ScoreSubmission(quiz, nil, ShortAnswerExactMatch)
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.MaxScore)
	assert.Equal(t, 0.0, outcome.Percentage)
	assert.False(t, outcome.Passed)
}

func TestScoreSubmissionDeterministic(t *testing.T) {
	quiz := twoQuestionQuiz()
	answers := []AnswerInput{
		{QuestionID: 1, SelectedOptionID: optionID(1)},
		{QuestionID: 2, SelectedOptionID: optionID(4)},
	}

	first, err := ScoreSubmission(quiz, answers, ShortAnswerExactMatch)
	require.NoError(t, err)
	second, err := ScoreSubmission(quiz, answers, ShortAnswerExactMatch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRescoreSubmissionOverrideFlipsPass(t *testing.T) {
	quiz := &model.Quiz{
		PassingScore: 60,
		Questions: []model.Question{
			{
				BaseModel: model.BaseModel{ID: 1}, Type: model.ShortAnswer,
				Points: 10, ReferenceAnswer: "接口",
			},
		},
	}
	stored := []model.QuestionAnswer{
		{QuestionID: 1, TextAnswer: "interface", IsCorrect: false, EarnedPoints: 0},
	}

	outcome := RescoreSubmission(quiz, stored, map[uint]bool{1: true}, ShortAnswerExactMatch)
	assert.Equal(t, 10, outcome.Score)
	assert.Equal(t, 100.0, outcome.Percentage)
	assert.True(t, outcome.Passed)
	assert.True(t, outcome.Answers[0].IsCorrect)

	// 没有改判的题目按原评分规则重算
	outcome = RescoreSubmission(quiz, stored, nil, ShortAnswerExactMatch)
	assert.False(t, outcome.Passed)
}

func TestRoundHalfUp2(t *testing.T) {
	assert.Equal(t, 66.67, roundHalfUp2(200.0/3.0))
	assert.Equal(t, 62.5, roundHalfUp2(62.5))
	assert.Equal(t, 0.0, roundHalfUp2(0))
	assert.Equal(t, 100.0, roundHalfUp2(100))
}
