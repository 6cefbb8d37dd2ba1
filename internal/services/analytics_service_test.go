package services

import (
	"context"
	"testing"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAnalyticsService_Overview(t *testing.T) {
	repo := NewMockRepository()
	svc := NewAnalyticsService(repo, cache.NoopCache{}, testLogger())

	repo.AttemptRepo.On("AggregateByQuiz", mock.Anything).Return([]repositories.QuizAggregate{
		{QuizID: 1, Title: "Networking", Attempts: 4, SumScore: 30, SumMaxScore: 40},
		{QuizID: 2, Title: "Databases", Attempts: 2, SumScore: 5, SumMaxScore: 20},
	}, nil)
	repo.AttemptRepo.On("AggregateByUser", mock.Anything).Return([]repositories.UserAggregate{
		{UserID: 7, Name: "Ada", Email: "ada@example.com", Attempts: 3, SumScore: 20, SumMaxScore: 30},
	}, nil)
	repo.AttemptRepo.On("CountPerDay", mock.Anything, mock.AnythingOfType("time.Time")).Return([]repositories.DayCount{
		{Date: "2026-08-30", Count: 3},
		{Date: "2026-08-31", Count: 3},
	}, nil)

	overview, err := svc.Overview(context.Background(), 30)

	assert.NoError(t, err)
	assert.Equal(t, 6, overview.TotalAttempts)
	// 35 of 60 points across all quizzes.
	assert.InDelta(t, 58.33, overview.AverageScore, 0.01)

	assert.Len(t, overview.QuizBreakdown, 2)
	assert.Equal(t, 75.0, overview.QuizBreakdown[0].AverageScore)
	assert.Equal(t, 25.0, overview.QuizBreakdown[1].AverageScore)

	// Best performer leads the top list, worst leads the low list.
	assert.Equal(t, uint(1), overview.TopQuizzes[0].QuizID)
	assert.Equal(t, uint(2), overview.LowQuizzes[0].QuizID)

	assert.Len(t, overview.StudentSummary, 1)
	assert.InDelta(t, 66.67, overview.StudentSummary[0].AverageScore, 0.01)
	assert.Len(t, overview.AttemptsPerDay, 2)
}

func TestAnalyticsService_Overview_EmptyData(t *testing.T) {
	repo := NewMockRepository()
	svc := NewAnalyticsService(repo, cache.NoopCache{}, testLogger())

	repo.AttemptRepo.On("AggregateByQuiz", mock.Anything).Return([]repositories.QuizAggregate{}, nil)
	repo.AttemptRepo.On("AggregateByUser", mock.Anything).Return([]repositories.UserAggregate{}, nil)
	repo.AttemptRepo.On("CountPerDay", mock.Anything, mock.AnythingOfType("time.Time")).Return([]repositories.DayCount{}, nil)

	overview, err := svc.Overview(context.Background(), 0)

	assert.NoError(t, err)
	assert.Equal(t, 0, overview.TotalAttempts)
	assert.Equal(t, 0.0, overview.AverageScore)
	assert.Empty(t, overview.TopQuizzes)
	assert.Empty(t, overview.LowQuizzes)
}

func TestRankQuizzes_FewerThanFive(t *testing.T) {
	all := []QuizPerformance{
		{QuizID: 1, AverageScore: 90},
		{QuizID: 2, AverageScore: 40},
		{QuizID: 3, AverageScore: 70},
	}

	top, low := rankQuizzes(all)

	assert.Len(t, top, 3)
	assert.Len(t, low, 3)
	assert.Equal(t, uint(1), top[0].QuizID)
	assert.Equal(t, uint(2), low[0].QuizID)
}
