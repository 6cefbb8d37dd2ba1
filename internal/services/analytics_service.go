package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/repositories"
)

// AnalyticsService builds the admin overview from finalized attempts.
// Everything here is derived data; the attempt rows stay the source of
// truth and the overview is safe to cache briefly.
type AnalyticsService interface {
	Overview(ctx context.Context, days int) (*AnalyticsOverview, error)
}

const (
	overviewCacheKey = "analytics:overview"
	overviewCacheTTL = 60 * time.Second
	defaultRangeDays = 30
	rankingSize      = 5
)

type AnalyticsOverview struct {
	TotalAttempts  int                     `json:"total_attempts"`
	AverageScore   float64                 `json:"average_score"`
	QuizBreakdown  []QuizPerformance       `json:"quiz_breakdown"`
	TopQuizzes     []QuizPerformance       `json:"top_quizzes"`
	LowQuizzes     []QuizPerformance       `json:"low_quizzes"`
	StudentSummary []StudentPerformance    `json:"student_summary"`
	AttemptsPerDay []repositories.DayCount `json:"attempts_per_day"`
}

type QuizPerformance struct {
	QuizID       uint    `json:"quiz_id"`
	Title        string  `json:"title"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

type StudentPerformance struct {
	UserID       uint    `json:"user_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
}

type analyticsService struct {
	repo   repositories.Repository
	cache  cache.CacheService
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
	}
}

func (s *analyticsService) Overview(ctx context.Context, days int) (*AnalyticsOverview, error) {
	if days <= 0 {
		days = defaultRangeDays
	}

	cacheKey := fmt.Sprintf("%s:%d", overviewCacheKey, days)
	var cached AnalyticsOverview
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	byQuiz, err := s.repo.Attempt().AggregateByQuiz(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by quiz: %w", err)
	}

	byUser, err := s.repo.Attempt().AggregateByUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by user: %w", err)
	}

	since := time.Now().AddDate(0, 0, -days)
	perDay, err := s.repo.Attempt().CountPerDay(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts per day: %w", err)
	}

	overview := &AnalyticsOverview{AttemptsPerDay: perDay}

	totalScore, totalMax := 0, 0
	for _, agg := range byQuiz {
		overview.TotalAttempts += agg.Attempts
		totalScore += agg.SumScore
		totalMax += agg.SumMaxScore
		overview.QuizBreakdown = append(overview.QuizBreakdown, QuizPerformance{
			QuizID:       agg.QuizID,
			Title:        agg.Title,
			Attempts:     agg.Attempts,
			AverageScore: percentage(agg.SumScore, agg.SumMaxScore),
		})
	}
	overview.AverageScore = percentage(totalScore, totalMax)

	overview.TopQuizzes, overview.LowQuizzes = rankQuizzes(overview.QuizBreakdown)

	for _, agg := range byUser {
		overview.StudentSummary = append(overview.StudentSummary, StudentPerformance{
			UserID:       agg.UserID,
			Name:         agg.Name,
			Email:        agg.Email,
			Attempts:     agg.Attempts,
			AverageScore: percentage(agg.SumScore, agg.SumMaxScore),
		})
	}

	if err := s.cache.Set(ctx, cacheKey, overview, overviewCacheTTL); err != nil {
		s.logger.Warn("Failed to cache analytics overview", "error", err)
	}

	return overview, nil
}

// rankQuizzes returns the best and worst performers by average score.
// Ties break toward the quiz with more attempts.
func rankQuizzes(all []QuizPerformance) (top, low []QuizPerformance) {
	ranked := make([]QuizPerformance, len(all))
	copy(ranked, all)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageScore != ranked[j].AverageScore {
			return ranked[i].AverageScore > ranked[j].AverageScore
		}
		return ranked[i].Attempts > ranked[j].Attempts
	})

	n := len(ranked)
	topN := rankingSize
	if topN > n {
		topN = n
	}
	top = append(top, ranked[:topN]...)

	lowN := rankingSize
	if lowN > n {
		lowN = n
	}
	for i := n - 1; i >= n-lowN; i-- {
		low = append(low, ranked[i])
	}
	return top, low
}

func percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(maxScore)*10000) / 100
}
