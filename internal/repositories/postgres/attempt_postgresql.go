package postgres

import (
	"context"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetActive(ctx context.Context, userID, quizID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND quiz_id = ? AND submitted_at IS NULL", userID, quizID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetOwnedInProgress(ctx context.Context, id, userID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND submitted_at IS NULL", id, userID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetOwned(ctx context.Context, id, userID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ReplaceAnswer wraps the delete-then-insert in a single transaction so
// a reader never observes the question transiently unanswered and a
// crash cannot leave stale rows behind.
func (a *AttemptPostgreSQL) ReplaceAnswer(ctx context.Context, attemptID, questionID uint, payload repositories.AnswerPayload) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			Delete(&models.AnswerMatchPair{}).Error; err != nil {
			return err
		}

		switch {
		case len(payload.ChoiceIDs) > 0:
			answers := make([]models.Answer, len(payload.ChoiceIDs))
			for i, choiceID := range payload.ChoiceIDs {
				id := choiceID
				answers[i] = models.Answer{
					AttemptID:  attemptID,
					QuestionID: questionID,
					ChoiceID:   &id,
				}
			}
			return tx.Create(&answers).Error

		case payload.TextResponse != nil:
			answer := models.Answer{
				AttemptID:    attemptID,
				QuestionID:   questionID,
				TextResponse: payload.TextResponse,
			}
			return tx.Create(&answer).Error

		case len(payload.MatchPairs) > 0:
			pairs := make([]models.AnswerMatchPair, len(payload.MatchPairs))
			for i, p := range payload.MatchPairs {
				pairs[i] = models.AnswerMatchPair{
					AttemptID:  attemptID,
					QuestionID: questionID,
					PromptID:   p.PromptID,
					AnswerID:   p.AnswerID,
				}
			}
			return tx.Create(&pairs).Error
		}

		// Empty payload clears the answer.
		return nil
	})
}

// Finalize is the only transition into the submitted state. The guard
// on submitted_at makes a second concurrent Submit a zero-row update.
func (a *AttemptPostgreSQL) Finalize(ctx context.Context, attemptID uint, score int, submittedAt time.Time) (int64, error) {
	result := a.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("id = ? AND submitted_at IS NULL", attemptID).
		Updates(map[string]interface{}{
			"score":        score,
			"submitted_at": submittedAt,
		})
	return result.RowsAffected, result.Error
}

func (a *AttemptPostgreSQL) GetAnswers(ctx context.Context, attemptID uint) ([]models.Answer, error) {
	var answers []models.Answer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("id ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AttemptPostgreSQL) GetAnswerMatchPairs(ctx context.Context, attemptID uint) ([]models.AnswerMatchPair, error) {
	var pairs []models.AnswerMatchPair
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

func (a *AttemptPostgreSQL) ListSubmittedByUser(ctx context.Context, userID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND submitted_at IS NOT NULL", userID).
		Order("submitted_at DESC").
		Preload("Quiz").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) ListSubmitted(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	var attempts []*models.Attempt

	query := a.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("submitted_at IS NOT NULL").
		Order("submitted_at DESC")
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Preload("User").Preload("Quiz").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) AggregateByQuiz(ctx context.Context) ([]repositories.QuizAggregate, error) {
	var rows []repositories.QuizAggregate
	if err := a.db.WithContext(ctx).Model(&models.Attempt{}).
		Select("attempts.quiz_id AS quiz_id, quizzes.title AS title, COUNT(*) AS attempts, COALESCE(SUM(attempts.score), 0) AS sum_score, COALESCE(SUM(attempts.max_score), 0) AS sum_max_score").
		Joins("JOIN quizzes ON quizzes.id = attempts.quiz_id").
		Where("attempts.submitted_at IS NOT NULL").
		Group("attempts.quiz_id, quizzes.title").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *AttemptPostgreSQL) AggregateByUser(ctx context.Context) ([]repositories.UserAggregate, error) {
	var rows []repositories.UserAggregate
	if err := a.db.WithContext(ctx).Model(&models.Attempt{}).
		Select("attempts.user_id AS user_id, users.name AS name, users.email AS email, COUNT(*) AS attempts, COALESCE(SUM(attempts.score), 0) AS sum_score, COALESCE(SUM(attempts.max_score), 0) AS sum_max_score").
		Joins("JOIN users ON users.id = attempts.user_id").
		Where("attempts.submitted_at IS NOT NULL").
		Group("attempts.user_id, users.name, users.email").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *AttemptPostgreSQL) CountPerDay(ctx context.Context, since time.Time) ([]repositories.DayCount, error) {
	var rows []repositories.DayCount
	if err := a.db.WithContext(ctx).Model(&models.Attempt{}).
		Select("TO_CHAR(started_at, 'YYYY-MM-DD') AS date, COUNT(*) AS count").
		Where("started_at >= ?", since).
		Group("TO_CHAR(started_at, 'YYYY-MM-DD')").
		Order("date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *AttemptPostgreSQL) StatsForQuiz(ctx context.Context, quizID uint) (*repositories.QuizAttemptStats, error) {
	var stats repositories.QuizAttemptStats
	if err := a.db.WithContext(ctx).Model(&models.Attempt{}).
		Select("COUNT(*) AS total_attempts, COALESCE(SUM(score), 0) AS sum_score, COALESCE(SUM(max_score), 0) AS sum_max_score").
		Where("quiz_id = ? AND submitted_at IS NOT NULL", quizID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (a *AttemptPostgreSQL) RecentForQuiz(ctx context.Context, quizID uint, limit int) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	if err := a.db.WithContext(ctx).
		Where("quiz_id = ? AND submitted_at IS NOT NULL", quizID).
		Order("submitted_at DESC").
		Limit(limit).
		Preload("User").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
