package postgres

import (
	"context"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// Create inserts the question together with its choices, text keys or
// match pairs. gorm cascades the associations inside one transaction,
// so a half-created question is never visible.
func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.display_order ASC")
		}).
		Preload("TextKeys").
		Preload("MatchPairs").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByQuizAndID(ctx context.Context, quizID, questionID uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Where("id = ? AND quiz_id = ?", questionID, quizID).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).
		Model(&models.Question{ID: question.ID}).
		Select("text", "type", "points", "display_order").
		Updates(map[string]interface{}{
			"text":          question.Text,
			"type":          question.Type,
			"points":        question.Points,
			"display_order": question.Order,
		}).Error
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q *QuestionPostgreSQL) NextOrder(ctx context.Context, quizID uint) (int, error) {
	var maxOrder *int
	if err := q.db.WithContext(ctx).Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Select("MAX(display_order)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return 1, nil
	}
	return *maxOrder + 1, nil
}

func (q *QuestionPostgreSQL) GetForScoring(ctx context.Context, quizID uint) ([]models.Question, error) {
	var questions []models.Question
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("display_order ASC").
		Preload("Choices").
		Preload("TextKeys").
		Preload("MatchPairs").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) SumPoints(ctx context.Context, quizID uint) (int, error) {
	var sum *int
	if err := q.db.WithContext(ctx).Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Select("SUM(points)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
