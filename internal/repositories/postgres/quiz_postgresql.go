package postgres

import (
	"context"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Create(quiz).Error
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.display_order ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.display_order ASC")
		}).
		Preload("Questions.TextKeys").
		Preload("Questions.MatchPairs").
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz

	query := q.db.WithContext(ctx).Model(&models.Quiz{}).Order("created_at DESC")
	if !filters.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, quiz *models.Quiz) error {
	return q.db.WithContext(ctx).Save(quiz).Error
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error
}
