package postgres

import (
	"github.com/quizforge/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	user     repositories.UserRepository
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		user:     NewUserPostgreSQL(db),
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
	}
}

func (r *Repository) User() repositories.UserRepository { return r.user }

func (r *Repository) Quiz() repositories.QuizRepository { return r.quiz }

func (r *Repository) Question() repositories.QuestionRepository { return r.question }

func (r *Repository) Attempt() repositories.AttemptRepository { return r.attempt }
