package services

import (
	"github.com/quizforge/quiz-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// VerifyQuizAccess gates attempt starts on the quiz's optional access
// code. Quizzes without a stored secret are always open. The bcrypt
// comparison is the constant-time hash-compare primitive; the plaintext
// code is never persisted or logged.
//
// Side-effect free.
func VerifyQuizAccess(quiz *models.Quiz, presentedCode string) error {
	if quiz.AccessCodeHash == nil || *quiz.AccessCodeHash == "" {
		return nil
	}

	if presentedCode == "" {
		return ErrAccessCodeRequired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*quiz.AccessCodeHash), []byte(presentedCode)); err != nil {
		return ErrAccessCodeInvalid
	}

	return nil
}
