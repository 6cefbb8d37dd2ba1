package services

import (
	"testing"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyQuizAccess_UngatedQuizIgnoresCode(t *testing.T) {
	quiz := &models.Quiz{ID: 1, Title: "Open quiz"}

	assert.NoError(t, VerifyQuizAccess(quiz, ""))
	assert.NoError(t, VerifyQuizAccess(quiz, "anything"))
}

func TestVerifyQuizAccess_EmptyHashTreatedAsUngated(t *testing.T) {
	empty := ""
	quiz := &models.Quiz{ID: 1, AccessCodeHash: &empty}

	assert.NoError(t, VerifyQuizAccess(quiz, ""))
}

func TestVerifyQuizAccess_GatedQuiz(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sesame"), bcrypt.MinCost)
	assert.NoError(t, err)
	hashStr := string(hash)
	quiz := &models.Quiz{ID: 1, AccessCodeHash: &hashStr}

	assert.ErrorIs(t, VerifyQuizAccess(quiz, ""), ErrAccessCodeRequired)
	assert.ErrorIs(t, VerifyQuizAccess(quiz, "wrong"), ErrAccessCodeInvalid)
	// Codes are case sensitive.
	assert.ErrorIs(t, VerifyQuizAccess(quiz, "sesame"), ErrAccessCodeInvalid)
	assert.NoError(t, VerifyQuizAccess(quiz, "Sesame"))
}
