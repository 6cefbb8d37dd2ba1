package services

import (
	"context"
	"testing"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-do-not-use"

func newAuthService(repo *MockRepository) AuthService {
	return NewAuthService(repo, testJWTSecret, testLogger(), utils.NewValidator())
}

func TestAuthService_Register_CreatesStudentByDefault(t *testing.T) {
	repo := NewMockRepository()
	svc := newAuthService(repo)

	repo.UserRepo.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(false, nil)
	repo.UserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 7
	})

	result, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct-horse",
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleStudent, result.User.Role)
	// Stored password must be a hash, never the plaintext.
	assert.NotEqual(t, "correct-horse", result.User.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.Password), []byte("correct-horse")))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := NewMockRepository()
	svc := newAuthService(repo)

	repo.UserRepo.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct-horse",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.UserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Login_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo := NewMockRepository()
	svc := newAuthService(repo)

	user := &models.User{ID: 7, Email: "ada@example.com", Password: string(hash)}
	repo.UserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	repo.UserRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, wrongPw := svc.Login(context.Background(), &LoginRequest{Email: "ada@example.com", Password: "nope"})
	_, noUser := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "nope"})

	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
}

func TestAuthService_Login_IssuesParsableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo := NewMockRepository()
	svc := newAuthService(repo)

	user := &models.User{ID: 7, Email: "ada@example.com", Role: models.RoleAdmin, Password: string(hash)}
	repo.UserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	result, err := svc.Login(context.Background(), &LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	assert.NoError(t, err)

	claims, err := svc.ParseToken(result.Token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthService_ParseToken_RejectsGarbage(t *testing.T) {
	svc := newAuthService(NewMockRepository())

	_, err := svc.ParseToken("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ParseToken_RejectsWrongSecret(t *testing.T) {
	repo := NewMockRepository()
	issuer := NewAuthService(repo, "other-secret", testLogger(), utils.NewValidator())
	verifier := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw-long-enough"), bcrypt.MinCost)
	assert.NoError(t, err)
	user := &models.User{ID: 7, Email: "ada@example.com", Password: string(hash)}
	repo.UserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

	result, err := issuer.Login(context.Background(), &LoginRequest{Email: "ada@example.com", Password: "pw-long-enough"})
	assert.NoError(t, err)

	_, err = verifier.ParseToken(result.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
