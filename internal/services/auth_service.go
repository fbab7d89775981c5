package services

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/models"
	"github.com/terraincognita07/ascend/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const temporaryPasswordLength = 12

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string) error
	Delete(userID uint) error
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type AuthService struct {
	users        AuthUserRepository
	passwordCost int
	logger       *log.Logger
}

func NewAuthService(users AuthUserRepository, logger *log.Logger) *AuthService {
	return &AuthService{
		users:        users,
		passwordCost: bcrypt.DefaultCost,
		logger:       logging.OrDiscard(logger),
	}
}

func (service *AuthService) Register(input RegisterInput) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(input.Email, input.Password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}
	fullName, err := NormalizeFullName(input.FullName)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	hash, err := service.hashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{Email: email, PasswordHash: hash, FullName: fullName}
	if err := service.users.Create(&user); err != nil {
		// A concurrent registration can win the unique index between the
		// existence check and the insert.
		if exists, checkErr := service.users.ExistsByNormalizedEmail(email); checkErr == nil && exists {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	service.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authenticate returns ErrAuthCredentialsInvalid for both an unknown email and
// a wrong password.
func (service *AuthService) Authenticate(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		if errors.Is(mapMissing(err, ErrUserNotFound), ErrUserNotFound) {
			return models.User{}, ErrAuthCredentialsInvalid
		}
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, mapMissing(err, ErrUserNotFound)
	}
	return user, nil
}

func (service *AuthService) ChangePassword(userID uint, currentPassword string, newPassword string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrAuthCredentialsInvalid
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := service.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := service.users.UpdatePassword(userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ResetPassword replaces the stored password with a random temporary one and
// returns it in clear text for the operator.
func (service *AuthService) ResetPassword(emailRaw string) (string, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return "", ErrAuthCredentialsInvalid
	}
	user, err := service.users.FindByNormalizedEmail(email)
	if err != nil {
		return "", mapMissing(err, ErrUserNotFound)
	}

	temporary, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	hash, err := service.hashPassword(temporary)
	if err != nil {
		return "", err
	}
	if err := service.users.UpdatePassword(user.ID, hash); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}

	service.logger.Warn("password reset", "user_id", user.ID)
	return temporary, nil
}

func (service *AuthService) DeleteAccount(userID uint, password string) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrAuthCredentialsInvalid
	}
	if err := service.users.Delete(userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	service.logger.Info("user deleted", "user_id", userID)
	return nil
}

func (service *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
