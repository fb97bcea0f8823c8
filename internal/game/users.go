package game

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"temix/internal/auth"
	"temix/internal/db"
)

const minPasswordLength = 6

// RegisterUser creates an account with a bcrypt-hashed password. The
// unique email index turns a concurrent duplicate registration into a
// Conflict instead of a second account.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*db.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, validationf("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, validationf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, conflictf("email already registered")
		}
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &user, nil
}

// AuthenticateUser checks credentials. The same Unauthorized error covers
// unknown emails and wrong passwords.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, unauthorizedf("invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, unauthorizedf("invalid email or password")
	}
	return &user, nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundf("user not found")
		}
		return nil, err
	}
	return &user, nil
}
