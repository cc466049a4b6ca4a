package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/rodpaiva/mensageiro-fit/internal/apperrors"
	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
)

// UserService handles identity lookup and Telegram chat registration
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetByEmail resolves the configured identity
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// LinkTelegramChat stores chatID against the user identified by email.
// The email must have been pre-registered during setup.
func (s *UserService) LinkTelegramChat(ctx context.Context, email string, chatID int64) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperrors.Wrap(err, apperrors.ErrorTypeUserNotRegistered, "USER_NOT_REGISTERED", "email not pre-registered")
		}
		return apperrors.NewDatabaseError(err)
	}

	if err := s.users.UpdateTelegramChatID(ctx, user.ID, strconv.FormatInt(chatID, 10)); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	logger.Info("Telegram chat linked to user", "email", email, "chat_id", chatID)
	return nil
}
