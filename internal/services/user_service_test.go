package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodpaiva/mensageiro-fit/internal/apperrors"
	"github.com/rodpaiva/mensageiro-fit/internal/domain"
)

func TestLinkTelegramChat(t *testing.T) {
	users := &fakeUserRepo{users: map[string]*domain.User{
		"ana@example.com": {ID: 3, Email: "ana@example.com"},
	}}
	svc := NewUserService(users)

	require.NoError(t, svc.LinkTelegramChat(context.Background(), "ana@example.com", 987654321))
	assert.Equal(t, "987654321", users.users["ana@example.com"].TelegramChatID)
}

func TestLinkTelegramChatUnknownEmail(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{users: map[string]*domain.User{}})

	err := svc.LinkTelegramChat(context.Background(), "nobody@example.com", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUserNotRegistered))
}
