package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"anonchat-service/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, anonymousID, displayName, avatarCode string) (models.User, error) {
	args := m.Called(ctx, anonymousID, displayName, avatarCode)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) TouchLastSeen(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateChat(ctx context.Context, chatCode string, creatorID int) (models.Chat, error) {
	args := m.Called(ctx, chatCode, creatorID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChatByCode(ctx context.Context, chatCode string) (models.Chat, error) {
	args := m.Called(ctx, chatCode)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) AddParticipant(ctx context.Context, chatID int, userID int) error {
	args := m.Called(ctx, chatID, userID)
	return args.Error(0)
}

func (m *ChatRepositoryMock) ListChatOverviews(ctx context.Context, userID int) ([]models.ChatOverview, error) {
	args := m.Called(ctx, userID)
	var list []models.ChatOverview
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatOverview)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID int, userID int, content string) (models.Message, error) {
	args := m.Called(ctx, chatID, userID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListChatMessages(ctx context.Context, chatID int) ([]models.MessageView, error) {
	args := m.Called(ctx, chatID)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}
