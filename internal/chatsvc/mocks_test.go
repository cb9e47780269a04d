package chatsvc_test

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// MockRepository is a testify mock of the storage.Repository interface.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetConversationByID(id string) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockRepository) GetConversationByPair(userA, userB string) (*models.Conversation, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockRepository) GetOrCreateConversation(userA, userB string) (*models.Conversation, bool, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Conversation), args.Bool(1), args.Error(2)
}

func (m *MockRepository) IsParticipant(conversationID, userID string) (bool, error) {
	args := m.Called(conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CreateMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockRepository) GetMessageByID(id string) (*models.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockRepository) UpdateMessageContent(id, content string) error {
	args := m.Called(id, content)
	return args.Error(0)
}

func (m *MockRepository) DeleteMessage(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockRepository) AddReaction(reaction *models.Reaction) error {
	args := m.Called(reaction)
	return args.Error(0)
}

func (m *MockRepository) RemoveReaction(messageID, userID, emoji string) error {
	args := m.Called(messageID, userID, emoji)
	return args.Error(0)
}

func (m *MockRepository) MarkConversationRead(conversationID, readerID string, readAt time.Time) error {
	args := m.Called(conversationID, readerID, readAt)
	return args.Error(0)
}

func (m *MockRepository) UnreadCount(conversationID, userID string) (int64, error) {
	args := m.Called(conversationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) SaveUserPresence(presence models.UserPresence) error {
	args := m.Called(presence)
	return args.Error(0)
}

func (m *MockRepository) GetUserPresence(userID string) (*models.UserPresence, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPresence), args.Error(1)
}
