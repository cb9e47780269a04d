package gateway_test

import (
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/chatsvc"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// MockChatService is a testify mock of the gateway.ChatService collaborator.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) IsParticipant(conversationID, userID string) (bool, error) {
	args := m.Called(conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatService) SendMessage(in chatsvc.SendMessageInput) (*chatsvc.SendMessageResult, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatsvc.SendMessageResult), args.Error(1)
}

func (m *MockChatService) EditMessage(messageID, editorID, content string) (*models.Message, error) {
	args := m.Called(messageID, editorID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockChatService) DeleteMessage(messageID, userID string) (*models.Message, error) {
	args := m.Called(messageID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockChatService) AddReaction(messageID, userID, emoji string) (*models.Message, error) {
	args := m.Called(messageID, userID, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockChatService) RemoveReaction(messageID, userID, emoji string) (*models.Message, error) {
	args := m.Called(messageID, userID, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockChatService) MarkConversationRead(conversationID, readerID string) (time.Time, error) {
	args := m.Called(conversationID, readerID)
	return args.Get(0).(time.Time), args.Error(1)
}

// MockPresenceStore is a testify mock of the gateway.PresenceStore
// collaborator. The tracker persists from a goroutine, so expectations must
// use mock.Anything.
type MockPresenceStore struct {
	mock.Mock
}

func (m *MockPresenceStore) SaveUserPresence(presence models.UserPresence) error {
	args := m.Called(presence)
	return args.Error(0)
}

// mockClient is a test double for the gateway.Client interface with a
// buffered send channel so fan-outs never block. Like the real client, Close
// leaves the send channel open so frames queued after the disconnect are
// dropped rather than panicking the loop.
type mockClient struct {
	userID    string
	connID    string
	send      chan models.ServerFrame
	closeOnce sync.Once
	closed    bool
}

func newMockClient(userID, connID string) *mockClient {
	return &mockClient{
		userID: userID,
		connID: connID,
		send:   make(chan models.ServerFrame, 32),
	}
}

func (c *mockClient) GetUserID() string                         { return c.userID }
func (c *mockClient) GetConnID() string                         { return c.connID }
func (c *mockClient) GetSendChannel() chan<- models.ServerFrame { return c.send }
func (c *mockClient) Run()                                      {}

func (c *mockClient) Close() {
	c.closeOnce.Do(func() { c.closed = true })
}

// drainFrames empties the send buffer and returns everything received so far.
func (c *mockClient) drainFrames() []models.ServerFrame {
	var frames []models.ServerFrame
	for {
		select {
		case frame := <-c.send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}

// framesOf filters the drained frames down to one event type.
func framesOf(frames []models.ServerFrame, event models.EventType) []models.ServerFrame {
	var out []models.ServerFrame
	for _, frame := range frames {
		if frame.Event == event {
			out = append(out, frame)
		}
	}
	return out
}
