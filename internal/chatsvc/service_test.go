package chatsvc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/chatsvc"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

func conversationAliceBob() *models.Conversation {
	return &models.Conversation{ID: "conv1", UserAID: "alice", UserBID: "bob"}
}

func assertKind(t *testing.T, err error, kind chatsvc.ErrorKind) {
	t.Helper()
	svcErr, ok := chatsvc.AsError(err)
	assert.True(t, ok, "expected a chatsvc error, got %v", err)
	assert.Equal(t, kind, svcErr.Kind)
}

func TestSendMessage_EmptyContent(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)

	_, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:       "alice",
		ConversationID: "conv1",
		Content:        "   \n\t ",
	})

	assertKind(t, err, chatsvc.KindValidation)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestSendMessage_ConversationNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetConversationByID", "missing").Return(nil, nil)

	_, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:       "alice",
		ConversationID: "missing",
		Content:        "hello",
	})

	assertKind(t, err, chatsvc.KindNotFound)
}

func TestSendMessage_NotParticipant(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetConversationByID", "conv1").Return(conversationAliceBob(), nil)

	_, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:       "mallory",
		ConversationID: "conv1",
		Content:        "hello",
	})

	assertKind(t, err, chatsvc.KindAuthorization)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestSendMessage_PersistsTrimmedContent(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetConversationByID", "conv1").Return(conversationAliceBob(), nil)
	repo.On("CreateMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	result, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:       "alice",
		ConversationID: "conv1",
		Content:        "  hello bob  ",
	})

	assert.NoError(t, err)
	assert.Equal(t, "hello bob", result.Message.Content)
	assert.Equal(t, models.MessageTypeText, result.Message.Type)
	assert.False(t, result.ConversationCreated)
}

// TestSendMessage_IdempotentRetry verifies that resending with the same key
// returns the identical message and creates exactly one row.
func TestSendMessage_IdempotentRetry(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetConversationByID", "conv1").Return(conversationAliceBob(), nil)
	repo.On("CreateMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	input := chatsvc.SendMessageInput{
		SenderID:       "alice",
		ConversationID: "conv1",
		Content:        "hello",
		IdempotencyKey: "retry-key-1",
	}

	first, err := svc.SendMessage(input)
	assert.NoError(t, err)
	second, err := svc.SendMessage(input)
	assert.NoError(t, err)

	assert.Equal(t, first.Message.ID, second.Message.ID)
	repo.AssertNumberOfCalls(t, "CreateMessage", 1)
}

// TestSendMessage_FirstContact verifies a send with only a recipient id
// creates the conversation and reports it.
func TestSendMessage_FirstContact(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetOrCreateConversation", "bob", "alice").Return(conversationAliceBob(), true, nil)
	repo.On("CreateMessage", mock.AnythingOfType("*models.Message")).Return(nil)

	result, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:    "bob",
		RecipientID: "alice",
		Content:     "hi alice",
	})

	assert.NoError(t, err)
	assert.True(t, result.ConversationCreated)
	assert.Equal(t, "conv1", result.Message.ConversationID)
}

func TestSendMessage_SelfConversation(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)

	_, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:    "alice",
		RecipientID: "alice",
		Content:     "echo",
	})

	assertKind(t, err, chatsvc.KindValidation)
}

func TestSendMessage_ReplyToForeignConversation(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetConversationByID", "conv1").Return(conversationAliceBob(), nil)
	repo.On("GetMessageByID", "msg-other").Return(&models.Message{
		ID:             "msg-other",
		ConversationID: "conv2",
		SenderID:       "bob",
	}, nil)

	_, err := svc.SendMessage(chatsvc.SendMessageInput{
		SenderID:       "alice",
		ConversationID: "conv1",
		Content:        "reply",
		ReplyTo:        "msg-other",
	})

	assertKind(t, err, chatsvc.KindValidation)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything)
}

func TestEditMessage_NonSenderLooksLikeNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "msg1").Return(&models.Message{
		ID:             "msg1",
		ConversationID: "conv1",
		SenderID:       "bob",
		Content:        "original",
	}, nil)

	_, err := svc.EditMessage("msg1", "alice", "hijacked")

	assertKind(t, err, chatsvc.KindNotFound)
	repo.AssertNotCalled(t, "UpdateMessageContent", mock.Anything, mock.Anything)
}

func TestEditMessage_UpdatesContent(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "msg1").Return(&models.Message{
		ID:             "msg1",
		ConversationID: "conv1",
		SenderID:       "alice",
		Content:        "original",
	}, nil)
	repo.On("UpdateMessageContent", "msg1", "fixed").Return(nil)

	msg, err := svc.EditMessage("msg1", "alice", " fixed ")

	assert.NoError(t, err)
	assert.Equal(t, "fixed", msg.Content)
	assert.True(t, msg.Edited)
}

func TestDeleteMessage_NonSenderLooksLikeNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "msg1").Return(&models.Message{
		ID:             "msg1",
		ConversationID: "conv1",
		SenderID:       "bob",
	}, nil)

	_, err := svc.DeleteMessage("msg1", "alice")

	assertKind(t, err, chatsvc.KindNotFound)
	repo.AssertNotCalled(t, "DeleteMessage", mock.Anything)
}

func TestDeleteMessage_MissingLooksLikeNotFound(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "ghost").Return(nil, nil)

	_, err := svc.DeleteMessage("ghost", "alice")

	assertKind(t, err, chatsvc.KindNotFound)
}

// TestAddReaction_DuplicateIsSuccess verifies the double-click case: the
// repository swallows the conflicting insert and the service reports success.
func TestAddReaction_DuplicateIsSuccess(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "msg1").Return(&models.Message{
		ID:             "msg1",
		ConversationID: "conv1",
		SenderID:       "bob",
	}, nil)
	repo.On("IsParticipant", "conv1", "alice").Return(true, nil)
	repo.On("AddReaction", mock.AnythingOfType("*models.Reaction")).Return(nil)

	_, err := svc.AddReaction("msg1", "alice", "👍")
	assert.NoError(t, err)
	_, err = svc.AddReaction("msg1", "alice", "👍")
	assert.NoError(t, err)
}

func TestAddReaction_NotParticipant(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "msg1").Return(&models.Message{
		ID:             "msg1",
		ConversationID: "conv1",
		SenderID:       "bob",
	}, nil)
	repo.On("IsParticipant", "conv1", "mallory").Return(false, nil)

	_, err := svc.AddReaction("msg1", "mallory", "👍")

	assertKind(t, err, chatsvc.KindAuthorization)
	repo.AssertNotCalled(t, "AddReaction", mock.Anything)
}

func TestRemoveReaction_MissingIsNoOp(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetMessageByID", "msg1").Return(&models.Message{
		ID:             "msg1",
		ConversationID: "conv1",
		SenderID:       "bob",
	}, nil)
	repo.On("IsParticipant", "conv1", "alice").Return(true, nil)
	repo.On("RemoveReaction", "msg1", "alice", "👍").Return(nil)

	_, err := svc.RemoveReaction("msg1", "alice", "👍")
	assert.NoError(t, err)
}

func TestMarkConversationRead_Idempotent(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("IsParticipant", "conv1", "alice").Return(true, nil)
	repo.On("MarkConversationRead", "conv1", "alice", mock.AnythingOfType("time.Time")).Return(nil)

	_, err := svc.MarkConversationRead("conv1", "alice")
	assert.NoError(t, err)
	_, err = svc.MarkConversationRead("conv1", "alice")
	assert.NoError(t, err)

	repo.AssertNumberOfCalls(t, "MarkConversationRead", 2)
}

func TestMarkConversationRead_NotParticipant(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("IsParticipant", "conv1", "mallory").Return(false, nil)

	_, err := svc.MarkConversationRead("conv1", "mallory")

	assertKind(t, err, chatsvc.KindAuthorization)
	repo.AssertNotCalled(t, "MarkConversationRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnreadCount(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("UnreadCount", "conv1", "alice").Return(int64(3), nil)

	count, err := svc.UnreadCount("conv1", "alice")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

// TestSendMessage_ConcurrentRetrySameKey sends the same idempotency key from
// two goroutines, with the first send held inside the repository. The second
// must wait for the first and replay its result instead of inserting a
// second row.
func TestSendMessage_ConcurrentRetrySameKey(t *testing.T) {
	repo := new(MockRepository)
	svc := chatsvc.NewService(repo)
	repo.On("GetConversationByID", "conv1").Return(conversationAliceBob(), nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	repo.On("CreateMessage", mock.Anything).Run(func(args mock.Arguments) {
		close(entered)
		<-release
		args.Get(0).(*models.Message).ID = "msg1"
	}).Return(nil)

	input := chatsvc.SendMessageInput{
		SenderID:       "alice",
		ConversationID: "conv1",
		Content:        "hello",
		IdempotencyKey: "key1",
	}

	results := make(chan *chatsvc.SendMessageResult, 2)
	go func() {
		result, err := svc.SendMessage(input)
		assert.NoError(t, err)
		results <- result
	}()
	<-entered

	go func() {
		result, err := svc.SendMessage(input)
		assert.NoError(t, err)
		results <- result
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	first := <-results
	second := <-results
	assert.Equal(t, "msg1", first.Message.ID)
	assert.Equal(t, "msg1", second.Message.ID)
	repo.AssertNumberOfCalls(t, "CreateMessage", 1)
}
