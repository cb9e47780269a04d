package chatsvc

import (
	"fmt"
	"strings"
	"time"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/config"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/storage"
)

// Service enforces the message lifecycle rules on top of the repository.
type Service struct {
	repo storage.Repository
	idem *IdempotencyCache
}

func NewService(repo storage.Repository) *Service {
	return &Service{
		repo: repo,
		idem: NewIdempotencyCache(config.IdempotencyTTL),
	}
}

// StartSweeper starts the idempotency cache sweep; stop closes it down.
func (s *Service) StartSweeper(stop <-chan struct{}) {
	s.idem.StartSweeper(config.IdempotencySweepInterval, stop)
}

// SendMessageInput carries one send request. Exactly one of ConversationID
// and RecipientID must be set; RecipientID opens the conversation on first
// contact.
type SendMessageInput struct {
	SenderID       string
	ConversationID string
	RecipientID    string
	Content        string
	MessageType    string
	ReplyTo        string
	IdempotencyKey string
}

// SendMessageResult is what a completed send produced. ConversationCreated is
// true only on the call that actually created the conversation, never on an
// idempotent replay.
type SendMessageResult struct {
	Message             *models.Message
	Conversation        *models.Conversation
	ConversationCreated bool
}

// SendMessage validates, persists and returns a new message. A repeated call
// with the same idempotency key returns the original result without touching
// the store.
func (s *Service) SendMessage(in SendMessageInput) (*SendMessageResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, NewValidationError("empty_content", "message content must not be empty")
	}

	msgType := in.MessageType
	if msgType == "" {
		msgType = models.MessageTypeText
	}
	if !models.ValidMessageType(msgType) {
		return nil, NewValidationError("invalid_message_type", "unknown message type")
	}

	if in.IdempotencyKey != "" {
		// A retry arriving while the original send is still in flight waits
		// for it and replays its result; both misses inserting their own row
		// would defeat the key.
		for {
			if cached, ok := s.idem.Get(in.SenderID, in.IdempotencyKey); ok {
				return cached, nil
			}
			release, inflight := s.idem.TryBegin(in.SenderID, in.IdempotencyKey)
			if release != nil {
				defer release()
				break
			}
			<-inflight
		}
	}

	conv, created, err := s.resolveConversation(in)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Content:        content,
		Type:           msgType,
	}

	if in.ReplyTo != "" {
		parent, err := s.repo.GetMessageByID(in.ReplyTo)
		if err != nil {
			return nil, fmt.Errorf("lookup reply target: %w", err)
		}
		if parent == nil || parent.ConversationID != conv.ID {
			return nil, NewValidationError("invalid_reply_to", "replied-to message is not in this conversation")
		}
		msg.ReplyToID = &parent.ID
	}

	if err := s.repo.CreateMessage(msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	result := &SendMessageResult{Message: msg, Conversation: conv, ConversationCreated: created}

	if in.IdempotencyKey != "" {
		// The replay must return the same message, but it must not
		// re-announce the conversation as freshly created.
		replay := *result
		replay.ConversationCreated = false
		s.idem.Put(in.SenderID, in.IdempotencyKey, &replay)
	}

	return result, nil
}

func (s *Service) resolveConversation(in SendMessageInput) (*models.Conversation, bool, error) {
	if in.ConversationID != "" {
		conv, err := s.repo.GetConversationByID(in.ConversationID)
		if err != nil {
			return nil, false, fmt.Errorf("lookup conversation: %w", err)
		}
		if conv == nil {
			return nil, false, NewNotFoundError("conversation_not_found", "conversation does not exist")
		}
		if !conv.HasParticipant(in.SenderID) {
			return nil, false, NewAuthorizationError("not_participant", "sender is not a participant of this conversation")
		}
		return conv, false, nil
	}

	if in.RecipientID == "" {
		return nil, false, NewValidationError("missing_target", "conversationId or recipientId is required")
	}
	if in.RecipientID == in.SenderID {
		return nil, false, NewValidationError("self_conversation", "cannot open a conversation with yourself")
	}

	conv, created, err := s.repo.GetOrCreateConversation(in.SenderID, in.RecipientID)
	if err != nil {
		return nil, false, fmt.Errorf("get or create conversation: %w", err)
	}
	return conv, created, nil
}

// EditMessage changes a message's content. Only the sender may edit;
// a missing message and a foreign message fail the same way.
func (s *Service) EditMessage(messageID, editorID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, NewValidationError("empty_content", "message content must not be empty")
	}

	msg, err := s.ownedMessage(messageID, editorID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateMessageContent(msg.ID, content); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}

	msg.Content = content
	msg.Edited = true
	msg.UpdatedAt = time.Now()
	return msg, nil
}

// DeleteMessage removes a message for good. Only the sender may delete.
// The removed record is returned so the caller knows which room to notify.
func (s *Service) DeleteMessage(messageID, userID string) (*models.Message, error) {
	msg, err := s.ownedMessage(messageID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteMessage(msg.ID); err != nil {
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return msg, nil
}

// ownedMessage loads the message and checks sender ownership. Absence and
// foreign ownership collapse into the same not-found error on purpose.
func (s *Service) ownedMessage(messageID, userID string) (*models.Message, error) {
	msg, err := s.repo.GetMessageByID(messageID)
	if err != nil {
		return nil, fmt.Errorf("lookup message: %w", err)
	}
	if msg == nil || msg.SenderID != userID {
		return nil, NewNotFoundError("message_not_found", "message does not exist")
	}
	return msg, nil
}

// AddReaction attaches an emoji to a message. Reacting again with the same
// emoji is treated as success, not an error.
func (s *Service) AddReaction(messageID, userID, emoji string) (*models.Message, error) {
	msg, err := s.reactableMessage(messageID, userID, emoji)
	if err != nil {
		return nil, err
	}

	reaction := &models.Reaction{MessageID: msg.ID, UserID: userID, Emoji: emoji}
	if err := s.repo.AddReaction(reaction); err != nil {
		return nil, fmt.Errorf("add reaction: %w", err)
	}
	return msg, nil
}

// RemoveReaction detaches an emoji from a message. Removing a reaction that
// was never added is a no-op.
func (s *Service) RemoveReaction(messageID, userID, emoji string) (*models.Message, error) {
	msg, err := s.reactableMessage(messageID, userID, emoji)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveReaction(msg.ID, userID, emoji); err != nil {
		return nil, fmt.Errorf("remove reaction: %w", err)
	}
	return msg, nil
}

func (s *Service) reactableMessage(messageID, userID, emoji string) (*models.Message, error) {
	if emoji == "" {
		return nil, NewValidationError("empty_emoji", "emoji must not be empty")
	}

	msg, err := s.repo.GetMessageByID(messageID)
	if err != nil {
		return nil, fmt.Errorf("lookup message: %w", err)
	}
	if msg == nil {
		return nil, NewNotFoundError("message_not_found", "message does not exist")
	}

	ok, err := s.repo.IsParticipant(msg.ConversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participant: %w", err)
	}
	if !ok {
		return nil, NewAuthorizationError("not_participant", "user is not a participant of this conversation")
	}
	return msg, nil
}

// MarkConversationRead marks every message the reader has not sent as read,
// in one batch. Calling it twice changes nothing the second time.
func (s *Service) MarkConversationRead(conversationID, readerID string) (time.Time, error) {
	ok, err := s.IsParticipant(conversationID, readerID)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, NewAuthorizationError("not_participant", "reader is not a participant of this conversation")
	}

	readAt := time.Now()
	if err := s.repo.MarkConversationRead(conversationID, readerID, readAt); err != nil {
		return time.Time{}, fmt.Errorf("mark conversation read: %w", err)
	}
	return readAt, nil
}

// IsParticipant reports whether userID belongs to the conversation. A
// nonexistent conversation simply yields false.
func (s *Service) IsParticipant(conversationID, userID string) (bool, error) {
	ok, err := s.repo.IsParticipant(conversationID, userID)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return ok, nil
}

// GetConversationByID exposes the repository lookup to the gateway.
func (s *Service) GetConversationByID(id string) (*models.Conversation, error) {
	return s.repo.GetConversationByID(id)
}

// GetMessageByID exposes the repository lookup to the gateway.
func (s *Service) GetMessageByID(id string) (*models.Message, error) {
	return s.repo.GetMessageByID(id)
}

// UnreadCount reports the reader's unread message count for a conversation.
func (s *Service) UnreadCount(conversationID, userID string) (int64, error) {
	return s.repo.UnreadCount(conversationID, userID)
}
