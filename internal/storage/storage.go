package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// Repository is the persistence surface the chat service and the gateway
// depend on. Lookups return (nil, nil) when the record is absent so callers
// can distinguish "not found" from a database failure.
type Repository interface {
	GetConversationByID(id string) (*models.Conversation, error)
	GetConversationByPair(userA, userB string) (*models.Conversation, error)
	GetOrCreateConversation(userA, userB string) (conv *models.Conversation, created bool, err error)
	IsParticipant(conversationID, userID string) (bool, error)

	CreateMessage(msg *models.Message) error
	GetMessageByID(id string) (*models.Message, error)
	UpdateMessageContent(id, content string) error
	DeleteMessage(id string) error

	AddReaction(reaction *models.Reaction) error
	RemoveReaction(messageID, userID, emoji string) error

	MarkConversationRead(conversationID, readerID string, readAt time.Time) error
	UnreadCount(conversationID, userID string) (int64, error)

	SaveUserPresence(presence models.UserPresence) error
	GetUserPresence(userID string) (*models.UserPresence, error)
}

const uniqueViolation = "23505"

// Service implements Repository on PostgreSQL (gorm) with presence records
// kept in Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) GetConversationByID(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.DB.Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversationByPair looks up the conversation for two users regardless of
// the order the ids are passed in.
func (s *Service) GetConversationByPair(userA, userB string) (*models.Conversation, error) {
	a, b := models.CanonicalPair(userA, userB)

	var conv models.Conversation
	err := s.DB.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetOrCreateConversation returns the existing conversation for the pair or
// creates it. A concurrent create racing on the unique pair index falls back
// to fetching the winner's row.
func (s *Service) GetOrCreateConversation(userA, userB string) (*models.Conversation, bool, error) {
	existing, err := s.GetConversationByPair(userA, userB)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	a, b := models.CanonicalPair(userA, userB)
	conv := models.Conversation{UserAID: a, UserBID: b}
	if err := s.DB.Create(&conv).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			winner, ferr := s.GetConversationByPair(a, b)
			if ferr != nil {
				return nil, false, ferr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return &conv, true, nil
}

func (s *Service) IsParticipant(conversationID, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) CreateMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for conversation %s: %v", msg.ConversationID, err)
		return err
	}
	return nil
}

func (s *Service) GetMessageByID(id string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("id = ?", id).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) UpdateMessageContent(id, content string) error {
	return s.DB.Model(&models.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content": content,
			"edited":  true,
		}).Error
}

// DeleteMessage removes the message row and its reactions and read marks.
// Hard removal, nothing is retained.
func (s *Service) DeleteMessage(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", id).Delete(&models.ReadStatus{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Message{}).Error
	})
}

// AddReaction inserts the (message, user, emoji) row. A duplicate insert hits
// the unique index and is dropped, which keeps double-click retries harmless.
func (s *Service) AddReaction(reaction *models.Reaction) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}, {Name: "emoji"}},
		DoNothing: true,
	}).Create(reaction).Error
}

// RemoveReaction deletes the row if it exists; removing a reaction that was
// never added is a no-op.
func (s *Service) RemoveReaction(messageID, userID, emoji string) error {
	return s.DB.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.Reaction{}).Error
}

// MarkConversationRead inserts a read mark for every message in the
// conversation that was not sent by the reader, in one statement. Rows that
// already exist are skipped by the unique index, so repeating the call
// changes nothing.
func (s *Service) MarkConversationRead(conversationID, readerID string, readAt time.Time) error {
	rawSQL := `
        INSERT INTO read_statuses (id, message_id, user_id, read_at)
        SELECT gen_random_uuid(), m.id, ?, ?
        FROM messages m
        WHERE m.conversation_id = ? AND m.sender_id <> ?
        ON CONFLICT (message_id, user_id) DO NOTHING
    `
	return s.DB.Exec(rawSQL, readerID, readAt, conversationID, readerID).Error
}

// UnreadCount returns how many messages in the conversation the user has not
// read yet (their own messages never count as unread).
func (s *Service) UnreadCount(conversationID, userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ?", conversationID, userID).
		Where("id NOT IN (?)", s.DB.Model(&models.ReadStatus{}).
			Select("message_id").
			Where("user_id = ?", userID)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func presenceKey(userID string) string { return "presence:" + userID }

// SaveUserPresence writes the presence record to Redis. Presence is process
// lifetime state, so the key carries no TTL and is simply overwritten on the
// next transition.
func (s *Service) SaveUserPresence(presence models.UserPresence) error {
	data, err := json.Marshal(presence)
	if err != nil {
		return err
	}
	return s.Redis.Set(s.Ctx, presenceKey(presence.UserID), data, 0).Err()
}

func (s *Service) GetUserPresence(userID string) (*models.UserPresence, error) {
	data, err := s.Redis.Get(s.Ctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var presence models.UserPresence
	if err := json.Unmarshal([]byte(data), &presence); err != nil {
		return nil, err
	}
	return &presence, nil
}
