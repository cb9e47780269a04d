package gateway

import (
	"encoding/json"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/chatsvc"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// handleMessageSend persists a message and fans it out. New messages go to
// both participants' connection sets rather than the room member set: the
// recipient must receive the message on any open connection even if they
// never opened the conversation view.
func (g *Gateway) handleMessageSend(c Client, data json.RawMessage) {
	var payload models.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendErrorEvent(c, "invalid_payload", "malformed message:send payload")
		return
	}

	senderID := c.GetUserID()
	input := chatsvc.SendMessageInput{
		SenderID:       senderID,
		ConversationID: payload.ConversationID,
		RecipientID:    payload.RecipientID,
		Content:        payload.Content,
		MessageType:    payload.MessageType,
		ReplyTo:        payload.ReplyTo,
		IdempotencyKey: payload.IdempotencyKey,
	}

	g.spawn(func() func() {
		result, err := g.chat.SendMessage(input)
		return func() {
			if err != nil {
				g.sendServiceError(c, err)
				return
			}
			if result.ConversationCreated {
				for _, participant := range result.Conversation.Participants() {
					g.SendToUser(participant, models.EventConversationCreated, models.ConversationCreatedPayload{
						Conversation: result.Conversation,
						IsInitiator:  participant == senderID,
					})
				}
			}
			for _, participant := range result.Conversation.Participants() {
				g.SendToUser(participant, models.EventMessageNew, result.Message)
			}
		}
	})
}

func (g *Gateway) handleMessageEdit(c Client, data json.RawMessage) {
	var payload models.EditMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MessageID == "" {
		g.sendErrorEvent(c, "invalid_payload", "messageId is required")
		return
	}

	userID := c.GetUserID()
	g.spawn(func() func() {
		msg, err := g.chat.EditMessage(payload.MessageID, userID, payload.Content)
		return func() {
			if err != nil {
				g.sendServiceError(c, err)
				return
			}
			g.sendToRoom(msg.ConversationID, models.EventMessageEdited, msg, roomSendOptions{})
		}
	})
}

// handleMessageDelete broadcasts the deletion by id only; the removed content
// is never echoed back out.
func (g *Gateway) handleMessageDelete(c Client, data json.RawMessage) {
	var payload models.MessageRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MessageID == "" {
		g.sendErrorEvent(c, "invalid_payload", "messageId is required")
		return
	}

	userID := c.GetUserID()
	g.spawn(func() func() {
		msg, err := g.chat.DeleteMessage(payload.MessageID, userID)
		return func() {
			if err != nil {
				g.sendServiceError(c, err)
				return
			}
			g.sendToRoom(msg.ConversationID, models.EventMessageDeleted, models.MessageDeletedPayload{
				MessageID:      msg.ID,
				ConversationID: msg.ConversationID,
			}, roomSendOptions{})
		}
	})
}

func (g *Gateway) handleMessageReact(c Client, data json.RawMessage) {
	g.handleReaction(c, data, models.EventReactionAdded)
}

func (g *Gateway) handleMessageUnreact(c Client, data json.RawMessage) {
	g.handleReaction(c, data, models.EventReactionRemoved)
}

func (g *Gateway) handleReaction(c Client, data json.RawMessage, event models.EventType) {
	var payload models.ReactionRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MessageID == "" {
		g.sendErrorEvent(c, "invalid_payload", "messageId is required")
		return
	}

	userID := c.GetUserID()
	g.spawn(func() func() {
		var msg *models.Message
		var err error
		if event == models.EventReactionAdded {
			msg, err = g.chat.AddReaction(payload.MessageID, userID, payload.Emoji)
		} else {
			msg, err = g.chat.RemoveReaction(payload.MessageID, userID, payload.Emoji)
		}
		return func() {
			if err != nil {
				g.sendServiceError(c, err)
				return
			}
			g.sendToRoom(msg.ConversationID, event, models.ReactionEventPayload{
				MessageID:      msg.ID,
				ConversationID: msg.ConversationID,
				UserID:         userID,
				Emoji:          payload.Emoji,
			}, roomSendOptions{})
		}
	})
}
