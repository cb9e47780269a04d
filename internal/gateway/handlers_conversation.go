package gateway

import (
	"encoding/json"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// handleConversationJoin subscribes the connection's user to a conversation
// room. The chat service confirms participation before the registry is
// touched; an unauthorized join never reaches the member set.
func (g *Gateway) handleConversationJoin(c Client, data json.RawMessage) {
	var payload models.ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendErrorEvent(c, "invalid_payload", "conversationId is required")
		return
	}

	userID := c.GetUserID()
	conversationID := payload.ConversationID

	g.spawn(func() func() {
		ok, err := g.chat.IsParticipant(conversationID, userID)
		return func() {
			if err != nil {
				g.sendServiceError(c, err)
				return
			}
			if !ok {
				g.sendErrorEvent(c, "not_participant", "you are not a participant of this conversation")
				return
			}
			// The user may have fully disconnected while the check ran;
			// joining a room for a gone user would leave a dangling
			// membership until nobody cleans it up.
			if !g.registry.IsOnline(userID) {
				return
			}
			g.registry.JoinRoom(conversationID, userID)
			g.sendFrame(c, models.EventConversationJoined, models.ConversationJoinedPayload{
				ConversationID: conversationID,
			})
		}
	})
}

// handleConversationLeave drops the room membership. Purely in-memory, no
// suspension.
func (g *Gateway) handleConversationLeave(c Client, data json.RawMessage) {
	var payload models.ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendErrorEvent(c, "invalid_payload", "conversationId is required")
		return
	}
	g.registry.LeaveRoom(payload.ConversationID, c.GetUserID())
}

// handleConversationMarkRead batch-marks the conversation read and tells the
// rest of the room. The reader's own connections already know, so the
// fan-out excludes the whole user, not just the originating connection.
func (g *Gateway) handleConversationMarkRead(c Client, data json.RawMessage) {
	var payload models.ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendErrorEvent(c, "invalid_payload", "conversationId is required")
		return
	}

	userID := c.GetUserID()
	conversationID := payload.ConversationID

	g.spawn(func() func() {
		readAt, err := g.chat.MarkConversationRead(conversationID, userID)
		return func() {
			if err != nil {
				g.sendServiceError(c, err)
				return
			}
			g.sendToRoom(conversationID, models.EventConversationReadByUser, models.ReadByUserPayload{
				ConversationID: conversationID,
				UserID:         userID,
				ReadAt:         readAt,
			}, roomSendOptions{excludeUserID: userID})
		}
	})
}
