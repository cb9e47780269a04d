package gateway

import (
	"encoding/json"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// handleTyping relays a typing indicator to the room, excluding the
// originating connection so the sender does not see their own echo. The
// server keeps no typing state and runs no timers; a missing stop is the
// client's problem to time out.
func (g *Gateway) handleTyping(c Client, data json.RawMessage, event models.EventType) {
	var payload models.ConversationRefPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ConversationID == "" {
		g.sendErrorEvent(c, "invalid_payload", "conversationId is required")
		return
	}

	g.sendToRoom(payload.ConversationID, event, models.TypingEventPayload{
		ConversationID: payload.ConversationID,
		UserID:         c.GetUserID(),
	}, roomSendOptions{excludeConnID: c.GetConnID()})
}
