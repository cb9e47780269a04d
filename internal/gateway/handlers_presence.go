package gateway

import (
	"encoding/json"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// handlePresenceUpdate applies an explicit client-issued status change. It
// runs entirely on the loop, so it cannot interleave with a concurrent
// disconnect transition; the later of the two simply wins.
func (g *Gateway) handlePresenceUpdate(c Client, data json.RawMessage) {
	var payload models.PresenceUpdatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendErrorEvent(c, "invalid_payload", "malformed presence:update payload")
		return
	}

	presence, err := g.presence.SetStatus(c.GetUserID(), payload.Status)
	if err != nil {
		g.sendErrorEvent(c, "invalid_status", "status must be online, away or offline")
		return
	}
	g.sendToAll(models.EventPresenceUserUpdated, presence)
}

// handleUserLogout takes the user fully offline: presence flips with
// last_seen set, room memberships are cleared, and every connection of the
// user is closed so a stale tab cannot silently keep the session alive.
func (g *Gateway) handleUserLogout(c Client) {
	userID := c.GetUserID()

	conns := g.registry.ConnectionsOf(userID)
	for _, conn := range conns {
		g.registry.Unregister(conn)
	}
	g.registry.LeaveAllRooms(userID)
	g.broadcastPresence(userID, models.PresenceOffline)

	for _, conn := range conns {
		conn.Close()
	}
}
