package gateway

import (
	"log"
	"time"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// PresenceStore is the external collaborator presence records are persisted
// through.
type PresenceStore interface {
	SaveUserPresence(presence models.UserPresence) error
}

// PresenceTracker keeps the in-memory user -> status map. Like the Registry
// it is owned by the event loop goroutine, so transitions caused by a
// disconnect and an explicit client update never overlap; whichever the loop
// processes last wins.
type PresenceTracker struct {
	statuses map[string]models.UserPresence
	store    PresenceStore
}

func NewPresenceTracker(store PresenceStore) *PresenceTracker {
	return &PresenceTracker{
		statuses: make(map[string]models.UserPresence),
		store:    store,
	}
}

// SetStatus validates and records the user's status, then persists the record
// asynchronously through the store. LastSeen is stamped exactly on the
// transition to offline.
func (t *PresenceTracker) SetStatus(userID string, status models.PresenceStatus) (models.UserPresence, error) {
	if !models.ValidPresenceStatus(status) {
		return models.UserPresence{}, errInvalidStatus
	}

	presence := models.UserPresence{UserID: userID, Status: status}
	if status == models.PresenceOffline {
		now := time.Now()
		presence.LastSeen = &now
	}
	t.statuses[userID] = presence

	go func() {
		if err := t.store.SaveUserPresence(presence); err != nil {
			log.Printf("ERROR: Failed to persist presence for user %s: %v", userID, err)
		}
	}()

	return presence, nil
}

// StatusOf returns the tracked presence for the user, defaulting to offline
// for users the tracker has never seen.
func (t *PresenceTracker) StatusOf(userID string) models.UserPresence {
	if presence, ok := t.statuses[userID]; ok {
		return presence
	}
	return models.UserPresence{UserID: userID, Status: models.PresenceOffline}
}
