package gateway

import (
	"errors"
	"log"
	"time"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/chatsvc"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

var errInvalidStatus = errors.New("invalid presence status")

// ChatService is the collaborator the handlers call for every persistent
// operation. Implemented by chatsvc.Service; mocked in tests.
type ChatService interface {
	IsParticipant(conversationID, userID string) (bool, error)
	SendMessage(in chatsvc.SendMessageInput) (*chatsvc.SendMessageResult, error)
	EditMessage(messageID, editorID, content string) (*models.Message, error)
	DeleteMessage(messageID, userID string) (*models.Message, error)
	AddReaction(messageID, userID, emoji string) (*models.Message, error)
	RemoveReaction(messageID, userID, emoji string) (*models.Message, error)
	MarkConversationRead(conversationID, readerID string) (time.Time, error)
}

// InboundFrame pairs a decoded client frame with the connection it arrived
// on.
type InboundFrame struct {
	Client Client
	Frame  models.ClientFrame
}

// Gateway is the realtime event router. A single Run goroutine owns the
// Registry and the PresenceTracker: registrations, dispatches and fan-outs
// are serialized through its channels, so the maps underneath need no locks.
//
// Handlers that need the chat service hand the blocking call to a worker
// goroutine and get the rest of their work scheduled back onto the loop via
// TaskCh once the call completes. Broadcasts therefore happen in completion
// order, not arrival order; a slow database call lets a later event's
// broadcast overtake it.
type Gateway struct {
	RegisterCh   chan Client
	UnregisterCh chan Client
	InboundCh    chan InboundFrame
	// TaskCh carries handler continuations back onto the loop after their
	// chat-service call finished.
	TaskCh chan func()

	registry *Registry
	presence *PresenceTracker
	chat     ChatService
}

func NewGateway(chat ChatService, store PresenceStore) *Gateway {
	return &Gateway{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		InboundCh:    make(chan InboundFrame),
		TaskCh:       make(chan func(), 64),
		registry:     NewRegistry(),
		presence:     NewPresenceTracker(store),
		chat:         chat,
	}
}

// Registry exposes the connection registry for tests and diagnostics. Only
// touch it from the loop goroutine.
func (g *Gateway) Registry() *Registry { return g.registry }

// Presence exposes the presence tracker. Only touch it from the loop
// goroutine.
func (g *Gateway) Presence() *PresenceTracker { return g.presence }

// Run is the gateway's event loop. It must be the only goroutine that
// mutates the registry and presence maps.
func (g *Gateway) Run() {
	log.Println("Gateway event loop started.")
	for {
		select {
		case c := <-g.RegisterCh:
			g.handleRegister(c)
		case c := <-g.UnregisterCh:
			g.handleUnregister(c)
		case in := <-g.InboundCh:
			g.dispatch(in.Client, in.Frame)
		case task := <-g.TaskCh:
			task()
		}
	}
}

func (g *Gateway) handleRegister(c Client) {
	wasOffline := !g.registry.IsOnline(c.GetUserID())
	g.registry.Register(c)

	if wasOffline {
		g.broadcastPresence(c.GetUserID(), models.PresenceOnline)
	}
	log.Printf("Connection %s registered for user %s", c.GetConnID(), c.GetUserID())
}

func (g *Gateway) handleUnregister(c Client) {
	wasLast := g.registry.Unregister(c)
	c.Close()

	if wasLast {
		g.registry.LeaveAllRooms(c.GetUserID())
		g.broadcastPresence(c.GetUserID(), models.PresenceOffline)
	}
	log.Printf("Connection %s unregistered for user %s", c.GetConnID(), c.GetUserID())
}

// broadcastPresence transitions the user's status and announces it to every
// connected user. Presence is deliberately not scoped to shared
// conversations.
func (g *Gateway) broadcastPresence(userID string, status models.PresenceStatus) {
	presence, err := g.presence.SetStatus(userID, status)
	if err != nil {
		log.Printf("ERROR: presence transition for user %s: %v", userID, err)
		return
	}
	g.sendToAll(models.EventPresenceUserUpdated, presence)
}

// dispatch routes one inbound frame to its handler. The switch is exhaustive
// over the inbound event set; anything else is rejected back to the sender.
func (g *Gateway) dispatch(c Client, frame models.ClientFrame) {
	switch frame.Event {
	case models.EventConversationJoin:
		g.handleConversationJoin(c, frame.Data)
	case models.EventConversationLeave:
		g.handleConversationLeave(c, frame.Data)
	case models.EventConversationMarkRead:
		g.handleConversationMarkRead(c, frame.Data)
	case models.EventMessageSend:
		g.handleMessageSend(c, frame.Data)
	case models.EventMessageEdit:
		g.handleMessageEdit(c, frame.Data)
	case models.EventMessageDelete:
		g.handleMessageDelete(c, frame.Data)
	case models.EventMessageReact:
		g.handleMessageReact(c, frame.Data)
	case models.EventMessageUnreact:
		g.handleMessageUnreact(c, frame.Data)
	case models.EventTypingStart:
		g.handleTyping(c, frame.Data, models.EventTypingUserStarted)
	case models.EventTypingStop:
		g.handleTyping(c, frame.Data, models.EventTypingUserStopped)
	case models.EventPresenceUpdate:
		g.handlePresenceUpdate(c, frame.Data)
	case models.EventUserLogout:
		g.handleUserLogout(c)
	default:
		g.sendErrorEvent(c, "unknown_event", "unsupported event type")
	}
}

// spawn runs fn on a worker goroutine and schedules the continuation it
// returns back onto the event loop. fn must do the blocking work (database
// access) and nothing else; the continuation runs on the loop and may touch
// the registry, but must re-check any precondition it captured before the
// suspension.
func (g *Gateway) spawn(fn func() func()) {
	go func() {
		if task := fn(); task != nil {
			g.TaskCh <- task
		}
	}()
}

// sendFrame queues one frame on a client. A slow client whose buffer is full
// simply misses the frame; delivery is best-effort and never retried.
func (g *Gateway) sendFrame(c Client, event models.EventType, payload any) {
	select {
	case c.GetSendChannel() <- models.ServerFrame{Event: event, Data: payload}:
	default:
		log.Printf("WARNING: Dropping %s frame for slow connection %s", event, c.GetConnID())
	}
}

// SendToUser delivers the event on every open connection of the user. A user
// with no connections is a silent no-op.
func (g *Gateway) SendToUser(userID string, event models.EventType, payload any) {
	for _, c := range g.registry.ConnectionsOf(userID) {
		g.sendFrame(c, event, payload)
	}
}

// roomSendOptions scopes a room fan-out. excludeConnID skips one originating
// connection (typing echoes); excludeUserID skips every connection of one
// user (read receipts the reader already knows about).
type roomSendOptions struct {
	excludeConnID string
	excludeUserID string
}

func (g *Gateway) sendToRoom(conversationID string, event models.EventType, payload any, opts roomSendOptions) {
	for userID := range g.registry.rooms[conversationID] {
		if userID == opts.excludeUserID {
			continue
		}
		for _, c := range g.registry.ConnectionsOf(userID) {
			if c.GetConnID() == opts.excludeConnID {
				continue
			}
			g.sendFrame(c, event, payload)
		}
	}
}

func (g *Gateway) sendToAll(event models.EventType, payload any) {
	for _, conns := range g.registry.connections {
		for _, c := range conns {
			g.sendFrame(c, event, payload)
		}
	}
}

// sendServiceError converts a chat-service failure into an error event for
// the originating connection only. Unexpected errors are logged and masked
// behind a generic event so a single handler failure never leaks internals
// or takes other sessions down.
func (g *Gateway) sendServiceError(c Client, err error) {
	if svcErr, ok := chatsvc.AsError(err); ok {
		g.sendErrorEvent(c, svcErr.Code, svcErr.Message)
		return
	}
	log.Printf("ERROR: Handler failure for connection %s: %v", c.GetConnID(), err)
	g.sendErrorEvent(c, "internal_error", "something went wrong")
}

func (g *Gateway) sendErrorEvent(c Client, code, message string) {
	g.sendFrame(c, models.EventError, models.ErrorPayload{Error: message, Code: code})
}
