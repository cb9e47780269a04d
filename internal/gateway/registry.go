package gateway

// Registry is the bidirectional mapping between users, their open
// connections, and the conversation rooms they currently have open. It is
// owned by the gateway's event loop goroutine and carries no lock: every
// mutation and read happens as a non-overlapping step of that loop.
// All operations have set semantics and repeating a call changes nothing.
type Registry struct {
	// connections indexes userID -> connID -> client.
	connections map[string]map[string]Client
	// rooms indexes conversationID -> set of member userIDs.
	rooms map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]map[string]Client),
		rooms:       make(map[string]map[string]struct{}),
	}
}

// Register adds the connection to its user's connection set. It does not
// touch presence; the caller decides whether this was the user's first
// connection.
func (r *Registry) Register(c Client) {
	conns := r.connections[c.GetUserID()]
	if conns == nil {
		conns = make(map[string]Client)
		r.connections[c.GetUserID()] = conns
	}
	conns[c.GetConnID()] = c
}

// Unregister removes the connection and reports whether it was the user's
// last one, signalling the caller to mark the user offline and clear their
// room memberships. Removing a connection that is not tracked returns false.
func (r *Registry) Unregister(c Client) (wasLast bool) {
	conns := r.connections[c.GetUserID()]
	if conns == nil {
		return false
	}
	if _, ok := conns[c.GetConnID()]; !ok {
		return false
	}
	delete(conns, c.GetConnID())
	if len(conns) == 0 {
		delete(r.connections, c.GetUserID())
		return true
	}
	return false
}

// JoinRoom adds the user to the conversation's member set.
func (r *Registry) JoinRoom(conversationID, userID string) {
	members := r.rooms[conversationID]
	if members == nil {
		members = make(map[string]struct{})
		r.rooms[conversationID] = members
	}
	members[userID] = struct{}{}
}

// LeaveRoom removes the user from the conversation's member set. A room left
// with no members is deleted outright so the map never holds empty sets.
func (r *Registry) LeaveRoom(conversationID, userID string) {
	members, ok := r.rooms[conversationID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.rooms, conversationID)
	}
}

// LeaveAllRooms removes the user from every room they are a member of. Used
// when the user's last connection closes.
func (r *Registry) LeaveAllRooms(userID string) {
	for conversationID, members := range r.rooms {
		if _, ok := members[userID]; !ok {
			continue
		}
		delete(members, userID)
		if len(members) == 0 {
			delete(r.rooms, conversationID)
		}
	}
}

// IsOnline reports whether the user has at least one open connection.
func (r *Registry) IsOnline(userID string) bool {
	return len(r.connections[userID]) > 0
}

// IsMember reports whether the user currently has the conversation open.
func (r *Registry) IsMember(conversationID, userID string) bool {
	_, ok := r.rooms[conversationID][userID]
	return ok
}

// OnlineMembersOf returns the room members that currently have at least one
// open connection.
func (r *Registry) OnlineMembersOf(conversationID string) []string {
	members := r.rooms[conversationID]
	if len(members) == 0 {
		return nil
	}
	out := make([]string, 0, len(members))
	for userID := range members {
		if r.IsOnline(userID) {
			out = append(out, userID)
		}
	}
	return out
}

// ConnectionsOf returns all open connections of the user.
func (r *Registry) ConnectionsOf(userID string) []Client {
	conns := r.connections[userID]
	if len(conns) == 0 {
		return nil
	}
	out := make([]Client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}
