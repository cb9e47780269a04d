package gateway

import "github.com/pavelvachaaa/pwa-2025-sub000/internal/models"

// Client is the interface for one authenticated realtime connection. It
// abstracts the underlying transport so the gateway and the tests can manage
// connections uniformly.
type Client interface {
	// GetUserID returns the user the connection was authenticated as. It is
	// fixed for the connection's whole lifetime.
	GetUserID() string
	// GetConnID returns the unique identifier of this connection. A user on
	// several devices owns several connection ids.
	GetConnID() string

	// GetSendChannel returns the channel the gateway delivers outbound
	// frames on. Delivery is best-effort; a full buffer drops the frame.
	GetSendChannel() chan<- models.ServerFrame

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's send side. It is safe to call more
	// than once.
	Close()
}
