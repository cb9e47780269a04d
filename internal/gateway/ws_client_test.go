package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/pavelvachaaa/pwa-2025-sub000/internal/gateway"
	"github.com/pavelvachaaa/pwa-2025-sub000/internal/models"
)

// dialTestClient upgrades a test-server connection into a registered
// WebSocketClient and returns the caller's side of the socket.
func dialTestClient(t *testing.T, gw *gateway.Gateway, userID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := gateway.NewWebSocketClient(userID, conn, gw)
		gw.RegisterCh <- client
		client.Run()
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestWebSocketClient_MalformedFrameReportsError verifies a frame that is not
// valid JSON is answered with an error event instead of being silently
// dropped.
func TestWebSocketClient_MalformedFrameReportsError(t *testing.T) {
	gw := startGateway(new(MockChatService))
	conn := dialTestClient(t, gw, "alice")

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("no error event before deadline: %v", err)
		}

		var frame struct {
			Event models.EventType    `json:"event"`
			Data  models.ErrorPayload `json:"data"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.Fatalf("decode server frame: %v", err)
		}
		if frame.Event != models.EventError {
			// The register broadcast may arrive first.
			continue
		}
		assert.Equal(t, "invalid_payload", frame.Data.Code)
		return
	}
}
