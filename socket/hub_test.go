package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	var msg WSMessage
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &msg), "Failed to unmarshal WSMessage JSON")
	return msg
}

func dial(t *testing.T, wsURL, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id="+userID, nil)
	require.NoError(t, err, "Client %s failed to connect", userID)

	hello := readMessage(t, conn)
	require.Equal(t, ConnectedType, hello.Type)
	require.Equal(t, userID, hello.UserID)
	return conn
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHubDeliversOnlyToOwnerRoom(t *testing.T) {
	hub, wsURL := startHub(t)

	// Two tabs for user1, one for user2.
	tab1 := dial(t, wsURL, "user1")
	defer tab1.Close()
	tab2 := dial(t, wsURL, "user1")
	defer tab2.Close()
	other := dial(t, wsURL, "user2")
	defer other.Close()

	assert.Equal(t, 2, hub.ClientCount("user1"))
	assert.Equal(t, 1, hub.ClientCount("user2"))

	payload := `{"id":"doc-1","descendants":["doc-2"]}`
	hub.Publish(WSMessage{
		Type:    DocumentArchivedType,
		DocID:   "doc-1",
		UserID:  "user1",
		Payload: json.RawMessage(payload),
	})

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		msg := readMessage(t, conn)
		assert.Equal(t, DocumentArchivedType, msg.Type)
		assert.Equal(t, "doc-1", msg.DocID)
		assert.JSONEq(t, payload, string(msg.Payload))
	}

	// user2 must not see user1's events.
	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := other.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub, wsURL := startHub(t)

	conn := dial(t, wsURL, "user1")
	require.Equal(t, 1, hub.ClientCount("user1"))

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return hub.ClientCount("user1") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestPublishAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Publish(WSMessage{Type: DocumentCreatedType, UserID: "user1"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after the hub stopped")
	}
}
