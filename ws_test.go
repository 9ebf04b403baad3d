package main

import (
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)
	return server, env
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: payload}))
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, map[string]interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return env.Event, data
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var env Envelope
	err := conn.ReadJSON(&env)
	assert.Error(t, err, "expected no frame, got %s", env.Event)
}

// joins are racy against sends from another connection, give the server a
// moment to process them
func settle() {
	time.Sleep(100 * time.Millisecond)
}

func TestMessageRelayBetweenRoomMembers(t *testing.T) {
	server, _ := newChatServer(t)
	a := dialWS(t, server)
	b := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	sendEvent(t, b, "join_room", "r1")
	settle()

	sendEvent(t, a, "send_message", map[string]interface{}{"room": "r1", "text": "hi"})

	event, data := readEvent(t, b)
	assert.Equal(t, "receive_message", event)
	assert.Equal(t, "hi", data["text"])
	assert.Equal(t, "r1", data["room"])

	// The sender does not get its own message back.
	assertSilent(t, a)
}

func TestMessageNotRelayedAcrossRooms(t *testing.T) {
	server, _ := newChatServer(t)
	a := dialWS(t, server)
	b := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	sendEvent(t, b, "join_room", "r2")
	settle()

	sendEvent(t, a, "send_message", map[string]interface{}{"room": "r1", "text": "hi"})

	assertSilent(t, b)
}

func TestMessageRelayedVerbatim(t *testing.T) {
	server, _ := newChatServer(t)
	a := dialWS(t, server)
	b := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	sendEvent(t, b, "join_room", "r1")
	settle()

	payload := map[string]interface{}{
		"room":   "r1",
		"text":   "hello",
		"author": "alice",
		"nested": map[string]interface{}{"k": "v"},
	}
	sendEvent(t, a, "send_message", payload)

	_, data := readEvent(t, b)
	assert.Equal(t, payload, data)
}

func TestFileUploadRelayAndEcho(t *testing.T) {
	server, _ := newChatServer(t)
	a := dialWS(t, server)
	b := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	sendEvent(t, b, "join_room", "r1")
	settle()

	sendEvent(t, a, "send_file", FilePayload{
		Name:     "cat.png",
		MimeType: "image/png",
		Buffer:   base64.StdEncoding.EncodeToString([]byte("png bytes")),
		Room:     "r1",
	})

	event, data := readEvent(t, b)
	assert.Equal(t, "receive_message", event)
	assert.Equal(t, "image", data["type"])
	assert.Equal(t, "r1", data["room"])
	assert.Contains(t, data["message"], "https://blob.test/chat_uploads/")
	_, hasSelf := data["self"]
	assert.False(t, hasSelf)

	event, data = readEvent(t, a)
	assert.Equal(t, "receive_message", event)
	assert.Equal(t, true, data["self"])
	assert.Equal(t, "image", data["type"])

	// Exactly one copy each.
	assertSilent(t, a)
	assertSilent(t, b)
}

func TestFileUploadFailureNotifiesSenderOnly(t *testing.T) {
	server, env := newChatServer(t)
	env.store.fail = true
	a := dialWS(t, server)
	b := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	sendEvent(t, b, "join_room", "r1")
	settle()

	sendEvent(t, a, "send_file", FilePayload{
		Name:     "cat.png",
		MimeType: "image/png",
		Buffer:   base64.StdEncoding.EncodeToString([]byte("png bytes")),
		Room:     "r1",
	})

	event, _ := readEvent(t, a)
	assert.Equal(t, "upload_error", event)
	assertSilent(t, b)
}

func TestFileUploadBadBuffer(t *testing.T) {
	server, _ := newChatServer(t)
	a := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	settle()

	sendEvent(t, a, "send_file", FilePayload{
		Name:     "cat.png",
		MimeType: "image/png",
		Buffer:   "not base64!!!",
		Room:     "r1",
	})

	event, _ := readEvent(t, a)
	assert.Equal(t, "upload_error", event)
}

func TestDisconnectedPeerReceivesNothing(t *testing.T) {
	server, _ := newChatServer(t)
	a := dialWS(t, server)
	b := dialWS(t, server)

	sendEvent(t, a, "join_room", "r1")
	sendEvent(t, b, "join_room", "r1")
	settle()

	require.NoError(t, b.Close())
	settle()

	// Delivery to the departed member fails silently; nobody else is hurt.
	sendEvent(t, a, "send_message", map[string]interface{}{"room": "r1", "text": "anyone?"})
	assertSilent(t, a)
}
