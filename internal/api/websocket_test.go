package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/simdash/internal/infrastructure/config"
	"github.com/nerrad567/simdash/internal/infrastructure/logging"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_BroadcastToSubscribed(t *testing.T) {
	hub := testHub(t)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{EventTelemetrySample: {}},
	}
	hub.Register(client)

	hub.Broadcast(EventTelemetrySample, map[string]any{"device_id": "d1"})

	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		if err := json.Unmarshal(msg, &wsMsg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if wsMsg.Type != WSTypeEvent || wsMsg.EventType != EventTelemetrySample {
			t.Errorf("message = %s/%s, want event/%s", wsMsg.Type, wsMsg.EventType, EventTelemetrySample)
		}
	case <-time.After(time.Second):
		t.Error("timed out waiting for broadcast message")
	}
}

func TestHub_NoMessageForUnsubscribed(t *testing.T) {
	hub := testHub(t)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: map[string]struct{}{EventNotification: {}},
	}
	hub.Register(client)

	hub.Broadcast(EventTelemetrySample, map[string]any{"device_id": "d1"})

	select {
	case <-client.send:
		t.Error("unsubscribed client should not receive message")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := testHub(t)

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, 1),
		subscriptions: map[string]struct{}{EventTelemetrySample: {}},
	}
	hub.Register(client)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Broadcast(EventTelemetrySample, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full client buffer")
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub := testHub(t)

	if hub.ClientCount() != 0 {
		t.Errorf("initial client count = %d, want 0", hub.ClientCount())
	}

	client := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	hub.Register(client)
	if hub.ClientCount() != 1 {
		t.Errorf("after register count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("after unregister count = %d, want 0", hub.ClientCount())
	}

	// A second unregister must not close the channel twice.
	hub.Unregister(client)
}

// connectWebSocket starts the router on a test listener and dials /api/v1/ws.
func connectWebSocket(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v (resp: %v)", err, resp)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	return msg
}

func TestWebSocket_SubscribeAndReceive(t *testing.T) {
	srv, _, _ := testServer(t)
	ws := connectWebSocket(t, srv)

	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: []string{EventNotification, EventSimulationState}},
	}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	response := readMessage(t, ws)
	if response.Type != WSTypeResponse || response.ID != "sub-1" {
		t.Fatalf("response = %s/%s, want response/sub-1", response.Type, response.ID)
	}
	if srv.hub.ClientCount() != 1 {
		t.Errorf("hub client count = %d, want 1", srv.hub.ClientCount())
	}

	srv.notes.Info("Simulation stopped", "sim-1")

	event := readMessage(t, ws)
	if event.Type != WSTypeEvent || event.EventType != EventNotification {
		t.Fatalf("event = %s/%s, want event/%s", event.Type, event.EventType, EventNotification)
	}
	payload, ok := event.Payload.(map[string]any)
	if !ok || payload["title"] != "Simulation stopped" || payload["message"] != "sim-1" {
		t.Errorf("payload = %v, want the notification", event.Payload)
	}
}

func TestWebSocket_Unsubscribe(t *testing.T) {
	srv, _, _ := testServer(t)
	ws := connectWebSocket(t, srv)

	for _, msg := range []WSMessage{
		{Type: WSTypeSubscribe, ID: "1", Payload: WSSubscribePayload{Channels: []string{EventNotification}}},
		{Type: WSTypeUnsubscribe, ID: "2", Payload: WSSubscribePayload{Channels: []string{EventNotification}}},
		{Type: WSTypePing, ID: "3"},
	} {
		if err := ws.WriteJSON(msg); err != nil {
			t.Fatalf("write %s: %v", msg.Type, err)
		}
		if got := readMessage(t, ws); got.ID != msg.ID {
			t.Fatalf("reply id = %q, want %q", got.ID, msg.ID)
		}
	}

	srv.notes.Info("ignored", "")
	if err := ws.WriteJSON(WSMessage{Type: WSTypePing, ID: "4"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	// The pong arrives with no notification ahead of it.
	got := readMessage(t, ws)
	if got.Type != WSTypePong || got.ID != "4" {
		t.Errorf("message = %s/%s, want pong/4", got.Type, got.ID)
	}
}

func TestWebSocket_UnknownMessageType(t *testing.T) {
	srv, _, _ := testServer(t)
	ws := connectWebSocket(t, srv)

	if err := ws.WriteJSON(WSMessage{Type: "launch", ID: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := readMessage(t, ws); got.Type != WSTypeError || got.ID != "x" {
		t.Errorf("reply = %s/%s, want error/x", got.Type, got.ID)
	}
}
