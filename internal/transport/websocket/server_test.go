package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r)
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[4:]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	count := len(hub.connections)
	hub.mu.RUnlock()

	if count != 1 {
		t.Fatalf("expected 1 connection, got %d", count)
	}

	conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	count = len(hub.connections)
	hub.mu.RUnlock()

	if count != 0 {
		t.Fatalf("expected 0 connections after close, got %d", count)
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r)
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[4:]

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("failed to connect client %d: %v", i, err)
		}
		defer conn.Close()
		conns = append(conns, conn)
	}

	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(&Message{
		Type:    "payment_collected",
		Channel: "payments",
		Data:    map[string]any{"loan_id": float64(1), "payment_id": float64(10)},
	})

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got Message
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		if got.Type != "payment_collected" {
			t.Errorf("client %d: type = %q, want payment_collected", i, got.Type)
		}
		if got.Channel != "payments" {
			t.Errorf("client %d: channel = %q, want payments", i, got.Channel)
		}
	}
}
