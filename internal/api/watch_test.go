package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWatchURL(t *testing.T) {
	tests := []struct {
		base    string
		want    string
		wantErr bool
	}{
		{"https://api.example.com", "wss://api.example.com/ws/hosted-automations", false},
		{"http://127.0.0.1:8000/", "ws://127.0.0.1:8000/ws/hosted-automations", false},
		{"ftp://x", "", true},
	}
	for _, tt := range tests {
		got, err := NewClient(tt.base).WatchURL()
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("WatchURL(%q) = %q, %v", tt.base, got, err)
		}
	}
}

func TestWatch_ReceivesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != WatchPath {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(Event{Event: EventToggled, ID: 3})
		_ = conn.WriteJSON(Event{Event: EventDeleted, ID: 3})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	defer server.Close()

	events := make(chan Event, 4)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := NewClient(server.URL).Watch(ctx, events); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	close(events)

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	if len(got) != 2 || got[0].Event != EventToggled || got[1].Event != EventDeleted {
		t.Errorf("events = %+v", got)
	}
}

func TestWatch_FeedUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	err := NewClient(server.URL).Watch(context.Background(), make(chan Event))
	if err != ErrFeedUnavailable {
		t.Fatalf("Watch() error = %v, want ErrFeedUnavailable", err)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewClient(server.URL).Watch(ctx, make(chan Event)) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Watch() error = %v, want nil on cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
