package brackets

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	room := TournamentRoom(7)
	member := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	outsider := &Client{Hub: hub, Send: make(chan []byte, 4), Room: TournamentRoom(8)}
	if !hub.Join(member) || !hub.Join(outsider) {
		t.Fatal("hub refused client")
	}
	waitFor(t, func() bool { return hub.RoomSize(room) == 1 })

	hub.BroadcastToRoom(room, WebSocketMessage{Type: EventMatchUpdated, RoomID: room, Payload: map[string]int{"match_id": 3}})

	select {
	case raw := <-member.Send:
		var msg WebSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad message: %v", err)
		}
		if msg.Type != EventMatchUpdated || msg.RoomID != room {
			t.Errorf("got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("member did not receive broadcast")
	}

	select {
	case raw := <-outsider.Send:
		t.Errorf("outsider received %s", raw)
	default:
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), Room: TournamentRoom(1)}
	hub.Join(client)
	waitFor(t, func() bool { return hub.RoomSize(client.Room) == 1 })

	cancel()
	<-stopped

	if _, ok := <-client.Send; ok {
		t.Error("client channel should be closed")
	}
	if hub.Join(&Client{Hub: hub, Send: make(chan []byte), Room: "x"}) {
		t.Error("stopped hub accepted a client")
	}
}
