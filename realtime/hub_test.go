package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func waitForClients(t *testing.T, h *Hub, room string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for h.ClientCount(room) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients in %s, got %d", want, room, h.ClientCount(room))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesOnlyRoomMembers(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	inRoom := NewClient(h, nil, FacilityRoom(1))
	elsewhere := NewClient(h, nil, FacilityRoom(2))
	h.Register <- inRoom
	h.Register <- elsewhere
	waitForClients(t, h, FacilityRoom(1), 1)

	h.BroadcastToRoom(FacilityRoom(1), Message{Type: TypeAvailabilityChanged, Payload: map[string]string{"date": "2025-03-14"}})

	select {
	case raw := <-inRoom.Send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unexpected payload: %v", err)
		}
		if msg.Type != TypeAvailabilityChanged || msg.RoomID != "facility:1" {
			t.Fatalf("unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected message in room facility:1")
	}

	select {
	case <-elsewhere.Send:
		t.Fatalf("did not expect message in another room")
	default:
	}
}

func TestHub_UnregisterClosesSendAndDropsEmptyRoom(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	c := NewClient(h, nil, TournamentRoom(9))
	h.Register <- c
	waitForClients(t, h, TournamentRoom(9), 1)

	h.Unregister <- c
	waitForClients(t, h, TournamentRoom(9), 0)

	if _, ok := <-c.Send; ok {
		t.Fatalf("expected send channel to be closed")
	}
}

func TestHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	h := NewHub(nil)
	h.BroadcastToRoom("facility:404", Message{Type: TypeAvailabilityChanged})
}
