package ws

import (
	"testing"
	"time"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go runSandboxHub(h)
	return h
}

func waitForRoomSize(t *testing.T, h *Hub, token string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.RoomSize(token) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s size = %d, want %d", token, h.RoomSize(token), want)
}

func TestQueuedMessageSurvivesInstantLeave(t *testing.T) {
	h := testHub(t)
	c := &Client{sessionToken: "s1", send: make(chan []byte, 256)}

	// A snapshot queued before the hub knows the client must not race the
	// hub's close of send, and must still reach a reader afterwards.
	c.send <- []byte(`{"type":"frame","tick":0}`)

	h.register <- c
	h.unregister <- c

	msg, ok := <-c.send
	if !ok {
		t.Fatal("queued message should be delivered before send closes")
	}
	if string(msg) != `{"type":"frame","tick":0}` {
		t.Errorf("unexpected message: %s", msg)
	}
	if _, ok := <-c.send; ok {
		t.Error("send should be closed once the client has left")
	}
}

func TestBroadcastReachesOnlyItsRoom(t *testing.T) {
	h := testHub(t)
	a := &Client{sessionToken: "room-a", send: make(chan []byte, 4)}
	b := &Client{sessionToken: "room-b", send: make(chan []byte, 4)}

	h.register <- a
	h.register <- b
	waitForRoomSize(t, h, "room-a", 1)
	waitForRoomSize(t, h, "room-b", 1)

	h.BroadcastToSession("room-a", map[string]string{"type": "ping"})

	select {
	case <-a.send:
	case <-time.After(time.Second):
		t.Fatal("room-a client should receive the broadcast")
	}
	select {
	case <-b.send:
		t.Error("room-b client should not receive room-a broadcasts")
	default:
	}
}

func TestBroadcastSkipsSlowClients(t *testing.T) {
	h := testHub(t)
	c := &Client{sessionToken: "s1", send: make(chan []byte, 1)}

	h.register <- c
	waitForRoomSize(t, h, "s1", 1)

	// Fill the buffer; further broadcasts must drop rather than block the
	// tick loop behind one stalled renderer.
	c.send <- []byte("backlog")

	done := make(chan struct{})
	go func() {
		h.BroadcastToSession("s1", map[string]string{"type": "frame"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast should not block on a full client buffer")
	}

	if got := <-c.send; string(got) != "backlog" {
		t.Errorf("buffered message = %s, want backlog", got)
	}
}

func TestRoomDrainsWhenLastClientLeaves(t *testing.T) {
	h := testHub(t)
	c := &Client{sessionToken: "s1", send: make(chan []byte, 4)}

	h.register <- c
	waitForRoomSize(t, h, "s1", 1)
	h.unregister <- c
	waitForRoomSize(t, h, "s1", 0)
}
