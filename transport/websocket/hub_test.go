package websocket

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/hackmaze/quizmaze/game/engine"
	"github.com/hackmaze/quizmaze/game/maze"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNewHub(t *testing.T) {
	hub := NewHub(quietLogger())

	if hub.games == nil {
		t.Error("games map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("hub channels not initialized")
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	hub := NewHub(quietLogger())

	client := &Client{
		hub:    hub,
		gameID: "g1",
		send:   make(chan []byte, 256),
	}

	hub.registerClient(client)
	if !hub.games["g1"][client] {
		t.Fatal("client not registered")
	}

	hub.unregisterClient(client)
	if _, exists := hub.games["g1"]; exists {
		t.Error("empty game entry should be cleaned up")
	}
	if _, open := <-client.send; open {
		t.Error("send channel should be closed")
	}
}

func TestMultipleWatchersPerGame(t *testing.T) {
	hub := NewHub(quietLogger())

	c1 := &Client{hub: hub, gameID: "g1", send: make(chan []byte, 256)}
	c2 := &Client{hub: hub, gameID: "g1", send: make(chan []byte, 256)}
	hub.registerClient(c1)
	hub.registerClient(c2)

	if len(hub.games["g1"]) != 2 {
		t.Fatalf("watchers = %d", len(hub.games["g1"]))
	}

	hub.unregisterClient(c1)
	if len(hub.games["g1"]) != 1 || !hub.games["g1"][c2] {
		t.Error("wrong watcher removed")
	}
}

func TestBroadcastMessage(t *testing.T) {
	hub := NewHub(quietLogger())

	watcher := &Client{hub: hub, gameID: "g1", send: make(chan []byte, 256)}
	other := &Client{hub: hub, gameID: "g2", send: make(chan []byte, 256)}
	hub.registerClient(watcher)
	hub.registerClient(other)

	out := &engine.GameOutput{
		View: engine.GameView{
			Pos:       maze.Position{Row: 1, Col: 0},
			CellTitle: "Server Aisle",
			MoveCount: 1,
		},
		Messages: []string{},
	}
	hub.broadcastMessage(&Message{GameID: "g1", Event: "command_result", Output: out, View: &out.View})

	select {
	case raw := <-watcher.send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.GameID != "g1" || msg.Event != "command_result" {
			t.Errorf("message = %+v", msg)
		}
		if msg.View == nil || msg.View.CellTitle != "Server Aisle" {
			t.Errorf("view = %+v", msg.View)
		}
	default:
		t.Fatal("watcher received nothing")
	}

	select {
	case <-other.send:
		t.Error("broadcast leaked to another game's watcher")
	default:
	}
}

func TestBroadcastDropsSlowWatcher(t *testing.T) {
	hub := NewHub(quietLogger())

	slow := &Client{hub: hub, gameID: "g1", send: make(chan []byte)} // unbuffered, never drained
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{GameID: "g1", Event: "command_result"})

	if _, exists := hub.games["g1"]; exists {
		t.Error("slow watcher should have been dropped")
	}
}

func TestServeWS_EndToEnd(t *testing.T) {
	hub := NewHub(quietLogger())
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("game"))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?game=g1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration goes through the hub goroutine; give it a moment.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.BroadcastEvent("g1", "ping-event", map[string]string{"k": "v"})

		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Event != "ping-event" || msg.GameID != "g1" {
			t.Fatalf("message = %+v", msg)
		}
		return
	}
	t.Fatal("never received broadcast over live connection")
}
