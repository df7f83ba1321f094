package calculator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialStream(t *testing.T, srv *httptest.Server, sessionID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/calculator/sessions/" + sessionID + "/ws"
	return websocket.DefaultDialer.Dial(url, nil)
}

func readUpdate(t *testing.T, conn *websocket.Conn) StreamUpdate {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("setting read deadline: %v", err)
	}

	var update StreamUpdate
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("reading stream update: %v", err)
	}
	return update
}

func TestStreamAppliesKeys(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn, _, err := dialStream(t, srv, id)
	if err != nil {
		t.Fatalf("dialing stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if initial := readUpdate(t, conn); initial.Display != "0" || initial.SessionID != id {
		t.Fatalf("expected initial state for %s, got %+v", id, initial)
	}

	frames := []struct {
		msg     StreamMessage
		display string
		failed  bool
	}{
		{msg: StreamMessage{Key: "5"}, display: "5"},
		{msg: StreamMessage{Sequence: "+3="}, display: "8"},
		{msg: StreamMessage{Key: "sqrt"}, display: "8", failed: true},
		{msg: StreamMessage{}, display: "8", failed: true},
		{msg: StreamMessage{Key: "AC"}, display: "0"},
	}

	for i, f := range frames {
		if err := conn.WriteJSON(f.msg); err != nil {
			t.Fatalf("frame %d: writing: %v", i, err)
		}

		update := readUpdate(t, conn)
		if update.Display != f.display {
			t.Fatalf("frame %d: expected display %q, got %q", i, f.display, update.Display)
		}
		if got := update.Error != ""; got != f.failed {
			t.Fatalf("frame %d: expected failed=%t, got error %q", i, f.failed, update.Error)
		}
	}
}

func TestStreamSharesSessionWithHTTP(t *testing.T) {
	h := newTestRouter(t)
	id := createSession(t, h)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	conn, _, err := dialStream(t, srv, id)
	if err != nil {
		t.Fatalf("dialing stream: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = readUpdate(t, conn)

	if code, _ := post(t, h, "/calculator/sessions/"+id+"/digit/4", nil); code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, code)
	}

	if err := conn.WriteJSON(StreamMessage{Key: "2"}); err != nil {
		t.Fatalf("writing: %v", err)
	}
	if update := readUpdate(t, conn); update.Display != "42" {
		t.Fatalf("expected display %q, got %q", "42", update.Display)
	}
}

func TestStreamUnknownSession(t *testing.T) {
	h := newTestRouter(t)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	_, resp, err := dialStream(t, srv, "missing")
	if !errors.Is(err, websocket.ErrBadHandshake) {
		t.Fatalf("expected bad handshake, got %v", err)
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %+v", http.StatusNotFound, resp)
	}
}
