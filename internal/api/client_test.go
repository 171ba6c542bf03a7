package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSendMessage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/command" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Terminal") != "true" {
			t.Errorf("missing X-Terminal header")
		}
		if r.Header.Get("Authorization") != "Bearer sekrit" {
			t.Errorf("got auth header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"success": true, "response": "hello"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit")
	resp, errStr := c.SendMessage(context.Background(), "hi")
	if resp != "hello" {
		t.Fatalf("response = %q, want hello", resp)
	}
	if errStr != "" {
		t.Fatalf("unexpected error %q", errStr)
	}
}

func TestSendMessage_NoTokenNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"success": true, "response": "ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	c.SendMessage(context.Background(), "hi")
}

func TestSendMessage_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "brain offline"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, errStr := c.SendMessage(context.Background(), "hi")
	if resp != "" {
		t.Fatalf("unexpected response %q", resp)
	}
	if errStr != "brain offline" {
		t.Fatalf("error = %q, want brain offline", errStr)
	}
}

func TestSendMessage_HTTPStatusFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, errStr := c.SendMessage(context.Background(), "hi")
	if errStr != "HTTP 502" {
		t.Fatalf("error = %q, want HTTP 502", errStr)
	}
}

func TestSendMessage_ExactlyOneResult(t *testing.T) {
	cases := []http.HandlerFunc{
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": true, "response": "yes"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte(`{"error": "nope"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		},
	}
	for i, h := range cases {
		srv := httptest.NewServer(h)
		resp, errStr := NewClient(srv.URL, "").SendMessage(context.Background(), "x")
		srv.Close()
		if (resp == "") == (errStr == "") {
			t.Errorf("case %d: resp=%q err=%q, want exactly one set", i, resp, errStr)
		}
	}
}

func TestSendMessage_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "")
	_, errStr := c.SendMessage(context.Background(), "hi")
	if errStr != "Cannot connect to ALEX" {
		t.Fatalf("error = %q, want Cannot connect to ALEX", errStr)
	}
}

func TestSendMessage_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, "")
	_, errStr := c.SendMessage(ctx, "hi")
	if errStr != "Request timed out" {
		t.Fatalf("error = %q, want Request timed out", errStr)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uptime_seconds": 7260, "memory": {"rss_mb": 120.5}, "telegram": "ok", "redis": "ok"}`))
	}))
	defer srv.Close()

	snap, ok := NewClient(srv.URL, "").Health(context.Background())
	if !ok {
		t.Fatal("expected health snapshot")
	}
	if snap.UptimeSeconds != 7260 || snap.Memory.RSSMB != 120.5 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestHealth_FailureSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, ok := NewClient(srv.URL, "").Health(context.Background()); ok {
		t.Fatal("expected failure on 503")
	}

	srv.Close()
	if _, ok := NewClient(srv.URL, "").Health(context.Background()); ok {
		t.Fatal("expected failure on refused connection")
	}
}

func TestTerminalMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"messages": [{"title": "Alert", "body": "disk full"}, {"title": "Note", "text": "legacy"}]}`))
	}))
	defer srv.Close()

	msgs := NewClient(srv.URL, "").TerminalMessages(context.Background())
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content() != "disk full" {
		t.Errorf("body content = %q", msgs[0].Content())
	}
	if msgs[1].Content() != "legacy" {
		t.Errorf("legacy text content = %q", msgs[1].Content())
	}
}

func TestTerminalMessages_EmptyOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`garbage`))
	}))
	defer srv.Close()

	if msgs := NewClient(srv.URL, "").TerminalMessages(context.Background()); len(msgs) != 0 {
		t.Fatalf("got %d messages, want 0", len(msgs))
	}
}
