package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeBotAPI struct {
	mu       sync.Mutex
	offsets  chan string
	replies  []map[string]string
	batches  []string // served in order, then requests block until cancelled
	failWith int
}

func (f *fakeBotAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bottoken/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		select {
		case f.offsets <- r.URL.Query().Get("offset"):
		default:
		}
		if f.failWith != 0 {
			w.WriteHeader(f.failWith)
			fmt.Fprint(w, `{"ok":false,"description":"Unauthorized"}`)
			return
		}
		f.mu.Lock()
		var batch string
		if len(f.batches) > 0 {
			batch, f.batches = f.batches[0], f.batches[1:]
		}
		f.mu.Unlock()
		if batch == "" {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
			return
		}
		fmt.Fprintf(w, `{"ok":true,"result":%s}`, batch)
	})
	mux.HandleFunc("/bottoken/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.mu.Lock()
		f.replies = append(f.replies, payload)
		f.mu.Unlock()
	})
	return mux
}

func TestStartPolling_DispatchesCommandsFromConfiguredChat(t *testing.T) {
	api := &fakeBotAPI{
		offsets: make(chan string, 8),
		batches: []string{`[
			{"update_id":10,"message":{"text":"/run","chat":{"id":999}}},
			{"update_id":11,"message":{"text":" /status ","chat":{"id":42}}}
		]`},
	}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.BaseURL = srv.URL

	var mu sync.Mutex
	var commands []string
	handler := func(cmd string) string {
		mu.Lock()
		defer mu.Unlock()
		commands = append(commands, cmd)
		return "reply to " + cmd
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, handler)
		close(done)
	}()

	for _, want := range []string{"0", "12"} {
		select {
		case got := <-api.offsets:
			if got != want {
				t.Fatalf("offset %s, want %s", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("no getUpdates with offset %s", want)
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(commands) != 1 || commands[0] != "/status" {
		t.Errorf("handler got %v, want only /status", commands)
	}
	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(api.replies))
	}
	if api.replies[0]["chat_id"] != "42" || api.replies[0]["text"] != "reply to /status" {
		t.Errorf("unexpected reply %v", api.replies[0])
	}
}

func TestStartPolling_BackoffStopsOnCancel(t *testing.T) {
	saved := pollRetryDelay
	pollRetryDelay = time.Hour
	defer func() { pollRetryDelay = saved }()

	api := &fakeBotAPI{offsets: make(chan string, 8), failWith: http.StatusUnauthorized}
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.BaseURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(string) string { return "" })
		close(done)
	}()

	select {
	case <-api.offsets:
	case <-time.After(5 * time.Second):
		t.Fatal("no getUpdates request")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling kept sleeping after cancel")
	}
}
