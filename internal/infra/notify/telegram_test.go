package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testNotifier(ts *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("token", "42")
	n.apiBase = ts.URL
	return n
}

func TestSend(t *testing.T) {
	var got struct {
		ChatID    string `json:"chat_id"`
		Text      string `json:"text"`
		ParseMode string `json:"parse_mode"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	if err := testNotifier(ts).Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatal(err)
	}
	if got.ChatID != "42" || got.Text != "<b>hi</b>" || got.ParseMode != "HTML" {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	if err := testNotifier(ts).Send(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 400 response")
	}
}

func TestSendWithRetryRecovers(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	if err := testNotifier(ts).SendWithRetry(context.Background(), "hi", 3); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestSendWithRetryHonorsContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := testNotifier(ts).SendWithRetry(ctx, "hi", 5); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
