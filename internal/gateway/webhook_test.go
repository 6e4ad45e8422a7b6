package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookGatewayCreateChannel(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody createChannelRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/channels" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(createChannelResponse{ChannelID: "chan-42"})
	}))
	defer srv.Close()

	gw := NewWebhookGateway(srv.URL, "svc-token", time.Second)
	channelID, err := gw.CreateChannel(context.Background(), "tenant-1", "ticket-grim-abc", "cat-1", []Overwrite{
		{TargetID: "user-1", View: true, Send: true},
	})
	if err != nil {
		t.Fatalf("CreateChannel: %v", err)
	}
	if channelID != "chan-42" {
		t.Fatalf("expected chan-42, got %q", channelID)
	}
	if gotAuth != "Bearer svc-token" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.TenantID != "tenant-1" || len(gotBody.Overwrites) != 1 {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestWebhookGatewaySurfacesErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "channel missing", http.StatusNotFound)
	}))
	defer srv.Close()

	gw := NewWebhookGateway(srv.URL, "", time.Second)
	if err := gw.DeleteChannel(context.Background(), "chan-404"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestWebhookGatewayFetchHistory(t *testing.T) {
	t.Parallel()

	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/chan-1/history" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(historyResponse{Messages: []HistoryMessage{
			{Timestamp: when, AuthorID: "user-1", Author: "Helper One", Text: "on my way"},
		}})
	}))
	defer srv.Close()

	gw := NewWebhookGateway(srv.URL, "", time.Second)
	messages, err := gw.FetchHistory(context.Background(), "chan-1")
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "on my way" {
		t.Fatalf("unexpected history: %+v", messages)
	}
}
