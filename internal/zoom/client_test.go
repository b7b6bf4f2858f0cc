package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"booking-api/internal/config"
)

// testServer wires a token endpoint and an API handler into one client.
func testServer(t *testing.T, api http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		if r.FormValue("grant_type") != "account_credentials" || r.FormValue("account_id") != "account-id" {
			http.Error(w, "bad grant", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		api(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(config.ZoomConfig{
		AccountID:    "account-id",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      srv.URL,
		AuthURL:      srv.URL + "/oauth/token",
	})
	return c, srv
}

func TestCreateMeeting(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/me/meetings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req createMeetingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Topic != "Standup" || req.Type != 2 || req.Duration != 60 || req.Timezone != "UTC" {
			t.Errorf("unexpected payload: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Meeting{ID: 987654321, Topic: req.Topic})
	})

	id, err := c.CreateMeeting(context.Background(), "Standup", time.Now().Add(time.Hour), 60)
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	if id != "987654321" {
		t.Fatalf("expected id 987654321, got %s", id)
	}
}

func TestCreateMeetingAPIError(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":300,"message":"invalid request"}`, http.StatusBadRequest)
	})

	if _, err := c.CreateMeeting(context.Background(), "Standup", time.Now(), 60); err == nil {
		t.Fatal("expected error on API failure")
	}
}

func TestCreateMeetingMissingID(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"topic": "Standup"})
	})

	if _, err := c.CreateMeeting(context.Background(), "Standup", time.Now(), 60); err == nil {
		t.Fatal("expected error when the provider returns no id")
	}
}

func TestDeleteMeeting(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodDelete || r.URL.Path != "/meetings/42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteMeeting(context.Background(), "42"); err != nil {
		t.Fatalf("delete meeting: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 call, got %d", n)
	}
}

func TestDeleteMeetingRetriesOn5xx(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteMeeting(context.Background(), "42"); err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 calls, got %d", n)
	}
}

func TestDeleteMeetingNoRetryOn4xx(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "not found", http.StatusNotFound)
	})

	if err := c.DeleteMeeting(context.Background(), "42"); err == nil {
		t.Fatal("expected error on 404")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", n)
	}
}

func TestDeleteMeetingGivesUpAfterRetry(t *testing.T) {
	var calls int32
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "still broken", http.StatusInternalServerError)
	})

	if err := c.DeleteMeeting(context.Background(), "42"); err == nil {
		t.Fatal("expected error after exhausting the retry")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("expected 2 calls, got %d", n)
	}
}

func TestGetMeeting(t *testing.T) {
	c, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meetings/42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Meeting{ID: 42, Topic: "Standup", JoinURL: "https://zoom.example/j/42"})
	})

	m, err := c.GetMeeting(context.Background(), "42")
	if err != nil {
		t.Fatalf("get meeting: %v", err)
	}
	if m.ID != 42 || m.Topic != "Standup" {
		t.Fatalf("unexpected meeting: %+v", m)
	}
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	var tokenCalls, apiCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(config.ZoomConfig{
		AccountID: "a", ClientID: "b", ClientSecret: "c",
		BaseURL: srv.URL, AuthURL: srv.URL + "/oauth/token",
	})

	for i := 0; i < 3; i++ {
		if err := c.DeleteMeeting(context.Background(), "42"); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Fatalf("expected a single token fetch, got %d", n)
	}
	if n := atomic.LoadInt32(&apiCalls); n != 3 {
		t.Fatalf("expected 3 API calls, got %d", n)
	}
}

func TestTokenEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid client", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.ZoomConfig{
		AccountID: "a", ClientID: "b", ClientSecret: "c",
		BaseURL: srv.URL, AuthURL: srv.URL + "/oauth/token",
	})

	if _, err := c.CreateMeeting(context.Background(), "Standup", time.Now(), 30); err == nil {
		t.Fatal("expected error when the token endpoint rejects us")
	}
}
