package httpmodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiekoher/agentflow/internal/modelclient"
)

func TestClientRespondSendsPromptAndHistory(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{Text: "hello back"})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	reply, err := c.Respond(context.Background(), "hi there", []modelclient.Turn{{Role: "user", Text: "earlier"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello back" {
		t.Fatalf("expected 'hello back', got %q", reply)
	}
	if gotReq.Prompt != "hi there" {
		t.Fatalf("expected prompt to be forwarded, got %q", gotReq.Prompt)
	}
	if len(gotReq.History) != 1 || gotReq.History[0].Text != "earlier" {
		t.Fatalf("expected history to be forwarded, got %+v", gotReq.History)
	}
}

func TestClientRespondReturnsErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.Respond(context.Background(), "hi", nil); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestClientSendsAuthHeaderWhenKeySet(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(chatResponse{Text: "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key")
	if _, err := c.Respond(context.Background(), "hi", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}
