package leads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *tokenstore.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	sessionStore := tokenstore.NewMemoryStore()
	sel, err := tokenstore.NewSelector(nil, sessionStore)
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	if err := sessionStore.SetTokens(context.Background(), tokenstore.Tokens{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	api, err := httpx.NewClient(server.URL+"/api/", sel)
	if err != nil {
		t.Fatalf("api: %v", err)
	}
	client, err := NewClient(api, sel, opts...)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return client, sessionStore
}

func TestOutcomeClassification(t *testing.T) {
	us, them := int64(7), int64(8)
	lead := LeadMatch{ID: 1, Company: us}

	tests := []struct {
		name string
		job  JobOutcome
		want enums.LeadOutcome
	}{
		{"we were accepted", JobOutcome{IsActive: false, AcceptedCompany: &us}, enums.LeadOutcomeWon},
		{"another company won", JobOutcome{IsActive: true, AcceptedCompany: &them}, enums.LeadOutcomeLost},
		{"job went inactive", JobOutcome{IsActive: false}, enums.LeadOutcomeLost},
		{"still open", JobOutcome{IsActive: true}, enums.LeadOutcomeActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outcome(lead, tt.job); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestUnlockChatReturnsRefreshedFlags(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/leads/leadmatches/5/unlock_chat/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id": 5, "status": "pending", "can_chat": true, "customer_info_unlocked": false}`))
	}))

	lead, err := client.UnlockChat(context.Background(), 5)
	if err != nil {
		t.Fatalf("unlock chat: %v", err)
	}
	if !lead.CanChat || lead.CustomerInfoUnlocked {
		t.Fatalf("flags must mirror the server response, got %+v", lead)
	}
}

func TestMessagesFiltersByLead(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/leads/leadmessages/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("lead_match"); got != "5" {
			t.Errorf("expected lead_match=5, got %q", got)
		}
		_, _ = w.Write([]byte(`{"count": 1, "results": [
			{"id": 1, "lead_match": 5, "sender_type": "customer", "message": "Pershendetje", "created_at": "2026-08-30T10:00:00Z"}
		]}`))
	}))

	msgs, err := client.Messages(context.Background(), 5)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "Pershendetje" || msgs[0].Sender != enums.SenderTypeCustomer {
		t.Fatalf("unexpected messages %+v", msgs)
	}
}

func TestSendMessageRejectsEmptyBodyLocally(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	if _, err := client.SendMessage(context.Background(), 5, ""); err == nil {
		t.Fatalf("expected validation error")
	}
	if called {
		t.Fatalf("empty message must not hit the network")
	}
}

const leadListBody = `{"count": 3, "results": [
	{"id": 1, "created_at": "2026-08-25T08:00:00Z"},
	{"id": 2, "created_at": "2026-08-28T08:00:00Z"},
	{"id": 3, "created_at": "2026-08-30T08:00:00Z"}
]}`

func TestNewSinceCountsLeadsAfterVisitMark(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(leadListBody))
	}), WithClock(func() time.Time { return now }))

	// No mark yet: everything is new.
	count, err := client.NewSince(context.Background())
	if err != nil {
		t.Fatalf("new since: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 new leads without a mark, got %d", count)
	}

	mark := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	if err := store.SetVisitMark(context.Background(), "my_leads", mark); err != nil {
		t.Fatalf("set mark: %v", err)
	}
	count, err = client.NewSince(context.Background())
	if err != nil {
		t.Fatalf("new since: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 new leads after the mark, got %d", count)
	}

	// Visiting the page resets the badge.
	if err := client.MarkVisited(context.Background()); err != nil {
		t.Fatalf("mark visited: %v", err)
	}
	count, err = client.NewSince(context.Background())
	if err != nil {
		t.Fatalf("new since: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 new leads after visiting, got %d", count)
	}
}
