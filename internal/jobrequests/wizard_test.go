package jobrequests

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndertimnet/ndertimnet-client/internal/accounts"
	"github.com/ndertimnet/ndertimnet-client/internal/wizard"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

// fakeBackend is an in-memory drafts API good enough to drive the wizard
// end to end.
type fakeBackend struct {
	mu          sync.Mutex
	drafts      map[int64]*Draft
	nextDraftID int64
	nextJobID   int64

	consentCalls int
	submitCalls  int
	patchSteps   []DraftPatch
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{drafts: map[int64]*Draft{}, nextDraftID: 100, nextJobID: 900}
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode: %v", err)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		path := strings.TrimPrefix(r.URL.Path, "/api/")
		switch {
		case path == "accounts/customer/consent/" && r.Method == http.MethodPost:
			b.consentCalls++
			writeJSON(w, map[string]any{"success": true})

		case path == "jobrequests/drafts/" && r.Method == http.MethodPost:
			b.nextDraftID++
			draft := &Draft{ID: b.nextDraftID}
			b.drafts[draft.ID] = draft
			writeJSON(w, draft)

		case path == "jobrequests/drafts/" && r.Method == http.MethodGet:
			open := []Draft{}
			for _, d := range b.drafts {
				if !d.Submitted {
					open = append(open, *d)
				}
			}
			writeJSON(w, map[string]any{"count": len(open), "results": open})

		case strings.HasPrefix(path, "jobrequests/drafts/") && strings.HasSuffix(path, "/submit/") && r.Method == http.MethodPost:
			b.submitCalls++
			id := draftIDFromPath(path)
			draft, ok := b.drafts[id]
			if !ok {
				http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
				return
			}
			draft.Submitted = true
			b.nextJobID++
			writeJSON(w, JobRequest{ID: b.nextJobID, Title: draft.Title, Description: draft.Description, IsActive: true})

		case strings.HasPrefix(path, "jobrequests/drafts/") && r.Method == http.MethodPatch:
			id := draftIDFromPath(path)
			draft, ok := b.drafts[id]
			if !ok {
				http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
				return
			}
			var patch DraftPatch
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				t.Errorf("decode patch: %v", err)
			}
			b.patchSteps = append(b.patchSteps, patch)
			applyPatch(draft, patch)
			writeJSON(w, draft)

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})
}

func draftIDFromPath(path string) int64 {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	// jobrequests/drafts/{id}[/submit]
	if len(parts) < 3 {
		return 0
	}
	id, _ := strconv.ParseInt(parts[2], 10, 64)
	return id
}

func applyPatch(draft *Draft, patch DraftPatch) {
	if patch.Title != nil {
		draft.Title = *patch.Title
	}
	if patch.Description != nil {
		draft.Description = *patch.Description
	}
	if patch.City != nil {
		draft.City = patch.City
	}
	if patch.Profession != nil {
		draft.Profession = patch.Profession
	}
	if patch.Budget != nil {
		draft.Budget = patch.Budget
	}
}

func newWizardRig(t *testing.T, backend *fakeBackend) *Wizard {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	sel, err := tokenstore.NewSelector(nil, tokenstore.NewMemoryStore())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	_ = sel.ForRemember(false).SetTokens(context.Background(), tokenstore.Tokens{Access: "a", Refresh: "r"})
	api, err := httpx.NewClient(server.URL+"/api/", sel)
	if err != nil {
		t.Fatalf("api: %v", err)
	}
	client, err := NewClient(api)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	accts, err := accounts.NewClient(api)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	wiz, err := NewWizard(WizardParams{Client: client, Accounts: accts})
	if err != nil {
		t.Fatalf("wizard: %v", err)
	}
	return wiz
}

func TestFullFlowSubmitsDraftOnce(t *testing.T) {
	backend := newFakeBackend()
	wiz := newWizardRig(t, backend)
	ctx := context.Background()

	if err := wiz.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}

	wiz.UpdateForm(func(f *Form) { f.Draft.Title = "Renovim banjo" })
	if err := wiz.Advance(ctx); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	wiz.UpdateForm(func(f *Form) { f.Draft.Description = "Rinovim i plote i banjos." })
	if err := wiz.Advance(ctx); err != nil {
		t.Fatalf("step 2: %v", err)
	}
	city, profession := int64(10), int64(1)
	wiz.UpdateForm(func(f *Form) {
		f.Draft.City = &city
		f.Draft.Profession = &profession
	})
	if err := wiz.Advance(ctx); err != nil {
		t.Fatalf("step 3: %v", err)
	}
	budget := decimal.NewFromInt(500)
	wiz.UpdateForm(func(f *Form) { f.Draft.Budget = &budget })
	if err := wiz.Advance(ctx); err != nil {
		t.Fatalf("step 4: %v", err)
	}
	wiz.UpdateForm(func(f *Form) {
		f.PersonalNumber = "199001011234"
		f.ConsentTerms = true
		f.ConsentData = true
	})

	job, err := wiz.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.ID != 901 || job.Title != "Renovim banjo" {
		t.Fatalf("unexpected job %+v", job)
	}
	if backend.submitCalls != 1 {
		t.Fatalf("expected exactly one submit call, got %d", backend.submitCalls)
	}
	if backend.consentCalls != 1 {
		t.Fatalf("expected consent to be posted once, got %d", backend.consentCalls)
	}
}

func TestStepPatchesOnlyOwnedFields(t *testing.T) {
	backend := newFakeBackend()
	wiz := newWizardRig(t, backend)
	ctx := context.Background()

	if err := wiz.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	wiz.UpdateForm(func(f *Form) { f.Draft.Title = "Renovim banjo" })
	if err := wiz.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if len(backend.patchSteps) != 1 {
		t.Fatalf("expected one patch, got %d", len(backend.patchSteps))
	}
	patch := backend.patchSteps[0]
	if patch.Title == nil || *patch.Title != "Renovim banjo" {
		t.Fatalf("title missing from step 1 patch: %+v", patch)
	}
	if patch.Description != nil || patch.City != nil || patch.Budget != nil {
		t.Fatalf("step 1 patch must carry only the title: %+v", patch)
	}
}

func TestBeginOffersResumeForOpenDraft(t *testing.T) {
	backend := newFakeBackend()
	city := int64(10)
	backend.drafts[50] = &Draft{ID: 50, Title: "Renovim kuzhine", Description: "Pllaka dhe mobilje te reja.", City: &city}
	wiz := newWizardRig(t, backend)
	ctx := context.Background()

	err := wiz.Begin(ctx)
	if !errors.Is(err, wizard.ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}
	draft, ok := wiz.PendingDraft()
	if !ok || draft.ID != 50 {
		t.Fatalf("expected pending draft 50, got %+v", draft)
	}

	wiz.Resume(draft)
	// Title and description are valid, placement is not (no profession).
	if wiz.Current() != 3 {
		t.Fatalf("expected resume at step 3, got %d", wiz.Current())
	}
	if wiz.Form().Draft.Title != "Renovim kuzhine" {
		t.Fatalf("form not hydrated: %+v", wiz.Form())
	}
}

func TestStepPredicates(t *testing.T) {
	positive := decimal.NewFromInt(500)
	negative := decimal.NewFromInt(-1)
	city, profession := int64(1), int64(2)

	tests := []struct {
		name  string
		pred  func(Form) bool
		form  Form
		valid bool
	}{
		{"short title", titleValid, Form{Draft: Draft{Title: "  ab  "}}, false},
		{"title at boundary", titleValid, Form{Draft: Draft{Title: " Banjo "}}, true},
		{"short description", descriptionValid, Form{Draft: Draft{Description: "too short"}}, false},
		{"missing profession", placementValid, Form{Draft: Draft{City: &city}}, false},
		{"placement complete", placementValid, Form{Draft: Draft{City: &city, Profession: &profession}}, true},
		{"absent budget ok", budgetValid, Form{}, true},
		{"negative budget", budgetValid, Form{Draft: Draft{Budget: &negative}}, false},
		{"positive budget", budgetValid, Form{Draft: Draft{Budget: &positive}}, true},
		{"consent missing checkbox", consentValid, Form{PersonalNumber: "1990", ConsentTerms: true}, false},
		{"consent complete", consentValid, Form{PersonalNumber: "1990", ConsentTerms: true, ConsentData: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.form); got != tt.valid {
				t.Fatalf("expected %v, got %v", tt.valid, got)
			}
		})
	}
}
