package offers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndertimnet/ndertimnet-client/internal/wizard"
	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

func newWizardRig(t *testing.T, handler http.Handler) *Wizard {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	sel, err := tokenstore.NewSelector(nil, tokenstore.NewMemoryStore())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	api, err := httpx.NewClient(server.URL+"/api/", sel)
	if err != nil {
		t.Fatalf("api: %v", err)
	}
	client, err := NewClient(api)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	wiz, err := NewWizard(WizardParams{Client: client, JobRequestID: 42})
	if err != nil {
		t.Fatalf("wizard: %v", err)
	}
	return wiz
}

func offerJSON(t *testing.T, offer Offer) []byte {
	t.Helper()
	raw, err := json.Marshal(offer)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestBeginCreatesOfferWhenNoneExists(t *testing.T) {
	var created atomic.Int64
	wiz := newWizardRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/offers/check-by-job/42/":
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
		case r.URL.Path == "/api/offers/" && r.Method == http.MethodPost:
			created.Add(1)
			_, _ = w.Write(offerJSON(t, Offer{ID: 9, JobRequest: 42, Status: enums.OfferStatusDraft}))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := wiz.Begin(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if created.Load() != 1 {
		t.Fatalf("expected one created offer, got %d", created.Load())
	}
	if wiz.Current() != 1 {
		t.Fatalf("expected step 1, got %d", wiz.Current())
	}
}

func TestBeginSurfacesExistingDraftOffer(t *testing.T) {
	wiz := newWizardRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/offers/check-by-job/42/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write(offerJSON(t, Offer{
			ID: 9, JobRequest: 42, Status: enums.OfferStatusDraft,
			CurrentVersion: OfferVersion{Presentation: "Oferte per rinovimin e banjos"},
		}))
	}))

	err := wiz.Begin(context.Background())
	if !errors.Is(err, wizard.ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}
	draft, ok := wiz.PendingDraft()
	if !ok || draft.ID != 9 {
		t.Fatalf("expected pending offer 9, got %+v", draft)
	}

	wiz.Resume(draft)
	// Presentation is valid, dates are not.
	if wiz.Current() != 2 {
		t.Fatalf("expected resume at step 2, got %d", wiz.Current())
	}
}

func TestSignedOfferOnlyAllowsSigningStep(t *testing.T) {
	price := decimal.NewFromInt(1200)
	signed := Offer{
		ID: 9, JobRequest: 42, Status: enums.OfferStatusSigned,
		CurrentVersion: OfferVersion{
			Presentation: "Oferte per rinovimin e banjos",
			StartDate:    "2026-10-01", EndDate: "2026-11-01",
			PriceType: enums.PriceTypeFixed, PriceAmount: &price,
			Includes: "Pllaka, hidraulika", Excludes: "Mobilje kuzhine",
		},
	}
	wiz := newWizardRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(offerJSON(t, signed))
	}))

	if err := wiz.Begin(context.Background()); !errors.Is(err, wizard.ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}
	draft, _ := wiz.PendingDraft()
	wiz.Resume(draft)

	// Every field on steps 1-4 is valid, yet only the signing step opens.
	for step := 1; step <= 4; step++ {
		if wiz.CanEnter(step) {
			t.Fatalf("step %d must be locked on a signed offer", step)
		}
	}
	if !wiz.CanEnter(5) {
		t.Fatalf("signing step must stay enterable")
	}
	if wiz.Current() != 5 {
		t.Fatalf("expected to land on step 5, got %d", wiz.Current())
	}
}

func TestAcceptedOfferAlsoLocks(t *testing.T) {
	accepted := Form{Offer: Offer{Status: enums.OfferStatusAccepted}}
	only, locked := signLock(accepted)
	if !locked || only != 5 {
		t.Fatalf("accepted offer must lock to step 5, got (%d, %v)", only, locked)
	}
	draft := Form{Offer: Offer{Status: enums.OfferStatusDraft}}
	if _, locked := signLock(draft); locked {
		t.Fatalf("draft offer must not lock")
	}
}

func TestSignFlow(t *testing.T) {
	var signCalls atomic.Int64
	price := decimal.NewFromInt(1200)
	current := Offer{
		ID: 9, JobRequest: 42, Status: enums.OfferStatusDraft,
		CurrentVersion: OfferVersion{
			Presentation: "Oferte per rinovimin e banjos",
			StartDate:    "2026-10-01", EndDate: "2026-11-01",
			PriceType: enums.PriceTypeFixed, PriceAmount: &price,
			Includes: "Pllaka, hidraulika", Excludes: "Mobilje kuzhine",
		},
	}
	wiz := newWizardRig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/offers/check-by-job/42/":
			_, _ = w.Write(offerJSON(t, current))
		case r.URL.Path == "/api/offers/9/" && r.Method == http.MethodPatch:
			_, _ = w.Write(offerJSON(t, current))
		case r.URL.Path == "/api/offers/9/sign/" && r.Method == http.MethodPost:
			signCalls.Add(1)
			var req SignRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PersonalNumber == "" {
				t.Errorf("bad sign body: %v %+v", err, req)
			}
			signedCopy := current
			signedCopy.Status = enums.OfferStatusSigned
			_, _ = w.Write(offerJSON(t, signedCopy))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	if err := wiz.Begin(context.Background()); !errors.Is(err, wizard.ErrResumeRequired) {
		t.Fatalf("expected ErrResumeRequired, got %v", err)
	}
	draft, _ := wiz.PendingDraft()
	wiz.Resume(draft)
	if wiz.Current() != 5 {
		t.Fatalf("fully filled draft should resume at step 5, got %d", wiz.Current())
	}

	// Signing requires the confirmation gathered on step 5.
	if _, err := wiz.Submit(context.Background()); err == nil {
		t.Fatalf("expected validation error before confirmation")
	}

	wiz.UpdateForm(func(f *Form) {
		f.ConfirmSign = true
		f.PersonalNumber = "199001011234"
	})
	signedOffer, err := wiz.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if signedOffer.Status != enums.OfferStatusSigned {
		t.Fatalf("expected signed status, got %s", signedOffer.Status)
	}
	if signCalls.Load() != 1 {
		t.Fatalf("expected one sign call, got %d", signCalls.Load())
	}
}
