package jobrequests

import (
	"context"

	"github.com/ndertimnet/ndertimnet-client/internal/accounts"
	"github.com/ndertimnet/ndertimnet-client/internal/wizard"
	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
)

// Wizard is the five-step job-request creation flow.
type Wizard = wizard.Engine[Form, JobRequest]

type WizardParams struct {
	Client   *Client
	Accounts *accounts.Client
	Logger   *logger.Logger
}

// NewWizard builds the creation wizard. Submit records the customer's
// publication consent before the draft is finalized.
func NewWizard(params WizardParams) (*Wizard, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "job wizard requires a jobrequests client")
	}
	if params.Accounts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "job wizard requires an accounts client")
	}
	store := &draftStore{client: params.Client}
	return wizard.New(wizard.Params[Form, JobRequest]{
		Steps: []wizard.Step[Form]{
			{Number: 1, Name: "title", Valid: titleValid},
			{Number: 2, Name: "description", Valid: descriptionValid},
			{Number: 3, Name: "placement", Valid: placementValid},
			{Number: 4, Name: "budget", Valid: budgetValid},
			{Number: 5, Name: "consent", Valid: consentValid},
		},
		Store:  store,
		Submit: submitFunc(params.Client, params.Accounts),
		Logger: params.Logger,
	})
}

// draftStore adapts the drafts API to the wizard engine.
type draftStore struct {
	client *Client
}

func (s *draftStore) ListOpen(ctx context.Context) ([]wizard.Draft[Form], error) {
	open, err := s.client.OpenDrafts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]wizard.Draft[Form], 0, len(open))
	for _, d := range open {
		out = append(out, wizard.Draft[Form]{ID: d.ID, Form: Form{Draft: d}})
	}
	return out, nil
}

func (s *draftStore) Create(ctx context.Context) (wizard.Draft[Form], error) {
	draft, err := s.client.CreateDraft(ctx)
	if err != nil {
		return wizard.Draft[Form]{}, err
	}
	return wizard.Draft[Form]{ID: draft.ID, Form: Form{Draft: *draft}}, nil
}

// Save patches only the fields the step owns; local consent state rides
// along untouched since it never lands on the draft resource.
func (s *draftStore) Save(ctx context.Context, draftID int64, step int, form Form) (Form, error) {
	saved, err := s.client.PatchDraft(ctx, draftID, patchForStep(step, form.Draft))
	if err != nil {
		return Form{}, err
	}
	form.Draft = *saved
	return form, nil
}

func patchForStep(step int, draft Draft) DraftPatch {
	switch step {
	case 1:
		return DraftPatch{Title: &draft.Title}
	case 2:
		return DraftPatch{Description: &draft.Description}
	case 3:
		return DraftPatch{City: draft.City, Profession: draft.Profession}
	case 4:
		return DraftPatch{Budget: draft.Budget}
	default:
		return DraftPatch{
			Title:       &draft.Title,
			Description: &draft.Description,
			City:        draft.City,
			Profession:  draft.Profession,
			Budget:      draft.Budget,
		}
	}
}

func submitFunc(client *Client, accts *accounts.Client) wizard.Submitter[Form, JobRequest] {
	return func(ctx context.Context, draftID int64, form Form) (JobRequest, error) {
		consent := accounts.ConsentRequest{
			PersonalNumber: form.PersonalNumber,
			Consent:        form.ConsentTerms && form.ConsentData,
		}
		if err := accts.SubmitConsent(ctx, consent); err != nil {
			return JobRequest{}, err
		}
		job, err := client.SubmitDraft(ctx, draftID)
		if err != nil {
			return JobRequest{}, err
		}
		return *job, nil
	}
}
