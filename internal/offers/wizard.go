package offers

import (
	"context"

	"github.com/ndertimnet/ndertimnet-client/internal/wizard"
	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
)

// Wizard is the five-step offer editing and signing flow, scoped to one job
// request.
type Wizard = wizard.Engine[Form, Offer]

type WizardParams struct {
	Client       *Client
	JobRequestID int64
	Logger       *logger.Logger
}

// NewWizard builds the editing wizard for a job request. An existing offer
// for the job is always surfaced for resume, never recreated; once it has
// left draft status the lock policy pins the flow to the signing step.
func NewWizard(params WizardParams) (*Wizard, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "offer wizard requires an offers client")
	}
	if params.JobRequestID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "offer wizard requires a job request")
	}
	store := &offerStore{client: params.Client, jobRequestID: params.JobRequestID}
	return wizard.New(wizard.Params[Form, Offer]{
		Steps: []wizard.Step[Form]{
			{Number: 1, Name: "presentation", Valid: presentationValid},
			{Number: 2, Name: "dates", Valid: datesValid},
			{Number: 3, Name: "price", Valid: priceValid},
			{Number: 4, Name: "scope", Valid: scopeValid},
			{Number: 5, Name: "sign", Valid: signValid},
		},
		Store:  store,
		Submit: signFunc(params.Client),
		Lock:   signLock,
		Logger: params.Logger,
	})
}

type offerStore struct {
	client       *Client
	jobRequestID int64
}

func (s *offerStore) ListOpen(ctx context.Context) ([]wizard.Draft[Form], error) {
	existing, err := s.client.CheckByJob(ctx, s.jobRequestID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return []wizard.Draft[Form]{{ID: existing.ID, Form: Form{Offer: *existing}}}, nil
}

func (s *offerStore) Create(ctx context.Context) (wizard.Draft[Form], error) {
	offer, err := s.client.Create(ctx, s.jobRequestID)
	if err != nil {
		return wizard.Draft[Form]{}, err
	}
	return wizard.Draft[Form]{ID: offer.ID, Form: Form{Offer: *offer}}, nil
}

func (s *offerStore) Save(ctx context.Context, offerID int64, step int, form Form) (Form, error) {
	saved, err := s.client.Patch(ctx, offerID, patchForStep(step, form.Offer.CurrentVersion))
	if err != nil {
		return Form{}, err
	}
	form.Offer = *saved
	return form, nil
}

func patchForStep(step int, v OfferVersion) VersionPatch {
	switch step {
	case 1:
		return VersionPatch{Presentation: &v.Presentation}
	case 2:
		return VersionPatch{StartDate: &v.StartDate, EndDate: &v.EndDate}
	case 3:
		return VersionPatch{PriceType: &v.PriceType, PriceAmount: v.PriceAmount}
	case 4:
		return VersionPatch{Includes: &v.Includes, Excludes: &v.Excludes}
	default:
		return VersionPatch{
			Presentation: &v.Presentation,
			StartDate:    &v.StartDate,
			EndDate:      &v.EndDate,
			PriceType:    &v.PriceType,
			PriceAmount:  v.PriceAmount,
			Includes:     &v.Includes,
			Excludes:     &v.Excludes,
		}
	}
}

func signFunc(client *Client) wizard.Submitter[Form, Offer] {
	return func(ctx context.Context, offerID int64, form Form) (Offer, error) {
		if !form.ConfirmSign {
			return Offer{}, pkgerrors.New(pkgerrors.CodeValidation, "signing requires explicit confirmation")
		}
		signed, err := client.Sign(ctx, offerID, SignRequest{PersonalNumber: form.PersonalNumber})
		if err != nil {
			return Offer{}, err
		}
		return *signed, nil
	}
}
