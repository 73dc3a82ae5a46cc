package accounts

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/validate"
)

// Client talks to the accounts endpoint group.
type Client struct {
	api *httpx.Client
}

// NewClient builds an accounts client over the shared transport.
func NewClient(api *httpx.Client) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	return &Client{api: api}, nil
}

// Login authenticates with email and password. The call skips bearer auth;
// failed credentials surface the server message verbatim.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var envelope httpx.Envelope[LoginResult]
	err := c.api.Do(ctx, httpx.Request{
		Method:   http.MethodPost,
		Path:     "accounts/login/",
		Body:     req,
		SkipAuth: true,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	if envelope.Data.Access == "" || envelope.Data.Refresh == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response missing tokens")
	}
	return &envelope.Data, nil
}

// RegisterCompany creates a company account; a verification email is sent
// server-side.
func (c *Client) RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (*RegisteredUser, error) {
	return c.register(ctx, "accounts/register/company/", req)
}

// RegisterCustomer creates a customer account; a verification email is sent
// server-side.
func (c *Client) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*RegisteredUser, error) {
	return c.register(ctx, "accounts/register/customer/", req)
}

func (c *Client) register(ctx context.Context, path string, req any) (*RegisteredUser, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	var envelope httpx.Envelope[struct {
		User RegisteredUser `json:"user"`
	}]
	err := c.api.Do(ctx, httpx.Request{
		Method:   http.MethodPost,
		Path:     path,
		Body:     req,
		SkipAuth: true,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return &envelope.Data.User, nil
}

// ResendVerification requests a fresh verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.api.Post(ctx, "accounts/resend-verification/", map[string]string{"email": email}, nil)
}

// VerifyEmail redeems a verification token from the emailed link.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.api.Do(ctx, httpx.Request{
		Method:   http.MethodPost,
		Path:     "accounts/verify-email/",
		Body:     map[string]string{"token": token},
		SkipAuth: true,
	}, nil)
}

// ForgotPassword starts the reset flow for the given address.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.api.Do(ctx, httpx.Request{
		Method:   http.MethodPost,
		Path:     "accounts/forgot-password/",
		Body:     map[string]string{"email": email},
		SkipAuth: true,
	}, nil)
}

// ResetPassword redeems a reset token with the replacement password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.api.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		Path:   "accounts/reset-password/",
		Body: map[string]string{
			"token":    token,
			"password": password,
		},
		SkipAuth: true,
	}, nil)
}

// Me fetches the current user. A 403 email-unverified response propagates
// as a typed soft error; callers decide how much of the session survives.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var envelope httpx.Envelope[User]
	if err := c.api.Get(ctx, "accounts/me/", &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CompanyProfile fetches the company profile of the current user.
func (c *Client) CompanyProfile(ctx context.Context) (*CompanyProfile, error) {
	var envelope httpx.Envelope[CompanyProfile]
	if err := c.api.Get(ctx, "accounts/profile/company/", &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// PatchCompanyProfile applies a partial company profile update.
func (c *Client) PatchCompanyProfile(ctx context.Context, update CompanyProfileUpdate) (*CompanyProfile, error) {
	var envelope httpx.Envelope[CompanyProfile]
	if err := c.api.Patch(ctx, "accounts/profile/company/", update, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// PutCompanyProfile replaces the company profile.
func (c *Client) PutCompanyProfile(ctx context.Context, update CompanyProfileUpdate) (*CompanyProfile, error) {
	var envelope httpx.Envelope[CompanyProfile]
	if err := c.api.Put(ctx, "accounts/profile/company/", update, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CustomerProfile fetches the customer profile of the current user.
func (c *Client) CustomerProfile(ctx context.Context) (*CustomerProfile, error) {
	var envelope httpx.Envelope[CustomerProfile]
	if err := c.api.Get(ctx, "accounts/profile/customer/", &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// PutCustomerProfile replaces the customer profile.
func (c *Client) PutCustomerProfile(ctx context.Context, update CustomerProfileUpdate) (*CustomerProfile, error) {
	if err := validate.Struct(update); err != nil {
		return nil, err
	}
	var envelope httpx.Envelope[CustomerProfile]
	if err := c.api.Put(ctx, "accounts/profile/customer/", update, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// SubmitConsent records publication consent ahead of a job submission.
func (c *Client) SubmitConsent(ctx context.Context, req ConsentRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return c.api.Post(ctx, "accounts/customer/consent/", req, nil)
}

// DeleteAccount requests account deletion for the current user.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.api.Post(ctx, "accounts/delete/", nil, nil)
}
