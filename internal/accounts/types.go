package accounts

import (
	"time"

	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
)

// User is the authenticated account record served by accounts/me/. The two
// booleans drive the onboarding derivation; the nested profile depends on
// the role.
type User struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Role             enums.Role `json:"role"`
	EmailVerified    bool       `json:"email_verified"`
	ProfileCompleted bool       `json:"profile_completed"`

	Company  *CompanyProfile  `json:"company,omitempty"`
	Customer *CustomerProfile `json:"customer,omitempty"`
}

// CompanyProfile is the company-side profile with its completion tracking.
type CompanyProfile struct {
	ID                int64   `json:"id"`
	CompanyName       string  `json:"company_name"`
	OrgNumber         string  `json:"org_number"`
	Phone             string  `json:"phone"`
	Website           string  `json:"website"`
	Address           string  `json:"address"`
	Description       string  `json:"description"`
	City              *int64  `json:"city"`
	Cities            []int64 `json:"cities"`
	Professions       []int64 `json:"professions"`
	ProfileStep       int     `json:"profile_step"`
	ProfileCompletion int     `json:"profile_completion"`
	IsActive          bool    `json:"is_active"`
}

// CustomerProfile is the customer-side contact profile.
type CustomerProfile struct {
	ID      int64  `json:"id"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LoginResult is the payload under the login envelope's data key.
type LoginResult struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user"`
}

// LoginRequest authenticates an existing account. RememberMe selects the
// durable storage scope.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterCompanyRequest creates a company account pending verification.
type RegisterCompanyRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	CompanyName string `json:"company_name" validate:"required"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,min=5"`
}

// RegisterCustomerRequest creates a customer account pending verification.
type RegisterCustomerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// RegisteredUser is the trimmed record returned by the register endpoints.
type RegisteredUser struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Role  enums.Role `json:"role"`
}

// ConsentRequest records the customer's publication consent with their
// personal number, required before a job request can be submitted.
type ConsentRequest struct {
	PersonalNumber string `json:"personal_number" validate:"required"`
	Consent        bool   `json:"consent" validate:"eq=true"`
}

// CompanyProfileUpdate patches company profile fields; nil fields are left
// untouched by the server.
type CompanyProfileUpdate struct {
	CompanyName *string  `json:"company_name,omitempty"`
	OrgNumber   *string  `json:"org_number,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Website     *string  `json:"website,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Description *string  `json:"description,omitempty"`
	City        *int64   `json:"city,omitempty"`
	Cities      *[]int64 `json:"cities,omitempty"`
	Professions *[]int64 `json:"professions,omitempty"`
	ProfileStep *int     `json:"profile_step,omitempty"`
}

// CustomerProfileUpdate replaces the customer profile.
type CustomerProfileUpdate struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// VerificationState mirrors the timestamps around a pending verification.
type VerificationState struct {
	Email     string    `json:"email"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
