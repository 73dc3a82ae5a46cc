package guard

import (
	"testing"

	"github.com/ndertimnet/ndertimnet-client/internal/accounts"
	"github.com/ndertimnet/ndertimnet-client/internal/session"
	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
)

func snap(user *accounts.User, loading bool) session.Snapshot {
	s := session.Snapshot{User: user, Loading: loading}
	if user == nil {
		s.Step = session.StepUnauthenticated
		return s
	}
	switch {
	case !user.EmailVerified:
		s.Step = session.StepEmailUnverified
	case !user.ProfileCompleted:
		s.Step = session.StepProfileIncomplete
	default:
		s.Step = session.StepFull
	}
	return s
}

func customer(verified, complete bool) *accounts.User {
	return &accounts.User{ID: 1, Role: enums.RoleCustomer, EmailVerified: verified, ProfileCompleted: complete}
}

func company(verified, complete bool) *accounts.User {
	return &accounts.User{ID: 2, Role: enums.RoleCompany, EmailVerified: verified, ProfileCompleted: complete}
}

func TestRoleGuard(t *testing.T) {
	g := RoleGuard(enums.RoleCompany)

	tests := []struct {
		name string
		snap session.Snapshot
		want Decision
	}{
		{"pending while loading", snap(nil, true), Pending()},
		{"unauthenticated to login", snap(nil, false), Redirect(PathLogin)},
		{"wrong role goes home", snap(customer(true, true), false), Redirect(PathHome)},
		{"allowed role", snap(company(true, true), false), Allow()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g(tt.snap); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRoleGuardMultipleRoles(t *testing.T) {
	g := RoleGuard(enums.RoleCustomer, enums.RoleAdmin)
	if got := g(snap(customer(true, true), false)); got != Allow() {
		t.Fatalf("customer should pass, got %+v", got)
	}
	if got := g(snap(company(true, true), false)); got != Redirect(PathHome) {
		t.Fatalf("company should be redirected home, got %+v", got)
	}
}

func TestPublicOnly(t *testing.T) {
	g := PublicOnly(PathHome)
	if got := g(snap(nil, true)); got != Pending() {
		t.Fatalf("loading must stay pending, got %+v", got)
	}
	if got := g(snap(nil, false)); got != Allow() {
		t.Fatalf("anonymous user should see public page, got %+v", got)
	}
	if got := g(snap(customer(true, true), false)); got != Redirect(PathHome) {
		t.Fatalf("authenticated user should be sent home, got %+v", got)
	}
}

func TestOnboardingGuard(t *testing.T) {
	tests := []struct {
		name string
		path string
		snap session.Snapshot
		want Decision
	}{
		{"pending while loading", "/jobs", snap(nil, true), Pending()},
		{"anonymous to login", "/jobs", snap(nil, false), Redirect(PathLogin)},
		{"unverified funneled to verify page", "/jobs", snap(customer(false, false), false), Redirect(PathVerifyEmail)},
		{"unverified may stay on verify page", PathVerifyEmail, snap(customer(false, false), false), Allow()},
		{"incomplete customer to customer profile", "/jobs", snap(customer(true, false), false), Redirect(PathCustomerProfile)},
		{"incomplete company to company profile", "/leads", snap(company(true, false), false), Redirect(PathCompanyProfile)},
		{"incomplete profile may edit profile", PathCompanyProfile, snap(company(true, false), false), Allow()},
		{"incomplete profile may reach settings", "/settings", snap(customer(true, false), false), Allow()},
		{"full access", "/jobs", snap(customer(true, true), false), Allow()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OnboardingGuard(tt.path)(tt.snap); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestChainFirstNonAllowWins(t *testing.T) {
	g := Chain(
		OnboardingGuard("/leads"),
		RoleGuard(enums.RoleCompany),
	)

	if got := g(snap(customer(false, false), false)); got != Redirect(PathVerifyEmail) {
		t.Fatalf("onboarding guard should fire first, got %+v", got)
	}
	if got := g(snap(customer(true, true), false)); got != Redirect(PathHome) {
		t.Fatalf("role guard should fire second, got %+v", got)
	}
	if got := g(snap(company(true, true), false)); got != Allow() {
		t.Fatalf("company with full access should pass, got %+v", got)
	}
	if got := g(snap(nil, true)); got != Pending() {
		t.Fatalf("pending must propagate, got %+v", got)
	}
}
