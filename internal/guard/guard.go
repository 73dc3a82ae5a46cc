// Package guard decides whether a navigation target is reachable for the
// current session. Guards are pure functions over a session snapshot so the
// same rules apply to the CLI and to any embedding UI.
package guard

import (
	"github.com/ndertimnet/ndertimnet-client/internal/session"
	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
)

// Well known navigation targets.
const (
	PathLogin           = "/login"
	PathHome            = "/"
	PathVerifyEmail     = "/verify-email"
	PathCompanyProfile  = "/company/profile"
	PathCustomerProfile = "/customer/profile"
)

// Verdict classifies a guard decision.
type Verdict int

const (
	// VerdictPending means the session is still loading. Callers must not
	// redirect on a pending verdict or users bounce off pages they are
	// entitled to see.
	VerdictPending Verdict = iota
	VerdictAllow
	VerdictRedirect
)

// Decision is the outcome of evaluating a guard against a snapshot.
type Decision struct {
	Verdict Verdict
	// Target is the redirect destination. Empty unless Verdict is
	// VerdictRedirect.
	Target string
}

func Pending() Decision           { return Decision{Verdict: VerdictPending} }
func Allow() Decision             { return Decision{Verdict: VerdictAllow} }
func Redirect(to string) Decision { return Decision{Verdict: VerdictRedirect, Target: to} }

// Guard evaluates one access rule against a session snapshot.
type Guard func(snap session.Snapshot) Decision

// Chain composes guards; the first non-Allow decision wins.
func Chain(guards ...Guard) Guard {
	return func(snap session.Snapshot) Decision {
		for _, g := range guards {
			if d := g(snap); d.Verdict != VerdictAllow {
				return d
			}
		}
		return Allow()
	}
}

// RoleGuard admits authenticated users whose role is in allowed.
// Unauthenticated users go to login, wrong-role users go home.
func RoleGuard(allowed ...enums.Role) Guard {
	return func(snap session.Snapshot) Decision {
		if snap.Loading {
			return Pending()
		}
		if !snap.Authenticated() {
			return Redirect(PathLogin)
		}
		for _, role := range allowed {
			if snap.Role() == role {
				return Allow()
			}
		}
		return Redirect(PathHome)
	}
}

// PublicOnly sends authenticated users away from pages that only make sense
// logged out, such as login and registration.
func PublicOnly(target string) Guard {
	return func(snap session.Snapshot) Decision {
		if snap.Loading {
			return Pending()
		}
		if snap.Authenticated() {
			return Redirect(target)
		}
		return Allow()
	}
}

// onboardingAllowed lists paths reachable while the profile is incomplete.
// Users must be able to finish their profile and manage their account.
var onboardingAllowed = map[string]bool{
	PathCompanyProfile:  true,
	PathCustomerProfile: true,
	PathVerifyEmail:     true,
	PathHome:            true,
	"/settings":         true,
	"/logout":           true,
}

// OnboardingGuard funnels users through the verification and profile steps
// before opening the rest of the app. path is the page being entered.
func OnboardingGuard(path string) Guard {
	return func(snap session.Snapshot) Decision {
		if snap.Loading {
			return Pending()
		}
		switch snap.Step {
		case session.StepUnauthenticated:
			return Redirect(PathLogin)
		case session.StepEmailUnverified:
			if path == PathVerifyEmail {
				return Allow()
			}
			return Redirect(PathVerifyEmail)
		case session.StepProfileIncomplete:
			if onboardingAllowed[path] {
				return Allow()
			}
			return Redirect(profilePathFor(snap))
		default:
			return Allow()
		}
	}
}

func profilePathFor(snap session.Snapshot) string {
	if snap.IsCompany() {
		return PathCompanyProfile
	}
	return PathCustomerProfile
}
