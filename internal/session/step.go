package session

// Step is the ordinal onboarding classification derived from the session.
// It is recomputed by a pure reducer whenever session state changes; it is
// never set directly.
type Step int

const (
	StepUnauthenticated   Step = 0
	StepEmailUnverified   Step = 1
	StepProfileIncomplete Step = 2
	StepFull              Step = 3
)

// String implements fmt.Stringer.
func (s Step) String() string {
	switch s {
	case StepUnauthenticated:
		return "unauthenticated"
	case StepEmailUnverified:
		return "email_unverified"
	case StepProfileIncomplete:
		return "profile_incomplete"
	case StepFull:
		return "full"
	}
	return "unknown"
}

// deriveStep classifies a session from its two server-reported booleans.
// The email check precedes the profile check; an absent user is always
// step 0.
func deriveStep(authenticated, emailVerified, profileCompleted bool) Step {
	if !authenticated {
		return StepUnauthenticated
	}
	if !emailVerified {
		return StepEmailUnverified
	}
	if !profileCompleted {
		return StepProfileIncomplete
	}
	return StepFull
}
