package router

import "github.com/intellidetect/dashboard/pkg/session"

// Decision is the outcome of one navigation attempt.
type Decision int

const (
	// Allowed means the requested route was reached unchanged.
	Allowed Decision = iota
	// Redirected means the guard sent the navigation to the login route.
	Redirected
)

func (d Decision) String() string {
	if d == Redirected {
		return "redirected"
	}
	return "allowed"
}

// Guard decides whether a matched route chain may be entered. It is synchronous
// and consults only the session store: a stored token key counts as logged in.
type Guard struct {
	store session.Store
}

// NewGuard creates a guard backed by store.
func NewGuard(store session.Store) *Guard {
	return &Guard{store: store}
}

// RequiresAuth reports whether any route in the matched chain is protected.
func RequiresAuth(matched []Route) bool {
	for _, r := range matched {
		if r.RequiresAuth {
			return true
		}
	}
	return false
}

// Check returns Redirected when the chain is protected and no session exists.
func (g *Guard) Check(matched []Route) Decision {
	if RequiresAuth(matched) && !session.LoggedIn(g.store) {
		return Redirected
	}
	return Allowed
}
