package router

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/intellidetect/dashboard/pkg/session"
)

// ErrNotFound is returned when no route matches a path.
var ErrNotFound = errors.New("router: no route matches path")

// maxRedirects bounds redirect chains in the route table.
const maxRedirects = 8

// Location is a resolved route.
type Location struct {
	Path    string
	Name    string
	View    View
	Params  map[string]string // nil unless the route forwards props
	Matched []Route
}

// Param returns a captured route parameter.
func (l Location) Param(name string) string {
	return l.Params[name]
}

// Transition records one navigation attempt.
type Transition struct {
	Requested string
	From      Location
	To        Location
	Decision  Decision
}

// Router owns the current location. It is safe for concurrent use; API calls
// running on background goroutines may call RedirectToLogin at any time.
type Router struct {
	table Table
	guard *Guard
	log   zerolog.Logger

	mu        sync.Mutex
	current   Location
	listeners []func(Transition)
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for navigation tracing.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) {
		r.log = l
	}
}

// New creates a router over table, guarded by the session in store.
func New(table Table, store session.Store, opts ...Option) (*Router, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("router.New: %w", err)
	}
	r := &Router{
		table: table,
		guard: NewGuard(store),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// OnChange registers fn to run after every navigation attempt. fn runs outside
// the router lock.
func (r *Router) OnChange(fn func(Transition)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Current returns the current location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Push navigates to path. The guard runs before the location changes; a
// protected route without a session lands on the login route instead.
func (r *Router) Push(path string) (Location, Decision, error) {
	loc, err := r.resolve(path)
	if err != nil {
		return Location{}, Allowed, err
	}

	decision := r.guard.Check(loc.Matched)
	if decision == Redirected {
		loc, err = r.resolve(PathLogin)
		if err != nil {
			return Location{}, Redirected, err
		}
	}

	r.mu.Lock()
	from := r.current
	r.current = loc
	listeners := append([]func(Transition){}, r.listeners...)
	r.mu.Unlock()

	t := Transition{Requested: path, From: from, To: loc, Decision: decision}
	r.log.Debug().Str("requested", path).Str("to", loc.Path).Str("decision", decision.String()).Msg("navigate")
	for _, fn := range listeners {
		fn(t)
	}
	return loc, decision, nil
}

// PushName navigates to the named route, filling ":param" segments from params.
func (r *Router) PushName(name string, params map[string]string) (Location, Decision, error) {
	route, ok := r.table.Find(name)
	if !ok {
		return Location{}, Allowed, fmt.Errorf("%w: route name %q", ErrNotFound, name)
	}
	segs := splitPath(route.Path)
	for i, s := range segs {
		if strings.HasPrefix(s, ":") {
			v, ok := params[s[1:]]
			if !ok || v == "" {
				return Location{}, Allowed, fmt.Errorf("router.PushName: missing param %q for %s", s[1:], name)
			}
			segs[i] = v
		}
	}
	return r.Push("/" + strings.Join(segs, "/"))
}

// RedirectToLogin forces navigation to the login route.
func (r *Router) RedirectToLogin() {
	if _, _, err := r.Push(PathLogin); err != nil {
		r.log.Error().Err(err).Msg("redirect to login")
	}
}

// resolve follows redirects and matches path against the table.
func (r *Router) resolve(path string) (Location, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "/"
	}

	for hops := 0; hops <= maxRedirects; hops++ {
		matched, params, ok := r.table.Match(path)
		if !ok {
			return Location{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		leaf := matched[len(matched)-1]
		if leaf.Redirect != "" {
			path = leaf.Redirect
			continue
		}
		loc := Location{
			Path:    "/" + strings.Join(splitPath(path), "/"),
			Name:    leaf.Name,
			View:    leaf.View,
			Matched: matched,
		}
		if leaf.Props {
			loc.Params = params
		}
		return loc, nil
	}
	return Location{}, fmt.Errorf("router: too many redirects resolving %s", path)
}
