// Package router maps dashboard paths to views and enforces the login guard on
// every transition.
package router

import (
	"errors"
	"fmt"
	"strings"
)

// View identifies the screen a route mounts.
type View int

const (
	ViewNone View = iota
	ViewLogin
	ViewRegister
	ViewDashboard
	ViewAccidents
	ViewAccident
	ViewObstacles
	ViewObstacle
	ViewUser
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewDashboard:
		return "dashboard"
	case ViewAccidents:
		return "accidents"
	case ViewAccident:
		return "accident"
	case ViewObstacles:
		return "obstacles"
	case ViewObstacle:
		return "obstacle"
	case ViewUser:
		return "user"
	default:
		return "none"
	}
}

// Route names.
const (
	NameLogin          = "Login"
	NameRegister       = "Register"
	NameDashboard      = "Dashboard"
	NameAccidentList   = "AccidentList"
	NameAccidentDetail = "AccidentDetail"
	NameObstacleList   = "ObstacleList"
	NameObstacleDetail = "ObstacleDetail"
	NameUserInfo       = "UserInfo"
)

// Paths used outside the table.
const (
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
)

// Route is one entry of the route table.
type Route struct {
	Path         string // pattern; ":name" segments capture parameters
	Name         string
	View         View
	Props        bool   // forward captured params to the view
	RequiresAuth bool   // guarded by the login check
	Redirect     string // when set, navigating here goes to Redirect instead
	Children     []Route
}

// Table is an ordered list of routes. The first match wins.
type Table []Route

// DefaultRoutes returns the dashboard's route table.
func DefaultRoutes() Table {
	return Table{
		{Path: "/", Redirect: PathDashboard},
		{Path: PathLogin, Name: NameLogin, View: ViewLogin},
		{Path: PathRegister, Name: NameRegister, View: ViewRegister},
		{Path: PathDashboard, Name: NameDashboard, View: ViewDashboard, RequiresAuth: true},
		{Path: "/accidents", Name: NameAccidentList, View: ViewAccidents, RequiresAuth: true},
		{Path: "/accidents/:id", Name: NameAccidentDetail, View: ViewAccident, Props: true, RequiresAuth: true},
		{Path: "/obstacles", Name: NameObstacleList, View: ViewObstacles, RequiresAuth: true},
		{Path: "/obstacles/:id", Name: NameObstacleDetail, View: ViewObstacle, Props: true, RequiresAuth: true},
		{Path: "/user/:id", Name: NameUserInfo, View: ViewUser, Props: true, RequiresAuth: true},
	}
}

// publicNames are the routes reachable without a session.
var publicNames = map[string]bool{
	NameLogin:    true,
	NameRegister: true,
}

// Validate checks the table invariants: names are unique, login and register are
// public, and every other named route requires auth.
func (t Table) Validate() error {
	seen := make(map[string]bool)
	var errs []error
	var walk func(routes []Route, parentAuth bool)
	walk = func(routes []Route, parentAuth bool) {
		for _, r := range routes {
			if r.Name != "" {
				if seen[r.Name] {
					errs = append(errs, fmt.Errorf("duplicate route name %q", r.Name))
				}
				seen[r.Name] = true

				auth := r.RequiresAuth || parentAuth
				switch {
				case publicNames[r.Name] && auth:
					errs = append(errs, fmt.Errorf("route %q must not require auth", r.Name))
				case !publicNames[r.Name] && !auth:
					errs = append(errs, fmt.Errorf("route %q must require auth", r.Name))
				}
			}
			if r.Redirect == "" && r.View == ViewNone && len(r.Children) == 0 {
				errs = append(errs, fmt.Errorf("route %q has neither view nor redirect", r.Path))
			}
			walk(r.Children, r.RequiresAuth || parentAuth)
		}
	}
	walk(t, false)
	if !seen[NameLogin] {
		errs = append(errs, fmt.Errorf("route table has no %q route", NameLogin))
	}
	return errors.Join(errs...)
}

// Find returns the top-level or nested route with the given name.
func (t Table) Find(name string) (Route, bool) {
	var find func(routes []Route, prefix string) (Route, bool)
	find = func(routes []Route, prefix string) (Route, bool) {
		for _, r := range routes {
			full := joinPath(prefix, r.Path)
			if r.Name == name {
				r.Path = full
				return r, true
			}
			if found, ok := find(r.Children, full); ok {
				return found, true
			}
		}
		return Route{}, false
	}
	return find(t, "")
}

// Match resolves path to the chain of routes that matched it, outermost first,
// and the captured parameters.
func (t Table) Match(path string) ([]Route, map[string]string, bool) {
	segs := splitPath(path)
	var match func(routes []Route, segs []string) ([]Route, map[string]string, bool)
	match = func(routes []Route, segs []string) ([]Route, map[string]string, bool) {
		for _, r := range routes {
			pat := splitPath(r.Path)
			params, rest, ok := matchPrefix(pat, segs)
			if !ok {
				continue
			}
			if len(rest) == 0 && (r.View != ViewNone || r.Redirect != "") {
				return []Route{r}, params, true
			}
			if chain, childParams, ok := match(r.Children, rest); ok {
				for k, v := range childParams {
					params[k] = v
				}
				return append([]Route{r}, chain...), params, true
			}
		}
		return nil, nil, false
	}
	return match(t, segs)
}

func matchPrefix(pattern, segs []string) (map[string]string, []string, bool) {
	if len(pattern) > len(segs) {
		return nil, nil, false
	}
	params := make(map[string]string)
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segs[i] == "" {
				return nil, nil, false
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, nil, false
		}
	}
	return params, segs[len(pattern):], true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return "/" + strings.Trim(p, "/")
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.Trim(p, "/")
}
