package mockapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

type countingNavigator struct {
	calls atomic.Int32
}

func (n *countingNavigator) RedirectToLogin() {
	n.calls.Add(1)
}

type testClock struct {
	nanos atomic.Int64
}

func newTestClock() *testClock {
	c := &testClock{}
	c.nanos.Store(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *testClock) Now() time.Time {
	return time.Unix(0, c.nanos.Load()).UTC()
}

func (c *testClock) Advance(d time.Duration) {
	c.nanos.Add(int64(d))
}

type fixture struct {
	srv   *Server
	svc   *client.Services
	store *session.MemoryStore
	nav   *countingNavigator
	clock *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newTestClock()
	srv := New(WithClock(clock.Now), WithTokenTTL(time.Hour))
	if err := srv.Seed(); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	store := session.NewMemoryStore()
	nav := &countingNavigator{}
	svc := client.NewServices(hs.URL+BasePath, hs.URL+BasePath, store, client.WithNavigator(nav))
	return &fixture{srv: srv, svc: svc, store: store, nav: nav, clock: clock}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.svc.Users().Login(context.Background(), domain.Credentials{Username: DemoUsername, Password: DemoPassword})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
}

func TestLoginThenListAccidents(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	if !session.LoggedIn(f.store) {
		t.Fatal("expected token in store after login")
	}
	if u := session.CachedUser(f.store); u == nil || u.Username != DemoUsername {
		t.Fatalf("cached user = %+v, want %q", u, DemoUsername)
	}

	page, err := f.svc.Accidents.ListAccidents(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("ListAccidents() error: %v", err)
	}
	if page.Current != 1 || page.Size != 10 {
		t.Errorf("got page %d size %d, want 1 and 10", page.Current, page.Size)
	}
	if len(page.Records) != 10 {
		t.Errorf("got %d records, want 10", len(page.Records))
	}
	if page.Total != 23 || page.Pages != 3 {
		t.Errorf("got total %d pages %d, want 23 and 3", page.Total, page.Pages)
	}
	if err := page.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestProtectedEndpointWithoutToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Obstacles.ObstacleStats(context.Background())
	if !client.IsUnauthorized(err) {
		t.Fatalf("got %v, want unauthorized", err)
	}
	if got := f.nav.calls.Load(); got != 1 {
		t.Errorf("RedirectToLogin called %d times, want 1", got)
	}
	if got := client.Message(err); got != "login required" {
		t.Errorf("got message %q, want %q", got, "login required")
	}
}

func TestExpiredTokenClearsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.clock.Advance(2 * time.Hour)

	_, err := f.svc.Accidents.AccidentStats(context.Background())
	if !client.IsUnauthorized(err) {
		t.Fatalf("got %v, want unauthorized", err)
	}
	if session.LoggedIn(f.store) {
		t.Error("token still present after 401")
	}
	if session.CachedUser(f.store) != nil {
		t.Error("cached user still present after 401")
	}
	if got := f.nav.calls.Load(); got != 1 {
		t.Errorf("RedirectToLogin called %d times, want 1", got)
	}
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	f := newFixture(t)

	other := New(WithSecret("another-secret"), WithClock(f.clock.Now))
	u, err := other.AddUser(domain.Registration{Username: "mallory", Password: "pw"})
	if err != nil {
		t.Fatalf("AddUser() error: %v", err)
	}
	forged, err := other.issueToken(u)
	if err != nil {
		t.Fatalf("issueToken() error: %v", err)
	}
	f.store.Set(session.KeyToken, forged) //nolint:errcheck

	_, err = f.svc.Accidents.AccidentStats(context.Background())
	if !client.IsUnauthorized(err) {
		t.Fatalf("got %v, want unauthorized", err)
	}
	if got := client.Message(err); got != "invalid token" {
		t.Errorf("got message %q, want %q", got, "invalid token")
	}
}

func TestWrongPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Users().Login(context.Background(), domain.Credentials{Username: DemoUsername, Password: "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if client.IsUnauthorized(err) {
		t.Error("bad credentials must not be reported as an expired session")
	}
	if got := client.Message(err); got != "wrong username or password" {
		t.Errorf("got message %q", got)
	}
	if session.LoggedIn(f.store) {
		t.Error("token stored after failed login")
	}
	if got := f.nav.calls.Load(); got != 0 {
		t.Errorf("RedirectToLogin called %d times, want 0", got)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Users().Register(ctx, domain.Registration{Username: "carol", Password: "pw", Email: "c@example.com"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if u.ID == 0 || u.Username != "carol" {
		t.Errorf("got user %+v", u)
	}

	_, err = f.svc.Users().Register(ctx, domain.Registration{Username: "carol", Password: "pw2"})
	if !client.IsStatus(err, http.StatusConflict) {
		t.Errorf("got %v, want 409", err)
	}
}

func TestPasswordChangeAndDelete(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()
	users := f.svc.Users()

	if err := users.UpdatePassword(ctx, domain.PasswordChange{OldPassword: "bad", NewPassword: "x"}); err == nil {
		t.Error("expected error for wrong old password")
	}
	if err := users.UpdatePassword(ctx, domain.PasswordChange{OldPassword: DemoPassword, NewPassword: "fresh"}); err != nil {
		t.Fatalf("UpdatePassword() error: %v", err)
	}
	if _, err := users.Login(ctx, domain.Credentials{Username: DemoUsername, Password: "fresh"}); err != nil {
		t.Fatalf("Login() with new password error: %v", err)
	}

	token, _ := session.Token(f.store)
	if err := users.DeleteUser(ctx); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if session.LoggedIn(f.store) {
		t.Error("session still present after DeleteUser")
	}

	f.store.Set(session.KeyToken, token) //nolint:errcheck
	if _, err := f.svc.Accidents.AccidentStats(ctx); !client.IsUnauthorized(err) {
		t.Errorf("got %v, want unauthorized for deleted account", err)
	}
}

func TestUserLookup(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	byName, err := f.svc.Users().GetUserByUsername(ctx, DemoUsername)
	if err != nil {
		t.Fatalf("GetUserByUsername() error: %v", err)
	}
	byID, err := f.svc.Users().GetUser(ctx, byName.ID)
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if byID.Email != byName.Email {
		t.Errorf("got email %q, want %q", byID.Email, byName.Email)
	}

	_, err = f.svc.Users().GetUserByUsername(ctx, "ghost")
	if !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("got %v, want 404", err)
	}
}

func TestAccidentDisplayAndStats(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	created, err := f.svc.Accidents.CreateAccident(ctx, domain.AccidentInput{
		VideoURL:                 "https://example.com/v.mp4",
		AccidentDescription:      "rear-end",
		AccidentDescriptionState: resolvedState,
	})
	if err != nil {
		t.Fatalf("CreateAccident() error: %v", err)
	}

	updated, err := f.svc.Accidents.UpdateAccidentDisplay(ctx, created.ID, "shown on wall")
	if err != nil {
		t.Fatalf("UpdateAccidentDisplay() error: %v", err)
	}
	if updated.DisplayInfo != "shown on wall" {
		t.Errorf("got displayInfo %q", updated.DisplayInfo)
	}

	got, err := f.svc.Accidents.GetAccident(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAccident() error: %v", err)
	}
	if got.DisplayInfo != "shown on wall" {
		t.Errorf("stored displayInfo %q", got.DisplayInfo)
	}

	st, err := f.svc.Accidents.AccidentStats(ctx)
	if err != nil {
		t.Fatalf("AccidentStats() error: %v", err)
	}
	if st.TotalAccidents != 24 {
		t.Errorf("got total %d, want 24", st.TotalAccidents)
	}
	if st.ResolvedAccidents+st.PendingAccidents != st.TotalAccidents {
		t.Errorf("resolved %d + pending %d != total %d", st.ResolvedAccidents, st.PendingAccidents, st.TotalAccidents)
	}

	if _, err := f.svc.Accidents.GetAccident(ctx, 99999); !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("got %v, want 404", err)
	}
}

func TestObstacleStatsAndHighRisk(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	st, err := f.svc.Obstacles.ObstacleStats(ctx)
	if err != nil {
		t.Fatalf("ObstacleStats() error: %v", err)
	}
	high, err := f.svc.Obstacles.HighRiskObstacles(ctx)
	if err != nil {
		t.Fatalf("HighRiskObstacles() error: %v", err)
	}
	if st.HighRiskObstacles != len(high) {
		t.Errorf("stats says %d high-risk, list has %d", st.HighRiskObstacles, len(high))
	}
	for _, o := range high {
		if o.RiskLevel != domain.RiskHigh {
			t.Errorf("obstacle %d has risk %q", o.ID, o.RiskLevel)
		}
	}

	sum := 0
	for _, n := range st.ByType {
		sum += n
	}
	if sum != st.TotalObstacles {
		t.Errorf("byType sums to %d, total is %d", sum, st.TotalObstacles)
	}

	_, err = f.svc.Obstacles.CreateObstacle(ctx, domain.ObstacleInput{Type: "boulder"})
	if !client.IsStatus(err, http.StatusBadRequest) {
		t.Errorf("got %v, want 400 for unknown type", err)
	}
}

func TestDetections(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	realtime, err := f.svc.Obstacles.RealtimeDetections(ctx)
	if err != nil {
		t.Fatalf("RealtimeDetections() error: %v", err)
	}
	if len(realtime) != realtimeWindow {
		t.Errorf("got %d realtime detections, want %d", len(realtime), realtimeWindow)
	}

	now := f.clock.Now()
	recent, err := f.svc.Obstacles.HistoryDetections(ctx, now.Add(-10*time.Minute), now)
	if err != nil {
		t.Fatalf("HistoryDetections() error: %v", err)
	}
	for _, d := range recent {
		if d.Timestamp.Before(now.Add(-10 * time.Minute)) {
			t.Errorf("detection %d at %v is outside the window", d.ID, d.Timestamp)
		}
	}
	all, err := f.svc.Obstacles.HistoryDetections(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("HistoryDetections() error: %v", err)
	}
	if len(recent) >= len(all) {
		t.Errorf("window returned %d of %d detections", len(recent), len(all))
	}

	err = f.svc.Obstacles.PostManualDetection(ctx, domain.ManualDetection{Type: domain.DetectionTrash, Size: 12})
	if err != nil {
		t.Fatalf("PostManualDetection() error: %v", err)
	}
	after, err := f.svc.Obstacles.HistoryDetections(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("HistoryDetections() error: %v", err)
	}
	if len(after) != len(all)+1 {
		t.Errorf("got %d detections after manual post, want %d", len(after), len(all)+1)
	}
}

func TestPaginate(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		query       string
		wantCurrent int
		wantSize    int
		wantLen     int
		wantPages   int
	}{
		{"", 1, 10, 10, 3},
		{"?page=3&size=10", 3, 10, 3, 3},
		{"?page=9&size=10", 9, 10, 0, 3},
		{"?page=-1&size=0", 1, 10, 10, 3},
		{"?page=1&size=50", 1, 50, 23, 1},
		{"?page=abc", 1, 10, 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/accidents"+tt.query, nil)
			p := paginate(items, r)
			if p.Current != tt.wantCurrent || p.Size != tt.wantSize {
				t.Errorf("got current %d size %d, want %d and %d", p.Current, p.Size, tt.wantCurrent, tt.wantSize)
			}
			if len(p.Records) != tt.wantLen {
				t.Errorf("got %d records, want %d", len(p.Records), tt.wantLen)
			}
			if p.Pages != tt.wantPages {
				t.Errorf("got %d pages, want %d", p.Pages, tt.wantPages)
			}
		})
	}
}
