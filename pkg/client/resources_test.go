package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

func TestListAccidentsPaging(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		wantPage string
		wantSize string
	}{
		{"defaults", 0, 0, "1", "10"},
		{"explicit", 3, 25, "3", "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			type query struct{ page, size string }
			seen := make(chan query, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/accidents" {
					http.NotFound(w, r)
					return
				}
				seen <- query{r.URL.Query().Get("page"), r.URL.Query().Get("size")}
				writeEnvelope(w, http.StatusOK, 0, "ok", domain.Page[domain.Accident]{
					Records: []domain.Accident{{ID: 1}, {ID: 2}},
					Total:   2,
					Size:    10,
					Current: 1,
					Pages:   1,
				})
			}))
			defer srv.Close()

			c := New(srv.URL, nil)
			p, err := c.ListAccidents(context.Background(), tt.page, tt.size)
			if err != nil {
				t.Fatalf("ListAccidents() error: %v", err)
			}
			q := <-seen
			if q.page != tt.wantPage || q.size != tt.wantSize {
				t.Errorf("query page=%s size=%s, want page=%s size=%s", q.page, q.size, tt.wantPage, tt.wantSize)
			}
			if len(p.Records) != 2 {
				t.Fatalf("got %d records, want 2", len(p.Records))
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestOversizedPageIsLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accidents":
			writeEnvelope(w, http.StatusOK, 0, "ok", domain.Page[domain.Accident]{
				Records: []domain.Accident{{ID: 1}, {ID: 2}, {ID: 3}},
				Total:   3, Size: 2, Current: 1, Pages: 2,
			})
		case "/obstacles":
			writeEnvelope(w, http.StatusOK, 0, "ok", domain.Page[domain.Obstacle]{
				Records: []domain.Obstacle{{ID: 1}, {ID: 2}},
				Total:   2, Size: 2, Current: 1, Pages: 1,
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := New(srv.URL, nil, WithLogger(zerolog.New(&buf)))

	p, err := c.ListAccidents(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListAccidents() error: %v", err)
	}
	if len(p.Records) != 3 {
		t.Errorf("len(Records) = %d, want 3", len(p.Records))
	}
	if !strings.Contains(buf.String(), "oversized page") {
		t.Errorf("log = %q, want an oversized page warning", buf.String())
	}

	buf.Reset()
	if _, err := c.ListObstacles(context.Background(), 1, 2); err != nil {
		t.Fatalf("ListObstacles() error: %v", err)
	}
	if strings.Contains(buf.String(), "oversized page") {
		t.Errorf("log = %q, want no warning for a full page", buf.String())
	}
}

func TestCreateAccident(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/accidents" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in domain.AccidentInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeEnvelope(w, http.StatusBadRequest, 1, "bad body", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, 0, "ok", domain.Accident{
			ID:                       42,
			VideoURL:                 in.VideoURL,
			AccidentDescription:      in.AccidentDescription,
			AccidentDescriptionState: in.AccidentDescriptionState,
			CreateTime:               "2024-05-01T10:00:00Z",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	a, err := c.CreateAccident(context.Background(), domain.AccidentInput{
		VideoURL:                 "http://cdn/v.mp4",
		AccidentDescription:      "collision",
		AccidentDescriptionState: "pending",
	})
	if err != nil {
		t.Fatalf("CreateAccident() error: %v", err)
	}
	if a.ID != 42 || a.CreateTime == "" {
		t.Errorf("CreateAccident() = %+v, want server copy with id 42", a)
	}
}

func TestUpdateAccidentDisplay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/accidents/7/display" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		writeEnvelope(w, http.StatusOK, 0, "ok", domain.Accident{ID: 7, DisplayInfo: body["displayInfo"]})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	a, err := c.UpdateAccidentDisplay(context.Background(), 7, "lane 2 closed")
	if err != nil {
		t.Fatalf("UpdateAccidentDisplay() error: %v", err)
	}
	if a.DisplayInfo != "lane 2 closed" {
		t.Errorf("DisplayInfo = %q, want %q", a.DisplayInfo, "lane 2 closed")
	}
}

func TestObstacleEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/obstacles/high-risk":
			writeEnvelope(w, http.StatusOK, 200, "success", []domain.Obstacle{
				{ID: 1, Type: domain.ObstacleCrane, RiskLevel: domain.RiskHigh},
			})
		case "/obstacles/stats":
			writeEnvelope(w, http.StatusOK, 200, "success", domain.ObstacleStats{
				TotalObstacles:    4,
				HighRiskObstacles: 1,
				ByType:            map[domain.ObstacleType]int{domain.ObstacleCrane: 1, domain.ObstacleTree: 3},
			})
		case "/obstacles/3":
			writeEnvelope(w, http.StatusOK, 200, "success", domain.Obstacle{ID: 3, Type: domain.ObstacleTree})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	ctx := context.Background()

	high, err := c.HighRiskObstacles(ctx)
	if err != nil {
		t.Fatalf("HighRiskObstacles() error: %v", err)
	}
	if len(high) != 1 || high[0].Type != domain.ObstacleCrane {
		t.Errorf("HighRiskObstacles() = %+v, want one crane", high)
	}

	stats, err := c.ObstacleStats(ctx)
	if err != nil {
		t.Fatalf("ObstacleStats() error: %v", err)
	}
	if stats.ByType[domain.ObstacleTree] != 3 {
		t.Errorf("ByType[tree] = %d, want 3", stats.ByType[domain.ObstacleTree])
	}

	o, err := c.GetObstacle(ctx, 3)
	if err != nil {
		t.Fatalf("GetObstacle() error: %v", err)
	}
	if o.ID != 3 {
		t.Errorf("GetObstacle().ID = %d, want 3", o.ID)
	}
}

func TestHistoryDetectionsQuery(t *testing.T) {
	seen := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL.Query().Get("startTime")
		seen <- r.URL.Query().Get("endTime")
		writeEnvelope(w, http.StatusOK, 0, "ok", []domain.Detection{
			{ID: 1, Type: domain.DetectionStone, Confidence: 0.92},
			{ID: 2, Type: domain.DetectionTrash, Confidence: 0.85},
		})
	}))
	defer srv.Close()

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	c := New(srv.URL, nil)
	ds, err := c.HistoryDetections(context.Background(), start, end)
	if err != nil {
		t.Fatalf("HistoryDetections() error: %v", err)
	}
	if got := <-seen; got != "2024-05-01T08:00:00Z" {
		t.Errorf("startTime = %q", got)
	}
	if got := <-seen; got != "2024-05-01T10:00:00Z" {
		t.Errorf("endTime = %q", got)
	}
	if len(ds) != 2 || ds[1].Type != domain.DetectionTrash {
		t.Errorf("HistoryDetections() = %+v", ds)
	}
}

func TestVoidResponseWithNullData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusOK, 0, "ok", nil)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if err := c.UpdatePassword(context.Background(), domain.PasswordChange{OldPassword: "a", NewPassword: "b"}); err != nil {
		t.Fatalf("UpdatePassword() error: %v", err)
	}
	if err := c.PostManualDetection(context.Background(), domain.ManualDetection{Type: domain.DetectionStone, Size: 12}); err != nil {
		t.Fatalf("PostManualDetection() error: %v", err)
	}
}

func TestDeleteUserClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/users/delete" {
			http.NotFound(w, r)
			return
		}
		writeEnvelope(w, http.StatusOK, 0, "ok", nil)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	session.SaveLogin(store, "tok", &domain.User{ID: 1, Username: "alice"}) //nolint:errcheck
	c := New(srv.URL, store)

	if err := c.DeleteUser(context.Background()); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if session.LoggedIn(store) {
		t.Error("token still stored after DeleteUser()")
	}
	if session.CachedUser(store) != nil {
		t.Error("profile still cached after DeleteUser()")
	}
}

func TestUpdateUserRefreshesCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var u domain.User
		json.NewDecoder(r.Body).Decode(&u) //nolint:errcheck
		u.CreateTime = "2024-01-01"
		writeEnvelope(w, http.StatusOK, 0, "ok", u)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	session.SaveLogin(store, "tok", &domain.User{ID: 1, Username: "alice"}) //nolint:errcheck
	c := New(srv.URL, store)

	if _, err := c.UpdateUser(context.Background(), domain.User{ID: 1, Username: "alice", Email: "new@example.com"}); err != nil {
		t.Fatalf("UpdateUser() error: %v", err)
	}
	if u := session.CachedUser(store); u == nil || u.Email != "new@example.com" {
		t.Errorf("CachedUser() = %+v, want refreshed email", u)
	}
}

func TestGetUserByUsernameEscapesPath(t *testing.T) {
	seen := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL.EscapedPath()
		writeEnvelope(w, http.StatusOK, 0, "ok", domain.User{ID: 2, Username: "bob smith"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.GetUserByUsername(context.Background(), "bob smith"); err != nil {
		t.Fatalf("GetUserByUsername() error: %v", err)
	}
	if got := <-seen; got != "/users/info/bob%20smith" {
		t.Errorf("path = %q, want %q", got, "/users/info/bob%20smith")
	}
}

func TestServicesShareSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, 401, "expired", nil)
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	store.Set(session.KeyToken, "tok") //nolint:errcheck
	nav := &countingNavigator{}
	svc := NewServices("http://accidents.invalid", srv.URL, store, WithNavigator(nav))

	if svc.Users() != svc.Accidents {
		t.Error("Users() should be the accident service client")
	}
	if _, err := svc.Obstacles.HighRiskObstacles(context.Background()); !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if session.LoggedIn(svc.Accidents.Store()) {
		t.Error("accident client still sees a session after obstacle 401")
	}
	if nav.calls.Load() != 1 {
		t.Errorf("RedirectToLogin called %d times, want 1", nav.calls.Load())
	}
}
