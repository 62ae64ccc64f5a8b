package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

func TestAccidentListPaging(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	m := newAccidentListModel(e.services)
	m, _ = m.Update(m.load()())
	if m.err != "" {
		t.Fatalf("load error: %s", m.err)
	}
	if got := len(m.page.Records); got != domain.DefaultPageSize {
		t.Fatalf("records = %d, want %d", got, domain.DefaultPageSize)
	}

	m, cmd := m.Update(key("p"))
	if cmd != nil || m.pageNum != 1 {
		t.Fatalf("prev on first page: pageNum = %d, cmd nil = %v", m.pageNum, cmd == nil)
	}

	m, cmd = m.Update(key("n"))
	if cmd == nil || m.pageNum != 2 {
		t.Fatalf("next page: pageNum = %d, cmd nil = %v", m.pageNum, cmd == nil)
	}
	m, _ = m.Update(cmd())
	if m.page.Current != 2 {
		t.Errorf("Current = %d, want 2", m.page.Current)
	}

	m, _ = m.Update(key("j"))
	m, cmd = m.Update(key("enter"))
	nav, ok := cmd().(navigateMsg)
	if !ok {
		t.Fatal("enter did not navigate")
	}
	want := "/accidents/"
	if !strings.HasPrefix(nav.path, want) {
		t.Errorf("path = %q, want prefix %q", nav.path, want)
	}

	m, _ = m.Update(key("p"))
	if m.pageNum != 1 {
		t.Errorf("pageNum after p = %d, want 1", m.pageNum)
	}
}

func TestAccidentListUnauthorized(t *testing.T) {
	e := newTestEnv(t)
	m := newAccidentListModel(e.services)
	m, _ = m.Update(m.load()())
	if m.err == "" {
		t.Error("expected an error without a session")
	}
	if !strings.Contains(m.View(), m.err) {
		t.Error("error not rendered")
	}
}

func TestAccidentDetailEditDisplay(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	m := newAccidentDetailModel(e.services, "2")
	m, _ = m.Update(m.Init()())
	if m.accident == nil {
		t.Fatalf("accident not loaded: %s", m.err)
	}

	m, _ = m.Update(key("e"))
	if !m.editing {
		t.Fatal("e did not start editing")
	}
	for _, r := range "lane closed" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if m.editing || cmd == nil {
		t.Fatal("enter did not submit")
	}
	m, _ = m.Update(cmd())
	if !strings.HasSuffix(m.accident.DisplayInfo, "lane closed") {
		t.Errorf("DisplayInfo = %q", m.accident.DisplayInfo)
	}
	if !strings.Contains(m.View(), "display info saved") {
		t.Error("save status not rendered")
	}
}

func TestAccidentDetailInvalidID(t *testing.T) {
	e := newTestEnv(t)
	m := newAccidentDetailModel(e.services, "abc")
	if m.Init() != nil {
		t.Error("Init() issued a request for an invalid id")
	}
	if !strings.Contains(m.View(), "invalid accident id") {
		t.Error("invalid id not reported")
	}
}

func TestAccidentDetailOpenAndCopy(t *testing.T) {
	var opened, copied string
	prevOpen, prevCopy := openURL, copyText
	openURL = func(u string) error { opened = u; return nil }
	copyText = func(s string) error { copied = s; return errors.New("no clipboard") }
	t.Cleanup(func() { openURL, copyText = prevOpen, prevCopy })

	e := newTestEnv(t)
	e.login(t)
	m := newAccidentDetailModel(e.services, "3")
	m, _ = m.Update(m.Init()())

	_, cmd := m.Update(key("o"))
	m, _ = m.Update(cmd())
	if opened != m.accident.VideoURL {
		t.Errorf("opened %q, want %q", opened, m.accident.VideoURL)
	}

	_, cmd = m.Update(key("c"))
	m, _ = m.Update(cmd())
	if copied != m.accident.VideoURL {
		t.Errorf("copied %q, want %q", copied, m.accident.VideoURL)
	}
	if !strings.Contains(m.status, "copy failed") {
		t.Errorf("status = %q, want copy failure", m.status)
	}
}

func TestObstacleListHighRiskFilter(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	m := newObstacleListModel(e.services)
	m, _ = m.Update(m.load()())
	all := len(m.visible())
	if all == 0 {
		t.Fatal("no obstacles loaded")
	}

	m, _ = m.Update(key("f"))
	high := m.visible()
	if len(high) == 0 || len(high) >= all {
		t.Fatalf("filtered = %d of %d", len(high), all)
	}
	for _, o := range high {
		if o.RiskLevel != domain.RiskHigh {
			t.Errorf("obstacle %d has risk %q", o.ID, o.RiskLevel)
		}
	}
}

func TestAccountPasswordChange(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	// The seeded demo account is the first record the mock backend creates.
	m := newAccountModel(e.services, "1")
	m, _ = m.Update(m.Init()())
	if m.user == nil {
		t.Fatalf("user not loaded: %s", m.err)
	}

	m, _ = m.Update(key("p"))
	if !m.editing() {
		t.Fatal("p did not open the password form")
	}
	for _, r := range "demo123" {
		m, _ = m.Update(key(string(r)))
	}
	m, _ = m.Update(key("enter"))
	for _, r := range "newpw" {
		m, _ = m.Update(key(string(r)))
	}
	m, cmd := m.Update(key("enter"))
	if cmd == nil || m.editing() {
		t.Fatal("password form not submitted")
	}
	m, _ = m.Update(cmd())
	if !strings.Contains(m.status, "password updated") {
		t.Errorf("status = %q", m.status)
	}
}

func TestAccountLogout(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	m := newAccountModel(e.services, "1")
	m, cmd := m.Update(key("l"))
	_, cmd = m.Update(cmd())
	nav, ok := cmd().(navigateMsg)
	if !ok || nav.path != "/login" {
		t.Fatalf("logout navigated to %+v", nav)
	}
	if session.LoggedIn(e.store) {
		t.Error("session still present after logout")
	}
}

func TestAccountDeleteNeedsConfirmation(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	m := newAccountModel(e.services, "1")
	m, _ = m.Update(key("D"))
	m, cmd := m.Update(key("n"))
	if cmd != nil || m.editing() {
		t.Fatal("delete proceeded without confirmation")
	}
	if !session.LoggedIn(e.store) {
		t.Fatal("session cleared by a cancelled delete")
	}

	m, _ = m.Update(key("D"))
	m, cmd = m.Update(key("y"))
	_, cmd = m.Update(cmd())
	if nav, ok := cmd().(navigateMsg); !ok || nav.path != "/login" {
		t.Fatalf("delete navigated to %+v", nav)
	}
	if session.LoggedIn(e.store) {
		t.Error("session still present after account deletion")
	}
}

func TestDashboardLoads(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	m := newDashboardModel(e.services, 1)
	m.width = 100
	for _, load := range []func() any{
		func() any { return m.loadAccidentStats()() },
		func() any { return m.loadObstacleStats()() },
		func() any { return m.loadHighRisk()() },
		func() any { return m.loadRealtime()() },
	} {
		m, _ = m.Update(load())
	}
	if len(m.errs) != 0 {
		t.Fatalf("errs = %v", m.errs)
	}
	if m.accidentStats == nil || m.obstacleStats == nil {
		t.Fatal("stats not loaded")
	}
	out := m.View()
	for _, want := range []string{"ACCIDENTS", "OBSTACLES", "HIGH-RISK OBSTACLES", "REALTIME DETECTIONS"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboardStaleTickIgnored(t *testing.T) {
	e := newTestEnv(t)
	m := newDashboardModel(e.services, 3)
	if _, cmd := m.Update(realtimeTickMsg{gen: 2}); cmd != nil {
		t.Error("stale tick rescheduled polling")
	}
	if _, cmd := m.Update(realtimeTickMsg{gen: 3}); cmd == nil {
		t.Error("current tick did not poll")
	}
}
