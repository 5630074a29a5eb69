package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xinguang/stockdeck/pkg/model"
)

// stubSource returns canned results, optionally blocking each call on a gate
// channel so tests control completion order.
type stubSource struct {
	mu      sync.Mutex
	results []stubResult
	calls   int
}

type stubResult struct {
	stocks  []model.TrackedStock
	err     error
	started chan struct{} // when non-nil, closed once this call has begun
	gate    chan struct{} // when non-nil, Fetch blocks until the gate closes
}

func (s *stubSource) Fetch(_ context.Context, _ *model.UserProfile) ([]model.TrackedStock, error) {
	s.mu.Lock()
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	res := s.results[idx]
	if res.started != nil {
		close(res.started)
		s.results[idx].started = nil
	}
	s.mu.Unlock()

	if res.gate != nil {
		<-res.gate
	}
	return res.stocks, res.err
}

// issuerSource wraps stubSource with server-issued profile ids.
type issuerSource struct {
	stubSource
	id string
}

func (s *issuerSource) IssueProfileID() string { return s.id }

// memStore is an in-memory Store with controllable load/save behavior.
type memStore struct {
	mu       sync.Mutex
	loaded   *model.UserProfile
	loadErr  error
	saveErr  error
	saved    *model.UserProfile
	saveWait chan struct{}
}

func (s *memStore) Load() (*model.UserProfile, error) {
	return s.loaded, s.loadErr
}

func (s *memStore) Save(p *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = p
	if s.saveWait != nil {
		close(s.saveWait)
		s.saveWait = nil
	}
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) lastSaved() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

func oneStock(symbol string, amount float64, at time.Time) []model.TrackedStock {
	return []model.TrackedStock{{
		Symbol:  symbol,
		History: []model.PricePoint{{Time: at, Amount: decimal.NewFromFloat(amount)}},
	}}
}

func TestIdleFirst(t *testing.T) {
	src := &stubSource{results: []stubResult{{}}}
	tr := New(src, &memStore{}, zap.NewNop(), "alice")

	if got := tr.Status().Phase; got != PhaseIdle {
		t.Errorf("expected idle status before any refresh, got %s", got)
	}
	if got := tr.LastUpdateDisplay(); got != NeverUpdated {
		t.Errorf("expected last update %q, got %q", NeverUpdated, got)
	}
	if got := len(tr.Stocks()); got != 0 {
		t.Errorf("expected no stocks, got %d", got)
	}
}

func TestImmediateWaiting(t *testing.T) {
	gate := make(chan struct{})
	src := &stubSource{results: []stubResult{{gate: gate}}}
	tr := New(src, &memStore{}, zap.NewNop(), "alice")

	done := tr.Refresh(context.Background())

	st := tr.Status()
	if st.Phase != PhaseWaiting {
		t.Fatalf("expected waiting immediately after Refresh, got %s", st.Phase)
	}
	if st.Since.IsZero() {
		t.Error("waiting status should carry the issuance time")
	}

	close(gate)
	<-done
}

func TestRefreshSuccess(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	src := &stubSource{results: []stubResult{{stocks: oneStock("ABC", 10.50, at)}}}
	st := &memStore{}
	tr := New(src, st, zap.NewNop(), "alice")

	<-tr.Refresh(context.Background())

	status := tr.Status()
	if status.Phase != PhaseSucceeded {
		t.Fatalf("expected succeeded, got %s (%s)", status.Phase, status.Message)
	}
	if len(status.Symbols) != 1 || status.Symbols[0] != "ABC" {
		t.Errorf("expected symbols [ABC], got %v", status.Symbols)
	}
	if status.Elapsed < 0 {
		t.Errorf("elapsed should be non-negative, got %v", status.Elapsed)
	}

	stocks := tr.Stocks()
	if len(stocks) != 1 || stocks[0].Symbol != "ABC" {
		t.Fatalf("expected stocks [ABC], got %v", stocks)
	}
	price, ok := stocks[0].CurrentPrice()
	if !ok || !price.Equal(decimal.NewFromFloat(10.50)) {
		t.Errorf("expected current price 10.50, got %v", price)
	}

	if got := tr.LastUpdateDisplay(); got == NeverUpdated {
		t.Error("last update display should reflect the completion time")
	}
	if tr.Profile().LastUpdate == nil {
		t.Error("profile LastUpdate should be set after success")
	}

	saved := st.lastSaved()
	if saved == nil {
		t.Fatal("successful refresh should persist the profile")
	}
	if len(saved.Stocks) != 1 || saved.Stocks[0].Symbol != "ABC" {
		t.Errorf("persisted profile should carry the new stocks, got %v", saved.Stocks)
	}
}

func TestRefreshFailureLeavesProfileUnchanged(t *testing.T) {
	at := time.Now()
	existing := model.NewUserProfile("alice")
	existing.Stocks = oneStock("XYZ", 42, at)
	existing.ID = "srv-7"

	src := &stubSource{results: []stubResult{{err: errors.New("boom")}}}
	st := &memStore{loaded: existing}
	tr := New(src, st, zap.NewNop(), "alice")

	<-tr.Refresh(context.Background())

	status := tr.Status()
	if status.Phase != PhaseFailed {
		t.Fatalf("expected failed, got %s", status.Phase)
	}
	if status.Message != "boom" {
		t.Errorf("expected failure message %q, got %q", "boom", status.Message)
	}

	stocks := tr.Stocks()
	if len(stocks) != 1 || stocks[0].Symbol != "XYZ" {
		t.Errorf("failed refresh must not touch the profile, got %v", stocks)
	}
	if tr.Profile().LastUpdate != nil {
		t.Error("failed refresh must not set LastUpdate")
	}
	if st.lastSaved() != nil {
		t.Error("failed refresh must not persist")
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	src := &stubSource{results: []stubResult{{stocks: oneStock("ABC", 1, time.Now())}}}
	st := &memStore{saveErr: errors.New("disk full")}
	tr := New(src, st, zap.NewNop(), "alice")

	<-tr.Refresh(context.Background())

	if got := tr.Status().Phase; got != PhaseSucceeded {
		t.Errorf("save failure must not surface, got status %s", got)
	}
	if got := len(tr.Stocks()); got != 1 {
		t.Errorf("in-memory state should remain authoritative, got %d stocks", got)
	}
}

func TestCorruptStoreFallsBackToDefault(t *testing.T) {
	src := &issuerSource{
		stubSource: stubSource{results: []stubResult{{}}},
		id:         "srv-42",
	}
	st := &memStore{loadErr: errors.New("unexpected end of JSON input")}
	tr := New(src, st, zap.NewNop(), "alice")

	profile := tr.Profile()
	if profile.Name != "alice" {
		t.Errorf("expected default profile name alice, got %q", profile.Name)
	}
	if len(profile.Stocks) != 0 {
		t.Errorf("default profile should have no stocks, got %d", len(profile.Stocks))
	}
	if profile.LastUpdate != nil {
		t.Error("default profile should have no LastUpdate")
	}
	if profile.ID != "srv-42" {
		t.Errorf("fresh profile id should come from the source, got %q", profile.ID)
	}
	if got := tr.Status().Phase; got != PhaseIdle {
		t.Errorf("expected idle after fallback, got %s", got)
	}
}

func TestStaleCompletionDiscarded(t *testing.T) {
	firstGate := make(chan struct{})
	firstStarted := make(chan struct{})
	src := &stubSource{results: []stubResult{
		{stocks: oneStock("OLD", 1, time.Now()), gate: firstGate, started: firstStarted},
		{stocks: oneStock("NEW", 2, time.Now())},
	}}
	tr := New(src, &memStore{}, zap.NewNop(), "alice")

	first := tr.Refresh(context.Background())
	<-firstStarted
	second := tr.Refresh(context.Background())

	// Second fetch completes first and wins.
	<-second
	if got := tr.Status().Symbols; len(got) != 1 || got[0] != "NEW" {
		t.Fatalf("expected second fetch applied, got symbols %v", got)
	}

	// Now let the superseded first fetch resolve; it must be discarded.
	close(firstGate)
	<-first

	stocks := tr.Stocks()
	if len(stocks) != 1 || stocks[0].Symbol != "NEW" {
		t.Errorf("stale completion overwrote newer state: %v", stocks)
	}
	status := tr.Status()
	if status.Phase != PhaseSucceeded || len(status.Symbols) != 1 || status.Symbols[0] != "NEW" {
		t.Errorf("stale completion overwrote status: %+v", status)
	}
}

func TestRefreshWhileWaitingReissues(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan struct{})
	src := &stubSource{results: []stubResult{
		{err: errors.New("slow failure"), gate: gate, started: started},
		{stocks: oneStock("ABC", 1, time.Now())},
	}}
	tr := New(src, &memStore{}, zap.NewNop(), "alice")

	first := tr.Refresh(context.Background())
	<-started
	second := tr.Refresh(context.Background())
	<-second
	close(gate)
	<-first

	// The stale failure must not replace the success.
	if got := tr.Status().Phase; got != PhaseSucceeded {
		t.Errorf("expected succeeded from the newer fetch, got %s", got)
	}
}

func TestSubscribeSignalsOnTransitions(t *testing.T) {
	src := &stubSource{results: []stubResult{{stocks: oneStock("ABC", 1, time.Now())}}}
	tr := New(src, &memStore{}, zap.NewNop(), "alice")

	ch := tr.Subscribe()
	<-tr.Refresh(context.Background())

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change notification after refresh")
	}
}
