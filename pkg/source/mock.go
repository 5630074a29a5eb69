package source

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xinguang/stockdeck/pkg/model"
)

// ErrMockUnavailable is the failure a MockSource reports when a simulated
// outage fires.
var ErrMockUnavailable = errors.New("stock service unavailable, try again")

// MockConfig tunes the simulated backend.
type MockConfig struct {
	Symbols     []string      // symbol universe returned on success
	MinDelay    time.Duration // lower bound for simulated latency
	MaxDelay    time.Duration // upper bound for simulated latency
	FailureRate float64       // probability in [0,1] that a fetch fails
	Seed        int64         // RNG seed; 0 means time-based
}

// MockSource is a randomized stand-in for a real stock backend: it resolves
// after a random delay, fails with a configurable probability, and otherwise
// returns the configured symbols with a random-walk price appended to each
// stock's prior history.
type MockSource struct {
	cfg MockConfig

	mu        sync.Mutex
	rng       *rand.Rand
	basePrice map[string]float64
}

// NewMockSource creates a mock source from cfg, filling in defaults for
// unset fields.
func NewMockSource(cfg MockConfig) *MockSource {
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN"}
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockSource{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		basePrice: make(map[string]float64),
	}
}

// Fetch implements DataSource.
func (m *MockSource) Fetch(ctx context.Context, profile *model.UserProfile) ([]model.TrackedStock, error) {
	delay, fail := m.roll()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if fail {
		return nil, ErrMockUnavailable
	}

	now := time.Now()
	prior := make(map[string][]model.PricePoint, len(profile.Stocks))
	for _, s := range profile.Stocks {
		prior[s.Symbol] = s.History
	}

	stocks := make([]model.TrackedStock, 0, len(m.cfg.Symbols))
	for _, sym := range m.cfg.Symbols {
		price := m.nextPrice(sym)
		history := append(clonePoints(prior[sym]), model.PricePoint{
			Time:   now,
			Amount: decimal.NewFromFloat(price).Round(2),
		})
		stocks = append(stocks, model.TrackedStock{Symbol: sym, History: history})
	}
	return stocks, nil
}

// IssueProfileID implements ProfileIssuer. A real backend issues user ids
// server-side; the mock stands in for that with a uuid.
func (m *MockSource) IssueProfileID() string {
	return uuid.New().String()
}

// roll draws this call's latency and failure outcome under the lock, so
// overlapping fetches never race on the RNG.
func (m *MockSource) roll() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delay := m.cfg.MinDelay
	if span := m.cfg.MaxDelay - m.cfg.MinDelay; span > 0 {
		delay += time.Duration(m.rng.Int63n(int64(span)))
	}
	fail := m.rng.Float64() < m.cfg.FailureRate
	return delay, fail
}

// nextPrice advances the random walk for one symbol.
func (m *MockSource) nextPrice(symbol string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	base, ok := m.basePrice[symbol]
	if !ok {
		base = 100.0 + m.rng.Float64()*900.0 // random price between 100-1000
	}
	price := base + (m.rng.Float64()-0.5)*base*0.02 // ±2% change
	m.basePrice[symbol] = price
	return price
}

func clonePoints(pts []model.PricePoint) []model.PricePoint {
	if len(pts) == 0 {
		return nil
	}
	out := make([]model.PricePoint, len(pts))
	copy(out, pts)
	return out
}
