// Package tracker coordinates refreshing stocks from a data source, caching
// the result locally, and exposing the fetch lifecycle to the rendering
// layer. It is the only part of the application with non-trivial state
// transitions.
package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xinguang/stockdeck/pkg/model"
	"github.com/xinguang/stockdeck/pkg/source"
	"github.com/xinguang/stockdeck/pkg/store"
)

// NeverUpdated is the display string shown before any successful refresh.
const NeverUpdated = "never"

const lastUpdateFormat = "Jan 2, 15:04"

// Tracker owns the user profile and the fetch status. All mutation happens
// through Refresh; the rendering layer only reads snapshots and triggers
// refreshes.
type Tracker struct {
	source source.DataSource
	store  store.Store
	log    *zap.Logger

	mu      sync.Mutex
	profile *model.UserProfile
	status  Status
	seq     uint64

	subMu sync.Mutex
	subs  []chan struct{}
}

// New creates a Tracker seeded from the store. A missing or corrupt record
// degrades to a fresh profile with the given name — first run and corruption
// are indistinguishable and neither is fatal. If the source can issue
// profile ids, a fresh profile gets one here.
func New(src source.DataSource, st store.Store, logger *zap.Logger, profileName string) *Tracker {
	profile, err := st.Load()
	if err != nil {
		logger.Warn("stored profile unreadable, starting fresh", zap.Error(err))
		profile = nil
	}
	if profile == nil {
		profile = model.NewUserProfile(profileName)
		if issuer, ok := src.(source.ProfileIssuer); ok {
			profile.ID = issuer.IssueProfileID()
		}
		logger.Info("created new profile", zap.String("name", profileName), zap.String("id", profile.ID))
	} else {
		logger.Info("loaded profile",
			zap.String("name", profile.Name),
			zap.Int("stocks", len(profile.Stocks)))
	}

	return &Tracker{
		source:  src,
		store:   st,
		log:     logger,
		profile: profile,
		status:  Status{Phase: PhaseIdle},
	}
}

// Refresh starts a new fetch. The status transitions to Waiting
// synchronously, before this method returns, so observers see the in-flight
// state immediately. The returned channel closes once this particular
// attempt has been resolved — applied, failed, or discarded as stale.
//
// Calling Refresh while a fetch is in flight is allowed: it issues a new
// fetch and supersedes the old one. A superseded fetch's result is discarded
// when it eventually resolves; it can never overwrite state produced by a
// later fetch. The underlying fetch is not aborted.
func (t *Tracker) Refresh(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	t.mu.Lock()
	t.seq++
	seq := t.seq
	since := time.Now()
	t.status = Status{Phase: PhaseWaiting, Since: since}
	snapshot := t.profile.Clone()
	t.mu.Unlock()
	t.notify()

	go func() {
		defer close(done)
		stocks, err := t.source.Fetch(ctx, snapshot)
		t.apply(seq, since, stocks, err)
	}()

	return done
}

// apply installs a fetch outcome, unless a newer fetch has been issued since
// this one started.
func (t *Tracker) apply(seq uint64, since time.Time, stocks []model.TrackedStock, err error) {
	completed := time.Now()

	t.mu.Lock()
	if seq != t.seq {
		t.mu.Unlock()
		t.log.Debug("discarded stale fetch result", zap.Uint64("seq", seq))
		return
	}

	if err != nil {
		t.status = Status{Phase: PhaseFailed, Message: err.Error()}
		t.mu.Unlock()
		t.log.Warn("fetch failed", zap.Error(err))
		t.notify()
		return
	}

	t.profile.Stocks = stocks
	t.profile.LastUpdate = &completed
	t.status = Status{
		Phase:   PhaseSucceeded,
		Elapsed: completed.Sub(since),
		Symbols: symbolsOf(stocks),
	}
	toSave := t.profile.Clone()
	t.mu.Unlock()

	t.log.Info("fetch succeeded",
		zap.Duration("elapsed", completed.Sub(since)),
		zap.Strings("symbols", symbolsOf(stocks)))
	t.notify()

	// Best effort: the in-memory state is the source of truth for this
	// session, the cache is a convenience.
	if saveErr := t.store.Save(toSave); saveErr != nil {
		t.log.Warn("profile save failed, continuing with in-memory state", zap.Error(saveErr))
	}
}

// Stocks returns a snapshot of the current stock list.
func (t *Tracker) Stocks() []model.TrackedStock {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.TrackedStock, len(t.profile.Stocks))
	for i, s := range t.profile.Stocks {
		out[i] = s.Clone()
	}
	return out
}

// Status returns the current fetch status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status.clone()
}

// Profile returns a snapshot of the current profile.
func (t *Tracker) Profile() *model.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile.Clone()
}

// LastUpdateDisplay returns a short human-readable form of the last
// successful refresh time, or "never" when none has happened.
func (t *Tracker) LastUpdateDisplay() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.profile.LastUpdate == nil {
		return NeverUpdated
	}
	return t.profile.LastUpdate.Local().Format(lastUpdateFormat)
}

// Subscribe returns a channel that receives a coalesced signal after every
// state transition. Subscribers re-read the snapshot accessors on signal;
// no state travels on the channel.
func (t *Tracker) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	t.subMu.Lock()
	t.subs = append(t.subs, ch)
	t.subMu.Unlock()
	return ch
}

func (t *Tracker) notify() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func symbolsOf(stocks []model.TrackedStock) []string {
	syms := make([]string, len(stocks))
	for i, s := range stocks {
		syms[i] = s.Symbol
	}
	return syms
}
