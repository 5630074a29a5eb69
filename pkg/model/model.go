// Package model defines the domain types for tracked stocks and user profiles
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single observed price at one instant.
type PricePoint struct {
	Time   time.Time       `json:"time"`
	Amount decimal.Decimal `json:"amount"`
}

// TrackedStock is a stock the user follows, with its observed price history.
// Identity is the symbol; history is chronological, newest last.
type TrackedStock struct {
	Symbol  string       `json:"symbol"`
	History []PricePoint `json:"history"`
}

// CurrentPrice returns the most recent observation, or false when the
// history is empty.
func (s TrackedStock) CurrentPrice() (decimal.Decimal, bool) {
	if len(s.History) == 0 {
		return decimal.Decimal{}, false
	}
	return s.History[len(s.History)-1].Amount, true
}

// Clone deep-copies the stock, including its history.
func (s TrackedStock) Clone() TrackedStock {
	out := TrackedStock{Symbol: s.Symbol}
	if s.History != nil {
		out.History = make([]PricePoint, len(s.History))
		copy(out.History, s.History)
	}
	return out
}

// UserProfile is the process-lifetime entity that owns the tracked stocks.
// The ID is issued by the data source, never minted here. LastUpdate is set
// only after the first successful refresh.
type UserProfile struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Stocks     []TrackedStock `json:"stocks"`
	LastUpdate *time.Time     `json:"lastUpdate,omitempty"`
}

// NewUserProfile creates a fresh profile with no stocks and no update time.
func NewUserProfile(name string) *UserProfile {
	return &UserProfile{
		Name:   name,
		Stocks: make([]TrackedStock, 0),
	}
}

// Clone deep-copies the profile so read snapshots cannot alias the
// coordinator's state.
func (p *UserProfile) Clone() *UserProfile {
	out := &UserProfile{
		ID:   p.ID,
		Name: p.Name,
	}
	if p.Stocks != nil {
		out.Stocks = make([]TrackedStock, len(p.Stocks))
		for i, s := range p.Stocks {
			out.Stocks[i] = s.Clone()
		}
	}
	if p.LastUpdate != nil {
		t := *p.LastUpdate
		out.LastUpdate = &t
	}
	return out
}

// Marshal serializes the profile to JSON.
func (p *UserProfile) Marshal() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalProfile deserializes a profile previously written by Marshal.
func UnmarshalProfile(data []byte) (*UserProfile, error) {
	var p UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
