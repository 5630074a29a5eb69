// Package store provides durable persistence for the user profile
package store

import "github.com/xinguang/stockdeck/pkg/model"

// Store is the local persistence boundary: one whole-object record per
// installation, overwritten on every save.
//
// Load returns (nil, nil) when no record exists yet. A non-nil error means
// the record was unreadable or corrupt; callers are expected to log it and
// fall back to a fresh profile — first run and corruption both degrade the
// same way, never fatally.
type Store interface {
	Load() (*model.UserProfile, error)
	Save(profile *model.UserProfile) error
	Close() error
}
