// Package source defines the data source contract for fetching stock data
package source

import (
	"context"

	"github.com/xinguang/stockdeck/pkg/model"
)

// DataSource is the single capability a remote backend must provide: fetch
// the authoritative current stock list for a profile. A call resolves with
// exactly one outcome — the full list, or an error whose message is shown to
// the user. Calls may take arbitrarily long; callers own any timeout via ctx.
// Implementations are not required to be deterministic or idempotent.
type DataSource interface {
	Fetch(ctx context.Context, profile *model.UserProfile) ([]model.TrackedStock, error)
}

// ProfileIssuer is an optional capability for sources that can mint
// server-issued profile ids. It is consulted once, at first-run bootstrap,
// when no persisted profile exists; ids are never generated by the client
// itself.
type ProfileIssuer interface {
	IssueProfileID() string
}
