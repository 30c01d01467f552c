// Package store persists the last known state of each session.
package store

import (
	"context"
	"errors"

	"scoreclock/pkg/protocol"
)

// ErrNotFound is returned by Load when no record exists for the session.
var ErrNotFound = errors.New("session state not found")

// Store is the write-through persistence behind a session actor. A blob that
// decodes but carries bad fields is the repair layer's problem, not the
// store's; Load only fails on transport errors.
type Store interface {
	Load(ctx context.Context, sessionID string) (protocol.GameState, error)
	Save(ctx context.Context, sessionID string, state protocol.GameState) error
}
