// Package cache holds populated sessions keyed by session id so repeated
// reads of one session skip the database.
//
// The cache is advisory. Callers must still authorize what they read, and
// must invalidate after every write that changes a session or its
// questions.
//
// Each Invalidate bumps a per-session version. A reader takes the version
// before loading from the database and passes it to Set, which refuses to
// store when an invalidation happened in between. Without that, a write
// committed during a read would be hidden behind the stale copy until the
// TTL ran out.
package cache

import (
	"context"
	"errors"

	"github.com/YadavAkhileshh/CrackBano/internal/model"
)

// ErrStale is returned by Set when the session was invalidated after the
// caller read its version. Nothing is stored.
var ErrStale = errors.New("cache: session changed since version was read")

// Sessions is a read-through cache of populated sessions.
type Sessions interface {
	// Get returns (session, true, nil) on a hit and (nil, false, nil) on a
	// miss.
	Get(ctx context.Context, id string) (*model.Session, bool, error)
	// Version returns the invalidation counter for id, 0 if it was never
	// invalidated.
	Version(ctx context.Context, id string) (int64, error)
	// Set stores s if the counter still equals version.
	Set(ctx context.Context, s *model.Session, version int64) error
	Invalidate(ctx context.Context, id string) error
}

// Nop never stores anything. Every Get is a miss.
type Nop struct{}

var _ Sessions = Nop{}

func (Nop) Get(context.Context, string) (*model.Session, bool, error) { return nil, false, nil }
func (Nop) Version(context.Context, string) (int64, error) { return 0, nil }
func (Nop) Set(context.Context, *model.Session, int64) error { return nil }
func (Nop) Invalidate(context.Context, string) error { return nil }
