// Package session holds the current authenticated identity and its token.
//
// WHERE THE BROWSER USED localStorage:
// The web client kept one JSON blob under localStorage["user"] and read it
// from wherever it liked. Here the same idea is an explicit dependency:
//
//	Storage (key/value backend: memory, SQLite, Redis)
//	   ▲
//	KeyValueStore (encode/decode, invariant, logging)   implements Store
//	   ▲
//	apiclient / service (receive a Store, never touch Storage directly)
//
// Construct ONE Store at startup and pass it by reference to everything that
// needs it. Tests swap in a MemoryStorage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/gradlink/internal/apperror"
	"github.com/sakif/gradlink/internal/model"
)

// Key is the well-known storage key the serialized session lives under.
const Key = "user"

// ErrNoSession is returned by TokenSource when nobody is logged in.
// Store.Load itself never returns it: absence is (nil, nil).
var ErrNoSession = errors.New("session: no session")

// Store is the single source of truth for "who is logged in, with what token".
type Store interface {
	// Load returns the current session, or (nil, nil) when there is none.
	// A stored value that cannot be decoded also reads as (nil, nil).
	Load(ctx context.Context) (*model.Session, error)
	// Save writes the whole session. There is no partial write.
	Save(ctx context.Context, s *model.Session) error
	// Clear removes the session entirely.
	Clear(ctx context.Context) error
}

// Storage is a minimal key/value backend, shaped after the browser's
// localStorage API. Implementations must be safe for concurrent use.
type Storage interface {
	GetItem(ctx context.Context, key string) (value []byte, ok bool, err error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

// KeyValueStore is the Store implementation used everywhere outside tests.
type KeyValueStore struct {
	storage Storage
	logger  *slog.Logger
}

// compile-time check
var _ Store = (*KeyValueStore)(nil)

// New creates a Store on top of the given backend.
func New(storage Storage, logger *slog.Logger) *KeyValueStore {
	return &KeyValueStore{storage: storage, logger: logger}
}

// Load reads and decodes the stored session.
//
// FAILURE SEMANTICS:
//   - key missing            → (nil, nil)   logged out, the normal case
//   - value is not JSON      → (nil, nil)   logged at Warn, swallowed
//   - JSON lacks token/user  → (nil, nil)   same: half a session is no session
//   - backend I/O failure    → (nil, err)   the caller cannot tell otherwise
func (s *KeyValueStore) Load(ctx context.Context) (*model.Session, error) {
	raw, ok, err := s.storage.GetItem(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("session: reading %q: %w", Key, err)
	}
	if !ok {
		return nil, nil
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn("discarding unreadable stored session",
			slog.String("key", Key),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	if !sess.Valid() {
		s.logger.Warn("discarding stored session without identity or token",
			slog.String("key", Key),
		)
		return nil, nil
	}

	return &sess, nil
}

// Save validates and writes the full session.
//
// Callers always build the complete value first. After a profile update,
// for example, that means sess.WithIdentity(newUser) so the held token is
// carried forward. Anything missing the token or the identity is refused
// before the backend is touched.
func (s *KeyValueStore) Save(ctx context.Context, sess *model.Session) error {
	if !sess.Valid() {
		return apperror.ValidationFailed("session", "session must carry both an identity and a token")
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encoding: %w", err)
	}

	if err := s.storage.SetItem(ctx, Key, raw); err != nil {
		return fmt.Errorf("session: writing %q: %w", Key, err)
	}

	s.logger.Debug("session saved",
		slog.Int64("userID", sess.Identity.ID),
		slog.String("role", string(sess.Identity.Role)),
	)
	return nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *KeyValueStore) Clear(ctx context.Context) error {
	if err := s.storage.RemoveItem(ctx, Key); err != nil {
		return fmt.Errorf("session: removing %q: %w", Key, err)
	}
	s.logger.Debug("session cleared")
	return nil
}
