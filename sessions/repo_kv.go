package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
	"github.com/jrsteele09/go-edge-auth/kvstore"
)

var _ Repo = (*KVRepo)(nil)

// KVRepo stores sessions under the raw session id.
type KVRepo struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewKVRepo creates a session repository whose entries expire after ttl
func NewKVRepo(store kvstore.Store, ttl time.Duration) *KVRepo {
	return &KVRepo{
		store: store,
		ttl:   ttl,
	}
}

// TTL returns how long a stored session lives.
func (r *KVRepo) TTL() time.Duration {
	return r.ttl
}

func (r *KVRepo) Put(ctx context.Context, sessionID string, raw []byte) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	if !json.Valid(raw) {
		return errors.New("session body must be valid JSON")
	}
	return r.store.Put(ctx, sessionID, raw, r.ttl)
}

func (r *KVRepo) Get(ctx context.Context, sessionID string) (*Session, error) {
	raw, found, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, autherrors.ErrSessionNotFound
	}
	return Parse(raw)
}

func (r *KVRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("sessionID is required")
	}
	return r.store.Delete(ctx, sessionID)
}
