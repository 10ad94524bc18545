// Package authflow persists the CSRF state of authorization requests that
// are waiting for the provider to redirect back.
package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-edge-auth/kvstore"
)

const keyPrefix = "state-"

// AuthFlowState is the pending authorization for one state token.
type AuthFlowState struct {
	OriginalPath string `json:"originalPath"`
}

type Repo interface {
	Put(ctx context.Context, state string, authState AuthFlowState) error
	Get(ctx context.Context, state string) (*AuthFlowState, error)
	Delete(ctx context.Context, state string) error
}

var _ Repo = (*KVRepo)(nil)

// KVRepo stores AuthFlowState as JSON under "state-<token>".
type KVRepo struct {
	store kvstore.Store
	ttl   time.Duration
}

// NewKVRepo creates a state repository whose entries expire after ttl
func NewKVRepo(store kvstore.Store, ttl time.Duration) *KVRepo {
	return &KVRepo{
		store: store,
		ttl:   ttl,
	}
}

func key(state string) string {
	return keyPrefix + state
}

// Put stores a pending authorization
func (r *KVRepo) Put(ctx context.Context, state string, authState AuthFlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	data, err := json.Marshal(authState)
	if err != nil {
		return fmt.Errorf("authflow: marshal state: %w", err)
	}
	return r.store.Put(ctx, key(state), data, r.ttl)
}

// Get returns the pending authorization, or nil when the state is unknown or expired.
func (r *KVRepo) Get(ctx context.Context, state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, nil
	}

	data, found, err := r.store.Get(ctx, key(state))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var authState AuthFlowState
	if err := json.Unmarshal(data, &authState); err != nil {
		return nil, fmt.Errorf("authflow: unmarshal state: %w", err)
	}
	return &authState, nil
}

// Delete removes a pending authorization
func (r *KVRepo) Delete(ctx context.Context, state string) error {
	return r.store.Delete(ctx, key(state))
}
