package sessions

import "context"

type Repo interface {
	// Put stores raw under sessionID, replacing any previous session and
	// restarting its expiry.
	Put(ctx context.Context, sessionID string, raw []byte) error
	// Get returns ErrSessionNotFound when nothing is stored under sessionID
	// and ErrSessionCorrupt when the stored body cannot be decoded.
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
