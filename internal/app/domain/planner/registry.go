package planner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/EthanH9977/JourneyXPro/internal/app/observability/metrics"
)

// SessionFactory builds a session for an id and its client's history key.
type SessionFactory func(ctx context.Context, sessionID, historyKey string) *Session

// Registry holds the live sessions of the HTTP surface. Sessions idle for
// longer than the TTL are evicted.
type Registry struct {
	sessions *cache.Cache
	factory  SessionFactory
	history  *historyLocks
	ttl      time.Duration
	logger   *zap.Logger
}

func NewRegistry(factory SessionFactory, ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	sessions := cache.New(ttl, 10*time.Minute)
	sessions.OnEvicted(func(id string, _ interface{}) {
		metrics.Get().ActiveSessions.Add(context.Background(), -1)
		logger.Debug("Planning session evicted", zap.String("session_id", id))
	})
	return &Registry{
		sessions: sessions,
		factory:  factory,
		history:  newHistoryLocks(),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create starts a session. clientID scopes the saved history so it outlives
// the session; an empty clientID scopes it to the session itself.
func (r *Registry) Create(ctx context.Context, clientID string) *Session {
	id := uuid.NewString()
	if clientID == "" {
		clientID = id
	}
	key := HistoryKey(clientID)
	s := r.factory(ctx, id, key)
	s.historyMu = r.history.forKey(key)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	metrics.Get().ActiveSessions.Add(ctx, 1)
	r.logger.Info("Planning session created", zap.String("session_id", id), zap.String("client_id", clientID))
	return s
}

// Get returns a live session and extends its lifetime.
func (r *Registry) Get(id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	r.sessions.Set(id, s, cache.DefaultExpiration)
	return s, nil
}

// Remove drops a session. In-flight work finishes against the detached
// session.
func (r *Registry) Remove(id string) bool {
	if _, ok := r.sessions.Get(id); !ok {
		return false
	}
	r.sessions.Delete(id)
	return true
}

func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}
