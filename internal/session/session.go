package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fitpack_admin/internal/dashboard"
)

// Cache is the subset of services.RedisCache the session stores use
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	GetDel(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

func stateKey(sessionID string) string { return "dashboard:state:" + sessionID }

func flashKey(sessionID string) string { return "dashboard:flash:" + sessionID }

// States keeps one dashboard.State per admin session
type States struct {
	cache Cache
	ttl   time.Duration
}

func NewStates(cache Cache, ttl time.Duration) *States {
	return &States{cache: cache, ttl: ttl}
}

// Load returns the saved state, or a fresh one when nothing is stored
func (s *States) Load(ctx context.Context, sessionID string) (*dashboard.State, error) {
	st := dashboard.NewState()
	err := s.cache.Get(ctx, stateKey(sessionID), st)
	if errors.Is(err, redis.Nil) {
		return dashboard.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load dashboard state: %w", err)
	}
	return st, nil
}

// Save stores st and refreshes its expiry
func (s *States) Save(ctx context.Context, sessionID string, st *dashboard.State) error {
	if err := s.cache.Set(ctx, stateKey(sessionID), st, s.ttl); err != nil {
		return fmt.Errorf("save dashboard state: %w", err)
	}
	return nil
}

// Forget drops the state, e.g. on logout
func (s *States) Forget(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, stateKey(sessionID))
}

// Flashes holds at most one pending notice per session
type Flashes struct {
	cache Cache
}

func NewFlashes(cache Cache) *Flashes {
	return &Flashes{cache: cache}
}

// flashTTL bounds how long an unread notice survives
const flashTTL = 10 * time.Minute

// Put replaces any pending notice with n
func (f *Flashes) Put(ctx context.Context, sessionID string, n *dashboard.Notice) error {
	if n == nil {
		return nil
	}
	return f.cache.Set(ctx, flashKey(sessionID), n, flashTTL)
}

// Pop returns the pending notice and clears it. No notice is (nil, nil).
func (f *Flashes) Pop(ctx context.Context, sessionID string) (*dashboard.Notice, error) {
	var n dashboard.Notice
	err := f.cache.GetDel(ctx, flashKey(sessionID), &n)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
