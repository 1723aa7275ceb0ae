package auth

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/bookshelf/internal/config"
)

// AttemptStore はクライアントごとのログイン失敗回数とロック状態を保持します。
type AttemptStore interface {
	// LockedFor はロック中であれば残り時間を返します。
	LockedFor(ctx context.Context, key string) (time.Duration, error)
	// RecordFailure は失敗を記録し、ロックまでの残り回数を返します。
	RecordFailure(ctx context.Context, key string) (int, error)
	Reset(ctx context.Context, key string) error
}

// ThrottlePolicy は Window 内に MaxAttempts 回失敗すると Lock の間ロックする規則です。
type ThrottlePolicy struct {
	MaxAttempts int
	Window      time.Duration
	Lock        time.Duration
}

// PolicyFromConfig は設定から ThrottlePolicy を作成します。
func PolicyFromConfig(cfg *config.Config) ThrottlePolicy {
	return ThrottlePolicy{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginWindow(),
		Lock:        cfg.LoginLock(),
	}
}

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// MemoryAttemptStore はプロセス内で状態を保持する AttemptStore です。
type MemoryAttemptStore struct {
	policy   ThrottlePolicy
	now      func() time.Time
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewMemoryAttemptStore は MemoryAttemptStore を作成します。
func NewMemoryAttemptStore(policy ThrottlePolicy) *MemoryAttemptStore {
	return &MemoryAttemptStore{
		policy:   policy,
		now:      time.Now,
		attempts: make(map[string]*attemptState),
	}
}

func (s *MemoryAttemptStore) LockedFor(_ context.Context, key string) (time.Duration, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	state, ok := s.attempts[key]
	if !ok {
		return 0, nil
	}
	now := s.now()
	if !now.Before(state.lockedUntil) {
		return 0, nil
	}
	return state.lockedUntil.Sub(now), nil
}

func (s *MemoryAttemptStore) RecordFailure(_ context.Context, key string) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	state, ok := s.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > s.policy.Window {
		state = &attemptState{firstAttempt: now}
		s.attempts[key] = state
	}

	state.count++
	if state.count >= s.policy.MaxAttempts {
		// ロック解除後は新しいウィンドウで数え直す
		s.attempts[key] = &attemptState{
			firstAttempt: now.Add(s.policy.Lock),
			lockedUntil:  now.Add(s.policy.Lock),
		}
		return 0, nil
	}
	return s.policy.MaxAttempts - state.count, nil
}

func (s *MemoryAttemptStore) Reset(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.attempts, key)
	return nil
}
