package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service はアカウントの登録と認証を行います。
type Service struct {
	store  Store
	hasher Hasher
	now    func() time.Time
}

// NewService は Service を作成します。
func NewService(store Store, hasher Hasher) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		now:    time.Now,
	}
}

// Register は新しいアカウントを作成します。
// username が既に使われている場合は ErrDuplicateUsername を返し、何も保存しません。
func (s *Service) Register(ctx context.Context, username, password string) (*Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	inserted, err := s.store.InsertIfAbsent(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}
	if !inserted {
		return nil, ErrDuplicateUsername
	}
	return account, nil
}

// Authenticate は資格情報を検証し、成功時に session をログイン状態にします。
func (s *Service) Authenticate(ctx context.Context, session Session, username, password string) (*Account, error) {
	account, err := s.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, ErrCredentialMismatch
	}

	if err := session.SetAuthenticated(account); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return account, nil
}

// Lookup は username でアカウントを取得します。
func (s *Service) Lookup(ctx context.Context, username string) (*Account, error) {
	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// Logout はセッションのログイン状態を解除します。未ログインでも成功します。
func (s *Service) Logout(session Session) error {
	if err := session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
