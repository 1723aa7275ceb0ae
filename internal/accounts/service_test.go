package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	findErr  error
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]Account)}
}

func (s *memStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	a, ok := s.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *memStore) InsertIfAbsent(ctx context.Context, account *Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Username]; ok {
		return false, nil
	}
	s.accounts[account.Username] = *account
	return true, nil
}

type fakeSession struct {
	account *Account
	saveErr error
}

func (s *fakeSession) SetAuthenticated(account *Account) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.account = account
	return nil
}

func (s *fakeSession) Clear() error {
	s.account = nil
	return nil
}

func (s *fakeSession) IsAuthenticated() bool {
	return s.account != nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	return NewService(store, NewBcryptHasher(bcrypt.MinCost)), store
}

func TestRegister(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	account, err := svc.Register(ctx, "me2", "testpass")
	require.NoError(t, err)
	assert.Equal(t, "me2", account.Username)
	assert.NotEmpty(t, account.ID)
	assert.NotEqual(t, "testpass", account.PasswordHash)
	assert.False(t, account.CreatedAt.IsZero())

	found, err := svc.Lookup(ctx, "me2")
	require.NoError(t, err)
	assert.Equal(t, "me2", found.Username)
	assert.Len(t, store.accounts, 1)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "me1", "password")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "me1", "another")
	require.ErrorIs(t, err, ErrDuplicateUsername)
	assert.Equal(t, "That username is taken. Please choose a different one.", err.Error())

	assert.Len(t, store.accounts, 1)
	assert.Equal(t, first.PasswordHash, store.accounts["me1"].PasswordHash)
}

func TestRegisterIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "me1", "password")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "ME1", "password")
	require.NoError(t, err)
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "racer", "password")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrDuplicateUsername)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Len(t, store.accounts, 1)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "me1", "password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "success - matching password", username: "me1", password: "password"},
		{name: "unknown user", username: "nobody", password: "password", wantErr: ErrUnknownUser},
		{name: "wrong password", username: "me1", password: "wrongpassword", wantErr: ErrCredentialMismatch},
		{name: "username differs in case", username: "ME1", password: "password", wantErr: ErrUnknownUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{}
			account, err := svc.Authenticate(ctx, session, tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, account)
				assert.False(t, session.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "me1", account.Username)
			assert.True(t, session.IsAuthenticated())
			assert.Equal(t, account.ID, session.account.ID)
		})
	}
}

func TestAuthenticateMessages(t *testing.T) {
	assert.Equal(t, "No user with that username. Please try again.", ErrUnknownUser.Error())
	assert.Equal(t, "Password doesn't match. Please try again.", ErrCredentialMismatch.Error())
}

func TestAuthenticateStoreFailure(t *testing.T) {
	svc, store := newTestService()
	boom := errors.New("disk on fire")
	store.findErr = boom

	_, err := svc.Authenticate(context.Background(), &fakeSession{}, "me1", "password")
	require.ErrorIs(t, err, boom)

	var verr *Error
	assert.False(t, errors.As(err, &verr))
}

func TestAuthenticateSessionFailure(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "me1", "password")
	require.NoError(t, err)

	boom := errors.New("cookie too large")
	_, err = svc.Authenticate(ctx, &fakeSession{saveErr: boom}, "me1", "password")
	require.ErrorIs(t, err, boom)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	session := &fakeSession{account: &Account{Username: "me1"}}

	require.NoError(t, svc.Logout(session))
	assert.False(t, session.IsAuthenticated())

	require.NoError(t, svc.Logout(session))
	assert.False(t, session.IsAuthenticated())
}
