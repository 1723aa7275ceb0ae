// Package accounts はアカウント登録・認証・ログアウトのドメインロジックを提供します。
//
// 永続化（Store）、セッション（Session）、パスワードハッシュ（Hasher）は
// 呼び出し側から注入します。
package accounts

import (
	"context"
	"errors"
	"time"
)

// Account は永続化されたアカウント情報です。平文のパスワードは保持しません。
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// ErrNotFound は Store が該当アカウントを持たない場合に返します。
var ErrNotFound = errors.New("account not found")

// Store はアカウントの永続化を担います。
// InsertIfAbsent は username の一意性をストア側で原子的に保証し、
// 既に存在する場合は (false, nil) を返します。
type Store interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	InsertIfAbsent(ctx context.Context, account *Account) (bool, error)
}

// Session は現在のリクエストのログイン状態です。
type Session interface {
	SetAuthenticated(account *Account) error
	Clear() error
	IsAuthenticated() bool
}
