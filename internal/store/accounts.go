package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yourusername/bookshelf/internal/accounts"
)

// AccountRepository は accounts テーブルへのアクセスを提供します。
type AccountRepository struct {
	db *DB
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*accounts.Account, error) {
	query := r.db.rebind(
		`SELECT id, username, password_hash, created_at FROM accounts
		 WHERE username = ?`)

	account := &accounts.Account{}
	err := r.db.conn.QueryRowContext(ctx, query, username).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return account, nil
}

// InsertIfAbsent は username の UNIQUE 制約に任せて挿入し、衝突時は何もしません。
func (r *AccountRepository) InsertIfAbsent(ctx context.Context, account *accounts.Account) (bool, error) {
	query := r.db.rebind(
		`INSERT INTO accounts (id, username, password_hash, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`)

	res, err := r.db.conn.ExecContext(ctx, query,
		account.ID, account.Username, account.PasswordHash, account.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n == 1, nil
}

// Count は登録済みアカウント数を返します。
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	return n, nil
}
