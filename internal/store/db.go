// Package store は accounts と catalog のリレーショナルストア実装を提供します。
// SQLite（modernc.org/sqlite）と PostgreSQL（pgx）に対応し、スキーマは goose で管理します。
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/yourusername/bookshelf/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB はコネクションとドライバー固有の差異をまとめます。
type DB struct {
	conn   *sql.DB
	driver string
}

// Open はデータベースに接続し、マイグレーションを適用します。
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var sqlDriver string
	switch driver {
	case config.DriverSQLite:
		sqlDriver = "sqlite"
	case config.DriverPostgres:
		sqlDriver = "pgx"
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}

	conn, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if driver == config.DriverSQLite {
		// :memory: はコネクションごとに別DBになるため1本に固定する
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

// Close はコネクションを閉じます。
func (db *DB) Close() error {
	return db.conn.Close()
}

// Accounts は accounts.Store 実装を返します。
func (db *DB) Accounts() *AccountRepository {
	return &AccountRepository{db: db}
}

// Books は catalog の実装を返します。
func (db *DB) Books() *BookRepository {
	return &BookRepository{db: db}
}

func (db *DB) migrate(ctx context.Context) error {
	dialect := goose.DialectSQLite3
	if db.driver == config.DriverPostgres {
		dialect = goose.DialectPostgres
	}

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, db.conn, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

// rebind は ? プレースホルダーを PostgreSQL の $n 形式に変換します。
func (db *DB) rebind(query string) string {
	if db.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
