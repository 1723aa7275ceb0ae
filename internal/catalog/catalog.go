// Package catalog は蔵書（本と著者）の型を定義します。
package catalog

import (
	"context"
	"time"
)

// Author は著者です。
type Author struct {
	ID   string
	Name string
}

// Book は蔵書の1冊です。PublishDate は不明な場合 nil です。
type Book struct {
	ID          string
	Title       string
	PublishDate *time.Time
	Author      Author
}

// Reader はトップページ向けの一覧取得を提供します。
type Reader interface {
	ListBooks(ctx context.Context) ([]Book, error)
}
