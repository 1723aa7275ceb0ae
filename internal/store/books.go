package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/bookshelf/internal/catalog"
)

// BookRepository は authors / books テーブルへのアクセスを提供します。
type BookRepository struct {
	db *DB
}

func (r *BookRepository) CreateAuthor(ctx context.Context, name string) (*catalog.Author, error) {
	author := &catalog.Author{ID: uuid.NewString(), Name: name}
	query := r.db.rebind(`INSERT INTO authors (id, name) VALUES (?, ?)`)
	if _, err := r.db.conn.ExecContext(ctx, query, author.ID, author.Name); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return author, nil
}

func (r *BookRepository) CreateBook(ctx context.Context, title string, publishDate *time.Time, author catalog.Author) (*catalog.Book, error) {
	book := &catalog.Book{
		ID:          uuid.NewString(),
		Title:       title,
		PublishDate: publishDate,
		Author:      author,
	}

	var date sql.NullTime
	if publishDate != nil {
		date = sql.NullTime{Time: *publishDate, Valid: true}
	}
	query := r.db.rebind(`INSERT INTO books (id, title, publish_date, author_id) VALUES (?, ?, ?, ?)`)
	if _, err := r.db.conn.ExecContext(ctx, query, book.ID, book.Title, date, author.ID); err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return book, nil
}

// ListBooks はタイトル順に全書籍を返します。
func (r *BookRepository) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT b.id, b.title, b.publish_date, a.id, a.name
		 FROM books b JOIN authors a ON a.id = b.author_id
		 ORDER BY b.title`)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		var (
			book catalog.Book
			date sql.NullTime
		)
		if err := rows.Scan(&book.ID, &book.Title, &date, &book.Author.ID, &book.Author.Name); err != nil {
			return nil, fmt.Errorf("error scanning book: %w", err)
		}
		if date.Valid {
			d := date.Time
			book.PublishDate = &d
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return books, nil
}

// SeedSamples は書籍が1冊もない場合にサンプルを登録します。
func (r *BookRepository) SeedSamples(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	samples := []struct {
		title  string
		author string
		date   *time.Time
	}{
		{title: "To Kill a Mockingbird", author: "Harper Lee", date: datePtr(1960, time.July, 11)},
		{title: "The Bell Jar", author: "Sylvia Plath"},
	}
	for _, s := range samples {
		author, err := r.CreateAuthor(ctx, s.author)
		if err != nil {
			return 0, err
		}
		if _, err := r.CreateBook(ctx, s.title, s.date, *author); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
