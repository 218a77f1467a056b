package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newsdesk-engine/internal/domain"
)

var ErrNotFound = errors.New("article not found")

// Fixed-width UTC layout so TEXT comparisons order like times.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %s %q: %w", column, s, err)
	}
	return t, nil
}

type ListArticlesOpts struct {
	Now      time.Time
	Category string // empty = all
	Limit    int
}

const articleColumns = `id, title, content, excerpt, author, category, image_url, source_url, created_at, updated_at, expires_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var a domain.Article
	var imageURL, sourceURL sql.NullString
	var created, updated, expires string
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.Excerpt,
		&a.Author,
		&a.Category,
		&imageURL,
		&sourceURL,
		&created,
		&updated,
		&expires,
	); err != nil {
		return domain.Article{}, err
	}
	if imageURL.Valid {
		a.ImageURL = &imageURL.String
	}
	if sourceURL.Valid {
		a.SourceURL = &sourceURL.String
	}
	var err error
	if a.CreatedAt, err = parseTime("created_at", created); err != nil {
		return domain.Article{}, err
	}
	if a.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return domain.Article{}, err
	}
	if a.ExpiresAt, err = parseTime("expires_at", expires); err != nil {
		return domain.Article{}, err
	}
	return a, nil
}

// ListArticles returns articles that have not expired at opts.Now, newest first.
func ListArticles(ctx context.Context, db *sql.DB, opts ListArticlesOpts) ([]domain.Article, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 500
	}

	where := "WHERE expires_at >= ?"
	args := []any{formatTime(opts.Now)}
	if opts.Category != "" {
		where += " AND category = ?"
		args = append(args, opts.Category)
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`
SELECT %s
FROM articles
%s
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, articleColumns, where)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func GetArticle(ctx context.Context, db *sql.DB, id int64) (domain.Article, error) {
	row := db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?;`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article %d: %w", id, err)
	}
	return a, nil
}

// InsertArticle stores a and returns it with its new ID.
func InsertArticle(ctx context.Context, db *sql.DB, a domain.Article) (domain.Article, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO articles(title, content, excerpt, author, category, image_url, source_url, created_at, updated_at, expires_at)
VALUES(?,?,?,?,?,?,?,?,?,?);`,
		a.Title, a.Content, a.Excerpt, a.Author, a.Category, a.ImageURL, a.SourceURL,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt), formatTime(a.ExpiresAt))
	if err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return a, nil
}

// UpdateArticle overwrites the mutable fields of the row with a.ID.
func UpdateArticle(ctx context.Context, db *sql.DB, a domain.Article) error {
	res, err := db.ExecContext(ctx, `
UPDATE articles
SET title = ?, content = ?, excerpt = ?, author = ?, category = ?, image_url = ?, source_url = ?, updated_at = ?
WHERE id = ?;`,
		a.Title, a.Content, a.Excerpt, a.Author, a.Category, a.ImageURL, a.SourceURL, formatTime(a.UpdatedAt), a.ID)
	if err != nil {
		return fmt.Errorf("update article %d: %w", a.ID, err)
	}
	return requireOneRow(res)
}

func DeleteArticle(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	return requireOneRow(res)
}

// DeleteExpired removes every article that expired before now and returns
// the removed IDs.
func DeleteExpired(ctx context.Context, db *sql.DB, now time.Time) ([]int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	cutoff := formatTime(now)
	rows, err := tx.QueryContext(ctx, `SELECT id FROM articles WHERE expires_at < ? ORDER BY id;`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("cleanup expired articles: %w", err)
	}
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE expires_at < ?;`, cutoff); err != nil {
		return nil, fmt.Errorf("cleanup expired articles: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
