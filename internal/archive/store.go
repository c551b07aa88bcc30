// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive persists harvested posts in a SQLite database so past
// runs stay queryable after their corpus files have been analyzed or
// discarded.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/insight-engine/pkg/types"
)

const dbFile = "harvest.db"

// Store manages the harvest archive database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the archive at archiveDir/harvest.db and
// ensures the schema exists.
func NewStore(cfg types.ArchiveConfig) (*Store, error) {
	dir := cfg.ArchiveDir
	if dir == "" {
		dir = filepath.Join("output", "archive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			harvested_at TEXT NOT NULL,
			sources TEXT NOT NULL,
			post_count INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id),
			subreddit TEXT NOT NULL,
			title TEXT,
			author TEXT,
			created_at TEXT,
			score INTEGER,
			num_comments INTEGER,
			url TEXT,
			permalink TEXT,
			selftext TEXT,
			comments_error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			post_id TEXT NOT NULL REFERENCES posts(id),
			id TEXT NOT NULL,
			author TEXT,
			score INTEGER,
			body TEXT,
			created_at TEXT,
			PRIMARY KEY (post_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_subreddit ON posts(subreddit)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Archive stores one harvest run and its posts, returning the run ID.
// Re-harvested posts replace their earlier rows.
func (s *Store) Archive(ctx context.Context, posts []types.Post) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	sources := make(map[string]bool)
	for _, p := range posts {
		sources[p.Subreddit] = true
	}
	var names []string
	for name := range sources {
		names = append(names, name)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, harvested_at, sources, post_count) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), strings.Join(names, ","), len(posts),
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, p := range posts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO posts
			 (id, run_id, subreddit, title, author, created_at, score, num_comments, url, permalink, selftext, comments_error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, runID, p.Subreddit, p.Title, p.Author, p.CreatedAt.UTC().Format(time.RFC3339),
			p.Score, p.NumComments, p.URL, p.Permalink, p.Selftext, p.CommentsError,
		); err != nil {
			return "", fmt.Errorf("inserting post %s: %w", p.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, p.ID); err != nil {
			return "", fmt.Errorf("clearing comments for %s: %w", p.ID, err)
		}
		for _, c := range p.Comments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO comments (post_id, id, author, score, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				p.ID, c.ID, c.Author, c.Score, c.Body, c.CreatedAt.UTC().Format(time.RFC3339),
			); err != nil {
				return "", fmt.Errorf("inserting comment %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing archive: %w", err)
	}
	return runID, nil
}

// Recent returns the most recently harvested posts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Post, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	return s.queryPosts(ctx,
		`SELECT id, subreddit, title, author, created_at, score, num_comments, url, permalink, selftext, comments_error
		 FROM posts ORDER BY created_at DESC LIMIT ?`, limit)
}

// Search returns archived posts whose title or body contains term,
// best-scored first.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]types.Post, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	pattern := "%" + term + "%"
	return s.queryPosts(ctx,
		`SELECT id, subreddit, title, author, created_at, score, num_comments, url, permalink, selftext, comments_error
		 FROM posts WHERE title LIKE ? OR selftext LIKE ? ORDER BY score DESC LIMIT ?`,
		pattern, pattern, limit)
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]types.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var posts []types.Post
	for rows.Next() {
		var p types.Post
		var created string
		if err := rows.Scan(&p.ID, &p.Subreddit, &p.Title, &p.Author, &created,
			&p.Score, &p.NumComments, &p.URL, &p.Permalink, &p.Selftext, &p.CommentsError); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			p.CreatedAt = t
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
