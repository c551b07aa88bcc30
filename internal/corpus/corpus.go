// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus reads and writes harvested posts as a line-delimited JSON
// corpus or a human-readable plain-text export.
package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// FormatJSONL renders posts one JSON document per line. The result always
// ends with a newline; an empty post set serializes to a single newline
// character.
func FormatJSONL(posts []types.Post) (string, error) {
	if len(posts) == 0 {
		return "\n", nil
	}

	var b strings.Builder
	for _, p := range posts {
		data, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("marshaling post %s: %w", p.ID, err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// ParseJSONL parses a line-delimited corpus back into posts. Blank lines are
// ignored, so ParseJSONL(FormatJSONL(posts)) round-trips any post set.
func ParseJSONL(data string) ([]types.Post, error) {
	var posts []types.Post
	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var p types.Post
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return nil, fmt.Errorf("parsing corpus line %d: %w", line, err)
		}
		posts = append(posts, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return posts, nil
}

// WriteJSONLFile writes posts to path in line-delimited form.
func WriteJSONLFile(path string, posts []types.Post) error {
	data, err := FormatJSONL(posts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	return os.WriteFile(path, []byte(data), 0o644)
}

// ReadFile loads a corpus file. Line-delimited JSON is parsed as posts, and a
// whitespace-only file is the empty record set FormatJSONL produces for an
// empty harvest. Any other plain-text file is wrapped as one synthetic post
// so it can flow through the analysis pipeline unchanged.
func ReadFile(path string) ([]types.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		return ParseJSONL(string(data))
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []types.Post{{
		ID:        uuid.NewString(),
		Subreddit: name,
		Title:     name,
		Selftext:  string(data),
		CreatedAt: time.Now().UTC(),
	}}, nil
}

// ExportMeta describes the harvest run a plain-text export came from.
// Exactly one of Query (keyword search) or Mode (listing) is set.
type ExportMeta struct {
	Subreddit       string
	Query           string
	Mode            string
	Limit           int
	IncludeComments bool
	ExportedAt      time.Time
}

const sectionDelimiter = "================================================================================"

// noBodyPlaceholder stands in for link posts with an empty selftext.
const noBodyPlaceholder = "(no body)"

// FormatText renders posts as the plain-text corpus: a header block followed
// by one numbered section per post. Reply blocks appear only when the run
// requested comment inclusion.
func FormatText(meta ExportMeta, posts []types.Post) string {
	var b strings.Builder

	fmt.Fprintf(&b, "subreddit: %s\n", meta.Subreddit)
	if meta.Query != "" {
		fmt.Fprintf(&b, "search: %s\n", meta.Query)
	} else {
		fmt.Fprintf(&b, "listing: %s\n", meta.Mode)
	}
	fmt.Fprintf(&b, "limit: %d\n", meta.Limit)
	fmt.Fprintf(&b, "includeComments: %t\n", meta.IncludeComments)
	fmt.Fprintf(&b, "postsHarvested: %d\n", len(posts))
	fmt.Fprintf(&b, "exportedAt: %s\n", meta.ExportedAt.UTC().Format(time.RFC3339))

	for i, p := range posts {
		b.WriteString("\n" + sectionDelimiter + "\n")
		fmt.Fprintf(&b, "RECORD %d/%d\n", i+1, len(posts))
		fmt.Fprintf(&b, "id: %s\n", p.ID)
		fmt.Fprintf(&b, "title: %s\n", p.Title)
		fmt.Fprintf(&b, "author: %s\n", p.Author)
		fmt.Fprintf(&b, "created: %s\n", p.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "score: %d\n", p.Score)
		fmt.Fprintf(&b, "comments: %d\n", p.NumComments)
		fmt.Fprintf(&b, "url: %s\n", p.URL)
		fmt.Fprintf(&b, "permalink: %s\n", p.Permalink)
		b.WriteString("\n")

		body := strings.TrimSpace(p.Selftext)
		if body == "" {
			body = noBodyPlaceholder
		}
		b.WriteString(body + "\n\n")

		if meta.IncludeComments {
			writeReplies(&b, p)
		}
	}

	return b.String()
}

func writeReplies(b *strings.Builder, p types.Post) {
	switch {
	case p.CommentsError != "":
		fmt.Fprintf(b, "Replies: (error: %s)\n", p.CommentsError)
	case len(p.Comments) == 0:
		b.WriteString("Replies: (none)\n")
	default:
		b.WriteString("Replies:\n")
		for i, c := range p.Comments {
			fmt.Fprintf(b, "  %d. %s (score %d, %s)\n", i+1, c.Author, c.Score,
				c.CreatedAt.UTC().Format(time.RFC3339))
			for _, line := range strings.Split(strings.TrimSpace(c.Body), "\n") {
				fmt.Fprintf(b, "     %s\n", line)
			}
		}
	}
}
