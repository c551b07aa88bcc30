// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

func samplePosts() []types.Post {
	created := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)
	return []types.Post{
		{
			ID: "abc1", Subreddit: "startups", Title: "Struggling with invoicing",
			Author: "founder42", CreatedAt: created, Score: 120, NumComments: 2,
			URL:       "https://example.com/r/startups/abc1",
			Permalink: "/r/startups/comments/abc1",
			Selftext:  "Every month I lose a day to invoicing.",
			Comments: []types.Comment{
				{ID: "c1", Author: "ops_person", Score: 14, Body: "Same here.", CreatedAt: created.Add(time.Hour)},
				{ID: "c2", Author: "dev123", Score: 3, Body: "We built a script\nfor this.", CreatedAt: created.Add(2 * time.Hour)},
			},
		},
		{
			ID: "def2", Subreddit: "startups", Title: "Link post",
			Author: "lurker", CreatedAt: created.Add(24 * time.Hour), Score: 5, NumComments: 0,
			URL:       "https://blog.example.com/post",
			Permalink: "/r/startups/comments/def2",
			Comments:  []types.Comment{},
		},
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	posts := samplePosts()

	data, err := FormatJSONL(posts)
	if err != nil {
		t.Fatalf("FormatJSONL: %v", err)
	}
	parsed, err := ParseJSONL(data)
	if err != nil {
		t.Fatalf("ParseJSONL: %v", err)
	}

	if !reflect.DeepEqual(posts, parsed) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", parsed, posts)
	}

	// Byte-for-byte stability for corpora produced by this system.
	again, err := FormatJSONL(parsed)
	if err != nil {
		t.Fatalf("FormatJSONL(parsed): %v", err)
	}
	if again != data {
		t.Error("format(parse(x)) != x")
	}
}

func TestFormatJSONLEmptySet(t *testing.T) {
	data, err := FormatJSONL(nil)
	if err != nil {
		t.Fatalf("FormatJSONL: %v", err)
	}
	if data != "\n" {
		t.Errorf("empty set = %q, want single newline", data)
	}
}

func TestFormatJSONLTrailingNewline(t *testing.T) {
	data, err := FormatJSONL(samplePosts())
	if err != nil {
		t.Fatalf("FormatJSONL: %v", err)
	}
	if !strings.HasSuffix(data, "\n") {
		t.Error("corpus must end with a newline")
	}
	if strings.HasSuffix(data, "\n\n") {
		t.Error("corpus must not end with a blank line")
	}
}

func TestFormatTextHeaderListing(t *testing.T) {
	meta := ExportMeta{
		Subreddit: "startups", Mode: "hot", Limit: 25,
		IncludeComments: false, ExportedAt: time.Now(),
	}
	out := FormatText(meta, samplePosts()[:1])

	for _, want := range []string{
		"subreddit: startups\n",
		"listing: hot\n",
		"limit: 25\n",
		"includeComments: false\n",
		"postsHarvested: 1\n",
		"RECORD 1/1\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "search:") {
		t.Error("listing export must omit the search line")
	}
}

func TestFormatTextHeaderSearch(t *testing.T) {
	meta := ExportMeta{Subreddit: "startups", Query: "invoicing pain", Limit: 10, ExportedAt: time.Now()}
	out := FormatText(meta, nil)

	if !strings.Contains(out, "search: invoicing pain\n") {
		t.Error("search export must contain the search line")
	}
	if strings.Contains(out, "listing:") {
		t.Error("search export must omit the listing line")
	}
}

func TestFormatTextEmptyBodyPlaceholder(t *testing.T) {
	meta := ExportMeta{Subreddit: "startups", Mode: "hot", Limit: 1, ExportedAt: time.Now()}
	out := FormatText(meta, samplePosts()[1:])

	if !strings.Contains(out, "\n(no body)\n") {
		t.Error("empty selftext must render as (no body)")
	}
}

func TestFormatTextReplies(t *testing.T) {
	posts := samplePosts()
	posts = append(posts, types.Post{
		ID: "ghi3", Subreddit: "startups", Title: "Broken thread",
		CreatedAt: time.Now(), CommentsError: "fetch timed out",
	})
	meta := ExportMeta{Subreddit: "startups", Mode: "new", Limit: 3, IncludeComments: true, ExportedAt: time.Now()}
	out := FormatText(meta, posts)

	if !strings.Contains(out, "Replies:\n  1. ops_person (score 14,") {
		t.Error("populated replies must render as a numbered list")
	}
	if !strings.Contains(out, "     for this.\n") {
		t.Error("multi-line reply bodies must be indented")
	}
	if !strings.Contains(out, "Replies: (none)\n") {
		t.Error("empty replies must render as (none)")
	}
	if !strings.Contains(out, "Replies: (error: fetch timed out)\n") {
		t.Error("reply-expansion failures must render as (error: ...)")
	}
}

func TestFormatTextOmitsRepliesWithoutInclusion(t *testing.T) {
	meta := ExportMeta{Subreddit: "startups", Mode: "hot", Limit: 1, IncludeComments: false, ExportedAt: time.Now()}
	out := FormatText(meta, samplePosts()[:1])

	if strings.Contains(out, "Replies") {
		t.Error("replies block must be absent when comments were not requested")
	}
}

func TestReadFileJSONL(t *testing.T) {
	posts := samplePosts()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := WriteJSONLFile(path, posts); err != nil {
		t.Fatalf("WriteJSONLFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(posts, got) {
		t.Error("JSONL corpus file did not round-trip")
	}
}

func TestReadFileEmptyCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := WriteJSONLFile(path, nil); err != nil {
		t.Fatalf("WriteJSONLFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want empty record set", len(got))
	}
}

func TestReadFileRawTextWrapsSyntheticPost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	raw := "A long interview transcript about billing pain.\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 synthetic post", len(got))
	}
	if got[0].Selftext != raw {
		t.Error("synthetic post must carry the raw text unchanged")
	}
	if got[0].ID == "" {
		t.Error("synthetic post must have a generated id")
	}
	if got[0].Subreddit != "notes" {
		t.Errorf("source = %q, want file base name", got[0].Subreddit)
	}
}
