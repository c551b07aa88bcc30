// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/insight-engine/internal/corpus"
	"github.com/pdiddy/insight-engine/internal/dedupe"
	"github.com/pdiddy/insight-engine/internal/filter"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// --- mock fetcher ---

type mockFetcher struct {
	posts       map[string][]types.Post // keyed by subreddit
	comments    map[string][]types.Comment
	commentsErr map[string]error
	calls       []string
}

func (m *mockFetcher) Listing(_ context.Context, subreddit, mode, _ string, limit int) ([]types.Post, error) {
	m.calls = append(m.calls, fmt.Sprintf("listing:%s:%s", subreddit, mode))
	posts := m.posts[subreddit]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *mockFetcher) Search(_ context.Context, subreddit, query string, limit int) ([]types.Post, error) {
	m.calls = append(m.calls, fmt.Sprintf("search:%s:%s", subreddit, query))
	posts := m.posts[subreddit]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *mockFetcher) Comments(_ context.Context, _, postID string, _, _ int) ([]types.Comment, error) {
	m.calls = append(m.calls, "comments:"+postID)
	if err := m.commentsErr[postID]; err != nil {
		return nil, err
	}
	return m.comments[postID], nil
}

func startupPosts() []types.Post {
	created := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	return []types.Post{
		{ID: "p1", Subreddit: "startups", Title: "Link only", Author: "a",
			CreatedAt: created, Score: 50, NumComments: 4,
			URL: "https://example.com", Permalink: "/r/startups/comments/p1"},
		{ID: "p2", Subreddit: "startups", Title: "Text post", Author: "b",
			CreatedAt: created.Add(time.Hour), Score: 5, NumComments: 1,
			Permalink: "/r/startups/comments/p2", Selftext: "real body"},
	}
}

func TestRunSingleSourceListing(t *testing.T) {
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}

	res, err := Run(context.Background(), f, []Request{{Subreddit: "startups", Limit: 1}}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Posts) != 1 {
		t.Fatalf("kept %d posts, want exactly 1", len(res.Posts))
	}
	if res.Posts[0].ID != "p1" {
		t.Errorf("kept %q, want p1", res.Posts[0].ID)
	}
	if f.calls[0] != "listing:startups:hot" {
		t.Errorf("first call = %q, want default hot listing", f.calls[0])
	}

	// Rendered text form: empty selftext defaults to "(no body)"; the header
	// carries postsHarvested and a listing line, never a search line.
	out := corpus.FormatText(corpus.ExportMeta{
		Subreddit: "startups", Mode: ModeHot, Limit: 1,
		IncludeComments: false, ExportedAt: time.Now(),
	}, res.Posts)

	if !strings.Contains(out, "postsHarvested: 1\n") {
		t.Error("header must contain postsHarvested: 1")
	}
	if !strings.Contains(out, "listing: hot\n") || strings.Contains(out, "search:") {
		t.Error("header must contain a listing line and omit the search line")
	}
	if !strings.Contains(out, "(no body)") {
		t.Error("empty selftext must render as (no body)")
	}
}

func TestRunDedupeAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}
	req := []Request{{Subreddit: "startups", Limit: 10}}

	firstTracker := dedupe.NewTracker(dir)
	first, err := Run(context.Background(), f, req, Options{Tracker: firstTracker})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Posts) != 2 {
		t.Fatalf("first run kept %d, want 2", len(first.Posts))
	}
	// The orchestrator buffers ids; the caller persists them.
	if dedupe.NewTracker(dir).Has("p1") {
		t.Fatal("ids must not be visible before the tracker is saved")
	}
	if err := firstTracker.Save(); err != nil {
		t.Fatal(err)
	}

	secondTracker := dedupe.NewTracker(dir)
	for _, p := range first.Posts {
		if !secondTracker.Has(p.ID) {
			t.Errorf("second run must know id %s", p.ID)
		}
	}

	second, err := Run(context.Background(), f, req, Options{Tracker: secondTracker})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Posts) != 0 {
		t.Errorf("second run kept %d posts, want 0 (source unchanged)", len(second.Posts))
	}
	if second.DedupeSkipped != 2 {
		t.Errorf("DedupeSkipped = %d, want 2", second.DedupeSkipped)
	}
}

func TestRunAddsKeptIDsToTracker(t *testing.T) {
	dir := t.TempDir()
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}
	tracker := dedupe.NewTracker(dir)

	_, err := Run(context.Background(), f, []Request{{Subreddit: "startups", Limit: 10}}, Options{Tracker: tracker})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tracker.Pending() != 2 {
		t.Errorf("tracker buffered %d ids, want 2", tracker.Pending())
	}
}

func TestRunUnknownListingModeFailsBeforeFetch(t *testing.T) {
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}

	_, err := Run(context.Background(), f, []Request{
		{Subreddit: "startups", Mode: "hot"},
		{Subreddit: "golang", Mode: "rising"},
	}, Options{})

	if err == nil || !strings.Contains(err.Error(), "unknown listing mode") {
		t.Fatalf("err = %v, want unknown listing mode error", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("no fetches should happen before mode validation; got %v", f.calls)
	}
}

func TestRunSearchMode(t *testing.T) {
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}

	_, err := Run(context.Background(), f, []Request{
		{Subreddit: "startups", Query: "billing", Limit: 5},
	}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.calls[0] != "search:startups:billing" {
		t.Errorf("call = %q, want keyword search", f.calls[0])
	}
}

func TestRunAppliesCriteria(t *testing.T) {
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}
	minScore := 50

	res, err := Run(context.Background(), f, []Request{
		{Subreddit: "startups", Limit: 10, Criteria: filter.Criteria{MinScore: &minScore}},
	}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Posts) != 1 || res.Posts[0].ID != "p1" {
		t.Errorf("criteria not applied: kept %d posts", len(res.Posts))
	}
}

func TestRunCommentExpansionFailureIsLocal(t *testing.T) {
	f := &mockFetcher{
		posts:       map[string][]types.Post{"startups": startupPosts()},
		comments:    map[string][]types.Comment{"p2": {{ID: "c1", Author: "x", Body: "hi"}}},
		commentsErr: map[string]error{"p1": errors.New("thread locked")},
	}

	res, err := Run(context.Background(), f, []Request{
		{Subreddit: "startups", Limit: 10, IncludeComments: true},
	}, Options{})
	if err != nil {
		t.Fatalf("a comment failure must not abort the source: %v", err)
	}
	if res.Posts[0].CommentsError != "thread locked" {
		t.Errorf("CommentsError = %q", res.Posts[0].CommentsError)
	}
	if len(res.Posts[1].Comments) != 1 {
		t.Errorf("second post should still expand comments")
	}
}

// eventLog records reporter callbacks in order.
type eventLog struct {
	NopReporter
	events []string
}

func (e *eventLog) SourceStart(subreddit, mode, query string, limit int) {
	e.events = append(e.events, "start:"+subreddit+":"+mode)
}
func (e *eventLog) Fetched(n int)  { e.events = append(e.events, fmt.Sprintf("fetched:%d", n)) }
func (e *eventLog) Filtered(n int) { e.events = append(e.events, fmt.Sprintf("filtered:%d", n)) }
func (e *eventLog) PostProgress(i, total int, _ string) {
	e.events = append(e.events, fmt.Sprintf("post:%d/%d", i, total))
}

func TestRunEventOrder(t *testing.T) {
	f := &mockFetcher{posts: map[string][]types.Post{"startups": startupPosts()}}
	log := &eventLog{}

	_, err := Run(context.Background(), f, []Request{{Subreddit: "startups", Limit: 10}}, Options{Reporter: log})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"start:startups:hot", "fetched:2", "filtered:2", "post:1/2", "post:2/2"}
	if len(log.events) != len(want) {
		t.Fatalf("events = %v, want %v", log.events, want)
	}
	for i := range want {
		if log.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, log.events[i], want[i])
		}
	}
}
