// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"io"
)

// Reporter receives ordered lifecycle events during a harvest run. Events
// are observational: the run's correctness never depends on a reporter
// consuming them.
type Reporter interface {
	SourceStart(subreddit, mode, query string, limit int)
	Fetched(n int)
	Filtered(n int)
	DedupeSkipped(n int)
	PostProgress(i, total int, title string)
	CommentsStart(postID string)
	CommentsDone(postID string, n int)
	CommentsError(postID string, err error)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) SourceStart(string, string, string, int) {}
func (NopReporter) Fetched(int)                             {}
func (NopReporter) Filtered(int)                            {}
func (NopReporter) DedupeSkipped(int)                       {}
func (NopReporter) PostProgress(int, int, string)           {}
func (NopReporter) CommentsStart(string)                    {}
func (NopReporter) CommentsDone(string, int)                {}
func (NopReporter) CommentsError(string, error)             {}

// WriterReporter renders events as progress lines on an io.Writer.
type WriterReporter struct {
	W io.Writer
}

func (r WriterReporter) SourceStart(subreddit, mode, query string, limit int) {
	if query != "" {
		fmt.Fprintf(r.W, "r/%s: searching %q (limit %d)\n", subreddit, query, limit)
		return
	}
	fmt.Fprintf(r.W, "r/%s: fetching %s listing (limit %d)\n", subreddit, mode, limit)
}

func (r WriterReporter) Fetched(n int) {
	fmt.Fprintf(r.W, "  fetched %d posts\n", n)
}

func (r WriterReporter) Filtered(n int) {
	fmt.Fprintf(r.W, "  %d posts after filtering\n", n)
}

func (r WriterReporter) DedupeSkipped(n int) {
	if n > 0 {
		fmt.Fprintf(r.W, "  skipped %d already-harvested posts\n", n)
	}
}

func (r WriterReporter) PostProgress(i, total int, title string) {
	fmt.Fprintf(r.W, "  [%d/%d] %s\n", i, total, title)
}

func (r WriterReporter) CommentsStart(postID string) {
	fmt.Fprintf(r.W, "    expanding comments for %s\n", postID)
}

func (r WriterReporter) CommentsDone(postID string, n int) {
	fmt.Fprintf(r.W, "    %d comments expanded for %s\n", n, postID)
}

func (r WriterReporter) CommentsError(postID string, err error) {
	fmt.Fprintf(r.W, "    warning: comment expansion failed for %s: %v\n", postID, err)
}
