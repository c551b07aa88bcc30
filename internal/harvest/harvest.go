// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest orchestrates fetching posts per source, filtering them,
// excluding posts seen by prior runs, and expanding comment trees.
package harvest

import (
	"context"
	"fmt"

	"github.com/pdiddy/insight-engine/internal/dedupe"
	"github.com/pdiddy/insight-engine/internal/filter"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Listing modes accepted by Request.Mode.
const (
	ModeHot = "hot" // most active
	ModeNew = "new" // newest
	ModeTop = "top" // top by time window
)

// ValidMode reports whether mode is a known listing mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeHot, ModeNew, ModeTop:
		return true
	}
	return false
}

// Fetcher abstracts the content-platform client. Implementations pace and
// retry their own requests.
type Fetcher interface {
	Listing(ctx context.Context, subreddit, mode, window string, limit int) ([]types.Post, error)
	Search(ctx context.Context, subreddit, query string, limit int) ([]types.Post, error)
	Comments(ctx context.Context, subreddit, postID string, limit, depth int) ([]types.Comment, error)
}

// Request describes one source to harvest. When Query is set the source is
// fetched via keyword search; otherwise via the listing Mode (default hot).
type Request struct {
	Subreddit       string
	Query           string
	Mode            string
	Window          string
	Limit           int
	Criteria        filter.Criteria
	IncludeComments bool
}

// mode resolves the effective listing mode for the request.
func (r Request) mode() string {
	if r.Mode == "" {
		return ModeHot
	}
	return r.Mode
}

// Options configures a harvest run.
type Options struct {
	// Tracker enables dedupe exclusion: posts whose ID it already knows are
	// dropped. Kept post IDs are always added to the tracker so the next
	// run sees them. Nil disables dedupe.
	Tracker *dedupe.Tracker

	// Reporter receives lifecycle events; nil means NopReporter.
	Reporter Reporter

	// CommentLimit and CommentDepth bound comment expansion (defaults 50, 3).
	CommentLimit int
	CommentDepth int
}

// Result is the outcome of a harvest run across all requested sources.
type Result struct {
	Posts         []types.Post
	Fetched       int
	Kept          int
	DedupeSkipped int
}

// Run harvests each request in order and returns the retained posts.
//
// An unknown listing mode on any request is a configuration error reported
// before any network call. A comment-expansion failure is recorded on the
// affected post and never aborts the source.
func Run(ctx context.Context, f Fetcher, reqs []Request, opts Options) (*Result, error) {
	for _, req := range reqs {
		if req.Query == "" && !ValidMode(req.mode()) {
			return nil, fmt.Errorf("unknown listing mode %q for r/%s", req.Mode, req.Subreddit)
		}
	}

	rep := opts.Reporter
	if rep == nil {
		rep = NopReporter{}
	}
	commentLimit := opts.CommentLimit
	if commentLimit <= 0 {
		commentLimit = 50
	}
	commentDepth := opts.CommentDepth
	if commentDepth <= 0 {
		commentDepth = 3
	}

	result := &Result{}
	for _, req := range reqs {
		if err := harvestSource(ctx, f, req, opts.Tracker, rep, commentLimit, commentDepth, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func harvestSource(ctx context.Context, f Fetcher, req Request, tracker *dedupe.Tracker, rep Reporter, commentLimit, commentDepth int, result *Result) error {
	limit := req.Limit
	if limit <= 0 {
		limit = 25
	}

	rep.SourceStart(req.Subreddit, req.mode(), req.Query, limit)

	var posts []types.Post
	var err error
	if req.Query != "" {
		posts, err = f.Search(ctx, req.Subreddit, req.Query, limit)
	} else {
		posts, err = f.Listing(ctx, req.Subreddit, req.mode(), req.Window, limit)
	}
	if err != nil {
		return fmt.Errorf("harvesting r/%s: %w", req.Subreddit, err)
	}
	result.Fetched += len(posts)
	rep.Fetched(len(posts))

	posts = filter.Apply(posts, req.Criteria)
	rep.Filtered(len(posts))

	if tracker != nil {
		var fresh []types.Post
		skipped := 0
		for _, p := range posts {
			if tracker.Has(p.ID) {
				skipped++
				continue
			}
			fresh = append(fresh, p)
		}
		posts = fresh
		result.DedupeSkipped += skipped
		rep.DedupeSkipped(skipped)
	}

	for i := range posts {
		p := &posts[i]
		rep.PostProgress(i+1, len(posts), p.Title)

		if tracker != nil {
			tracker.Add(p.ID)
		}

		if req.IncludeComments {
			rep.CommentsStart(p.ID)
			comments, err := f.Comments(ctx, p.Subreddit, p.ID, commentLimit, commentDepth)
			if err != nil {
				p.CommentsError = err.Error()
				rep.CommentsError(p.ID, err)
			} else {
				p.Comments = comments
				rep.CommentsDone(p.ID, len(comments))
			}
		}
	}

	result.Posts = append(result.Posts, posts...)
	result.Kept += len(posts)
	return nil
}
