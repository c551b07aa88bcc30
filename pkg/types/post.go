// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the insight-engine pipeline:
// harvested posts and comments, filter criteria, analysis artifacts, and the
// configuration structs each stage consumes.
package types

import "time"

// Post is one harvested discussion thread. The harvest orchestrator produces
// Posts; once produced they are immutable and serialize 1:1 to the
// line-delimited corpus format.
type Post struct {
	// ID is the platform identifier, unique within a subreddit.
	ID string `json:"id" yaml:"id"`

	// Subreddit is the source community the post was harvested from.
	Subreddit string `json:"subreddit" yaml:"subreddit"`

	// Title is the post title.
	Title string `json:"title" yaml:"title"`

	// Author is the posting account name.
	Author string `json:"author" yaml:"author"`

	// CreatedAt is the post creation instant.
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`

	// Score is the net vote score at harvest time.
	Score int `json:"score" yaml:"score"`

	// NumComments is the comment count reported by the platform, which may
	// exceed len(Comments) when expansion was limited or disabled.
	NumComments int `json:"numComments" yaml:"num_comments"`

	// URL is the canonical link target (external URL for link posts).
	URL string `json:"url" yaml:"url"`

	// Permalink is the platform-relative link to the thread itself.
	Permalink string `json:"permalink" yaml:"permalink"`

	// Selftext is the post body. Empty for link posts.
	Selftext string `json:"selftext" yaml:"selftext"`

	// Comments holds expanded replies in platform order. Nil when comment
	// expansion was not requested.
	Comments []Comment `json:"comments,omitempty" yaml:"comments,omitempty"`

	// CommentsError records a reply-expansion failure for this post. The
	// post itself is still retained.
	CommentsError string `json:"commentsError,omitempty" yaml:"comments_error,omitempty"`
}

// Comment is a single threaded reply attached to a Post. Reply trees are
// flattened to a finite ordered sequence when expanded.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Author    string    `json:"author" yaml:"author"`
	Score     int       `json:"score" yaml:"score"`
	Body      string    `json:"body" yaml:"body"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}
