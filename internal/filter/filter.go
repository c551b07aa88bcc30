// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter applies harvest criteria to fetched posts. Each criterion
// is optional and independent; absent criteria never reject anything.
package filter

import (
	"strconv"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// Criteria holds the optional post filters. Score and comment bounds are
// inclusive lower bounds. Date bounds accept an ISO-8601 calendar date or a
// Unix timestamp in seconds or milliseconds and compare inclusively against
// the post's creation instant.
type Criteria struct {
	MinScore    *int   `json:"min_score,omitempty" yaml:"min_score,omitempty"`
	MinComments *int   `json:"min_comments,omitempty" yaml:"min_comments,omitempty"`
	From        string `json:"from,omitempty" yaml:"from,omitempty"`
	To          string `json:"to,omitempty" yaml:"to,omitempty"`
}

// IsEmpty reports whether no criteria are set.
func (c Criteria) IsEmpty() bool {
	return c.MinScore == nil && c.MinComments == nil && c.From == "" && c.To == ""
}

// Apply returns the subset of posts satisfying all present criteria.
func Apply(posts []types.Post, c Criteria) []types.Post {
	from, hasFrom := ParseDateBound(c.From)
	to, hasTo := ParseDateBound(c.To)

	var kept []types.Post
	for _, p := range posts {
		if c.MinScore != nil && p.Score < *c.MinScore {
			continue
		}
		if c.MinComments != nil && p.NumComments < *c.MinComments {
			continue
		}
		if hasFrom && p.CreatedAt.Before(from) {
			continue
		}
		if hasTo && p.CreatedAt.After(to) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// ParseDateBound interprets a date bound string. Numeric values between 1e9
// and 1e12 are Unix seconds, values at or above 1e12 are Unix milliseconds;
// anything else is parsed as a calendar date (RFC 3339 or YYYY-MM-DD).
// An unparseable bound is treated as absent rather than an error.
func ParseDateBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		switch {
		case v >= 1e12:
			return time.UnixMilli(v).UTC(), true
		case v >= 1e9:
			return time.Unix(v, 0).UTC(), true
		}
		// Small integers are not plausible timestamps; fall through to
		// calendar parsing, which will reject them.
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
