// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reddit fetches posts and comment trees from the public listing
// API. It paces consecutive requests and retries transient failures; callers
// see plain slices of types.Post and types.Comment.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/insight-engine/internal/retry"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// apiBase is the platform endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://www.reddit.com"

// Client calls the platform's public JSON endpoints.
type Client struct {
	HTTP *http.Client
	Cfg  types.HarvestConfig

	lastRequest time.Time
}

// NewClient returns a client with defaults applied.
func NewClient(cfg types.HarvestConfig) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "insight-engine/0.1"
	}
	if cfg.RequestDelay <= 0 {
		cfg.RequestDelay = time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP: &http.Client{Timeout: timeout},
		Cfg:  cfg,
	}
}

// Listing fetches up to limit posts from a subreddit listing. Mode is the
// listing path segment (hot, new, top); window applies to top listings only.
func (c *Client) Listing(ctx context.Context, subreddit, mode, window string, limit int) ([]types.Post, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	if mode == "top" && window != "" {
		q.Set("t", window)
	}
	u := fmt.Sprintf("%s/r/%s/%s.json?%s", apiBase, url.PathEscape(subreddit), mode, q.Encode())

	var lst listing
	if err := c.get(ctx, u, &lst); err != nil {
		return nil, fmt.Errorf("fetching r/%s %s listing: %w", subreddit, mode, err)
	}
	return lst.posts(subreddit), nil
}

// Search fetches up to limit posts matching query within a subreddit.
func (c *Client) Search(ctx context.Context, subreddit, query string, limit int) ([]types.Post, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("restrict_sr", "1")
	q.Set("sort", "relevance")
	q.Set("limit", fmt.Sprint(limit))
	u := fmt.Sprintf("%s/r/%s/search.json?%s", apiBase, url.PathEscape(subreddit), q.Encode())

	var lst listing
	if err := c.get(ctx, u, &lst); err != nil {
		return nil, fmt.Errorf("searching r/%s for %q: %w", subreddit, query, err)
	}
	return lst.posts(subreddit), nil
}

// Comments expands the reply tree of one post, flattened depth-first to at
// most limit comments and depth levels of nesting. The lazily-paged tree is
// materialized once; continuation stubs are dropped.
func (c *Client) Comments(ctx context.Context, subreddit, postID string, limit, depth int) ([]types.Comment, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("depth", fmt.Sprint(depth))
	u := fmt.Sprintf("%s/r/%s/comments/%s.json?%s", apiBase, url.PathEscape(subreddit), url.PathEscape(postID), q.Encode())

	var pages []listing
	if err := c.get(ctx, u, &pages); err != nil {
		return nil, fmt.Errorf("fetching comments for %s: %w", postID, err)
	}
	if len(pages) < 2 {
		return []types.Comment{}, nil
	}

	var out []types.Comment
	flatten(pages[1].Data.Children, depth, limit, &out)
	return out, nil
}

// pace enforces the platform's minimum inter-request delay.
func (c *Client) pace() {
	if !c.lastRequest.IsZero() {
		if wait := c.Cfg.RequestDelay - time.Since(c.lastRequest); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastRequest = time.Now()
}

// get issues one paced GET and decodes the JSON response into v, retrying
// transient failures.
func (c *Client) get(ctx context.Context, u string, v any) error {
	body, err := retry.Do(ctx, func() ([]byte, error) {
		c.pace()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.Cfg.UserAgent)

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &retry.StatusError{Code: resp.StatusCode, Message: string(data)}
		}
		return data, nil
	}, retry.Options{})
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// --- wire format ---

type listing struct {
	Data struct {
		Children []child `json:"children"`
	} `json:"data"`
}

type child struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	CreatedUTC  float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Selftext    string  `json:"selftext"`
}

type commentData struct {
	ID         string          `json:"id"`
	Author     string          `json:"author"`
	Score      int             `json:"score"`
	Body       string          `json:"body"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

// posts converts listing children of kind t3 to Posts. The subreddit from
// the request is the fallback when the payload omits it.
func (l listing) posts(subreddit string) []types.Post {
	var out []types.Post
	for _, ch := range l.Data.Children {
		if ch.Kind != "t3" {
			continue
		}
		var pd postData
		if err := json.Unmarshal(ch.Data, &pd); err != nil {
			continue
		}
		sub := pd.Subreddit
		if sub == "" {
			sub = subreddit
		}
		out = append(out, types.Post{
			ID:          pd.ID,
			Subreddit:   sub,
			Title:       pd.Title,
			Author:      pd.Author,
			CreatedAt:   time.Unix(int64(pd.CreatedUTC), 0).UTC(),
			Score:       pd.Score,
			NumComments: pd.NumComments,
			URL:         pd.URL,
			Permalink:   pd.Permalink,
			Selftext:    pd.Selftext,
		})
	}
	return out
}

// flatten walks a comment tree depth-first, appending up to limit comments
// at most depth levels deep. Non-comment children ("more" stubs) are skipped.
func flatten(children []child, depth, limit int, out *[]types.Comment) {
	if depth < 0 {
		return
	}
	for _, ch := range children {
		if limit > 0 && len(*out) >= limit {
			return
		}
		if ch.Kind != "t1" {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(ch.Data, &cd); err != nil {
			continue
		}
		*out = append(*out, types.Comment{
			ID:        cd.ID,
			Author:    cd.Author,
			Score:     cd.Score,
			Body:      cd.Body,
			CreatedAt: time.Unix(int64(cd.CreatedUTC), 0).UTC(),
		})

		// Replies is an empty string when the thread bottoms out.
		if len(cd.Replies) > 0 && cd.Replies[0] == '{' {
			var sub listing
			if err := json.Unmarshal(cd.Replies, &sub); err == nil {
				flatten(sub.Data.Children, depth-1, limit, out)
			}
		}
	}
}
