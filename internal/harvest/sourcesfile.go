// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/insight-engine/internal/filter"
)

// SourcesFile is the on-disk description of a multi-source harvest: which
// subreddits to fetch, how, and with what filter criteria. The researcher
// writes one once and re-runs it across sessions.
type SourcesFile struct {
	Defaults SourceDefaults `yaml:"defaults"`
	Sources  []SourceSpec   `yaml:"sources"`
}

// SourceDefaults applies to every source unless the source overrides it.
type SourceDefaults struct {
	Limit           int             `yaml:"limit,omitempty"`
	Mode            string          `yaml:"mode,omitempty"`
	IncludeComments bool            `yaml:"include_comments,omitempty"`
	Criteria        filter.Criteria `yaml:"criteria,omitempty"`
}

// SourceSpec configures one source.
type SourceSpec struct {
	Subreddit string          `yaml:"subreddit"`
	Query     string          `yaml:"query,omitempty"`
	Mode      string          `yaml:"mode,omitempty"`
	Window    string          `yaml:"window,omitempty"`
	Limit     int             `yaml:"limit,omitempty"`
	Criteria  filter.Criteria `yaml:"criteria,omitempty"`
}

// ReadSourcesFile loads and validates a sources file.
func ReadSourcesFile(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}
	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing sources file: %w", err)
	}
	if len(sf.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s lists no sources", path)
	}
	for i, s := range sf.Sources {
		if s.Subreddit == "" {
			return nil, fmt.Errorf("sources file %s: source %d has no subreddit", path, i+1)
		}
	}
	return &sf, nil
}

// Requests expands the file into harvest requests with defaults applied.
func (sf *SourcesFile) Requests() []Request {
	reqs := make([]Request, 0, len(sf.Sources))
	for _, s := range sf.Sources {
		req := Request{
			Subreddit:       s.Subreddit,
			Query:           s.Query,
			Mode:            s.Mode,
			Window:          s.Window,
			Limit:           s.Limit,
			Criteria:        s.Criteria,
			IncludeComments: sf.Defaults.IncludeComments,
		}
		if req.Mode == "" {
			req.Mode = sf.Defaults.Mode
		}
		if req.Limit <= 0 {
			req.Limit = sf.Defaults.Limit
		}
		if req.Criteria.IsEmpty() {
			req.Criteria = sf.Defaults.Criteria
		}
		reqs = append(reqs, req)
	}
	return reqs
}
