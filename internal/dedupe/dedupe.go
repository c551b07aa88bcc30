// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe persists the set of post identifiers harvested by prior
// runs so repeat harvests of the same sources can drop already-seen posts.
package dedupe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// indexFile is the on-disk index name, fixed relative to the output directory.
const indexFile = "harvested_posts.json"

// entry records when a post identifier was first harvested.
type entry struct {
	HarvestedAt string `json:"harvestedAt"`
}

// document is the on-disk index shape: {"posts": {"<id>": {"harvestedAt": ...}}}.
type document struct {
	Posts map[string]entry `json:"posts"`
}

// Path returns the index file path under dir.
func Path(dir string) string {
	return filepath.Join(dir, indexFile)
}

// Load reads the index under dir and returns the set of known post IDs.
// A missing or unreadable index yields an empty set, never an error: a
// corrupt index degrades to re-harvesting, not to a failed run.
func Load(dir string) map[string]bool {
	ids := make(map[string]bool)

	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return ids
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ids
	}

	for id := range doc.Posts {
		ids[id] = true
	}
	return ids
}

// Save merges ids, each stamped with now, into whatever index currently
// exists on disk and writes the union back. The read-merge-write discipline
// tolerates another process having appended entries since this run's Load;
// on conflicting keys the last writer wins.
func Save(dir string, ids []string, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	doc := document{Posts: make(map[string]entry)}
	if data, err := os.ReadFile(Path(dir)); err == nil {
		// Best effort: an unparseable existing index is replaced.
		json.Unmarshal(data, &doc)
		if doc.Posts == nil {
			doc.Posts = make(map[string]entry)
		}
	}

	stamp := now.UTC().Format(time.RFC3339)
	for _, id := range ids {
		doc.Posts[id] = entry{HarvestedAt: stamp}
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(Path(dir), data, 0o644)
}

// Reset deletes the on-disk index. A missing index is not an error.
func Reset(dir string) error {
	err := os.Remove(Path(dir))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Tracker is the stateful view of the index used during one harvest run.
//
// Has consults only the set loaded at construction: the tracker exists to
// detect repeats from prior runs, so IDs added during the current run are
// intentionally not visible to Has. Duplicate posts within a single run
// (e.g. cross-posted to two harvested sources) are therefore not caught;
// this is a known limitation, not a defect.
type Tracker struct {
	dir     string
	seen    map[string]bool
	pending []string
}

// NewTracker loads the index under dir and returns a tracker for this run.
func NewTracker(dir string) *Tracker {
	return &Tracker{
		dir:  dir,
		seen: Load(dir),
	}
}

// Has reports whether id was present in the index when the tracker was
// constructed.
func (t *Tracker) Has(id string) bool {
	return t.seen[id]
}

// Add buffers id for the next Save.
func (t *Tracker) Add(id string) {
	t.pending = append(t.pending, id)
}

// Pending returns the number of IDs buffered since construction.
func (t *Tracker) Pending() int {
	return len(t.pending)
}

// Save persists the buffered IDs, merged with the current on-disk index.
// When nothing was buffered Save is a no-op and touches no files.
func (t *Tracker) Save() error {
	if len(t.pending) == 0 {
		return nil
	}
	return Save(t.dir, t.pending, time.Now())
}
