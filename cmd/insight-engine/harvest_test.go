// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/insight-engine/internal/harvest"
	"github.com/pdiddy/insight-engine/pkg/types"
)

func formatCmd(format string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("format", format, "")
	return cmd
}

func harvestResult() *harvest.Result {
	return &harvest.Result{
		Posts: []types.Post{{
			ID:        "p1",
			Subreddit: "startups",
			Title:     "Billing is broken",
			Author:    "ada",
			CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			Score:     42,
		}},
		Fetched: 1,
		Kept:    1,
	}
}

func TestWriteCorpusTextCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "not-yet-created")
	reqs := []harvest.Request{{Subreddit: "startups", Mode: harvest.ModeHot}}

	if err := writeCorpus(formatCmd("text"), harvestResult(), reqs, dir, false, 25); err != nil {
		t.Fatalf("writeCorpus: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	var found bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "corpus-") && strings.HasSuffix(e.Name(), ".txt") {
			found = true
		}
	}
	if !found {
		t.Error("no corpus-*.txt written to fresh output dir")
	}
}

func TestWriteCorpusBothFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	reqs := []harvest.Request{{Subreddit: "startups"}}

	if err := writeCorpus(formatCmd("both"), harvestResult(), reqs, dir, false, 25); err != nil {
		t.Fatalf("writeCorpus: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	var jsonl, text bool
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".jsonl":
			jsonl = true
		case ".txt":
			text = true
		}
	}
	if !jsonl || !text {
		t.Errorf("jsonl=%v text=%v, want both corpus files", jsonl, text)
	}
}
