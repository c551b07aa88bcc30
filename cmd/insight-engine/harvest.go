// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/insight-engine/internal/archive"
	"github.com/pdiddy/insight-engine/internal/corpus"
	"github.com/pdiddy/insight-engine/internal/dedupe"
	"github.com/pdiddy/insight-engine/internal/filter"
	"github.com/pdiddy/insight-engine/internal/harvest"
	"github.com/pdiddy/insight-engine/internal/reddit"
	"github.com/pdiddy/insight-engine/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Fetch, filter, and persist discussion threads",
	Long: `Harvest fetches posts from one or more subreddits via keyword search or a
listing (hot, new, top), applies optional score/comment/date filters, drops
posts already harvested by prior runs when --dedupe is set, and writes the
corpus to the output directory as line-delimited JSON and/or plain text.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("subreddits", "", "comma-separated subreddits to harvest")
	harvestCmd.Flags().String("query", "", "keyword search instead of a listing")
	harvestCmd.Flags().String("mode", "hot", "listing mode: hot, new, or top")
	harvestCmd.Flags().String("window", "week", "time window for top listings (hour, day, week, month, year, all)")
	harvestCmd.Flags().Int("limit", 25, "maximum posts per source")
	harvestCmd.Flags().Bool("comments", false, "expand comment trees")
	harvestCmd.Flags().Int("comment-limit", 50, "maximum comments per post")
	harvestCmd.Flags().Int("comment-depth", 3, "maximum reply nesting depth")
	harvestCmd.Flags().Int("min-score", 0, "keep posts with at least this score")
	harvestCmd.Flags().Int("min-comments", 0, "keep posts with at least this many comments")
	harvestCmd.Flags().String("from", "", "keep posts created at or after this date (ISO date or Unix timestamp)")
	harvestCmd.Flags().String("to", "", "keep posts created at or before this date (ISO date or Unix timestamp)")
	harvestCmd.Flags().String("sources-file", "", "YAML file describing sources and criteria (overrides --subreddits)")
	harvestCmd.Flags().Bool("dedupe", false, "skip posts harvested by prior runs")
	harvestCmd.Flags().Bool("reset-dedupe", false, "delete the dedupe index before harvesting")
	harvestCmd.Flags().String("format", "jsonl", "corpus format: jsonl, text, or both")
	harvestCmd.Flags().String("output-dir", "", "output directory (default from config, else ./output)")
	harvestCmd.Flags().Bool("archive", false, "also store the harvest in the SQLite archive")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	outputDir, _ := flags.GetString("output-dir")
	if outputDir == "" {
		outputDir = viper.GetString("harvest.output_dir")
	}
	if outputDir == "" {
		outputDir = "output"
	}

	if reset, _ := flags.GetBool("reset-dedupe"); reset {
		if err := dedupe.Reset(outputDir); err != nil {
			return fmt.Errorf("resetting dedupe index: %w", err)
		}
		fmt.Fprintln(os.Stderr, "dedupe index reset")
	}

	includeComments, _ := flags.GetBool("comments")
	limit, _ := flags.GetInt("limit")

	reqs, err := buildRequests(cmd, includeComments, limit)
	if err != nil {
		return err
	}

	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			UserAgent: viper.GetString("harvest.user_agent"),
		},
		RequestDelay: viper.GetDuration("harvest.request_delay"),
		OutputDir:    outputDir,
	}
	client := reddit.NewClient(cfg)

	var tracker *dedupe.Tracker
	if useDedupe, _ := flags.GetBool("dedupe"); useDedupe {
		tracker = dedupe.NewTracker(outputDir)
	}

	commentLimit, _ := flags.GetInt("comment-limit")
	commentDepth, _ := flags.GetInt("comment-depth")

	result, err := harvest.Run(cmd.Context(), client, reqs, harvest.Options{
		Tracker:      tracker,
		Reporter:     harvest.WriterReporter{W: os.Stderr},
		CommentLimit: commentLimit,
		CommentDepth: commentDepth,
	})
	if err != nil {
		return err
	}

	if err := writeCorpus(cmd, result, reqs, outputDir, includeComments, limit); err != nil {
		return err
	}

	if tracker != nil {
		if err := tracker.Save(); err != nil {
			return fmt.Errorf("saving dedupe index: %w", err)
		}
	}

	if doArchive, _ := flags.GetBool("archive"); doArchive && len(result.Posts) > 0 {
		store, err := archive.NewStore(types.ArchiveConfig{
			ArchiveDir: filepath.Join(outputDir, "archive"),
		})
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.Archive(cmd.Context(), result.Posts)
		if err != nil {
			return fmt.Errorf("archiving harvest: %w", err)
		}
		fmt.Fprintf(os.Stderr, "archived run %s\n", runID)
	}

	fmt.Fprintf(os.Stderr, "harvested %d posts (%d fetched, %d dedupe-skipped)\n",
		result.Kept, result.Fetched, result.DedupeSkipped)
	return nil
}

// buildRequests assembles harvest requests from a sources file or flags.
func buildRequests(cmd *cobra.Command, includeComments bool, limit int) ([]harvest.Request, error) {
	flags := cmd.Flags()

	if path, _ := flags.GetString("sources-file"); path != "" {
		sf, err := harvest.ReadSourcesFile(path)
		if err != nil {
			return nil, err
		}
		return sf.Requests(), nil
	}

	subs, _ := flags.GetString("subreddits")
	if subs == "" {
		return nil, fmt.Errorf("either --subreddits or --sources-file is required")
	}

	criteria := filter.Criteria{}
	if v, _ := flags.GetInt("min-score"); flags.Changed("min-score") {
		criteria.MinScore = &v
	}
	if v, _ := flags.GetInt("min-comments"); flags.Changed("min-comments") {
		criteria.MinComments = &v
	}
	criteria.From, _ = flags.GetString("from")
	criteria.To, _ = flags.GetString("to")

	query, _ := flags.GetString("query")
	mode, _ := flags.GetString("mode")
	window, _ := flags.GetString("window")

	var reqs []harvest.Request
	for _, sub := range strings.Split(subs, ",") {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		reqs = append(reqs, harvest.Request{
			Subreddit:       sub,
			Query:           query,
			Mode:            mode,
			Window:          window,
			Limit:           limit,
			Criteria:        criteria,
			IncludeComments: includeComments,
		})
	}
	return reqs, nil
}

// writeCorpus persists the harvest in the requested format(s), one file per
// run stamped with the harvest time.
func writeCorpus(cmd *cobra.Command, result *harvest.Result, reqs []harvest.Request, outputDir string, includeComments bool, limit int) error {
	format, _ := cmd.Flags().GetString("format")
	stamp := time.Now().UTC().Format("20060102-150405")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outputDir, err)
	}

	if format == "jsonl" || format == "both" {
		path := filepath.Join(outputDir, "corpus-"+stamp+".jsonl")
		if err := corpus.WriteJSONLFile(path, result.Posts); err != nil {
			return fmt.Errorf("writing JSONL corpus: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}

	if format == "text" || format == "both" {
		var names []string
		for _, r := range reqs {
			names = append(names, r.Subreddit)
		}
		meta := corpus.ExportMeta{
			Subreddit:       strings.Join(names, ","),
			Limit:           limit,
			IncludeComments: includeComments,
			ExportedAt:      time.Now(),
		}
		if len(reqs) > 0 && reqs[0].Query != "" {
			meta.Query = reqs[0].Query
		} else if len(reqs) > 0 {
			meta.Mode = reqs[0].Mode
			if meta.Mode == "" {
				meta.Mode = harvest.ModeHot
			}
		}
		path := filepath.Join(outputDir, "corpus-"+stamp+".txt")
		if err := os.WriteFile(path, []byte(corpus.FormatText(meta, result.Posts)), 0o644); err != nil {
			return fmt.Errorf("writing text corpus: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	}

	if format != "jsonl" && format != "text" && format != "both" {
		return fmt.Errorf("unknown corpus format %q", format)
	}
	return nil
}
