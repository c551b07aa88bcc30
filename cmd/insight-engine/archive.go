// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/insight-engine/internal/archive"
	"github.com/pdiddy/insight-engine/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Query the SQLite archive of past harvests",
	Long: `Archive lists or searches posts stored by harvest --archive. Without
--search it shows the most recently created posts.`,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().String("search", "", "substring to match against titles and bodies")
	archiveCmd.Flags().Int("limit", 20, "maximum results")
	archiveCmd.Flags().String("archive-dir", "", "archive directory (default from config, else ./output/archive)")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	dir, _ := flags.GetString("archive-dir")
	if dir == "" {
		dir = viper.GetString("archive.archive_dir")
	}

	store, err := archive.NewStore(types.ArchiveConfig{ArchiveDir: dir})
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := flags.GetInt("limit")
	term, _ := flags.GetString("search")

	var posts []types.Post
	if term != "" {
		posts, err = store.Search(cmd.Context(), term, limit)
	} else {
		posts, err = store.Recent(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}

	if len(posts) == 0 {
		fmt.Fprintln(os.Stderr, "no archived posts matched")
		return nil
	}
	for _, p := range posts {
		title := p.Title
		if len(title) > 70 {
			title = title[:67] + "..."
		}
		fmt.Printf("%-10s r/%-16s %5d  %s\n", p.ID, p.Subreddit, p.Score, strings.TrimSpace(title))
	}
	return nil
}
