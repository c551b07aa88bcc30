// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/insight-engine/internal/analyze"
	"github.com/pdiddy/insight-engine/internal/completion"
	"github.com/pdiddy/insight-engine/internal/secrets"
	"github.com/pdiddy/insight-engine/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <corpus-file>",
	Short: "Run the staged completion analysis over a corpus",
	Long: `Analyze pipes a harvested corpus through four completion stages: per-source
summarization, structured tag extraction, opportunity generation, and a
cross-source synthesis. The corpus file may be line-delimited JSON produced
by harvest, or any plain-text file, which is analyzed as a single document.

Two artifacts are written per run: a Markdown report and a JSON array of
opportunities, named by a shared run timestamp.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("provider", "", "completion provider: claude or gemini (default claude)")
	analyzeCmd.Flags().String("model", "", "completion model identifier")
	analyzeCmd.Flags().String("api-key", "", "completion API key (default from .secrets/ or environment)")
	analyzeCmd.Flags().Int("max-retries", 3, "retry budget for transient API failures")
	analyzeCmd.Flags().Int("chunk-chars", analyze.DefaultMaxChunkChars, "maximum characters per completion request")
	analyzeCmd.Flags().Bool("quote-fidelity", false, "require a supporting quote and permalink for every claim")
	analyzeCmd.Flags().String("output-dir", "", "output directory (default from config, else ./output)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	provider, _ := flags.GetString("provider")
	if provider == "" {
		provider = viper.GetString("analysis.provider")
	}

	apiKey, _ := flags.GetString("api-key")
	if apiKey == "" {
		apiKey = secrets.APIKey(loadedSecrets, provider)
	}

	outputDir, _ := flags.GetString("output-dir")
	if outputDir == "" {
		outputDir = viper.GetString("analysis.output_dir")
	}
	if outputDir == "" {
		outputDir = "output"
	}

	model, _ := flags.GetString("model")
	maxRetries, _ := flags.GetInt("max-retries")
	chunkChars, _ := flags.GetInt("chunk-chars")
	quoteFidelity, _ := flags.GetBool("quote-fidelity")

	cfg := types.AnalysisConfig{
		AIConfig: types.AIConfig{
			Provider:   provider,
			Model:      model,
			APIKey:     apiKey,
			MaxRetries: maxRetries,
		},
		MaxChunkChars: chunkChars,
		QuoteFidelity: quoteFidelity,
		OutputDir:     outputDir,
	}

	completer, err := completion.New(cmd.Context(), cfg.AIConfig)
	if err != nil {
		return err
	}

	pipeline := analyze.New(completer, cfg, os.Stderr)
	result, err := pipeline.RunFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Println(result.ReportPath)
	fmt.Println(result.OpportunitiesPath)
	return nil
}
