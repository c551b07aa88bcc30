// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/insight-engine/pkg/types"
)

// writeArtifacts persists the Markdown report and the opportunities array as
// two sibling files sharing the run stamp. Each artifact is written
// independently once its content exists; there is no rollback of an
// already-written file.
func (p *Pipeline) writeArtifacts(result *Result, posts []types.Post) error {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	result.ReportPath = filepath.Join(p.cfg.OutputDir, "report-"+result.Stamp+".md")
	report, err := p.renderReport(result, posts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(result.ReportPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	result.OpportunitiesPath = filepath.Join(p.cfg.OutputDir, "opportunities-"+result.Stamp+".json")
	oppJSON, err := json.MarshalIndent(result.Opportunities, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling opportunities: %w", err)
	}
	if err := os.WriteFile(result.OpportunitiesPath, append(oppJSON, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing opportunities: %w", err)
	}
	return nil
}

// renderReport assembles the final document: metadata header, stage-4
// synthesis, per-source syntheses, and the extracted tags as an embedded
// JSON block.
func (p *Pipeline) renderReport(result *Result, posts []types.Post) (string, error) {
	var b strings.Builder

	b.WriteString("# Community Research Report\n\n")
	fmt.Fprintf(&b, "- generatedAt: %s\n", p.now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- postsAnalyzed: %d\n", len(posts))
	fmt.Fprintf(&b, "- model: %s/%s\n", providerName(p.cfg), p.cfg.Model)
	fmt.Fprintf(&b, "- quoteFidelity: %t\n", p.cfg.QuoteFidelity)
	var sources []string
	for _, s := range result.Summaries {
		sources = append(sources, fmt.Sprintf("r/%s (%d posts)", s.Subreddit, s.PostCount))
	}
	fmt.Fprintf(&b, "- sources: %s\n\n", strings.Join(sources, ", "))

	b.WriteString(strings.TrimSpace(result.Synthesis) + "\n\n")

	b.WriteString("## Appendix: Per-Source Syntheses\n\n")
	for _, s := range result.Summaries {
		fmt.Fprintf(&b, "### r/%s (%d posts)\n\n%s\n\n", s.Subreddit, s.PostCount, strings.TrimSpace(s.Summary))
	}

	tagsJSON, err := json.MarshalIndent(result.Tags, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling tags: %w", err)
	}
	b.WriteString("## Appendix: Extracted Tags\n\n```json\n")
	b.Write(tagsJSON)
	b.WriteString("\n```\n")

	return b.String(), nil
}

func providerName(cfg types.AnalysisConfig) string {
	if cfg.Provider == "" {
		return "claude"
	}
	return cfg.Provider
}
