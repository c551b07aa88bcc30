// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze runs the staged completion pipeline over a harvested
// corpus: per-source summarization, structured tag extraction, opportunity
// generation, and cross-source synthesis.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/insight-engine/internal/completion"
	"github.com/pdiddy/insight-engine/internal/corpus"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Stage identifies one phase of the pipeline state machine. Failed is an
// absorbing state reachable from any stage; no artifact is complete until
// the pipeline reaches Done.
type Stage int

const (
	StageSummarize Stage = iota
	StageTag
	StageOpportunity
	StageSynthesize
	StageDone
	StageFailed
)

// String names the stage for progress output.
func (s Stage) String() string {
	switch s {
	case StageSummarize:
		return "summarize"
	case StageTag:
		return "tag"
	case StageOpportunity:
		return "opportunity"
	case StageSynthesize:
		return "synthesize"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Result holds all artifacts of a completed run.
type Result struct {
	Stamp             string
	Summaries         []types.SubredditSummary
	Tags              types.TagSet
	Opportunities     []types.Opportunity
	Synthesis         string
	ReportPath        string
	OpportunitiesPath string
}

// Pipeline orchestrates the four analysis stages over one corpus.
type Pipeline struct {
	completer completion.Completer
	cfg       types.AnalysisConfig
	w         io.Writer
	stage     Stage

	// now stamps artifacts; tests pin it.
	now func() time.Time
}

// New returns a pipeline with defaults applied.
func New(completer completion.Completer, cfg types.AnalysisConfig, w io.Writer) *Pipeline {
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = DefaultMaxChunkChars
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{
		completer: completer,
		cfg:       cfg,
		w:         w,
		stage:     StageSummarize,
		now:       time.Now,
	}
}

// Stage reports the pipeline's current state.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// RunFile analyzes a corpus file: line-delimited JSON is parsed as posts,
// any other plain-text file flows through the stages as one synthetic post.
func (p *Pipeline) RunFile(ctx context.Context, path string) (*Result, error) {
	posts, err := corpus.ReadFile(path)
	if err != nil {
		p.stage = StageFailed
		return nil, err
	}
	return p.Run(ctx, posts)
}

// Run executes the four stages in order and writes the two artifacts. A
// failure in any stage moves the pipeline to Failed and commits nothing;
// artifacts exist on disk only after every stage has succeeded.
func (p *Pipeline) Run(ctx context.Context, posts []types.Post) (*Result, error) {
	if len(posts) == 0 {
		p.stage = StageFailed
		return nil, fmt.Errorf("nothing to analyze: corpus is empty")
	}

	result := &Result{Stamp: p.now().UTC().Format("20060102-150405")}

	// Stage 1: per-source summarization.
	summaries, err := p.summarizeSources(ctx, posts)
	if err != nil {
		p.stage = StageFailed
		return nil, fmt.Errorf("summarize stage: %w", err)
	}
	result.Summaries = summaries

	var synthesesText strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&synthesesText, "=== r/%s (%d posts) ===\n%s\n\n", s.Subreddit, s.PostCount, s.Summary)
	}
	syntheses := synthesesText.String()

	// Stage 2: structured tag extraction.
	p.stage = StageTag
	fmt.Fprintf(p.w, "stage %s: extracting structured tags\n", p.stage)
	result.Tags, err = p.extractTags(ctx, syntheses)
	if err != nil {
		p.stage = StageFailed
		return nil, fmt.Errorf("tag stage: %w", err)
	}

	// Stage 3: opportunity generation.
	p.stage = StageOpportunity
	fmt.Fprintf(p.w, "stage %s: generating opportunities\n", p.stage)
	result.Opportunities, err = p.generateOpportunities(ctx, syntheses, result.Tags)
	if err != nil {
		p.stage = StageFailed
		return nil, fmt.Errorf("opportunity stage: %w", err)
	}

	// Stage 4: cross-source synthesis.
	p.stage = StageSynthesize
	fmt.Fprintf(p.w, "stage %s: writing cross-source synthesis\n", p.stage)
	result.Synthesis, err = p.synthesize(ctx, syntheses, result.Opportunities)
	if err != nil {
		p.stage = StageFailed
		return nil, fmt.Errorf("synthesize stage: %w", err)
	}

	if err := p.writeArtifacts(result, posts); err != nil {
		p.stage = StageFailed
		return nil, err
	}

	p.stage = StageDone
	fmt.Fprintf(p.w, "analysis complete: %s, %s\n", result.ReportPath, result.OpportunitiesPath)
	return result, nil
}

// complete issues one completion request, applying the quote-fidelity
// clause to every stage when the mode is active.
func (p *Pipeline) complete(ctx context.Context, system, user string, jsonOnly bool) (string, error) {
	if p.cfg.QuoteFidelity {
		system += quoteFidelityClause
	}
	return p.completer.Complete(ctx, system, user, jsonOnly)
}

// summarizeSources chunks each source's rendered text, summarizes every
// chunk, and reduces multi-chunk sources with one further request.
func (p *Pipeline) summarizeSources(ctx context.Context, posts []types.Post) ([]types.SubredditSummary, error) {
	order, bySource := groupBySource(posts)

	var summaries []types.SubredditSummary
	for _, sub := range order {
		sourcePosts := bySource[sub]
		chunks := SplitText(renderPosts(sourcePosts), p.cfg.MaxChunkChars)
		fmt.Fprintf(p.w, "stage %s: r/%s (%d posts, %d chunks)\n", StageSummarize, sub, len(sourcePosts), len(chunks))

		chunkSummaries := make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			out, err := p.complete(ctx, summarizeSystem, chunkPrompt(sub, i+1, len(chunks), chunk), false)
			if err != nil {
				return nil, fmt.Errorf("summarizing r/%s chunk %d/%d: %w", sub, i+1, len(chunks), err)
			}
			chunkSummaries = append(chunkSummaries, out)
		}

		summary := chunkSummaries[0]
		if len(chunkSummaries) > 1 {
			reduced, err := p.complete(ctx, summarizeSystem, reducePrompt(sub, chunkSummaries), false)
			if err != nil {
				return nil, fmt.Errorf("reducing r/%s summaries: %w", sub, err)
			}
			summary = reduced
		}

		summaries = append(summaries, types.SubredditSummary{
			Subreddit: sub,
			Summary:   summary,
			PostCount: len(sourcePosts),
		})
	}
	return summaries, nil
}

// extractTags runs the JSON-constrained tag extraction. A response that is
// not valid JSON degrades to a placeholder carrying the raw text instead of
// failing the run.
func (p *Pipeline) extractTags(ctx context.Context, syntheses string) (types.TagSet, error) {
	raw, err := p.complete(ctx, tagSystem, tagPrompt(syntheses), true)
	if err != nil {
		return types.TagSet{}, err
	}

	var tags types.TagSet
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &tags); err != nil {
		fmt.Fprintf(p.w, "  warning: tag response was not valid JSON, keeping raw text\n")
		return types.TagSet{ParseError: raw}, nil
	}
	return tags, nil
}

// generateOpportunities runs the JSON-constrained opportunity stage with the
// same parse-failure fallback as extractTags.
func (p *Pipeline) generateOpportunities(ctx context.Context, syntheses string, tags types.TagSet) ([]types.Opportunity, error) {
	tagsJSON, err := json.MarshalIndent(tags, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tags: %w", err)
	}

	raw, err := p.complete(ctx, opportunitySystem, opportunityPrompt(syntheses, string(tagsJSON)), true)
	if err != nil {
		return nil, err
	}

	var opps []types.Opportunity
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &opps); err != nil {
		fmt.Fprintf(p.w, "  warning: opportunity response was not valid JSON, keeping raw text\n")
		return []types.Opportunity{{
			ID:               "opp-parse-error",
			Title:            "Unparsed opportunity output",
			ProblemStatement: raw,
			Confidence:       types.ConfidenceLow,
		}}, nil
	}
	return opps, nil
}

// synthesize produces the final free-text report conditioned on the
// syntheses and a sample of the generated opportunities.
func (p *Pipeline) synthesize(ctx context.Context, syntheses string, opps []types.Opportunity) (string, error) {
	sample := opps
	if len(sample) > 5 {
		sample = sample[:5]
	}
	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling opportunity sample: %w", err)
	}
	return p.complete(ctx, synthesizeSystem, synthesizePrompt(syntheses, string(sampleJSON)), false)
}

// groupBySource buckets posts by subreddit, preserving first-seen order.
func groupBySource(posts []types.Post) ([]string, map[string][]types.Post) {
	bySource := make(map[string][]types.Post)
	var order []string
	for _, p := range posts {
		if _, ok := bySource[p.Subreddit]; !ok {
			order = append(order, p.Subreddit)
		}
		bySource[p.Subreddit] = append(bySource[p.Subreddit], p)
	}
	return order, bySource
}

// renderPosts flattens posts and their comments to the prompt source text.
func renderPosts(posts []types.Post) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "### %s (score %d, %d comments)\n", p.Title, p.Score, p.NumComments)
		if p.Permalink != "" {
			fmt.Fprintf(&b, "permalink: %s\n", p.Permalink)
		}
		body := strings.TrimSpace(p.Selftext)
		if body == "" {
			body = "(no body)"
		}
		b.WriteString(body + "\n")
		for _, c := range p.Comments {
			fmt.Fprintf(&b, "- %s (score %d): %s\n", c.Author, c.Score, strings.TrimSpace(c.Body))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripJSONFences removes a Markdown code fence around a JSON response.
// Backends occasionally wrap constrained output despite instructions.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
