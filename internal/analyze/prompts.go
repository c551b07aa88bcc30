// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"fmt"
	"strings"
)

// quoteFidelityClause is appended to every stage prompt when quote-fidelity
// mode is active.
const quoteFidelityClause = `

Evidence requirement: every claim must carry a verbatim supporting quote and its permalink. A claim with no quote must be explicitly labeled "unverified hypothesis".`

const summarizeSystem = `You are a product research analyst. You extract concrete, evidence-grounded observations from community discussions. You never invent details that are not in the source text.`

// chunkPrompt asks for a grounded extraction over one chunk of source text.
func chunkPrompt(subreddit string, index, total int, chunk string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The text below is part %d of %d harvested from the r/%s community.\n\n", index, total, subreddit)
	b.WriteString(`Extract, with concrete evidence from the text:
- pain points: recurring problems people describe, in their own words
- personas: who is experiencing each problem (role, context)
- context: what they are trying to accomplish
- workarounds: what they currently do instead
- willingness-to-pay signals: any mention of budgets, pricing, paying for tools

Be specific. Prefer quoting short phrases over paraphrasing.

Source text:
`)
	b.WriteString(chunk)
	return b.String()
}

// reducePrompt merges chunk summaries into one per-source synthesis.
func reducePrompt(subreddit string, summaries []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Below are %d partial analyses of the r/%s community. Merge them into a single synthesis, combining duplicate observations and keeping every distinct pain point, persona, workaround, and willingness-to-pay signal.\n", len(summaries), subreddit)
	for i, s := range summaries {
		fmt.Fprintf(&b, "\n--- Partial analysis %d ---\n%s\n", i+1, s)
	}
	return b.String()
}

const tagSystem = `You are a product research analyst converting free-text community syntheses into structured tags.`

// tagPrompt requests the structured TagSet extraction as a single JSON document.
func tagPrompt(syntheses string) string {
	return `From the community syntheses below, produce a single JSON document with exactly this shape:

{
  "painPoints": [{"category": "...", "description": "...", "quote": "...", "permalink": "...", "frequency": "common|occasional|rare"}],
  "personas": [{"role": "...", "description": "...", "painPoints": ["<category>", ...]}],
  "urgency": "low|medium|high",
  "urgencyRationale": "...",
  "competitors": [{"name": "...", "sentiment": "positive|neutral|negative", "mentions": 1}],
  "willingnessToPay": {"signals": ["..."], "confidence": "low|medium|high"}
}

Quote and permalink are optional per pain point; omit them rather than inventing them. Do not include any text outside the JSON document.

Community syntheses:

` + syntheses
}

const opportunitySystem = `You are a product strategist deriving buildable product opportunities from community research.`

// opportunityPrompt requests a JSON array of opportunities grounded in the
// syntheses and extracted tags.
func opportunityPrompt(syntheses, tagsJSON string) string {
	return `Using the community syntheses and the extracted tags below, propose between 5 and 10 product opportunities as a JSON array. Each element must have exactly this shape:

{
  "id": "opp-1",
  "title": "...",
  "targetUser": "...",
  "problemStatement": "...",
  "currentWorkaround": "...",
  "proposedSolution": "...",
  "confidence": "low|medium|high",
  "confidenceRationale": "...",
  "supportingQuotes": [{"text": "...", "permalink": "... or null"}],
  "risks": ["..."],
  "mvpExperiment": "..."
}

Ground every opportunity in evidence from the syntheses. Do not include any text outside the JSON array.

Extracted tags:
` + tagsJSON + `

Community syntheses:

` + syntheses
}

const synthesizeSystem = `You are a product research analyst writing the final report of a multi-community study.`

// reportHeadings are the fixed section headings of the final synthesis.
var reportHeadings = []string{
	"Executive Summary",
	"Cross-Source Themes",
	"Ranked Pain Points",
	"Personas",
	"Top Opportunities",
	"Experiments",
	"Messaging Angles",
	"Open Risks",
	"Next Steps",
}

// synthesizePrompt requests the final free-text report.
func synthesizePrompt(syntheses, opportunitySample string) string {
	var b strings.Builder
	b.WriteString("Write the final research report in Markdown with exactly these second-level headings, in this order:\n")
	for _, h := range reportHeadings {
		fmt.Fprintf(&b, "## %s\n", h)
	}
	b.WriteString("\nBase the report on the per-community syntheses and the opportunity sample below.\n")
	b.WriteString("\nOpportunity sample:\n" + opportunitySample + "\n")
	b.WriteString("\nCommunity syntheses:\n\n" + syntheses)
	return b.String()
}
